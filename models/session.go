package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GameSession is one bingo round run by a cashier. Identified by
// (house_id, game_id); game_id increases per house. All money fields are
// settled amounts: SystemEarnings + Prize + BonusDeduction == TotalStake.
type GameSession struct {
	ID              uint                     `gorm:"primaryKey" json:"id"`
	HouseID         uint                     `gorm:"not null;uniqueIndex:idx_house_game,priority:1" json:"house_id"`
	GameID          uint                     `gorm:"not null;uniqueIndex:idx_house_game,priority:2" json:"game_id"`
	StakeAmount     decimal.Decimal          `gorm:"type:numeric(20,2);not null" json:"stake_amount"`
	NumberOfPlayers int                      `gorm:"not null" json:"number_of_players"`
	CutPercentage   int                      `gorm:"not null" json:"cut_percentage"`
	TotalStake      decimal.Decimal          `gorm:"type:numeric(20,2);not null" json:"total_stake"`
	SystemEarnings  decimal.Decimal          `gorm:"type:numeric(20,2);not null" json:"system_earnings"`
	Prize           decimal.Decimal          `gorm:"type:numeric(20,2);not null" json:"prize"`
	BonusDeduction  decimal.Decimal          `gorm:"type:numeric(20,2);not null;default:0" json:"bonus_deduction"`
	DynamicBonus    bool                     `gorm:"not null;default:false" json:"dynamic_bonus"`
	Cartela         datatypes.JSONSlice[int] `json:"cartela"`       // participating card numbers
	DrawnNumbers    datatypes.JSONSlice[int] `json:"drawn_numbers"` // ordered, unique, 1..75
	WinnerCardID    *int                     `json:"winner_card_id"`
	Finished        bool                     `gorm:"not null;default:false" json:"finished"`
	StartedAt       time.Time                `json:"started_at"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// Drawn returns the drawn numbers as a plain slice copy.
func (s *GameSession) Drawn() []int {
	return append([]int(nil), s.DrawnNumbers...)
}

// HasDrawn reports whether n was already drawn in this session.
func (s *GameSession) HasDrawn(n int) bool {
	for _, d := range s.DrawnNumbers {
		if d == n {
			return true
		}
	}
	return false
}

// SameCartela compares the cartela against ids ignoring order.
func (s *GameSession) SameCartela(ids []int) bool {
	if len(s.Cartela) != len(ids) {
		return false
	}
	seen := make(map[int]int, len(s.Cartela))
	for _, c := range s.Cartela {
		seen[c]++
	}
	for _, id := range ids {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
