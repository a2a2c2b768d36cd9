package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const BonusStatusActive = "active"

// BonusPool accumulates dynamic-bonus deductions for one house. At most one
// active pool per house; created lazily on the first deduction.
type BonusPool struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	HouseID     uint            `gorm:"index:idx_bonus_house_status,priority:1;not null" json:"house_id"`
	Status      string          `gorm:"index:idx_bonus_house_status,priority:2;not null;default:active" json:"status"`
	BonusAmount decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"bonus_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
