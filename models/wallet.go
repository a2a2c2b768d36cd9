package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletBalance is the prepaid credit of a house-admin account. Commissions
// are debited from Package; recharges credit it externally. Only the ledger
// mutates it, always inside a transaction holding the row lock.
type WalletBalance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	HouseID   uint            `gorm:"uniqueIndex;not null" json:"house_id"`
	Package   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"package"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CashierBalance mirrors the house wallet for the cashier's read-only view.
// Updated in the same transaction as every WalletBalance mutation.
type CashierBalance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	HouseID   uint            `gorm:"uniqueIndex;not null" json:"house_id"`
	Package   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"package"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AdjustmentType string

const (
	AdjustmentDebit  AdjustmentType = "debit"
	AdjustmentCredit AdjustmentType = "credit"
)

// BalanceAdjustment is an append-only audit record of one wallet mutation.
type BalanceAdjustment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	HouseID       uint            `gorm:"index" json:"house_id"`
	GameID        *uint           `json:"game_id"`
	Type          AdjustmentType  `gorm:"not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance_after"`
	Reason        string          `gorm:"not null" json:"reason"`
	CreatedAt     time.Time       `json:"created_at"`
}
