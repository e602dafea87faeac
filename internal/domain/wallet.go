package domain

import "github.com/shopspring/decimal"

// Wallet Model
type Wallet struct {
	ID      uint            `gorm:"primaryKey" json:"id"`                              // Primary key
	UserID  uint            `gorm:"uniqueIndex" json:"user_id"`                        // Foreign key to User
	Balance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"` // Never negative, capped at the configured maximum
}
