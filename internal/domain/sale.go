package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale Model. Immutable once created: there is no update or delete path.
type Sale struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                     // Primary key
	UserID    uint            `gorm:"index;not null" json:"user_id"`            // Buyer
	CreatedAt time.Time       `json:"created_at"`                               // Purchase timestamp
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"` // Equals the sum of its line subtotals
	Lines     []SaleLine      `json:"lines"`                                    // Line items, created alongside the sale
}

// SaleLine Model. Created only together with its Sale, never mutated.
type SaleLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                        // Primary key
	SaleID    uint            `gorm:"index;not null" json:"sale_id"`               // Owning sale
	ProductID uint            `gorm:"not null" json:"product_id"`                  // Purchased product
	Quantity  int             `gorm:"not null" json:"quantity"`                    // Units purchased
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"` // Catalog price at time of sale
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"` // UnitPrice * Quantity
}
