package domain

import "github.com/shopspring/decimal"

// Product Model
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                     // Primary key
	Name        string          `gorm:"size:100;not null" json:"name"`            // Product name
	Description string          `gorm:"size:500;not null" json:"description"`     // Free-text description
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // Unit price, always positive
	Stock       int             `gorm:"not null;default:0" json:"stock"`          // Units on hand, never negative
	Image       []byte          `gorm:"type:mediumblob" json:"-"`                 // Optional image (JPEG bytes)
	SeasonID    uint            `gorm:"not null" json:"season_id"`                // Foreign key to Season
	Season      Season          `json:"season"`                                   // Availability grouping
}

// YearRoundSeasonID is the reserved season every always-available product
// belongs to. The migrator seeds it.
const YearRoundSeasonID uint = 1
