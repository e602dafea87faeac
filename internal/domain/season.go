package domain

// Season Model. At most one season is active at any time; activation runs as
// a single transaction (deactivate all, activate one).
type Season struct {
	ID     uint   `gorm:"primaryKey" json:"id"`           // Primary key
	Name   string `gorm:"size:100;not null" json:"name"`  // Season name
	Active bool   `gorm:"not null;default:false" json:"active"` // Whether the season is currently live
}
