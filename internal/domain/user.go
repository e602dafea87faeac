package domain

// User Model
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`                       // Primary key
	Name          string `gorm:"size:100;not null" json:"name"`              // Display name
	Email         string `gorm:"size:191;uniqueIndex;not null" json:"email"` // Login identity, unique
	Password      string `gorm:"not null" json:"-"`                          // Bcrypt hash
	Role          Role   `gorm:"not null;default:3" json:"role"`             // Role tag: admin or customer
	Photo         []byte `gorm:"type:mediumblob" json:"-"`                   // Optional profile photo (JPEG bytes)
	SessionActive bool   `gorm:"not null;default:false" json:"-"`            // At most one live session per user
	Wallet        Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wallet"` // One-to-one wallet, created at registration
}
