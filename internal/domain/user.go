package domain

import "time"

// User roles
const (
	RoleWorker   = "worker"   // Completes tasks
	RoleEmployer = "employer" // Posts tasks
	RoleAdmin    = "admin"    // Platform operator (JWT role only, never stored on a user)
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                  // Primary key
	Username  string    `gorm:"size:64;unique;not null" json:"username"` // Unique username
	Password  string    `gorm:"not null" json:"-"`                      // Hashed password
	Role      string    `gorm:"size:20;default:worker" json:"role"`     // Role: worker or employer
	Wallets   []Wallet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wallets,omitempty"` // One wallet per currency
	CreatedAt time.Time `json:"createdAt"`
}
