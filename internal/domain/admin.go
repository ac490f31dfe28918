package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminSettingsID is the primary key of the singleton settings row.
const AdminSettingsID = 1

// DefaultCommissionRate applies when no settings row exists.
var DefaultCommissionRate = decimal.RequireFromString("0.05")

// AdminWallet accumulates platform commission, one row per currency.
type AdminWallet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Currency       string          `gorm:"size:20;not null;uniqueIndex" json:"currency"`
	Balance        decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"balance"`
	TotalEarned    decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"totalEarned"`
	TotalWithdrawn decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"totalWithdrawn"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// AdminSettings holds the global commission rate and the operator credentials.
type AdminSettings struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"commissionRate"` // Fraction, e.g. 0.05
	AdminUsername     string          `gorm:"size:64;not null" json:"adminUsername"`
	AdminPasswordHash string          `gorm:"not null" json:"-"` // bcrypt hash
	UpdatedAt         time.Time       `json:"updatedAt"`
}
