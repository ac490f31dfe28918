package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supported wallet currencies
const (
	CurrencyUSD       = "USD"
	CurrencyUSDTTRC20 = "USDT_TRC20"
)

// ValidCurrency reports whether code is a wallet currency the platform settles in.
func ValidCurrency(code string) bool {
	return code == CurrencyUSD || code == CurrencyUSDTTRC20
}

// Wallet Model, one row per (user, currency)
type Wallet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                                               // Primary key
	UserID         uint            `gorm:"not null;uniqueIndex:idx_wallet_user_currency" json:"userId"`        // Owning user
	Currency       string          `gorm:"size:20;not null;uniqueIndex:idx_wallet_user_currency" json:"currency"` // USD or USDT_TRC20
	Balance        decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"balance"`               // Spendable balance
	TotalEarned    decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"totalEarned"`           // Sum of credited net amounts
	TotalWithdrawn decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"totalWithdrawn"`        // Sum of debited gross amounts
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
