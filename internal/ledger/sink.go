package ledger

import (
	"fmt"
	"time"

	"taskinn/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditCommission mirrors a commission charge into the platform wallet for
// currency, creating that wallet on first use. A zero commission is a no-op.
func CreditCommission(tx *gorm.DB, currency string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	seed := domain.AdminWallet{Currency: currency, Balance: decimal.Zero, TotalEarned: decimal.Zero, TotalWithdrawn: decimal.Zero}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return fmt.Errorf("create admin wallet: %w", err)
	}
	res := tx.Model(&domain.AdminWallet{}).Where("currency = ?", currency).Updates(map[string]any{
		"balance":      gorm.Expr("balance + ?", amount),
		"total_earned": gorm.Expr("total_earned + ?", amount),
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("credit admin wallet: %w", res.Error)
	}
	return nil
}

// ReverseCommission takes back a commission credited for a withdrawal the
// processor later rejected.
func ReverseCommission(tx *gorm.DB, currency string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	res := tx.Model(&domain.AdminWallet{}).Where("currency = ?", currency).Updates(map[string]any{
		"balance":      gorm.Expr("balance - ?", amount),
		"total_earned": gorm.Expr("total_earned - ?", amount),
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("reverse admin commission: %w", res.Error)
	}
	return nil
}

// AdminWallets lists the platform wallets.
func AdminWallets(tx *gorm.DB) ([]domain.AdminWallet, error) {
	var wallets []domain.AdminWallet
	if err := tx.Order("currency").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("list admin wallets: %w", err)
	}
	return wallets, nil
}
