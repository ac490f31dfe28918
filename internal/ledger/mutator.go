package ledger

import (
	"fmt"
	"time"

	"taskinn/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyDelta adds delta to the (userID, currency) wallet and returns the row
// as persisted.
//
// Credits create the wallet on first use and add to total_earned. Debits only
// succeed when the wallet exists and holds at least |delta|; the check and the
// decrement are one conditional UPDATE, so concurrent debits cannot overdraw.
// Balances are always changed with balance = balance + ?, never from a value
// read earlier.
func ApplyDelta(tx *gorm.DB, userID uint, currency string, delta decimal.Decimal) (*domain.Wallet, error) {
	if !domain.ValidCurrency(currency) {
		return nil, ErrInvalidCurrency
	}
	if delta.IsZero() {
		return nil, ErrInvalidAmount
	}
	now := time.Now()
	scope := tx.Model(&domain.Wallet{}).Where("user_id = ? AND currency = ?", userID, currency)

	if delta.IsPositive() {
		if err := ensureWallet(tx, userID, currency); err != nil {
			return nil, err
		}
		res := scope.Updates(map[string]any{
			"balance":      gorm.Expr("balance + ?", delta),
			"total_earned": gorm.Expr("total_earned + ?", delta),
			"updated_at":   now,
		})
		if res.Error != nil {
			return nil, fmt.Errorf("credit wallet: %w", res.Error)
		}
	} else {
		amount := delta.Neg()
		res := scope.Where("balance >= ?", amount).Updates(map[string]any{
			"balance":         gorm.Expr("balance - ?", amount),
			"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
			"updated_at":      now,
		})
		if res.Error != nil {
			return nil, fmt.Errorf("debit wallet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrInsufficientBalance // Missing wallet or not enough funds
		}
	}

	var wallet domain.Wallet
	if err := tx.Where("user_id = ? AND currency = ?", userID, currency).First(&wallet).Error; err != nil {
		return nil, fmt.Errorf("reload wallet: %w", err)
	}
	return &wallet, nil
}

// RefundWithdrawal returns a debited gross amount to its wallet. total_withdrawn
// is reduced rather than total_earned increased: the money never left.
func RefundWithdrawal(tx *gorm.DB, walletID uint, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	res := tx.Model(&domain.Wallet{}).Where("id = ?", walletID).Updates(map[string]any{
		"balance":         gorm.Expr("balance + ?", amount),
		"total_withdrawn": gorm.Expr("total_withdrawn - ?", amount),
		"updated_at":      time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("refund wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// ensureWallet inserts an empty wallet unless one exists. ON CONFLICT DO NOTHING
// keeps two first-time credits from failing on the unique index.
func ensureWallet(tx *gorm.DB, userID uint, currency string) error {
	wallet := domain.Wallet{
		UserID:         userID,
		Currency:       currency,
		Balance:        decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&wallet).Error; err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}
