package ledger

import (
	"errors"
	"fmt"

	"taskinn/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Page bounds for transaction listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// CreateWallet opens an empty wallet. A second wallet for the same
// (user, currency) is rejected with ErrWalletExists.
func CreateWallet(tx *gorm.DB, userID uint, currency string) (*domain.Wallet, error) {
	if !domain.ValidCurrency(currency) {
		return nil, ErrInvalidCurrency
	}
	var count int64
	if err := tx.Model(&domain.Wallet{}).Where("user_id = ? AND currency = ?", userID, currency).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check wallet: %w", err)
	}
	if count > 0 {
		return nil, ErrWalletExists
	}
	wallet := domain.Wallet{UserID: userID, Currency: currency, Balance: decimal.Zero, TotalEarned: decimal.Zero, TotalWithdrawn: decimal.Zero}
	if err := tx.Create(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrWalletExists
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return &wallet, nil
}

// ListWallets returns the user's wallets ordered by currency.
func ListWallets(tx *gorm.DB, userID uint) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	if err := tx.Where("user_id = ?", userID).Order("currency").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// FindWallet loads a wallet by id.
func FindWallet(tx *gorm.DB, walletID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := tx.First(&wallet, walletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	return &wallet, nil
}

// FindUserWallet loads the (user, currency) wallet.
func FindUserWallet(tx *gorm.DB, userID uint, currency string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := tx.Where("user_id = ? AND currency = ?", userID, currency).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	return &wallet, nil
}

// ClampPage normalises a limit/offset pair.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListTransactions returns a page of the wallet's ledger, newest first.
func ListTransactions(tx *gorm.DB, walletID uint, limit, offset int) ([]domain.WalletTransaction, error) {
	limit, offset = ClampPage(limit, offset)
	var txs []domain.WalletTransaction
	err := tx.Where("wallet_id = ?", walletID).
		Order("created_at desc").Order("id desc").
		Limit(limit).Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	return txs, nil
}
