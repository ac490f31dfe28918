package settlement

import (
	"context"

	"taskinn/internal/domain"
	"taskinn/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddFunds is an operator top-up: amount goes to the wallet in full, no
// commission is charged, and the ledger gets a manual:<uuid> record.
func (s *Service) AddFunds(ctx context.Context, userID uint, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	if !domain.ValidCurrency(currency) {
		return nil, ledger.ErrInvalidCurrency
	}
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	ref := "manual:" + uuid.NewString()
	var wallet *domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if wallet, err = ledger.ApplyDelta(tx, userID, currency, amount); err != nil {
			return err
		}
		return ledger.Record(tx, &domain.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        domain.TxTypeDeposit,
			Source:      domain.SourceManual,
			ExternalRef: ref,
			Amount:      amount,
			Gross:       amount,
			Commission:  decimal.Zero,
			Fee:         decimal.Zero,
			Currency:    currency,
			Status:      domain.TxStatusCompleted,
			Description: "Manual top-up",
		})
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "currency": currency}).Error("Manual top-up failed")
		return nil, classify(err)
	}
	s.invalidate(ctx, userID, wallet.ID)
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"wallet_id": wallet.ID,
		"currency":  currency,
		"amount":    amount,
		"ref":       ref,
		"source":    domain.SourceManual,
	}).Info("Manual top-up applied")
	return wallet, nil
}
