package settlement

import (
	"context"
	"fmt"
	"time"

	"taskinn/internal/coinpayments"
	"taskinn/internal/domain"
	"taskinn/internal/ledger"
	"taskinn/internal/paypal"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// reconcileBatch bounds how many pending withdrawals one pass looks at.
var reconcileBatch = 100

// ReconcileSummary counts what a reconciliation pass did.
type ReconcileSummary struct {
	Checked   int
	Completed int
	Failed    int
	Pending   int
	Errors    int
}

// ReconcilePending asks the processors about pending withdrawals, least
// recently checked first. Completed ones are marked completed. Rejected ones
// are marked failed, the gross is returned to the wallet and the commission is
// taken back from the admin wallet, in one transaction. Ones still pending are
// stamped so the next pass starts with others.
func (s *Service) ReconcilePending(ctx context.Context) (*ReconcileSummary, error) {
	var pending []domain.WalletTransaction
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ? AND source IN ?", domain.TxTypeWithdrawal, domain.TxStatusPending,
			[]string{domain.SourcePayPalPayout, domain.SourceCoinPaymentsWithdrawal}).
		Order("updated_at, id").
		Limit(reconcileBatch).
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("load pending withdrawals: %w", err)
	}

	summary := &ReconcileSummary{}
	for i := range pending {
		rec := &pending[i]
		summary.Checked++
		log := s.logger.WithFields(logrus.Fields{"transaction_id": rec.ID, "source": rec.Source, "external_ref": rec.ExternalRef})

		status, err := s.processorStatus(ctx, rec)
		if err != nil {
			log.WithError(err).Warn("Could not check withdrawal status")
			summary.Errors++
			continue
		}
		switch status {
		case domain.TxStatusCompleted:
			err = s.completeWithdrawal(ctx, rec)
			if err == nil {
				summary.Completed++
			}
		case domain.TxStatusFailed:
			err = s.refundWithdrawal(ctx, rec, domain.TxStatusPending)
			if err == nil {
				summary.Failed++
			}
		default:
			summary.Pending++
			err = s.touchWithdrawal(ctx, rec)
		}
		if err != nil {
			log.WithError(err).Error("Failed to resolve withdrawal")
			summary.Errors++
		}
	}
	return summary, nil
}

// processorStatus maps the processor's view of rec onto a transaction status.
func (s *Service) processorStatus(ctx context.Context, rec *domain.WalletTransaction) (string, error) {
	switch rec.Source {
	case domain.SourcePayPalPayout:
		batch, err := s.paypal.GetPayoutBatch(ctx, rec.ExternalRef)
		if err != nil {
			return "", err
		}
		switch batch.Status {
		case paypal.BatchStatusSuccess:
			return domain.TxStatusCompleted, nil
		case paypal.BatchStatusDenied, paypal.BatchStatusCanceled:
			return domain.TxStatusFailed, nil
		}
	case domain.SourceCoinPaymentsWithdrawal:
		info, err := s.coins.GetWithdrawalInfo(ctx, rec.ExternalRef)
		if err != nil {
			return "", err
		}
		switch info.Status {
		case coinpayments.WithdrawalComplete:
			return domain.TxStatusCompleted, nil
		case coinpayments.WithdrawalCancelled:
			return domain.TxStatusFailed, nil
		}
	}
	return domain.TxStatusPending, nil
}

func (s *Service) completeWithdrawal(ctx context.Context, rec *domain.WalletTransaction) error {
	res := s.db.WithContext(ctx).Model(&domain.WalletTransaction{}).
		Where("id = ? AND status = ?", rec.ID, domain.TxStatusPending).
		Updates(map[string]any{"status": domain.TxStatusCompleted, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.WithFields(logrus.Fields{"transaction_id": rec.ID, "external_ref": rec.ExternalRef}).Info("Withdrawal completed")
	}
	return nil
}

// touchWithdrawal moves a still-pending row to the back of the queue.
func (s *Service) touchWithdrawal(ctx context.Context, rec *domain.WalletTransaction) error {
	return s.db.WithContext(ctx).Model(&domain.WalletTransaction{}).
		Where("id = ? AND status = ?", rec.ID, domain.TxStatusPending).
		Update("updated_at", time.Now()).Error
}

// refundWithdrawal marks rec failed if it is still in status from, returns its
// gross to the wallet and reverses its commission.
func (s *Service) refundWithdrawal(ctx context.Context, rec *domain.WalletTransaction, from string) error {
	gross := rec.Gross
	if gross.IsZero() {
		gross = rec.Amount.Abs()
	}
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.WalletTransaction{}).
			Where("id = ? AND status = ?", rec.ID, from).
			Updates(map[string]any{"status": domain.TxStatusFailed, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // Already resolved
		}
		if err := ledger.RefundWithdrawal(tx, rec.WalletID, gross); err != nil {
			return err
		}
		if err := ledger.ReverseCommission(tx, rec.Currency, rec.Commission); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil || !applied {
		return err
	}

	wallet, err := ledger.FindWallet(s.db.WithContext(ctx), rec.WalletID)
	if err == nil {
		s.invalidate(ctx, wallet.UserID, wallet.ID)
	}
	s.logger.WithFields(logrus.Fields{
		"transaction_id": rec.ID,
		"wallet_id":      rec.WalletID,
		"external_ref":   rec.ExternalRef,
		"refunded":       gross,
		"commission":     rec.Commission,
	}).Warn("Withdrawal not paid out, refunded")
	return nil
}
