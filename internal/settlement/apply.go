package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskinn/internal/domain"
	"taskinn/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type deposit struct {
	userID      uint
	currency    string
	source      string
	ref         string
	gross       decimal.Decimal
	fee         decimal.Decimal
	description string
}

// settleDeposit credits the net of d to the user's wallet, records it and
// credits the commission, all or nothing. The commission rate is read inside
// the same transaction.
func (s *Service) settleDeposit(ctx context.Context, d deposit) (*DepositResult, error) {
	var result *DepositResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := ledger.HasSettlement(tx, d.source, d.ref)
		if err != nil {
			return err
		}
		if seen {
			return ledger.ErrDuplicateSettlement
		}
		rate, err := ledger.CommissionRate(tx)
		if err != nil {
			return err
		}
		split, err := ledger.ComputeSplit(d.gross, rate, d.fee)
		if err != nil {
			return err
		}
		wallet, err := ledger.ApplyDelta(tx, d.userID, d.currency, split.Net)
		if err != nil {
			return err
		}
		rec := &domain.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        domain.TxTypeDeposit,
			Source:      d.source,
			ExternalRef: d.ref,
			Amount:      split.Net,
			Gross:       split.Gross,
			Commission:  split.Commission,
			Fee:         split.Fee,
			Currency:    d.currency,
			Status:      domain.TxStatusCompleted,
			Description: d.description,
		}
		if err := ledger.Record(tx, rec); err != nil {
			return err
		}
		if err := ledger.CreditCommission(tx, d.currency, split.Commission); err != nil {
			return err
		}
		result = &DepositResult{
			DepositedAmount:  split.Gross,
			CommissionAmount: split.Commission,
			Fee:              split.Fee,
			NetAmount:        split.Net,
			WalletID:         wallet.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, d.userID, result.WalletID)
	return result, nil
}

// Payout precision of each processor. The net is cut to it before sending.
const (
	paypalPlaces   = 2 // cents
	tronUSDTPlaces = 6 // TRC20 USDT token decimals
)

// reservationPrefix marks the local reference a withdrawal carries until the
// processor has assigned its own id.
const reservationPrefix = "reserve:"

type withdrawal struct {
	userID      uint
	currency    string
	source      string
	amount      decimal.Decimal
	places      int32
	description string
}

// reserveWithdrawal holds the gross of w before any processor is called. One
// transaction prices it, debits the wallet conditionally, records a processing
// row under a local reference and credits the commission. Requests against the
// same wallet serialise on the conditional debit, so a processor is only asked
// to send money the wallet has already given up.
func (s *Service) reserveWithdrawal(ctx context.Context, w withdrawal) (*domain.WalletTransaction, error) {
	if !w.amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	var rec *domain.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rate, err := ledger.CommissionRate(tx)
		if err != nil {
			return err
		}
		split, err := ledger.ComputeSplit(w.amount, rate, decimal.Zero)
		if err != nil {
			return err
		}
		split = split.TruncateNet(w.places)
		if !split.Net.IsPositive() {
			return ledger.ErrInvalidAmount // Nothing left to send after commission
		}
		wallet, err := ledger.ApplyDelta(tx, w.userID, w.currency, split.Gross.Neg())
		if err != nil {
			return err
		}
		rec = &domain.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        domain.TxTypeWithdrawal,
			Source:      w.source,
			ExternalRef: reservationPrefix + uuid.NewString(),
			Amount:      split.Gross,
			Gross:       split.Gross,
			Commission:  split.Commission,
			Fee:         split.Fee,
			Currency:    w.currency,
			Status:      domain.TxStatusProcessing,
			Description: w.description,
		}
		if err := ledger.Record(tx, rec); err != nil {
			return err
		}
		return ledger.CreditCommission(tx, w.currency, split.Commission)
	})
	if err != nil {
		return nil, classify(err)
	}
	s.invalidate(ctx, w.userID, rec.WalletID)
	return rec, nil
}

// splitOf reads the priced amounts back from a withdrawal row.
func splitOf(rec *domain.WalletTransaction) ledger.Split {
	return ledger.Split{
		Gross:      rec.Gross,
		Commission: rec.Commission,
		Fee:        rec.Fee,
		Net:        rec.Gross.Sub(rec.Commission).Sub(rec.Fee),
	}
}

// finalizeWithdrawal replaces the local reference of a reserved row with the
// processor's id and sets the status the processor reported. It runs after
// money has left, so it ignores cancellation of the request.
func (s *Service) finalizeWithdrawal(ctx context.Context, userID uint, rec *domain.WalletTransaction, ref, status string) error {
	ctx = context.WithoutCancel(ctx)
	res := s.db.WithContext(ctx).Model(&domain.WalletTransaction{}).
		Where("id = ? AND status = ?", rec.ID, domain.TxStatusProcessing).
		Updates(map[string]any{"external_ref": ref, "status": status, "updated_at": time.Now()})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ledger.ErrDuplicateSettlement
		}
		return fmt.Errorf("finalize withdrawal %d: %w", rec.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("withdrawal %d is no longer processing", rec.ID)
	}
	rec.ExternalRef, rec.Status = ref, status
	s.invalidate(ctx, userID, rec.WalletID)
	return nil
}

// releaseWithdrawal gives a reservation back when the processor did not take
// the payout. A failed release leaves the money held, never sent.
func (s *Service) releaseWithdrawal(ctx context.Context, rec *domain.WalletTransaction, log *logrus.Entry) {
	if err := s.refundWithdrawal(context.WithoutCancel(ctx), rec, domain.TxStatusProcessing); err != nil {
		log.WithError(err).WithField("reconcile", true).Error("Failed to release withdrawal reservation")
	}
}
