package ledger

import (
	"errors"
	"fmt"

	"taskinn/internal/domain"

	"gorm.io/gorm"
)

// Record appends rec to the ledger. Withdrawals are stored negative and
// deposits positive whatever sign the caller used.
//
// Every settlement path is de-duplicated on (Source, ExternalRef): a replay
// returns ErrDuplicateSettlement and inserts nothing. The unique index on the
// pair backs the check when two replays race.
func Record(tx *gorm.DB, rec *domain.WalletTransaction) error {
	if rec.Source == "" || rec.ExternalRef == "" {
		return errors.New("ledger: transaction source and external reference are required")
	}
	switch rec.Type {
	case domain.TxTypeDeposit:
		rec.Amount = rec.Amount.Abs()
	case domain.TxTypeWithdrawal:
		rec.Amount = rec.Amount.Abs().Neg()
	default:
		return fmt.Errorf("ledger: unknown transaction type %q", rec.Type)
	}
	if rec.Status == "" {
		rec.Status = domain.TxStatusCompleted
	}

	seen, err := HasSettlement(tx, rec.Source, rec.ExternalRef)
	if err != nil {
		return err
	}
	if seen {
		return ErrDuplicateSettlement
	}
	if err := tx.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSettlement
		}
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// HasSettlement reports whether (source, externalRef) was already recorded.
func HasSettlement(tx *gorm.DB, source, externalRef string) (bool, error) {
	var count int64
	err := tx.Model(&domain.WalletTransaction{}).
		Where("source = ? AND external_ref = ?", source, externalRef).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check settlement %s/%s: %w", source, externalRef, err)
	}
	return count > 0, nil
}
