// Package earnings serves the worker-facing payments view: task earnings,
// bonuses and referrals credited by operators, and withdrawal requests that
// an operator completes by hand. It does not touch wallets.
package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskinn/internal/apperr"
	"taskinn/internal/domain"
	"taskinn/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientEarnings = apperr.Validation("insufficient_balance", "Withdrawal exceeds available earnings")
	ErrInvalidPaymentType   = apperr.Validation("invalid_payment_type", "Payment type must be earning, bonus or referral")
	ErrPaymentNotFound      = apperr.NotFound("payment_not_found", "Payment not found")
	ErrPaymentCompleted     = apperr.Conflict("payment_already_completed", "Payment already completed")
	ErrUserNotFound         = apperr.NotFound("user_not_found", "User not found")
)

// Stats summarises a user's payments.
type Stats struct {
	TotalEarned        decimal.Decimal `json:"totalEarned"`    // Completed earnings, bonuses and referrals
	TotalWithdrawn     decimal.Decimal `json:"totalWithdrawn"` // Completed withdrawals
	PendingEarnings    decimal.Decimal `json:"pendingEarnings"`
	PendingWithdrawals decimal.Decimal `json:"pendingWithdrawals"`
	AvailableBalance   decimal.Decimal `json:"availableBalance"` // TotalEarned - TotalWithdrawn
	Requestable        decimal.Decimal `json:"requestable"`      // AvailableBalance - PendingWithdrawals
}

type Service struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, logger: logrus.WithField("component", "earnings")}
}

// Stats aggregates the user's payments by type and status.
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	stats, err := stats(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

func stats(tx *gorm.DB, userID uint) (*Stats, error) {
	var rows []struct {
		Type   string
		Status string
		Total  decimal.Decimal
	}
	err := tx.Model(&domain.Payment{}).
		Select("type, status, SUM(amount) AS total").
		Where("user_id = ?", userID).
		Group("type, status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate payments: %w", err)
	}

	st := &Stats{
		TotalEarned:        decimal.Zero,
		TotalWithdrawn:     decimal.Zero,
		PendingEarnings:    decimal.Zero,
		PendingWithdrawals: decimal.Zero,
	}
	for _, r := range rows {
		switch {
		case domain.IsCredit(r.Type) && r.Status == domain.PaymentCompleted:
			st.TotalEarned = st.TotalEarned.Add(r.Total)
		case domain.IsCredit(r.Type):
			st.PendingEarnings = st.PendingEarnings.Add(r.Total)
		case r.Type == domain.PaymentWithdrawal && r.Status == domain.PaymentCompleted:
			st.TotalWithdrawn = st.TotalWithdrawn.Add(r.Total)
		case r.Type == domain.PaymentWithdrawal:
			st.PendingWithdrawals = st.PendingWithdrawals.Add(r.Total)
		}
	}
	st.AvailableBalance = st.TotalEarned.Sub(st.TotalWithdrawn)
	st.Requestable = st.AvailableBalance.Sub(st.PendingWithdrawals)
	return st, nil
}

// RequestWithdrawal files a pending withdrawal. Pending requests count
// against the available balance so they cannot be stacked past it.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	var payment *domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the user row so two requests for one user are checked in turn.
		var user domain.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		st, err := stats(tx, userID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(st.Requestable) {
			return ErrInsufficientEarnings
		}
		payment = &domain.Payment{
			UserID:      userID,
			Type:        domain.PaymentWithdrawal,
			Amount:      amount,
			Status:      domain.PaymentPending,
			Description: "Withdrawal request",
		}
		return tx.Create(payment).Error
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "payment_id": payment.ID, "amount": amount}).Info("Withdrawal requested")
	return payment, nil
}

// List returns the user's payments, newest first.
func (s *Service) List(ctx context.Context, userID uint, limit, offset int) ([]domain.Payment, error) {
	limit, offset = ledger.ClampPage(limit, offset)
	var payments []domain.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}

// Grant records a completed earning, bonus or referral for userID.
func (s *Service) Grant(ctx context.Context, userID uint, paymentType string, amount decimal.Decimal, description string) (*domain.Payment, error) {
	if !domain.IsCredit(paymentType) {
		return nil, ErrInvalidPaymentType
	}
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count == 0 {
		return nil, ErrUserNotFound
	}
	now := time.Now()
	payment := &domain.Payment{
		UserID:      userID,
		Type:        paymentType,
		Amount:      amount,
		Status:      domain.PaymentCompleted,
		Description: description,
		CompletedAt: &now,
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("create payment: %w", err))
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "payment_id": payment.ID, "type": paymentType, "amount": amount}).Info("Payment granted")
	return payment, nil
}

// Complete marks a pending payment completed.
func (s *Service) Complete(ctx context.Context, paymentID uint) (*domain.Payment, error) {
	db := s.db.WithContext(ctx)
	now := time.Now()
	res := db.Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentPending).
		Updates(map[string]any{"status": domain.PaymentCompleted, "completed_at": now, "updated_at": now})
	if res.Error != nil {
		return nil, apperr.Internal(fmt.Errorf("complete payment: %w", res.Error))
	}

	var payment domain.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, apperr.Internal(err)
	}
	if res.RowsAffected == 0 {
		return nil, ErrPaymentCompleted
	}
	s.logger.WithFields(logrus.Fields{"user_id": payment.UserID, "payment_id": payment.ID, "type": payment.Type}).Info("Payment completed")
	return &payment, nil
}
