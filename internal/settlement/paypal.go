package settlement

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"

	"taskinn/internal/apperr"
	"taskinn/internal/domain"
	"taskinn/internal/ledger"
	"taskinn/internal/paypal"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const captureStatusCompleted = "COMPLETED"

// CreateDepositOrder starts a PayPal checkout for amount USD. The user id is
// attached as custom_id and checked again on capture.
func (s *Service) CreateDepositOrder(ctx context.Context, userID uint, amount decimal.Decimal) (*paypal.Order, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	order, err := s.paypal.CreateOrder(ctx, amount, domain.CurrencyUSD, strconv.FormatUint(uint64(userID), 10))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("PayPal order creation failed")
		return nil, apperr.Upstream(err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "order_id": order.ID, "amount": amount}).Info("PayPal order created")
	return order, nil
}

// CapturePayPalDeposit captures an approved order and credits the captured
// amount, net of commission, to the user's USD wallet. The amount always comes
// from PayPal, never from the client.
func (s *Service) CapturePayPalDeposit(ctx context.Context, userID uint, orderID string) (*DepositResult, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	capture, err := s.paypal.CaptureOrder(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "order_id": orderID}).Error("PayPal capture failed")
		return nil, apperr.Upstream(err)
	}
	log := s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"order_id":   orderID,
		"capture_id": capture.CaptureID,
		"source":     domain.SourcePayPalCapture,
	})
	if capture.Status != captureStatusCompleted {
		log.WithField("status", capture.Status).Warn("PayPal capture not completed")
		return nil, apperr.Upstream(fmt.Errorf("capture %s is %s", capture.CaptureID, capture.Status))
	}
	if capture.Currency != "" && capture.Currency != domain.CurrencyUSD {
		log.WithField("currency", capture.Currency).Error("PayPal capture in unexpected currency")
		return nil, apperr.Upstream(fmt.Errorf("capture %s settled in %s", capture.CaptureID, capture.Currency))
	}
	if capture.CustomID != "" && capture.CustomID != strconv.FormatUint(uint64(userID), 10) {
		// The money is captured but belongs to whoever created the order.
		log.WithFields(logrus.Fields{"custom_id": capture.CustomID, "reconcile": true}).Error("PayPal capture owner mismatch")
		return nil, ErrCaptureOwner
	}

	result, err := s.settleDeposit(ctx, deposit{
		userID:      userID,
		currency:    domain.CurrencyUSD,
		source:      domain.SourcePayPalCapture,
		ref:         capture.CaptureID,
		gross:       capture.Amount,
		fee:         decimal.Zero,
		description: "PayPal deposit " + orderID,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateSettlement) {
			log.Warn("PayPal capture already settled")
			return nil, ledger.ErrDuplicateSettlement
		}
		log.WithError(err).WithField("reconcile", true).Error("PayPal capture succeeded but settlement failed")
		return nil, classify(err)
	}
	result.CaptureID = capture.CaptureID
	log.WithFields(logrus.Fields{
		"wallet_id":  result.WalletID,
		"gross":      result.DepositedAmount,
		"commission": result.CommissionAmount,
		"net":        result.NetAmount,
	}).Info("PayPal deposit settled")
	return result, nil
}

// PayPalPayout withdraws amount from the user's USD wallet to a PayPal
// account. The full amount is debited and held before PayPal is called; PayPal
// is asked to send amount minus commission, cut to cents. A refused payout
// returns the held amount to the wallet.
func (s *Service) PayPalPayout(ctx context.Context, userID uint, amount decimal.Decimal, email string) (*WithdrawalResult, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	rec, err := s.reserveWithdrawal(ctx, withdrawal{
		userID:      userID,
		currency:    domain.CurrencyUSD,
		source:      domain.SourcePayPalPayout,
		amount:      amount,
		places:      paypalPlaces,
		description: "PayPal payout to " + email,
	})
	if err != nil {
		return nil, err
	}
	split := splitOf(rec)

	log := s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": rec.ID,
		"currency":       domain.CurrencyUSD,
		"gross":          split.Gross,
		"commission":     split.Commission,
		"net":            split.Net,
		"source":         domain.SourcePayPalPayout,
	})
	batch, err := s.paypal.CreatePayout(ctx, paypal.PayoutRequest{
		SenderBatchID: rec.ExternalRef,
		ReceiverEmail: email,
		Amount:        split.Net,
		Currency:      domain.CurrencyUSD,
		Note:          "TaskInn withdrawal",
	})
	if err != nil {
		log.WithError(err).Error("PayPal payout failed")
		s.releaseWithdrawal(ctx, rec, log)
		return nil, apperr.Upstream(err)
	}
	if batch.Status == paypal.BatchStatusDenied || batch.Status == paypal.BatchStatusCanceled {
		log.WithField("batch_id", batch.BatchID).Warn("PayPal payout refused")
		s.releaseWithdrawal(ctx, rec, log)
		return nil, apperr.Upstream(fmt.Errorf("payout batch %s is %s", batch.BatchID, batch.Status))
	}

	status := domain.TxStatusPending
	if batch.Status == paypal.BatchStatusSuccess {
		status = domain.TxStatusCompleted
	}
	log = log.WithFields(logrus.Fields{"batch_id": batch.BatchID, "status": status})
	if err := s.finalizeWithdrawal(ctx, userID, rec, batch.BatchID, status); err != nil {
		log.WithError(err).WithField("reconcile", true).Error("PayPal payout sent but withdrawal record not updated")
		return nil, apperr.Internal(err)
	}

	log.Info("PayPal payout settled")
	return &WithdrawalResult{
		Amount:     split.Gross,
		Commission: split.Commission,
		NetAmount:  split.Net,
		BatchID:    batch.BatchID,
		Status:     status,
	}, nil
}
