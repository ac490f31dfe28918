package settlement

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"taskinn/internal/apperr"
	"taskinn/internal/coinpayments"
	"taskinn/internal/domain"
	"taskinn/internal/ledger"
	"taskinn/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	labelPrefix = "user_"
	ipnLockTTL  = 30 * time.Second
)

// UserLabel is the deposit-address label that routes IPNs back to userID.
func UserLabel(userID uint) string {
	return labelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// parseLabel is the inverse of UserLabel.
func parseLabel(label string) (uint, bool) {
	raw, ok := strings.CutPrefix(label, labelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// DepositAddress is where a user sends USDT to fund their wallet.
type DepositAddress struct {
	Address string `json:"address"`
	PubKey  string `json:"pubkey"`
	DestTag string `json:"destTag"`
}

// CreateDepositAddress asks CoinPayments for a deposit address labelled for userID.
func (s *Service) CreateDepositAddress(ctx context.Context, userID uint) (*DepositAddress, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	addr, err := s.coins.GetCallbackAddress(ctx, s.cfg.CoinCurrency, UserLabel(userID), s.cfg.IPNURL)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("CoinPayments address request failed")
		return nil, apperr.Upstream(err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "address": addr.Address}).Info("Deposit address issued")
	return &DepositAddress{Address: addr.Address, PubKey: addr.PubKey, DestTag: addr.DestTag}, nil
}

// CryptoWithdraw sends amount minus commission to a TRC20 address. The full
// amount is debited from the user's USDT wallet and held before CoinPayments is
// called, and returned if CoinPayments refuses the withdrawal.
func (s *Service) CryptoWithdraw(ctx context.Context, userID uint, amount decimal.Decimal, address string) (*WithdrawalResult, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := coinpayments.ValidateTRC20Address(address); err != nil {
		return nil, ErrInvalidAddress
	}
	rec, err := s.reserveWithdrawal(ctx, withdrawal{
		userID:      userID,
		currency:    domain.CurrencyUSDTTRC20,
		source:      domain.SourceCoinPaymentsWithdrawal,
		amount:      amount,
		places:      tronUSDTPlaces,
		description: "USDT withdrawal to " + address,
	})
	if err != nil {
		return nil, err
	}
	split := splitOf(rec)

	log := s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": rec.ID,
		"currency":       domain.CurrencyUSDTTRC20,
		"gross":          split.Gross,
		"commission":     split.Commission,
		"net":            split.Net,
		"source":         domain.SourceCoinPaymentsWithdrawal,
	})
	w, err := s.coins.CreateWithdrawal(ctx, split.Net, s.cfg.CoinCurrency, address, "TaskInn withdrawal")
	if err != nil {
		log.WithError(err).Error("CoinPayments withdrawal failed")
		s.releaseWithdrawal(ctx, rec, log)
		return nil, apperr.Upstream(err)
	}

	status := domain.TxStatusPending
	if w.Completed() {
		status = domain.TxStatusCompleted
	}
	log = log.WithFields(logrus.Fields{"withdrawal_id": w.ID, "status": status})
	if err := s.finalizeWithdrawal(ctx, userID, rec, w.ID, status); err != nil {
		log.WithError(err).WithField("reconcile", true).Error("CoinPayments withdrawal sent but withdrawal record not updated")
		return nil, apperr.Internal(err)
	}

	log.Info("CoinPayments withdrawal settled")
	return &WithdrawalResult{
		Amount:       split.Gross,
		Commission:   split.Commission,
		NetAmount:    split.Net,
		WithdrawalID: w.ID,
		Status:       status,
	}, nil
}

// IPN outcomes. Everything except an authentication failure or a local error
// is acknowledged so the processor stops retrying.
const (
	IPNCredited  = "credited"
	IPNPending   = "pending"
	IPNDuplicate = "duplicate"
	IPNIgnored   = "ignored"
)

// IPNOutcome reports what HandleIPN did with a notification.
type IPNOutcome struct {
	Result  string
	TxnID   string
	Reason  string
	Deposit *DepositResult
}

// HandleIPN verifies and settles a CoinPayments deposit notification.
// Nothing in body is read before the signature over it checks out. A local
// failure returns an error so the processor retries; the retry is safe
// because settlement is de-duplicated on txn_id.
func (s *Service) HandleIPN(ctx context.Context, body []byte, signature string) (*IPNOutcome, error) {
	if s.cfg.IPNSecret == "" {
		s.logger.Error("IPN received but no IPN secret is configured")
		return nil, ErrInvalidSignature
	}
	if err := coinpayments.VerifyIPN(body, signature, s.cfg.IPNSecret); err != nil {
		s.logger.WithError(err).Warn("Rejected IPN")
		return nil, ErrInvalidSignature
	}

	n, err := coinpayments.ParseIPN(body)
	if err != nil {
		s.logger.WithError(err).Warn("Dropping malformed IPN")
		return &IPNOutcome{Result: IPNIgnored, Reason: "malformed"}, nil
	}
	log := s.logger.WithFields(logrus.Fields{
		"txn_id":   n.TxnID,
		"status":   n.Status,
		"label":    n.Label,
		"amount":   n.Amount,
		"fee":      n.Fee,
		"currency": n.Currency,
		"source":   domain.SourceCoinPaymentsDeposit,
	})
	ignore := func(reason string) (*IPNOutcome, error) {
		log.WithField("reason", reason).Warn("Dropping IPN")
		return &IPNOutcome{Result: IPNIgnored, TxnID: n.TxnID, Reason: reason}, nil
	}

	switch {
	case n.Type != "" && n.Type != "deposit":
		return ignore("ipn_type " + n.Type)
	case s.cfg.MerchantID != "" && n.Merchant != s.cfg.MerchantID:
		return ignore("merchant mismatch")
	case n.TxnID == "":
		return ignore("missing txn_id")
	}
	if !n.Final() {
		log.Info("IPN not final yet")
		return &IPNOutcome{Result: IPNPending, TxnID: n.TxnID}, nil
	}
	if n.Currency != "" && n.Currency != s.cfg.CoinCurrency {
		return ignore("unexpected currency")
	}
	userID, ok := parseLabel(n.Label)
	if !ok {
		return ignore("invalid label")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ignore("unknown user")
		}
		return nil, err
	}

	lockKey := "ipn:lock:" + n.TxnID
	locked, err := utils.AcquireLock(ctx, s.rdb, lockKey, ipnLockTTL)
	if err != nil {
		// The unique (source, external_ref) index still stops double credits.
		log.WithError(err).Warn("IPN lock unavailable, relying on database constraint")
		locked = true
	}
	if !locked {
		log.Info("IPN already being settled")
		return &IPNOutcome{Result: IPNDuplicate, TxnID: n.TxnID}, nil
	}
	defer func() {
		if err := utils.ReleaseLock(context.WithoutCancel(ctx), s.rdb, lockKey); err != nil {
			log.WithError(err).Warn("Failed to release IPN lock")
		}
	}()

	result, err := s.settleDeposit(ctx, deposit{
		userID:      userID,
		currency:    domain.CurrencyUSDTTRC20,
		source:      domain.SourceCoinPaymentsDeposit,
		ref:         n.TxnID,
		gross:       n.Amount,
		fee:         n.Fee,
		description: "USDT deposit to " + n.Address,
	})
	switch {
	case errors.Is(err, ledger.ErrDuplicateSettlement):
		log.Info("IPN already settled")
		return &IPNOutcome{Result: IPNDuplicate, TxnID: n.TxnID}, nil
	case errors.Is(err, ledger.ErrInvalidAmount):
		return ignore("amount does not cover commission and fee")
	case err != nil:
		log.WithError(err).Error("IPN settlement failed")
		return nil, classify(err)
	}

	result.TxnID = n.TxnID
	log.WithFields(logrus.Fields{
		"user_id":    userID,
		"wallet_id":  result.WalletID,
		"commission": result.CommissionAmount,
		"net":        result.NetAmount,
	}).Info("Crypto deposit settled")
	return &IPNOutcome{Result: IPNCredited, TxnID: n.TxnID, Deposit: result}, nil
}
