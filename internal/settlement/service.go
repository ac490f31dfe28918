// Package settlement turns payment events into ledger changes. Deposits are
// confirmed with the processor first and then applied (commission split,
// wallet credit, transaction record, admin commission) in a single database
// transaction. Withdrawals are debited and held in one transaction before the
// processor is called, then finalized with the processor's id or released.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"taskinn/internal/apperr"
	"taskinn/internal/coinpayments"
	"taskinn/internal/domain"
	"taskinn/internal/paypal"
	"taskinn/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PayPalGateway is the subset of the PayPal client settlement needs.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, customID string) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Capture, error)
	CreatePayout(ctx context.Context, req paypal.PayoutRequest) (*paypal.PayoutBatch, error)
	GetPayoutBatch(ctx context.Context, batchID string) (*paypal.PayoutBatch, error)
}

// CoinGateway is the subset of the CoinPayments client settlement needs.
type CoinGateway interface {
	GetCallbackAddress(ctx context.Context, currency, label, ipnURL string) (*coinpayments.CallbackAddress, error)
	CreateWithdrawal(ctx context.Context, amount decimal.Decimal, currency, address, note string) (*coinpayments.Withdrawal, error)
	GetWithdrawalInfo(ctx context.Context, id string) (*coinpayments.WithdrawalInfo, error)
}

type Config struct {
	CoinCurrency string // Processor ticker for USDT on TRON, e.g. USDT.TRC20
	IPNSecret    string
	MerchantID   string // Optional; IPNs for another merchant are dropped when set
	IPNURL       string
}

type Service struct {
	db     *gorm.DB
	rdb    *redis.Client
	paypal PayPalGateway
	coins  CoinGateway
	cfg    Config
	logger *logrus.Entry
}

// NewService builds a settlement service. rdb may be nil.
func NewService(db *gorm.DB, rdb *redis.Client, pp PayPalGateway, coins CoinGateway, cfg Config) *Service {
	if cfg.CoinCurrency == "" {
		cfg.CoinCurrency = "USDT.TRC20"
	}
	return &Service{
		db:     db,
		rdb:    rdb,
		paypal: pp,
		coins:  coins,
		cfg:    cfg,
		logger: logrus.WithField("component", "settlement"),
	}
}

// DepositResult describes a settled deposit.
type DepositResult struct {
	DepositedAmount  decimal.Decimal `json:"depositedAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	Fee              decimal.Decimal `json:"fee,omitempty"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	CaptureID        string          `json:"captureId,omitempty"`
	TxnID            string          `json:"txnId,omitempty"`
	WalletID         uint            `json:"walletId"`
}

// WithdrawalResult describes a withdrawal handed to a processor.
type WithdrawalResult struct {
	Amount       decimal.Decimal `json:"amount"`
	Commission   decimal.Decimal `json:"commission"`
	NetAmount    decimal.Decimal `json:"netAmount"`
	BatchID      string          `json:"batchId,omitempty"`
	WithdrawalID string          `json:"withdrawalId,omitempty"`
	Status       string          `json:"status"`
}

// requireUser fails with ErrUserNotFound unless userID exists.
func (s *Service) requireUser(ctx context.Context, userID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperr.Internal(fmt.Errorf("lookup user %d: %w", userID, err))
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// invalidate drops cached views of the wallet after a balance change.
func (s *Service) invalidate(ctx context.Context, userID, walletID uint) {
	if err := utils.DeleteCache(ctx, s.rdb, utils.WalletsCacheKey(userID)); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate wallet cache")
	}
	if err := utils.DeleteCachePrefix(ctx, s.rdb, utils.TransactionsCachePrefix(walletID)); err != nil {
		s.logger.WithError(err).WithField("wallet_id", walletID).Warn("Failed to invalidate transaction cache")
	}
}

// classify keeps application errors and hides everything else.
func classify(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(err)
}
