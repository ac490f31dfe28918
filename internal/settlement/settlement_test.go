package settlement

import (
	"context"
	"errors"
	"testing"

	"taskinn/internal/apperr"
	"taskinn/internal/coinpayments"
	"taskinn/internal/dbtest"
	"taskinn/internal/domain"
	"taskinn/internal/ledger"
	"taskinn/internal/paypal"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testIPNSecret = "ipn-secret"

type fakePayPal struct {
	order      *paypal.Order
	orderErr   error
	capture    *paypal.Capture
	captureErr error
	batch      *paypal.PayoutBatch
	payoutErr  error
	payouts    []paypal.PayoutRequest
	batches    map[string]string
	lookups    []string
	onPayout   func() // Runs once while the payout is in flight
}

func (f *fakePayPal) CreateOrder(_ context.Context, amount decimal.Decimal, currency, customID string) (*paypal.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.order, nil
}

func (f *fakePayPal) CaptureOrder(_ context.Context, orderID string) (*paypal.Capture, error) {
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	c := *f.capture
	return &c, nil
}

func (f *fakePayPal) CreatePayout(_ context.Context, req paypal.PayoutRequest) (*paypal.PayoutBatch, error) {
	f.payouts = append(f.payouts, req)
	if hook := f.onPayout; hook != nil {
		f.onPayout = nil
		hook()
	}
	if f.payoutErr != nil {
		return nil, f.payoutErr
	}
	b := *f.batch
	return &b, nil
}

func (f *fakePayPal) GetPayoutBatch(_ context.Context, batchID string) (*paypal.PayoutBatch, error) {
	f.lookups = append(f.lookups, batchID)
	status, ok := f.batches[batchID]
	if !ok {
		return nil, errors.New("batch not found")
	}
	return &paypal.PayoutBatch{BatchID: batchID, Status: status}, nil
}

type coinWithdrawal struct {
	amount   decimal.Decimal
	currency string
	address  string
}

type fakeCoins struct {
	address     *coinpayments.CallbackAddress
	labels      []string
	withdrawal  *coinpayments.Withdrawal
	withdrawErr error
	withdrawals []coinWithdrawal
	statuses    map[string]int
	onWithdraw  func() // Runs once while the withdrawal is in flight
}

func (f *fakeCoins) GetCallbackAddress(_ context.Context, currency, label, ipnURL string) (*coinpayments.CallbackAddress, error) {
	f.labels = append(f.labels, label)
	return f.address, nil
}

func (f *fakeCoins) CreateWithdrawal(_ context.Context, amount decimal.Decimal, currency, address, note string) (*coinpayments.Withdrawal, error) {
	f.withdrawals = append(f.withdrawals, coinWithdrawal{amount: amount, currency: currency, address: address})
	if hook := f.onWithdraw; hook != nil {
		f.onWithdraw = nil
		hook()
	}
	if f.withdrawErr != nil {
		return nil, f.withdrawErr
	}
	w := *f.withdrawal
	return &w, nil
}

func (f *fakeCoins) GetWithdrawalInfo(_ context.Context, id string) (*coinpayments.WithdrawalInfo, error) {
	status, ok := f.statuses[id]
	if !ok {
		return nil, errors.New("withdrawal not found")
	}
	return &coinpayments.WithdrawalInfo{ID: id, Status: status}, nil
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	pp    *fakePayPal
	coins *fakeCoins
	user  uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	user := domain.User{Username: "worker", Password: "x", Role: domain.RoleWorker}
	require.NoError(t, db.Create(&user).Error)

	pp := &fakePayPal{batches: map[string]string{}}
	coins := &fakeCoins{statuses: map[string]int{}}
	svc := NewService(db, nil, pp, coins, Config{CoinCurrency: "USDT.TRC20", IPNSecret: testIPNSecret, MerchantID: "M1"})
	return &fixture{svc: svc, db: db, pp: pp, coins: coins, user: user.ID}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func (f *fixture) wallet(t *testing.T, currency string) *domain.Wallet {
	t.Helper()
	w, err := ledger.FindUserWallet(f.db, f.user, currency)
	require.NoError(t, err)
	return w
}

func (f *fixture) adminEarned(t *testing.T, currency string) decimal.Decimal {
	t.Helper()
	wallets, err := ledger.AdminWallets(f.db)
	require.NoError(t, err)
	for _, w := range wallets {
		if w.Currency == currency {
			return w.TotalEarned
		}
	}
	return decimal.Zero
}

func (f *fixture) txCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.WalletTransaction{}).Count(&n).Error)
	return n
}

func (f *fixture) fund(t *testing.T, currency, amount string) {
	t.Helper()
	_, err := f.svc.AddFunds(context.Background(), f.user, currency, d(amount))
	require.NoError(t, err)
}

func (f *fixture) withdrawalStatuses(t *testing.T, source string) []string {
	t.Helper()
	var statuses []string
	require.NoError(t, f.db.Model(&domain.WalletTransaction{}).
		Where("type = ? AND source = ?", domain.TxTypeWithdrawal, source).
		Order("id").Pluck("status", &statuses).Error)
	return statuses
}

func kindOf(err error) apperr.Kind {
	return apperr.From(err).Kind
}
