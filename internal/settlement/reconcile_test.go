package settlement

import (
	"context"
	"testing"

	"taskinn/internal/coinpayments"
	"taskinn/internal/domain"
	"taskinn/internal/paypal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilePendingWithdrawals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, domain.CurrencyUSD, "100")
	f.fund(t, domain.CurrencyUSDTTRC20, "100")

	f.pp.batch = &paypal.PayoutBatch{BatchID: "PB-OK", Status: "PENDING"}
	_, err := f.svc.PayPalPayout(ctx, f.user, d("20"), "worker@example.com")
	require.NoError(t, err)
	f.pp.batch = &paypal.PayoutBatch{BatchID: "PB-DENIED", Status: "PENDING"}
	_, err = f.svc.PayPalPayout(ctx, f.user, d("40"), "worker@example.com")
	require.NoError(t, err)
	f.coins.withdrawal = &coinpayments.Withdrawal{ID: "CW-WAIT", Status: 0}
	_, err = f.svc.CryptoWithdraw(ctx, f.user, d("10"), tronAddress())
	require.NoError(t, err)

	assertDecimal(t, "40", f.wallet(t, domain.CurrencyUSD).Balance)
	assertDecimal(t, "3", f.adminEarned(t, domain.CurrencyUSD))

	f.pp.batches["PB-OK"] = paypal.BatchStatusSuccess
	f.pp.batches["PB-DENIED"] = paypal.BatchStatusDenied
	f.coins.statuses["CW-WAIT"] = coinpayments.WithdrawalPending

	summary, err := f.svc.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{Checked: 3, Completed: 1, Failed: 1, Pending: 1}, *summary)

	statusOf := func(ref string) string {
		var rec domain.WalletTransaction
		require.NoError(t, f.db.Where("external_ref = ?", ref).First(&rec).Error)
		return rec.Status
	}
	assert.Equal(t, domain.TxStatusCompleted, statusOf("PB-OK"))
	assert.Equal(t, domain.TxStatusFailed, statusOf("PB-DENIED"))
	assert.Equal(t, domain.TxStatusPending, statusOf("CW-WAIT"))

	usd := f.wallet(t, domain.CurrencyUSD)
	assertDecimal(t, "80", usd.Balance)
	assertDecimal(t, "20", usd.TotalWithdrawn)
	assertDecimal(t, "1", f.adminEarned(t, domain.CurrencyUSD))

	// A second pass does not refund twice.
	summary, err = f.svc.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)
	assertDecimal(t, "80", f.wallet(t, domain.CurrencyUSD).Balance)
}

func TestReconcileCountsProcessorErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, domain.CurrencyUSD, "10")
	f.pp.batch = &paypal.PayoutBatch{BatchID: "PB-LOST", Status: "PENDING"}
	_, err := f.svc.PayPalPayout(ctx, f.user, d("5"), "worker@example.com")
	require.NoError(t, err)

	summary, err := f.svc.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assertDecimal(t, "5", f.wallet(t, domain.CurrencyUSD).Balance)
}

func TestReconcileRotatesThroughStillPendingWithdrawals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, domain.CurrencyUSD, "100")
	for _, id := range []string{"PB-A", "PB-B"} {
		f.pp.batch = &paypal.PayoutBatch{BatchID: id, Status: "PENDING"}
		_, err := f.svc.PayPalPayout(ctx, f.user, d("10"), "worker@example.com")
		require.NoError(t, err)
		f.pp.batches[id] = "PENDING"
	}

	batch := reconcileBatch
	reconcileBatch = 1
	t.Cleanup(func() { reconcileBatch = batch })

	for i := 0; i < 3; i++ {
		summary, err := f.svc.ReconcilePending(ctx)
		require.NoError(t, err)
		assert.Equal(t, ReconcileSummary{Checked: 1, Pending: 1}, *summary)
	}
	assert.Equal(t, []string{"PB-A", "PB-B", "PB-A"}, f.pp.lookups)
}
