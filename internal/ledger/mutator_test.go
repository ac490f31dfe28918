package ledger

import (
	"testing"

	"taskinn/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDeltaCreatesWalletOnFirstCredit(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "alice")

	wallet, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("95"))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(d("95")))
	assert.True(t, wallet.TotalEarned.Equal(d("95")))
	assert.True(t, wallet.TotalWithdrawn.IsZero())

	var count int64
	require.NoError(t, db.Model(&domain.Wallet{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyDeltaSequentialDepositsAccumulate(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "bob")

	_, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("10.5"))
	require.NoError(t, err)
	wallet, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("4.25"))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(d("14.75")), wallet.Balance.String())

	// Currencies are separate wallets.
	usdt, err := ApplyDelta(db, userID, domain.CurrencyUSDTTRC20, d("1"))
	require.NoError(t, err)
	assert.NotEqual(t, wallet.ID, usdt.ID)
	assert.True(t, usdt.Balance.Equal(d("1")))
}

func TestApplyDeltaDebit(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "carol")
	_, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("10"))
	require.NoError(t, err)

	wallet, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("-4"))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(d("6")))
	assert.True(t, wallet.TotalWithdrawn.Equal(d("4")))
	assert.True(t, wallet.TotalEarned.Equal(d("10")))
}

func TestApplyDeltaDebitInsufficientLeavesBalance(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "dave")
	_, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("3"))
	require.NoError(t, err)

	_, err = ApplyDelta(db, userID, domain.CurrencyUSD, d("-5"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	wallet, err := FindUserWallet(db, userID, domain.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(d("3")))
	assert.True(t, wallet.TotalWithdrawn.IsZero())
}

func TestApplyDeltaDebitWithoutWallet(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "erin")

	_, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("-1"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = FindUserWallet(db, userID, domain.CurrencyUSD)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestApplyDeltaRejectsZeroAndUnknownCurrency(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "frank")

	_, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ApplyDelta(db, userID, "EUR", d("1"))
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestRefundWithdrawal(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "gina")
	_, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("10"))
	require.NoError(t, err)
	wallet, err := ApplyDelta(db, userID, domain.CurrencyUSD, d("-10"))
	require.NoError(t, err)

	require.NoError(t, RefundWithdrawal(db, wallet.ID, d("10")))
	wallet, err = FindWallet(db, wallet.ID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(d("10")))
	assert.True(t, wallet.TotalWithdrawn.IsZero())
	assert.True(t, wallet.TotalEarned.Equal(d("10")))

	assert.ErrorIs(t, RefundWithdrawal(db, 9999, d("1")), ErrWalletNotFound)
}
