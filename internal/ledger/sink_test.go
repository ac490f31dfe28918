package ledger

import (
	"testing"

	"taskinn/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditCommissionCreatesThenAccumulates(t *testing.T) {
	db := openDB(t)

	require.NoError(t, CreditCommission(db, domain.CurrencyUSD, d("5")))
	require.NoError(t, CreditCommission(db, domain.CurrencyUSD, d("2.5")))
	require.NoError(t, CreditCommission(db, domain.CurrencyUSDTTRC20, d("1")))
	require.NoError(t, CreditCommission(db, domain.CurrencyUSD, decimal.Zero))

	wallets, err := AdminWallets(db)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, domain.CurrencyUSD, wallets[0].Currency)
	assert.True(t, wallets[0].Balance.Equal(d("7.5")))
	assert.True(t, wallets[0].TotalEarned.Equal(d("7.5")))
	assert.True(t, wallets[0].TotalWithdrawn.IsZero())
	assert.True(t, wallets[1].TotalEarned.Equal(d("1")))
}

func TestReverseCommission(t *testing.T) {
	db := openDB(t)
	require.NoError(t, CreditCommission(db, domain.CurrencyUSD, d("5")))
	require.NoError(t, ReverseCommission(db, domain.CurrencyUSD, d("2")))

	var admin domain.AdminWallet
	require.NoError(t, db.Where("currency = ?", domain.CurrencyUSD).First(&admin).Error)
	assert.True(t, admin.Balance.Equal(d("3")))
	assert.True(t, admin.TotalEarned.Equal(d("3")))
}

func TestCreditCommissionRejectsNegative(t *testing.T) {
	db := openDB(t)
	assert.ErrorIs(t, CreditCommission(db, domain.CurrencyUSD, d("-1")), ErrInvalidAmount)
}
