package ledger

import (
	"fmt"
	"testing"

	"taskinn/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWalletRejectsDuplicates(t *testing.T) {
	db := openDB(t)
	userID := newUser(t, db, "hank")

	wallet, err := CreateWallet(db, userID, domain.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero())

	_, err = CreateWallet(db, userID, domain.CurrencyUSD)
	assert.ErrorIs(t, err, ErrWalletExists)

	_, err = CreateWallet(db, userID, "BTC")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = CreateWallet(db, userID, domain.CurrencyUSDTTRC20)
	require.NoError(t, err)

	wallets, err := ListWallets(db, userID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, domain.CurrencyUSD, wallets[0].Currency)
}

func TestListTransactionsPaginates(t *testing.T) {
	db := openDB(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, Record(db, &domain.WalletTransaction{
			WalletID: 7, Type: domain.TxTypeDeposit, Source: domain.SourceManual,
			ExternalRef: fmt.Sprintf("ref-%d", i), Amount: d("1"), Currency: domain.CurrencyUSD,
		}))
	}
	page, err := ListTransactions(db, 7, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ref-4", page[0].ExternalRef)

	page, err = ListTransactions(db, 7, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ref-0", page[0].ExternalRef)

	none, err := ListTransactions(db, 8, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClampPage(t *testing.T) {
	limit, offset := ClampPage(0, -3)
	assert.Equal(t, DefaultPageLimit, limit)
	assert.Equal(t, 0, offset)

	limit, _ = ClampPage(500, 0)
	assert.Equal(t, MaxPageLimit, limit)
}
