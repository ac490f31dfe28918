package coinpayments

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, Sign(body, "private"), r.Header.Get("HMAC"))
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "public", form.Get("key"))
		assert.Equal(t, "1", form.Get("version"))
		result, ok := results[form.Get("cmd")]
		if !ok {
			_, _ = w.Write([]byte(`{"error":"Invalid command","result":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"ok","result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCalls(t *testing.T) {
	srv := newFakeAPI(t, map[string]string{
		"get_callback_address": `{"address":"TAddr","pubkey":"","dest_tag":123}`,
		"create_withdrawal":    `{"id":"CWID","status":1,"amount":"47.50000000"}`,
		"get_withdrawal_info":  `{"status":2}`,
	})
	client := NewClient(Config{PublicKey: "public", PrivateKey: "private", BaseURL: srv.URL})
	ctx := context.Background()

	addr, err := client.GetCallbackAddress(ctx, "USDT.TRC20", "user_7", "https://example.com/ipn")
	require.NoError(t, err)
	assert.Equal(t, "TAddr", addr.Address)
	assert.Equal(t, "123", addr.DestTag)

	w, err := client.CreateWithdrawal(ctx, decimal.RequireFromString("47.5"), "USDT.TRC20", "TAddr", "")
	require.NoError(t, err)
	assert.Equal(t, "CWID", w.ID)
	assert.True(t, w.Completed())
	assert.True(t, w.Amount.Equal(decimal.RequireFromString("47.5")))

	info, err := client.GetWithdrawalInfo(ctx, "CWID")
	require.NoError(t, err)
	assert.Equal(t, WithdrawalComplete, info.Status)
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := newFakeAPI(t, map[string]string{})
	client := NewClient(Config{PublicKey: "public", PrivateKey: "private", BaseURL: srv.URL})

	_, err := client.GetWithdrawalInfo(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid command", apiErr.Message)
}

func TestVerifyIPN(t *testing.T) {
	body := []byte("txn_id=abc&status=100&amount=50")
	sig := Sign(body, "ipn-secret")

	assert.NoError(t, VerifyIPN(body, sig, "ipn-secret"))
	assert.ErrorIs(t, VerifyIPN(body, "", "ipn-secret"), ErrMissingSignature)
	assert.ErrorIs(t, VerifyIPN(body, sig, "other"), ErrBadSignature)
	assert.ErrorIs(t, VerifyIPN([]byte("txn_id=abc&status=100&amount=500"), sig, "ipn-secret"), ErrBadSignature)
}

func TestParseIPN(t *testing.T) {
	body := []byte("ipn_type=deposit&ipn_mode=hmac&merchant=M1&txn_id=T1&address=TAddr&status=100&amount=50&fee=1&currency=USDT.TRC20&label=user_7")
	n, err := ParseIPN(body)
	require.NoError(t, err)
	assert.Equal(t, "deposit", n.Type)
	assert.Equal(t, "T1", n.TxnID)
	assert.Equal(t, "user_7", n.Label)
	assert.True(t, n.Final())
	assert.True(t, n.Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, n.Fee.Equal(decimal.NewFromInt(1)))

	n, err = ParseIPN([]byte("txn_id=T2&status=50&amount=10"))
	require.NoError(t, err)
	assert.False(t, n.Final())
	assert.True(t, n.Fee.IsZero())

	_, err = ParseIPN([]byte("txn_id=T3&status=abc&amount=10"))
	assert.Error(t, err)
	_, err = ParseIPN([]byte("txn_id=T3&status=100&amount=ten"))
	assert.Error(t, err)
}

func TestValidateTRC20Address(t *testing.T) {
	valid := base58.CheckEncode(make([]byte, 20), tronAddressVersion)
	require.Len(t, valid, 34)
	assert.NoError(t, ValidateTRC20Address(valid))

	bitcoin := base58.CheckEncode(make([]byte, 20), 0x00)
	assert.ErrorIs(t, ValidateTRC20Address(bitcoin), ErrInvalidAddress)

	corrupted := []byte(valid)
	if corrupted[10] == 'a' {
		corrupted[10] = 'b'
	} else {
		corrupted[10] = 'a'
	}
	assert.ErrorIs(t, ValidateTRC20Address(string(corrupted)), ErrInvalidAddress)
	assert.ErrorIs(t, ValidateTRC20Address(""), ErrInvalidAddress)
}
