package coinpayments

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// IPNStatusComplete is the first status value that means the payment is final.
const IPNStatusComplete = 100

var (
	ErrMissingSignature = errors.New("coinpayments: missing HMAC signature")
	ErrBadSignature     = errors.New("coinpayments: HMAC signature mismatch")
)

// IPN is a parsed instant payment notification.
type IPN struct {
	Type     string
	Mode     string
	Merchant string
	TxnID    string
	Address  string
	Status   int
	Amount   decimal.Decimal
	Fee      decimal.Decimal
	Currency string
	Label    string
}

// Final reports whether the processor considers the deposit settled.
func (n *IPN) Final() bool { return n.Status >= IPNStatusComplete }

// VerifyIPN checks the HMAC header against the raw request body.
func VerifyIPN(body []byte, header, secret string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}
	expected := Sign(body, secret)
	if !hmac.Equal([]byte(strings.ToLower(header)), []byte(expected)) {
		return ErrBadSignature
	}
	return nil
}

// ParseIPN decodes the url-encoded IPN body. It only fails on values that
// cannot be read at all; business checks are left to the caller.
func ParseIPN(body []byte) (*IPN, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("coinpayments: malformed IPN body: %w", err)
	}
	n := &IPN{
		Type:     form.Get("ipn_type"),
		Mode:     form.Get("ipn_mode"),
		Merchant: form.Get("merchant"),
		TxnID:    form.Get("txn_id"),
		Address:  form.Get("address"),
		Currency: form.Get("currency"),
		Label:    form.Get("label"),
		Fee:      decimal.Zero,
	}
	if n.Status, err = strconv.Atoi(strings.TrimSpace(form.Get("status"))); err != nil {
		return nil, fmt.Errorf("coinpayments: invalid IPN status %q", form.Get("status"))
	}
	if n.Amount, err = decimal.NewFromString(form.Get("amount")); err != nil {
		return nil, fmt.Errorf("coinpayments: invalid IPN amount %q", form.Get("amount"))
	}
	if fee := form.Get("fee"); fee != "" {
		if n.Fee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("coinpayments: invalid IPN fee %q", fee)
		}
	}
	return n, nil
}
