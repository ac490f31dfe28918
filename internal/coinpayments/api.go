package coinpayments

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/shopspring/decimal"
)

// Withdrawal statuses reported by get_withdrawal_info.
const (
	WithdrawalCancelled = -1
	WithdrawalWaiting   = 0
	WithdrawalPending   = 1
	WithdrawalComplete  = 2
)

// CallbackAddress is a deposit address bound to a label.
type CallbackAddress struct {
	Address string `json:"address"`
	PubKey  string `json:"pubkey"`
	DestTag string `json:"dest_tag"`
}

// GetCallbackAddress asks for a deposit address whose IPNs carry label.
func (c *Client) GetCallbackAddress(ctx context.Context, currency, label, ipnURL string) (*CallbackAddress, error) {
	params := url.Values{"currency": {currency}, "label": {label}}
	if ipnURL != "" {
		params.Set("ipn_url", ipnURL)
	}
	var raw struct {
		Address string          `json:"address"`
		PubKey  string          `json:"pubkey"`
		DestTag json.RawMessage `json:"dest_tag"`
	}
	if err := c.call(ctx, "get_callback_address", params, &raw); err != nil {
		return nil, err
	}
	return &CallbackAddress{Address: raw.Address, PubKey: raw.PubKey, DestTag: flexString(raw.DestTag)}, nil
}

// Withdrawal is the immediate answer to create_withdrawal.
type Withdrawal struct {
	ID     string
	Status int
	Amount decimal.Decimal
}

// Completed reports whether the withdrawal went out without waiting for an
// email confirmation. Status 1 from create_withdrawal means it was sent.
func (w *Withdrawal) Completed() bool { return w.Status == WithdrawalPending || w.Status == WithdrawalComplete }

// CreateWithdrawal sends amount of currency to address. auto_confirm skips the
// email confirmation step.
func (c *Client) CreateWithdrawal(ctx context.Context, amount decimal.Decimal, currency, address, note string) (*Withdrawal, error) {
	params := url.Values{
		"amount":       {amount.String()},
		"currency":     {currency},
		"address":      {address},
		"auto_confirm": {"1"},
	}
	if note != "" {
		params.Set("note", note)
	}
	var raw struct {
		ID     string          `json:"id"`
		Status int             `json:"status"`
		Amount json.RawMessage `json:"amount"`
	}
	if err := c.call(ctx, "create_withdrawal", params, &raw); err != nil {
		return nil, err
	}
	w := &Withdrawal{ID: raw.ID, Status: raw.Status, Amount: amount}
	if v, err := decimal.NewFromString(flexString(raw.Amount)); err == nil {
		w.Amount = v
	}
	return w, nil
}

// WithdrawalInfo is the processor's current view of a withdrawal.
type WithdrawalInfo struct {
	ID     string
	Status int
}

// GetWithdrawalInfo reads a withdrawal's status.
func (c *Client) GetWithdrawalInfo(ctx context.Context, id string) (*WithdrawalInfo, error) {
	var raw struct {
		Status int `json:"status"`
	}
	if err := c.call(ctx, "get_withdrawal_info", url.Values{"id": {id}}, &raw); err != nil {
		return nil, err
	}
	return &WithdrawalInfo{ID: id, Status: raw.Status}, nil
}

// flexString reads a JSON value that the API sends as string or number.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}
