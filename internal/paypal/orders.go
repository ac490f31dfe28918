package paypal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// Order is a created checkout order awaiting payer approval.
type Order struct {
	ID          string `json:"orderId"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approvalUrl"`
}

// Capture is the settled part of a captured order.
type Capture struct {
	OrderID   string
	CaptureID string
	Status    string
	Amount    decimal.Decimal
	Currency  string
	CustomID  string
}

type money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// CreateOrder starts a CAPTURE-intent order. customID travels with the order
// and comes back on capture, tying the money to the user who started it.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, customID string) (*Order, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount":    money{CurrencyCode: currency, Value: amount.StringFixed(2)},
			"custom_id": customID,
		}},
		"application_context": map[string]string{
			"return_url":  c.cfg.ReturnURL,
			"cancel_url":  c.cfg.CancelURL,
			"user_action": "PAY_NOW",
		},
	}
	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []link `json:"links"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp, nil); err != nil {
		return nil, err
	}
	order := &Order{ID: resp.ID, Status: resp.Status}
	for _, l := range resp.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			order.ApprovalURL = l.Href
			break
		}
	}
	return order, nil
}

// CaptureOrder captures an approved order and returns its first capture.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	var resp struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID       string `json:"id"`
					Status   string `json:"status"`
					Amount   money  `json:"amount"`
					CustomID string `json:"custom_id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, &resp, nil); err != nil {
		return nil, err
	}
	if len(resp.PurchaseUnits) == 0 || len(resp.PurchaseUnits[0].Payments.Captures) == 0 {
		return nil, &APIError{StatusCode: http.StatusOK, Name: "NO_CAPTURE", Message: "order " + orderID + " returned no capture"}
	}
	capture := resp.PurchaseUnits[0].Payments.Captures[0]
	amount, err := decimal.NewFromString(capture.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid capture amount %q: %w", capture.Amount.Value, err)
	}
	return &Capture{
		OrderID:   resp.ID,
		CaptureID: capture.ID,
		Status:    capture.Status,
		Amount:    amount,
		Currency:  capture.Amount.CurrencyCode,
		CustomID:  capture.CustomID,
	}, nil
}
