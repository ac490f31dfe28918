package paypal

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// Payout batch statuses
const (
	BatchStatusSuccess  = "SUCCESS"
	BatchStatusDenied   = "DENIED"
	BatchStatusCanceled = "CANCELED"
)

// PayoutRequest sends Amount to a single PayPal account.
type PayoutRequest struct {
	SenderBatchID string // Our idempotency key, also sent as PayPal-Request-Id
	ReceiverEmail string
	Amount        decimal.Decimal
	Currency      string
	Note          string
}

// PayoutBatch is the processor's view of a payout.
type PayoutBatch struct {
	BatchID string
	Status  string
}

type payoutResponse struct {
	BatchHeader struct {
		PayoutBatchID string `json:"payout_batch_id"`
		BatchStatus   string `json:"batch_status"`
	} `json:"batch_header"`
}

// CreatePayout submits a one-item payout batch.
func (c *Client) CreatePayout(ctx context.Context, req PayoutRequest) (*PayoutBatch, error) {
	body := map[string]any{
		"sender_batch_header": map[string]string{
			"sender_batch_id": req.SenderBatchID,
			"email_subject":   "You have a payout from TaskInn",
		},
		"items": []map[string]any{{
			"recipient_type": "EMAIL",
			"amount":         map[string]string{"value": req.Amount.StringFixed(2), "currency": req.Currency},
			"receiver":       req.ReceiverEmail,
			"note":           req.Note,
			"sender_item_id": req.SenderBatchID,
		}},
	}
	var resp payoutResponse
	headers := map[string]string{"PayPal-Request-Id": req.SenderBatchID}
	if err := c.do(ctx, http.MethodPost, "/v1/payments/payouts", body, &resp, headers); err != nil {
		return nil, err
	}
	return &PayoutBatch{BatchID: resp.BatchHeader.PayoutBatchID, Status: resp.BatchHeader.BatchStatus}, nil
}

// GetPayoutBatch reads the current status of a payout batch.
func (c *Client) GetPayoutBatch(ctx context.Context, batchID string) (*PayoutBatch, error) {
	var resp payoutResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/payouts/"+url.PathEscape(batchID), nil, &resp, nil); err != nil {
		return nil, err
	}
	return &PayoutBatch{BatchID: resp.BatchHeader.PayoutBatchID, Status: resp.BatchHeader.BatchStatus}, nil
}
