// Package coinpayments talks to the CoinPayments v1 API and validates its
// IPN callbacks. Every API call is a signed form POST to a single endpoint.
package coinpayments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://www.coinpayments.net/api.php"

type Config struct {
	PublicKey  string
	PrivateKey string
	BaseURL    string
	Timeout    time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logrus.Entry
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logrus.WithField("component", "coinpayments_client"),
	}
}

// APIError carries the "error" field of a failed call.
type APIError struct {
	Command string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinpayments %s: %s", e.Command, e.Message)
}

// Sign returns the hex HMAC-SHA512 of body under key. The same scheme signs
// outgoing API calls and incoming IPNs.
func Sign(body []byte, key string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// call posts cmd with params and decodes the "result" object into out.
func (c *Client) call(ctx context.Context, cmd string, params url.Values, out any) error {
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("version", "1")
	form.Set("cmd", cmd)
	form.Set("key", c.cfg.PublicKey)
	form.Set("format", "json")
	body := form.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HMAC", Sign([]byte(body), c.cfg.PrivateKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coinpayments request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response body failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{"cmd": cmd, "status": resp.StatusCode}).Warn("CoinPayments returned HTTP error")
		return &APIError{Command: cmd, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var envelope struct {
		Error  string          `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("parsing JSON response failed: %w", err)
	}
	if envelope.Error != "ok" {
		c.logger.WithFields(logrus.Fields{"cmd": cmd, "error": envelope.Error}).Warn("CoinPayments call rejected")
		return &APIError{Command: cmd, Message: envelope.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("parsing %s result failed: %w", cmd, err)
	}
	return nil
}
