// Package paypal is a minimal client for the PayPal REST endpoints used to
// fund wallets (Orders v2) and pay workers out (Payouts v1).
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"
)

// BaseURLForMode maps PAYPAL_MODE to an API host.
func BaseURLForMode(mode string) string {
	if mode == "live" {
		return LiveBaseURL
	}
	return SandboxBaseURL
}

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	ReturnURL    string
	CancelURL    string
	Timeout      time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logrus.Entry

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxBaseURL
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logrus.WithField("component", "paypal_client"),
	}
}

// APIError is a non-2xx PayPal response.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("paypal: %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("paypal: HTTP %d: %s", e.StatusCode, e.Message)
}

// accessToken returns a cached OAuth2 client-credentials token, refreshing it
// a minute before PayPal expires it.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request failed: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "empty access token"}
	}
	c.token = out.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// do sends an authenticated JSON request.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, headers map[string]string) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request failed: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response body failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON response failed: %w", err)
	}
	return nil
}

func (c *Client) handleErrorResponse(status int, body []byte) error {
	var payload struct {
		Name             string `json:"name"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Details          []struct {
			Issue       string `json:"issue"`
			Description string `json:"description"`
		} `json:"details"`
	}
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Name != "":
			apiErr.Name = payload.Name
			apiErr.Message = payload.Message
			if len(payload.Details) > 0 && payload.Details[0].Issue != "" {
				apiErr.Name = payload.Details[0].Issue // The issue is the actionable part, e.g. ORDER_ALREADY_CAPTURED
			}
		case payload.Error != "":
			apiErr.Name = payload.Error
			apiErr.Message = payload.ErrorDescription
		}
	}
	c.logger.WithFields(logrus.Fields{"status": status, "name": apiErr.Name}).Warn("PayPal returned an error")
	return apiErr
}
