package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// ErrVerificationFailed means the gateway did not confirm settlement. The
// caller must not credit anything on this error.
var ErrVerificationFailed = errors.New("gateway verification failed")

// InitResult is the hosted-checkout session returned by the gateway.
type InitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult reports whether a payment reference has settled and for how
// much. Amount is the gateway's settled amount in kobo, which is the source
// of truth for crediting.
type VerifyResult struct {
	Settled bool
	Amount  int64
	Channel string
	PaidAt  string
}

// Client talks to a Paystack-compatible hosted payments API. It holds no
// local state beyond configuration.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient() *Client {
	viper.SetDefault("paystack.base_url", "https://api.paystack.co")
	viper.SetDefault("paystack.timeout_seconds", 15)

	return &Client{
		baseURL:   viper.GetString("paystack.base_url"),
		secretKey: viper.GetString("paystack.secret_key"),
		httpClient: &http.Client{
			Timeout: time.Duration(viper.GetInt("paystack.timeout_seconds")) * time.Second,
		},
	}
}

// Initialize opens a hosted payment session for the given amount and returns
// the checkout URL plus the reference that identifies this payment from now
// on. No money has moved when this returns.
func (c *Client) Initialize(ctx context.Context, amount int64, email, callbackURL string) (*InitResult, error) {
	reference := uuid.New().String()

	payload, err := json.Marshal(map[string]any{
		"amount":       amount,
		"email":        email,
		"currency":     "NGN",
		"reference":    reference,
		"callback_url": callbackURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway initialize request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("gateway initialize response invalid: %w", err)
	}

	if !parsed.Status {
		return nil, fmt.Errorf("gateway initialize rejected: %s", parsed.Message)
	}

	return &InitResult{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}

// Verify asks the gateway whether the payment behind reference has settled.
// A transport or API failure is ErrVerificationFailed, never a silent "not
// settled", so callers can distinguish "gateway said no" from "gateway
// unreachable" only by the wrapped cause.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var parsed struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Status  string `json:"status"`
			Amount  int64  `json:"amount"`
			Channel string `json:"channel"`
			PaidAt  string `json:"paid_at"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrVerificationFailed, err)
	}

	if !parsed.Status {
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, parsed.Message)
	}

	return &VerifyResult{
		Settled: parsed.Data.Status == "success",
		Amount:  parsed.Data.Amount,
		Channel: parsed.Data.Channel,
		PaidAt:  parsed.Data.PaidAt,
	}, nil
}
