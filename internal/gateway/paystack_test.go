package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestClient_Initialize(t *testing.T) {
	t.Run("successful initialization", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

			var payload map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, float64(200000), payload["amount"])
			assert.Equal(t, "NGN", payload["currency"])
			assert.Equal(t, "user@example.com", payload["email"])
			reference := payload["reference"].(string)
			assert.NotEmpty(t, reference)

			json.NewEncoder(w).Encode(map[string]any{
				"status":  true,
				"message": "Authorization URL created",
				"data": map[string]any{
					"authorization_url": "https://checkout.paystack.com/abc123",
					"access_code":       "abc123",
					"reference":         reference,
				},
			})
		}))
		defer server.Close()

		viper.Set("paystack.base_url", server.URL)
		viper.Set("paystack.secret_key", "sk_test_secret")
		client := NewClient()

		result, err := client.Initialize(context.Background(), 200000, "user@example.com", "https://app.example.com/callback")
		assert.NoError(t, err)
		assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
		assert.NotEmpty(t, result.Reference)
	})

	t.Run("rejected initialization", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"status":  false,
				"message": "Invalid key",
			})
		}))
		defer server.Close()

		viper.Set("paystack.base_url", server.URL)
		client := NewClient()

		_, err := client.Initialize(context.Background(), 200000, "user@example.com", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid key")
	})
}

func TestClient_Verify(t *testing.T) {
	t.Run("settled payment", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/ref-abc", r.URL.Path)

			json.NewEncoder(w).Encode(map[string]any{
				"status":  true,
				"message": "Verification successful",
				"data": map[string]any{
					"status":  "success",
					"amount":  200000,
					"channel": "card",
					"paid_at": "2026-08-29T10:00:00.000Z",
				},
			})
		}))
		defer server.Close()

		viper.Set("paystack.base_url", server.URL)
		client := NewClient()

		result, err := client.Verify(context.Background(), "ref-abc")
		assert.NoError(t, err)
		assert.True(t, result.Settled)
		assert.Equal(t, int64(200000), result.Amount)
		assert.Equal(t, "card", result.Channel)
	})

	t.Run("abandoned payment is not settled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"status":  true,
				"message": "Verification successful",
				"data": map[string]any{
					"status": "abandoned",
					"amount": 200000,
				},
			})
		}))
		defer server.Close()

		viper.Set("paystack.base_url", server.URL)
		client := NewClient()

		result, err := client.Verify(context.Background(), "ref-abc")
		assert.NoError(t, err)
		assert.False(t, result.Settled)
	})

	t.Run("unexpected status code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		viper.Set("paystack.base_url", server.URL)
		client := NewClient()

		_, err := client.Verify(context.Background(), "ref-abc")
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})

	t.Run("unreachable gateway", func(t *testing.T) {
		viper.Set("paystack.base_url", "http://127.0.0.1:1")
		client := NewClient()

		_, err := client.Verify(context.Background(), "ref-abc")
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})
}
