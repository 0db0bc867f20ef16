package services

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestQRService_GenerateDepositQR(t *testing.T) {
	t.Run("caches the session and returns a PNG", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewQRService(nil, redisClient, 30*time.Minute)

		redisMock.Regexp().ExpectSet("deposit_session:ref-abc", `.*`, 30*time.Minute).SetVal("OK")

		image, err := service.GenerateDepositQR(context.Background(), "ref-abc", "https://checkout.paystack.com/abc123")
		assert.NoError(t, err)
		assert.NotEmpty(t, image)

		// base64 PNG payload
		decoded, err := base64.StdEncoding.DecodeString(image)
		assert.NoError(t, err)
		assert.Equal(t, byte(0x89), decoded[0])
		assert.Equal(t, []byte("PNG"), decoded[1:4])

		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("works without a cache", func(t *testing.T) {
		service := NewQRService(nil, nil, 30*time.Minute)

		image, err := service.GenerateDepositQR(context.Background(), "ref-abc", "https://checkout.paystack.com/abc123")
		assert.NoError(t, err)
		assert.NotEmpty(t, image)
	})
}

func TestQRService_DepositSession(t *testing.T) {
	t.Run("returns the cached session", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewQRService(nil, redisClient, 30*time.Minute)

		cached := `{"reference":"ref-abc","authorizationUrl":"https://checkout.paystack.com/abc123","createdAt":1756400000}`
		redisMock.ExpectGet("deposit_session:ref-abc").SetVal(cached)

		session, err := service.DepositSession(context.Background(), "ref-abc")
		assert.NoError(t, err)
		assert.Equal(t, "ref-abc", session["reference"])
		assert.Equal(t, "https://checkout.paystack.com/abc123", session["authorizationUrl"])
	})

	t.Run("expired session", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewQRService(nil, redisClient, 30*time.Minute)

		redisMock.ExpectGet("deposit_session:ref-gone").RedisNil()

		_, err := service.DepositSession(context.Background(), "ref-gone")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found or expired")
	})

	t.Run("no cache configured", func(t *testing.T) {
		service := NewQRService(nil, nil, 30*time.Minute)

		_, err := service.DepositSession(context.Background(), "ref-abc")
		assert.Error(t, err)
	})
}
