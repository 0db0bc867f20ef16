package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
)

// QRService renders the hosted-checkout URL of a pending deposit as a QR
// image so the payment can be finished on a phone, and caches the session
// so a lost browser tab can resume it.
type QRService struct {
	db    *sql.DB
	redis *redis.Client
	ttl   time.Duration
}

func NewQRService(db *sql.DB, redisClient *redis.Client, ttl time.Duration) *QRService {
	return &QRService{
		db:    db,
		redis: redisClient,
		ttl:   ttl,
	}
}

// GenerateDepositQR encodes the authorization URL into a base64 PNG and
// caches the session under the payment reference.
func (s *QRService) GenerateDepositQR(ctx context.Context, reference, authorizationURL string) (string, error) {
	if s.redis != nil {
		session, err := json.Marshal(map[string]any{
			"reference":        reference,
			"authorizationUrl": authorizationURL,
			"createdAt":        time.Now().Unix(),
		})
		if err != nil {
			return "", err
		}

		key := fmt.Sprintf("deposit_session:%s", reference)
		if err := s.redis.Set(ctx, key, session, s.ttl).Err(); err != nil {
			return "", err
		}
	}

	qr, err := qrcode.New(authorizationURL, qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DepositSession returns the cached checkout session for a reference.
func (s *QRService) DepositSession(ctx context.Context, reference string) (map[string]any, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("deposit session cache unavailable")
	}

	key := fmt.Sprintf("deposit_session:%s", reference)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("deposit session not found or expired")
	}
	if err != nil {
		return nil, err
	}

	var session map[string]any
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}

	return session, nil
}
