package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

var ErrPaymentRequestNotFound = fmt.Errorf("payment request: %w", ledger.ErrNotFound)

// PaymentRequest asks whoever scans it to transfer Amount to PayeeEmail.
type PaymentRequest struct {
	Code       string          `json:"code"`
	PayeeID    string          `json:"payeeId"`
	PayeeEmail string          `json:"payeeEmail"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string"`
	Currency   models.Currency `json:"currency"`
	ExpiresAt  time.Time       `json:"expiresAt"`
}

type PaymentRequestService struct {
	redis     *redis.Client
	ttl       time.Duration
	imageSize int
	now       func() time.Time
	newCode   func() (string, error)
}

func NewPaymentRequestService(redisClient *redis.Client, ttl time.Duration, imageSize int) *PaymentRequestService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if imageSize <= 0 {
		imageSize = 256
	}
	return &PaymentRequestService{
		redis:     redisClient,
		ttl:       ttl,
		imageSize: imageSize,
		now:       time.Now,
		newCode:   generateCode,
	}
}

func paymentRequestKey(code string) string {
	return fmt.Sprintf("payreq:%s", code)
}

// Create stores a payment request for payee and renders its code as a base64 PNG.
func (s *PaymentRequestService) Create(ctx context.Context, payee models.Identity, amount decimal.Decimal, c models.Currency) (*PaymentRequest, string, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, "", err
	}
	if !c.Valid() {
		return nil, "", ledger.ErrInvalidCurrency
	}

	code, err := s.newCode()
	if err != nil {
		return nil, "", err
	}

	req := &PaymentRequest{
		Code:       code,
		PayeeID:    payee.ID,
		PayeeEmail: payee.Email,
		Amount:     amount,
		Currency:   c,
		ExpiresAt:  s.now().UTC().Add(s.ttl),
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, "", err
	}
	if err := s.redis.Set(ctx, paymentRequestKey(code), data, s.ttl).Err(); err != nil {
		return nil, "", fmt.Errorf("store payment request: %w", err)
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.imageSize)); err != nil {
		return nil, "", err
	}

	return req, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Resolve returns the request stored under code. Expired codes are not found.
func (s *PaymentRequestService) Resolve(ctx context.Context, code string) (*PaymentRequest, error) {
	data, err := s.redis.Get(ctx, paymentRequestKey(code)).Bytes()
	if err == redis.Nil {
		return nil, ErrPaymentRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load payment request: %w", err)
	}

	var req PaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode payment request: %w", err)
	}
	return &req, nil
}

func generateCode() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
