package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

func TestPaymentRequestService_Create(t *testing.T) {
	client, mock := redismock.NewClientMock()
	service := NewPaymentRequestService(client, 10*time.Minute, 128)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }
	service.newCode = func() (string, error) { return "code123", nil }

	payee := models.Identity{ID: "u1", Email: "payee@wallet.test", Role: models.RoleClient}
	expected := PaymentRequest{
		Code:       "code123",
		PayeeID:    "u1",
		PayeeEmail: "payee@wallet.test",
		Amount:     decimal.RequireFromString("25.50"),
		Currency:   models.CurrencyFC,
		ExpiresAt:  fixed.Add(10 * time.Minute),
	}
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	mock.ExpectSet("payreq:code123", data, 10*time.Minute).SetVal("OK")

	req, image, err := service.Create(context.Background(), payee, decimal.RequireFromString("25.50"), models.CurrencyFC)
	require.NoError(t, err)
	assert.Equal(t, "code123", req.Code)
	assert.Equal(t, expected.ExpiresAt, req.ExpiresAt)

	raw, err := base64.StdEncoding.DecodeString(image)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestService_CreateRejectsBadInput(t *testing.T) {
	client, mock := redismock.NewClientMock()
	service := NewPaymentRequestService(client, 0, 0)
	payee := models.Identity{ID: "u1", Email: "payee@wallet.test"}

	_, _, err := service.Create(context.Background(), payee, decimal.RequireFromString("0.001"), models.CurrencyFC)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, _, err = service.Create(context.Background(), payee, decimal.NewFromInt(5), "EUR")
	assert.ErrorIs(t, err, ledger.ErrInvalidCurrency)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestService_Resolve(t *testing.T) {
	client, mock := redismock.NewClientMock()
	service := NewPaymentRequestService(client, time.Minute, 256)

	stored := PaymentRequest{Code: "abc", PayeeID: "u1", PayeeEmail: "payee@wallet.test", Amount: decimal.NewFromInt(7), Currency: models.CurrencyUSD}
	data, _ := json.Marshal(stored)
	mock.ExpectGet("payreq:abc").SetVal(string(data))
	mock.ExpectGet("payreq:expired").RedisNil()

	req, err := service.Resolve(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "payee@wallet.test", req.PayeeEmail)
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(7)))

	_, err = service.Resolve(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrPaymentRequestNotFound)
	assert.Equal(t, 404, StatusFor(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
