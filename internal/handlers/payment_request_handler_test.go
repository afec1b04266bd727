package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mW "github.com/walletfc/backend/internal/middleware"
	"github.com/walletfc/backend/internal/models"
	"github.com/walletfc/backend/internal/services"
)

func newRouter(h *PaymentRequestHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/payment-requests", h.Create)
	r.Get("/payment-requests/{code}", h.Resolve)
	return r
}

var payee = models.Identity{ID: "u1", Email: "payee@wallet.test", Role: models.RoleClient}

func TestPaymentRequestHandler_Create(t *testing.T) {
	client, _ := redismock.NewClientMock()
	router := newRouter(NewPaymentRequestHandler(services.NewPaymentRequestService(client, time.Minute, 256)))

	tests := []struct {
		name     string
		body     string
		identity bool
		status   int
	}{
		{"missing identity", `{"amount":"5","currency":"FC"}`, false, http.StatusUnauthorized},
		{"zero amount", `{"amount":"0","currency":"FC"}`, true, http.StatusBadRequest},
		{"bad currency", `{"amount":"5","currency":"GBP"}`, true, http.StatusBadRequest},
		{"malformed", `{"amount":`, true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/payment-requests", bytes.NewBufferString(tt.body))
			if tt.identity {
				r = r.WithContext(mW.WithIdentity(r.Context(), payee))
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestPaymentRequestHandler_Resolve(t *testing.T) {
	client, mock := redismock.NewClientMock()
	router := newRouter(NewPaymentRequestHandler(services.NewPaymentRequestService(client, time.Minute, 256)))

	stored, _ := json.Marshal(services.PaymentRequest{
		Code: "abc", PayeeID: payee.ID, PayeeEmail: payee.Email,
		Amount: decimal.RequireFromString("12.5"), Currency: models.CurrencyUSD,
	})
	mock.ExpectGet("payreq:abc").SetVal(string(stored))
	mock.ExpectGet("payreq:gone").RedisNil()

	r := httptest.NewRequest(http.MethodGet, "/payment-requests/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "payee@wallet.test", body["payeeEmail"])
	assert.Equal(t, "12.50", body["amount"])
	assert.Equal(t, "USD", body["currency"])

	r = httptest.NewRequest(http.MethodGet, "/payment-requests/gone", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
