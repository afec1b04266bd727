package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

type TestStruct struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"required,email"`
	Age   int    `validate:"required,gte=18"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		valid := TestStruct{
			Name:  "John Doe",
			Email: "john@example.com",
			Age:   25,
		}

		err := vh.ValidateStruct(&valid)
		assert.NoError(t, err)
	})

	t.Run("invalid struct - missing required fields", func(t *testing.T) {
		invalid := TestStruct{
			Name: "J", // Too short
			// Email missing
			Age: 16, // Too young
		}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 3) // Name, Email, Age errors
	})

	t.Run("invalid email format", func(t *testing.T) {
		invalid := TestStruct{
			Name:  "John Doe",
			Email: "invalid-email",
			Age:   25,
		}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "Email", validationErrors[0].Field())
		assert.Equal(t, "email", validationErrors[0].Tag())
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		invalid := TestStruct{
			Name:  "J",
			Email: "invalid-email",
			Age:   16,
		}

		validationErr := vh.ValidateStruct(&invalid)
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Error)
		assert.NotNil(t, response.Details)
		assert.Contains(t, response.Details, "Name")
		assert.Contains(t, response.Details, "Email")
		assert.Contains(t, response.Details, "Age")
	})

	t.Run("bad request error", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Invalid request", response.Error)
	})

	t.Run("unauthorized error", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Unauthorized access", http.StatusUnauthorized, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Unauthorized access", response.Error)
	})
}

func TestNewValidationHelper(t *testing.T) {
	vh := NewValidationHelper()
	assert.NotNil(t, vh)
	assert.NotNil(t, vh.validator)
}

func TestValidationHelper_Decimal(t *testing.T) {
	vh := NewValidationHelper()

	type amountRequest struct {
		Amount   decimal.Decimal `validate:"required,gt=0"`
		Currency models.Currency `validate:"required,oneof=FC USD"`
	}

	tests := []struct {
		name   string
		amount string
		c      models.Currency
		valid  bool
	}{
		{"positive", "0.01", models.CurrencyFC, true},
		{"zero", "0", models.CurrencyFC, false},
		{"negative", "-10", models.CurrencyUSD, false},
		{"unsupported currency", "10", "EUR", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vh.ValidateStruct(&amountRequest{Amount: decimal.RequireFromString(tt.amount), Currency: tt.c})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ledger.ErrWalletNotFound, http.StatusNotFound},
		{ErrPaymentRequestNotFound, http.StatusNotFound},
		{ledger.ErrUnauthorized, http.StatusUnauthorized},
		{ledger.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("transfer: retries exhausted: %w", ledger.ErrConflict), http.StatusConflict},
		{ledger.ErrDuplicateEmail, http.StatusConflict},
		{&ledger.InsufficientFundsError{}, http.StatusUnprocessableEntity},
		{ledger.ErrOutOfStock, http.StatusUnprocessableEntity},
		{ledger.ErrInvalidAmount, http.StatusBadRequest},
		{ledger.ErrInvalidCurrency, http.StatusBadRequest},
		{ledger.ErrSelfTransferForbidden, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}

func TestSendLedgerError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()

	SendLedgerError(w, "TEST", errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "An Internal Error Occurred", response.Error)
}

func TestValidationHelper_DecodeRequest(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid body", func(t *testing.T) {
		var dst TestStruct
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"Name":"John","Email":"john@example.com","Age":30}`))
		w := httptest.NewRecorder()

		assert.True(t, vh.DecodeRequest(w, r, "TEST", &dst))
		assert.Equal(t, "John", dst.Name)
	})

	t.Run("oversized body", func(t *testing.T) {
		var dst TestStruct
		big := bytes.Repeat([]byte("a"), maxBodyBytes+1)
		body := append(append([]byte(`{"Name":"`), big...), []byte(`"}`)...)
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		assert.False(t, vh.DecodeRequest(w, r, "TEST", &dst))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure carries details", func(t *testing.T) {
		var dst TestStruct
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"Name":"J","Email":"john@example.com","Age":30}`))
		w := httptest.NewRecorder()

		assert.False(t, vh.DecodeRequest(w, r, "TEST", &dst))
		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Details, "Name")
	})
}
