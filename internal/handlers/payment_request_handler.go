package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	mW "github.com/walletfc/backend/internal/middleware"
	"github.com/walletfc/backend/internal/models"
	"github.com/walletfc/backend/internal/services"
)

type PaymentRequestHandler struct {
	service   *services.PaymentRequestService
	validator *services.ValidationHelper
}

// CreatePaymentRequest is the body of POST /payment-requests
type CreatePaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required,gt=0" swaggertype:"string" example:"25.00"`
	Currency models.Currency `json:"currency" validate:"required,oneof=FC USD" example:"FC"`
}

func NewPaymentRequestHandler(service *services.PaymentRequestService) *PaymentRequestHandler {
	return &PaymentRequestHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// Create generates a payment request QR code for the caller
// @Summary Create payment request
// @Description Generate a QR code asking the scanner to pay the caller the given amount
// @Tags payment-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePaymentRequest true "Payment request"
// @Success 201 {object} object{code=string,qrImage=string,expiresAt=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /payment-requests [post]
func (h *PaymentRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreatePaymentRequest
	if !h.validator.DecodeRequest(w, r, "PAYREQ", &req) {
		return
	}

	pr, qrImage, err := h.service.Create(r.Context(), identity, req.Amount, req.Currency)
	if err != nil {
		services.SendLedgerError(w, "PAYREQ", err)
		return
	}

	log.Printf("[PAYREQ] Payment request %s created by %s", pr.Code, identity.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"code":      pr.Code,
		"qrImage":   qrImage,
		"expiresAt": pr.ExpiresAt,
	})
}

// Resolve returns the payee and amount behind a scanned code
// @Summary Resolve payment request
// @Tags payment-requests
// @Produce json
// @Security BearerAuth
// @Param code path string true "Payment request code"
// @Success 200 {object} object{payeeEmail=string,amount=string,currency=string,expiresAt=string}
// @Failure 404 {object} services.ErrorResponse "Unknown or expired code"
// @Router /payment-requests/{code} [get]
func (h *PaymentRequestHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	pr, err := h.service.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		services.SendLedgerError(w, "PAYREQ", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"payeeEmail": pr.PayeeEmail,
		"amount":     models.FormatMoney(pr.Amount),
		"currency":   pr.Currency,
		"expiresAt":  pr.ExpiresAt,
	})
}
