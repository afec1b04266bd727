package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/audit"
	"github.com/walletfc/backend/internal/ledger"
	mW "github.com/walletfc/backend/internal/middleware"
	"github.com/walletfc/backend/internal/models"
)

type AdminStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserBlocked(ctx context.Context, id string, blocked bool) error
}

// LedgerVerifier replays the ledger against stored balances.
type LedgerVerifier interface {
	VerifyAll(ctx context.Context) (*ledger.VerifyReport, error)
}

type AdminService struct {
	engine    LedgerEngine
	store     AdminStore
	verifier  LedgerVerifier
	audit     *audit.Logger
	validator *ValidationHelper
}

// CreateMoneyRequest represents a mint request
// @Description Money creation request structure
type CreateMoneyRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required,gt=0" swaggertype:"string" example:"1000.00"`
	Currency models.Currency `json:"currency" validate:"required,oneof=FC USD" example:"FC"`
}

// CreditAccountRequest represents an admin deposit into a user's wallet
// @Description Account credit request structure
type CreditAccountRequest struct {
	Email    string          `json:"email" validate:"required,email" example:"user@example.com"`
	Amount   decimal.Decimal `json:"amount" validate:"required,gt=0" swaggertype:"string" example:"100.00"`
	Currency models.Currency `json:"currency" validate:"required,oneof=FC USD" example:"FC"`
}

func NewAdminService(engine LedgerEngine, store AdminStore, verifier LedgerVerifier, auditLogger *audit.Logger) *AdminService {
	if auditLogger == nil {
		auditLogger = audit.NewLogger()
	}
	return &AdminService{
		engine:    engine,
		store:     store,
		verifier:  verifier,
		audit:     auditLogger,
		validator: NewValidationHelper(),
	}
}

// CreateMoney records new currency supply
// @Summary Create money
// @Description Log a money_creation record. Whether the admin wallet is credited depends on the configured mint policy.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMoneyRequest true "Mint request"
// @Success 201 {object} models.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/create-money [post]
func (s *AdminService) CreateMoney(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreateMoneyRequest
	if !s.validator.DecodeRequest(w, r, "ADMIN", &req) {
		return
	}

	tx, err := s.engine.Mint(r.Context(), identity, req.Amount, req.Currency)
	if err != nil {
		SendLedgerError(w, "ADMIN", err)
		return
	}

	log.Printf("[ADMIN] %s created %s %s", identity.Email, models.FormatMoney(req.Amount), req.Currency)
	writeJSON(w, http.StatusCreated, tx.Response())
}

// CreditAccount deposits funds into a user's wallet
// @Summary Credit account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreditAccountRequest true "Credit request"
// @Success 201 {object} models.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/credit-account [post]
func (s *AdminService) CreditAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreditAccountRequest
	if !s.validator.DecodeRequest(w, r, "ADMIN", &req) {
		return
	}

	tx, err := s.engine.CreditAccount(r.Context(), identity, req.Email, req.Amount, req.Currency)
	if err != nil {
		SendLedgerError(w, "ADMIN", err)
		return
	}

	log.Printf("[ADMIN] %s credited %s with %s %s", identity.Email, req.Email, models.FormatMoney(req.Amount), req.Currency)
	writeJSON(w, http.StatusCreated, tx.Response())
}

// ListUsers returns every registered user
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (s *AdminService) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		SendLedgerError(w, "ADMIN", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// BlockUser prevents a user from authenticating
// @Summary Block user
// @Tags admin
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{userId}/block [put]
func (s *AdminService) BlockUser(w http.ResponseWriter, r *http.Request) {
	s.setBlocked(w, r, true)
}

// UnblockUser restores a blocked user
// @Summary Unblock user
// @Tags admin
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{userId}/unblock [put]
func (s *AdminService) UnblockUser(w http.ResponseWriter, r *http.Request) {
	s.setBlocked(w, r, false)
}

func (s *AdminService) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	userID := chi.URLParam(r, "userId")
	if blocked && userID == identity.ID {
		SendErrorResponse(w, "Cannot block your own account", http.StatusBadRequest, nil)
		return
	}

	if err := s.store.SetUserBlocked(r.Context(), userID, blocked); err != nil {
		SendLedgerError(w, "ADMIN", err)
		return
	}

	operation := "USER_UNBLOCKED"
	if blocked {
		operation = "USER_BLOCKED"
	}
	s.audit.LogOperation(identity.ID, operation, fmt.Sprintf("target=%s", userID))
	w.WriteHeader(http.StatusNoContent)
}

// VerifyLedger replays every wallet's records against its stored balances
// @Summary Verify ledger
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ledger.VerifyReport
// @Router /admin/ledger/verify [get]
func (s *AdminService) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	report, err := s.verifier.VerifyAll(r.Context())
	if err != nil {
		SendLedgerError(w, "ADMIN", err)
		return
	}

	if !report.OK() {
		for _, m := range report.Mismatches {
			log.Printf("[ADMIN] Ledger mismatch: %s", m)
		}
	}
	writeJSON(w, http.StatusOK, report)
}
