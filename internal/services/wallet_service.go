package services

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/ledger"
	mW "github.com/walletfc/backend/internal/middleware"
	"github.com/walletfc/backend/internal/models"
)

// LedgerEngine is the set of ledger use cases the HTTP layer drives.
type LedgerEngine interface {
	Transfer(ctx context.Context, sender models.Identity, req ledger.TransferRequest) (*models.Transaction, error)
	Purchase(ctx context.Context, buyer models.Identity, productID string) (*models.Transaction, error)
	Mint(ctx context.Context, admin models.Identity, amount decimal.Decimal, c models.Currency) (*models.Transaction, error)
	CreditAccount(ctx context.Context, admin models.Identity, targetEmail string, amount decimal.Decimal, c models.Currency) (*models.Transaction, error)
}

// WalletReader serves the read side of the ledger.
type WalletReader interface {
	WalletByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	TransactionByID(ctx context.Context, id string) (*models.Transaction, error)
}

type WalletService struct {
	engine    LedgerEngine
	store     WalletReader
	validator *ValidationHelper
}

// TransferRequest represents a peer-to-peer transfer
// @Description Transfer request structure
type TransferRequest struct {
	RecipientEmail string          `json:"recipientEmail" validate:"required,email" example:"friend@example.com"`
	Amount         decimal.Decimal `json:"amount" validate:"required,gt=0" swaggertype:"string" example:"30.00"`
	Currency       models.Currency `json:"currency" validate:"required,oneof=FC USD" example:"FC"`
}

func NewWalletService(engine LedgerEngine, store WalletReader) *WalletService {
	return &WalletService{
		engine:    engine,
		store:     store,
		validator: NewValidationHelper(),
	}
}

// GetWallet returns the caller's balances
// @Summary Get wallet
// @Description Get the authenticated user's FC and USD balances
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.WalletResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Wallet not found"
// @Router /wallet [get]
func (s *WalletService) GetWallet(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	wallet, err := s.store.WalletByUserID(r.Context(), identity.ID)
	if err != nil {
		SendLedgerError(w, "WALLET", err)
		return
	}
	writeJSON(w, http.StatusOK, wallet.Response())
}

// Transfer sends funds to another user
// @Summary Transfer funds
// @Description Move funds from the caller's wallet to the wallet of the user registered under recipientEmail
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "Transfer request"
// @Success 201 {object} models.TransactionResponse
// @Failure 400 {object} ErrorResponse "Invalid request or self transfer"
// @Failure 404 {object} ErrorResponse "Recipient not found"
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Router /transfer [post]
func (s *WalletService) Transfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req TransferRequest
	if !s.validator.DecodeRequest(w, r, "WALLET", &req) {
		return
	}

	log.Printf("[WALLET] Transfer of %s %s from %s to %s", models.FormatMoney(req.Amount), req.Currency, identity.ID, req.RecipientEmail)
	tx, err := s.engine.Transfer(r.Context(), identity, ledger.TransferRequest{
		RecipientEmail: req.RecipientEmail,
		Amount:         req.Amount,
		Currency:       req.Currency,
	})
	if err != nil {
		SendLedgerError(w, "WALLET", err)
		return
	}

	writeJSON(w, http.StatusCreated, tx.Response())
}

// Purchase buys one unit of a product
// @Summary Purchase product
// @Description Buy one unit of an active product, paid in the product's currency
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 201 {object} models.TransactionResponse
// @Failure 404 {object} ErrorResponse "Product not found"
// @Failure 422 {object} ErrorResponse "Insufficient funds or out of stock"
// @Router /products/{productId}/purchase [post]
func (s *WalletService) Purchase(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	productID := chi.URLParam(r, "productId")
	log.Printf("[WALLET] Purchase of product %s by %s", productID, identity.ID)

	tx, err := s.engine.Purchase(r.Context(), identity, productID)
	if err != nil {
		SendLedgerError(w, "WALLET", err)
		return
	}

	writeJSON(w, http.StatusCreated, tx.Response())
}

// ListTransactions returns transaction history
// @Summary List transactions
// @Description Newest first. Clients see the records they take part in, admins see every record.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TransactionResponse
// @Router /transactions [get]
func (s *WalletService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	scope := identity.ID
	if identity.IsAdmin() {
		scope = ""
	}

	txs, err := s.store.ListTransactions(r.Context(), scope)
	if err != nil {
		SendLedgerError(w, "WALLET", err)
		return
	}
	writeJSON(w, http.StatusOK, models.TransactionResponses(txs))
}

// GetTransaction returns one transaction
// @Summary Get transaction
// @Description Get a transaction the caller takes part in (admins may read any)
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param txId path string true "Transaction ID"
// @Success 200 {object} models.TransactionResponse
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Router /transactions/{txId} [get]
func (s *WalletService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := mW.IdentityFrom(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	tx, err := s.store.TransactionByID(r.Context(), chi.URLParam(r, "txId"))
	if err != nil {
		SendLedgerError(w, "WALLET", err)
		return
	}

	// Records the caller is not party to are reported as missing.
	if !identity.IsAdmin() && !tx.Involves(identity.ID) {
		SendLedgerError(w, "WALLET", ledger.ErrTransactionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tx.Response())
}
