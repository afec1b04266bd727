package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business reason for a ledger record.
type TransactionType string

const (
	TransactionDeposit       TransactionType = "deposit"
	TransactionTransfer      TransactionType = "transfer"
	TransactionPurchase      TransactionType = "purchase"
	TransactionMoneyCreation TransactionType = "money_creation"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionTransfer, TransactionPurchase, TransactionMoneyCreation:
		return true
	}
	return false
}

// TransactionStatus of a ledger record. The engine commits balance changes and
// the record in one database transaction, so it only ever writes completed.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger record.
type Transaction struct {
	ID          string            `json:"id" db:"id"`
	Type        TransactionType   `json:"type" db:"type"`
	FromUserID  *string           `json:"fromUserId,omitempty" db:"from_user_id"`
	ToUserID    *string           `json:"toUserId,omitempty" db:"to_user_id"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Currency    Currency          `json:"currency" db:"currency"`
	Description string            `json:"description" db:"description"`
	ProductID   *string           `json:"productId,omitempty" db:"product_id"`
	Status      TransactionStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
}

// Involves reports whether userID is the sender or the recipient of t.
func (t *Transaction) Involves(userID string) bool {
	return (t.FromUserID != nil && *t.FromUserID == userID) ||
		(t.ToUserID != nil && *t.ToUserID == userID)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TransactionResponse is the API view of a transaction with a fixed two-digit amount.
type TransactionResponse struct {
	ID          string            `json:"id" example:"c56a4180-65aa-42ec-a945-5fd21dec0538"`
	Type        TransactionType   `json:"type" example:"transfer"`
	FromUserID  *string           `json:"fromUserId,omitempty"`
	ToUserID    *string           `json:"toUserId,omitempty"`
	Amount      string            `json:"amount" example:"30.00"`
	Currency    Currency          `json:"currency" example:"FC"`
	Description string            `json:"description" example:"Transfer to b@example.com"`
	ProductID   *string           `json:"productId,omitempty"`
	Status      TransactionStatus `json:"status" example:"completed"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (t *Transaction) Response() TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        t.Type,
		FromUserID:  t.FromUserID,
		ToUserID:    t.ToUserID,
		Amount:      FormatMoney(t.Amount),
		Currency:    t.Currency,
		Description: t.Description,
		ProductID:   t.ProductID,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

func TransactionResponses(txs []Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, txs[i].Response())
	}
	return out
}
