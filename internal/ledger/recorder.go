package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/models"
)

// RecordInput describes one ledger record. Amount is always positive; the
// direction follows from Type and which parties are set.
type RecordInput struct {
	Type        models.TransactionType
	FromUserID  string
	ToUserID    string
	ProductID   string
	Amount      decimal.Decimal
	Currency    models.Currency
	Description string
}

// TransactionRecorder appends immutable transaction records.
type TransactionRecorder struct {
	now   func() time.Time
	newID func() string
}

func NewTransactionRecorder() *TransactionRecorder {
	return &TransactionRecorder{now: time.Now, newID: uuid.NewString}
}

// Record inserts the record inside tx. Call it after the balance changes it
// describes so both commit together.
func (r *TransactionRecorder) Record(ctx context.Context, tx Tx, in RecordInput) (*models.Transaction, error) {
	if err := validateRecord(in); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		ID:          r.newID(),
		Type:        in.Type,
		FromUserID:  models.StringPtr(in.FromUserID),
		ToUserID:    models.StringPtr(in.ToUserID),
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: in.Description,
		ProductID:   models.StringPtr(in.ProductID),
		Status:      models.TransactionCompleted,
		CreatedAt:   r.now().UTC(),
	}

	if err := tx.InsertTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("record %s transaction: %w", in.Type, err)
	}
	return t, nil
}

func validateRecord(in RecordInput) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidParties, in.Type)
	}
	if !in.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}

	has := func(s string) bool { return s != "" }
	var ok bool
	switch in.Type {
	case models.TransactionTransfer:
		ok = has(in.FromUserID) && has(in.ToUserID) && in.FromUserID != in.ToUserID && !has(in.ProductID)
	case models.TransactionPurchase:
		ok = has(in.FromUserID) && !has(in.ToUserID) && has(in.ProductID)
	case models.TransactionDeposit:
		ok = has(in.FromUserID) && has(in.ToUserID) && !has(in.ProductID)
	case models.TransactionMoneyCreation:
		ok = has(in.FromUserID) && !has(in.ProductID)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidParties, in.Type)
	}
	return nil
}

// MaxAmount is the largest value a NUMERIC(12,2) column can hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidateAmount accepts strictly positive amounts with at most two decimals
// that fit the stored column width.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !models.HasMoneyScale(amount) || amount.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}
