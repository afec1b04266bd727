package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/models"
)

// Sentinel errors, compare with errors.Is.
var (
	ErrNotFound = errors.New("not found")

	ErrWalletNotFound       = fmt.Errorf("wallet %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrRecipientNotFound    = fmt.Errorf("recipient %w", ErrNotFound)
	ErrProductNotFound      = fmt.Errorf("product %w", ErrNotFound)
	ErrTransactionNotFound  = fmt.Errorf("transaction %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrInvalidAmount         = errors.New("amount must be positive with at most two decimal places")
	ErrInvalidCurrency       = errors.New("currency must be FC or USD")
	ErrInvalidParties        = errors.New("transaction parties do not match its type")
	ErrSelfTransferForbidden = errors.New("cannot transfer funds to yourself")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrOutOfStock            = errors.New("product out of stock")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("admin access required")

	// ErrConflict is returned when a concurrent writer won the race for a row.
	// The engine retries it before handing it to the caller.
	ErrConflict = errors.New("concurrent modification detected")

	ErrDuplicateEmail = errors.New("email already registered")
)

// InsufficientFundsError carries the balance shortfall for a rejected debit.
type InsufficientFundsError struct {
	UserID    string
	Currency  models.Currency
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, requested %s %s",
		models.FormatMoney(e.Available), e.Currency, models.FormatMoney(e.Requested), e.Currency)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the request itself was rejected by a business rule.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidCurrency) ||
		errors.Is(err, ErrInvalidParties) ||
		errors.Is(err, ErrSelfTransferForbidden) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrDuplicateEmail)
}
