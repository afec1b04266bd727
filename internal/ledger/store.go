package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/models"
)

// Tx is one unit of work against the ledger store. Rows locked through a Tx
// stay locked until the unit of work commits or rolls back.
//
// Lock order inside a unit of work: product rows first, then wallet rows in
// ascending user id order.
type Tx interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// LockWallet returns the wallet owned by userID and holds its row lock.
	LockWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// UpdateWalletBalance writes balance for currency c if the wallet is still at
	// version. It returns ErrConflict when the version moved.
	UpdateWalletBalance(ctx context.Context, walletID string, c models.Currency, balance decimal.Decimal, version int64, at time.Time) error

	LockProduct(ctx context.Context, id string) (*models.Product, error)
	// DecrementStock removes qty units, failing with ErrOutOfStock instead of
	// going below zero.
	DecrementStock(ctx context.Context, productID string, qty int) error

	InsertTransaction(ctx context.Context, t *models.Transaction) error
}

// Store runs units of work. fn's error rolls the unit back; a nil return commits it.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Notifier delivers notifications once the ledger change they describe has
// committed. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// ReplaySource exposes what the verifier needs to recompute balances.
type ReplaySource interface {
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	// TransactionsForUser returns every record naming userID, oldest first.
	TransactionsForUser(ctx context.Context, userID string) ([]models.Transaction, error)
}
