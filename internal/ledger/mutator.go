package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/models"
)

// BalanceMutator applies signed deltas to one currency of a wallet. The
// overdraft check and the write happen under the wallet's row lock.
type BalanceMutator struct {
	store Store
	retry RetryPolicy
	now   func() time.Time
}

func NewBalanceMutator(store Store, retry RetryPolicy) *BalanceMutator {
	return &BalanceMutator{store: store, retry: retry, now: time.Now}
}

// ApplyDelta changes ownerID's balance in c by delta as its own unit of work.
func (m *BalanceMutator) ApplyDelta(ctx context.Context, ownerID string, c models.Currency, delta decimal.Decimal) (*models.Wallet, error) {
	var updated *models.Wallet
	err := m.retry.Do(ctx, "apply_delta", func() error {
		return m.store.WithinTx(ctx, func(tx Tx) error {
			w, err := m.ApplyDeltaTx(ctx, tx, ownerID, c, delta)
			if err != nil {
				return err
			}
			updated = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyDeltaTx is ApplyDelta inside the caller's unit of work.
func (m *BalanceMutator) ApplyDeltaTx(ctx context.Context, tx Tx, ownerID string, c models.Currency, delta decimal.Decimal) (*models.Wallet, error) {
	if !c.Valid() {
		return nil, ErrInvalidCurrency
	}
	if !models.HasMoneyScale(delta) {
		return nil, ErrInvalidAmount
	}

	w, err := tx.LockWallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return m.applyLocked(ctx, tx, w, c, delta)
}

// applyLocked requires w to be locked by tx.
func (m *BalanceMutator) applyLocked(ctx context.Context, tx Tx, w *models.Wallet, c models.Currency, delta decimal.Decimal) (*models.Wallet, error) {
	current := w.Balance(c)
	next := current.Add(delta)
	if next.IsNegative() {
		return nil, &InsufficientFundsError{
			UserID:    w.UserID,
			Currency:  c,
			Available: current,
			Requested: delta.Neg(),
		}
	}

	at := m.now()
	if err := tx.UpdateWalletBalance(ctx, w.ID, c, next, w.Version, at); err != nil {
		return nil, err
	}

	w.SetBalance(c, next)
	w.Version++
	w.UpdatedAt = at
	return w, nil
}
