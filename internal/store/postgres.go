// Package store holds the ledger store implementations: Postgres for
// production and an in-memory store for tests and local development.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// WithinTx runs fn in a read-committed transaction. Row locks taken through
// the ledger.Tx are released on commit or rollback.
func (p *Postgres) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapError(err))
	}
	defer tx.Rollback()

	if err := fn(&pgTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

type pgTx struct {
	q querier
}

func (t *pgTx) UserByID(ctx context.Context, id string) (*models.User, error) {
	return userByID(ctx, t.q, id)
}

func (t *pgTx) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return userByEmail(ctx, t.q, email)
}

func (t *pgTx) LockWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	if !isUUID(userID) {
		return nil, ledger.ErrWalletNotFound
	}
	w, err := scanWallet(t.q.QueryRowContext(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock wallet for user %s: %w", userID, mapError(err))
	}
	return w, nil
}

// balanceUpdates maps each currency to the statement that writes its column.
var balanceUpdates = map[models.Currency]string{
	models.CurrencyFC: `
		UPDATE wallets
		SET balance_fc = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
	models.CurrencyUSD: `
		UPDATE wallets
		SET balance_usd = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
}

func (t *pgTx) UpdateWalletBalance(ctx context.Context, walletID string, c models.Currency, balance decimal.Decimal, version int64, at time.Time) error {
	query, ok := balanceUpdates[c]
	if !ok {
		return ledger.ErrInvalidCurrency
	}

	result, err := t.q.ExecContext(ctx, query, balance, at, walletID, version)
	if err != nil {
		return fmt.Errorf("update wallet %s: %w", walletID, mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("wallet %s at version %d: %w", walletID, version, ledger.ErrConflict)
	}
	return nil
}

func (t *pgTx) LockProduct(ctx context.Context, id string) (*models.Product, error) {
	if !isUUID(id) {
		return nil, ledger.ErrProductNotFound
	}
	p, err := scanProduct(t.q.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock product %s: %w", id, mapError(err))
	}
	return p, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	result, err := t.q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = $2
		WHERE id = $3 AND stock >= $1`,
		qty, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("decrement stock of %s: %w", productID, mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ledger.ErrOutOfStock
	}
	return nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, tr *models.Transaction) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO transactions (id, type, from_user_id, to_user_id, amount, currency, description, product_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tr.ID, string(tr.Type), nullString(tr.FromUserID), nullString(tr.ToUserID),
		tr.Amount, string(tr.Currency), tr.Description, nullString(tr.ProductID),
		string(tr.Status), tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", mapError(err))
	}
	return nil
}

// mapError translates Postgres failures that carry ledger meaning.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %s", ledger.ErrConflict, pqErr.Message)
	case "22003": // numeric_value_out_of_range
		return ledger.ErrInvalidAmount
	case "23505": // unique_violation
		if strings.Contains(pqErr.Constraint, "email") {
			return ledger.ErrDuplicateEmail
		}
	case "23514": // check_violation
		switch {
		case strings.HasPrefix(pqErr.Constraint, "products_stock"):
			return ledger.ErrOutOfStock
		case strings.HasPrefix(pqErr.Constraint, "wallets_balance"):
			return ledger.ErrInsufficientFunds
		}
	}
	return err
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
