package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

const (
	userColumns        = `id, email, password_hash, first_name, last_name, role, is_blocked, created_at, updated_at`
	walletColumns      = `id, user_id, balance_fc, balance_usd, version, created_at, updated_at`
	productColumns     = `id, name, description, price, currency, stock, image_url, is_active, created_at, updated_at`
	transactionColumns = `id, type, from_user_id, to_user_id, amount, currency, description, product_id, status, created_at`
	notificationColumn = `id, user_id, title, message, is_read, created_at`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanWallet(row scanner) (*models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.BalanceFC, &w.BalanceUSD, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p        models.Product
		imageURL sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Stock,
		&imageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ImageURL = imageURL.String
	return &p, nil
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var (
		t                        models.Transaction
		from, to, product, descr sql.NullString
	)
	err := row.Scan(&t.ID, &t.Type, &from, &to, &t.Amount, &t.Currency, &descr, &product, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.FromUserID = stringPtr(from)
	t.ToUserID = stringPtr(to)
	t.ProductID = stringPtr(product)
	t.Description = descr.String
	return &t, nil
}

func scanNotification(row scanner) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// ─── Users ──────────────────────────────────────────────────────────────────

func userByID(ctx context.Context, q querier, id string) (*models.User, error) {
	if !isUUID(id) {
		return nil, ledger.ErrUserNotFound
	}
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func userByEmail(ctx context.Context, q querier, email string) (*models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (p *Postgres) UserByID(ctx context.Context, id string) (*models.User, error) {
	return userByID(ctx, p.db, id)
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return userByEmail(ctx, p.db, email)
}

// CreateUserWithWallet inserts u and its empty wallet in one transaction.
// Empty ids and timestamps are filled in.
func (p *Postgres) CreateUserWithWallet(ctx context.Context, u *models.User) (*models.Wallet, error) {
	prepareUser(u)
	w := newWallet(u)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), u.IsBlocked, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.UserID, w.BalanceFC, w.BalanceUSD, w.Version, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert wallet: %w", mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return w, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (p *Postgres) SetUserBlocked(ctx context.Context, id string, blocked bool) error {
	if !isUUID(id) {
		return ledger.ErrUserNotFound
	}
	result, err := p.db.ExecContext(ctx, `
		UPDATE users SET is_blocked = $1, updated_at = $2 WHERE id = $3`,
		blocked, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	return expectOne(result, ledger.ErrUserNotFound)
}

// ─── Wallets ────────────────────────────────────────────────────────────────

func (p *Postgres) WalletByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	if !isUUID(userID) {
		return nil, ledger.ErrWalletNotFound
	}
	w, err := scanWallet(p.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet for user %s: %w", userID, err)
	}
	return w, nil
}

func (p *Postgres) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	wallets := []models.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, rows.Err()
}

// ─── Transactions ───────────────────────────────────────────────────────────

func (p *Postgres) TransactionsForUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return p.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
}

// ListTransactions returns userID's history newest first, or every record
// when userID is empty.
func (p *Postgres) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	if userID == "" {
		return p.queryTransactions(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			ORDER BY created_at DESC, id DESC`)
	}
	return p.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
}

func (p *Postgres) TransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	if !isUUID(id) {
		return nil, ledger.ErrTransactionNotFound
	}
	t, err := scanTransaction(p.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

func (p *Postgres) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

// ─── Products ───────────────────────────────────────────────────────────────

func (p *Postgres) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *pr)
	}
	return products, rows.Err()
}

func (p *Postgres) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	if !isUUID(id) {
		return nil, ledger.ErrProductNotFound
	}
	pr, err := scanProduct(p.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return pr, nil
}

func (p *Postgres) CreateProduct(ctx context.Context, pr *models.Product) error {
	prepareProduct(pr)
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		pr.ID, pr.Name, pr.Description, pr.Price, string(pr.Currency), pr.Stock,
		sql.NullString{String: pr.ImageURL, Valid: pr.ImageURL != ""}, pr.IsActive, pr.CreatedAt, pr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", mapError(err))
	}
	return nil
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (p *Postgres) InsertNotification(ctx context.Context, n *models.Notification) error {
	prepareNotification(n)
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumn+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Title, n.Message, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (p *Postgres) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+notificationColumn+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead only touches notifications owned by userID.
func (p *Postgres) MarkNotificationRead(ctx context.Context, id, userID string) error {
	if !isUUID(id) {
		return ledger.ErrNotificationNotFound
	}
	result, err := p.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return expectOne(result, ledger.ErrNotificationNotFound)
}

func expectOne(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// ─── Defaults shared by both stores ─────────────────────────────────────────

func prepareUser(u *models.User) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleClient
	}
	u.Email = ledger.NormalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt
}

func newWallet(u *models.User) *models.Wallet {
	return &models.Wallet{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.CreatedAt,
	}
}

func prepareProduct(p *models.Product) {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
}

func prepareNotification(n *models.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
}
