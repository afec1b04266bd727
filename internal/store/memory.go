package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every table in maps. A unit of work holds per-row mutexes for
// the wallets and products it locks, stages its writes, and applies them in
// one step on commit.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	emails        map[string]string
	wallets       map[string]*models.Wallet // by user id
	products      map[string]*models.Product
	transactions  []models.Transaction
	notifications []models.Notification

	rowMu       sync.Mutex
	walletLocks map[string]*sync.Mutex
	productLock map[string]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]*models.User),
		emails:      make(map[string]string),
		wallets:     make(map[string]*models.Wallet),
		products:    make(map[string]*models.Product),
		walletLocks: make(map[string]*sync.Mutex),
		productLock: make(map[string]*sync.Mutex),
	}
}

func (m *Memory) rowLock(locks map[string]*sync.Mutex, id string) *sync.Mutex {
	m.rowMu.Lock()
	defer m.rowMu.Unlock()
	l, ok := locks[id]
	if !ok {
		l = &sync.Mutex{}
		locks[id] = l
	}
	return l
}

func (m *Memory) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		m:        m,
		held:     make(map[*sync.Mutex]bool),
		wallets:  make(map[string]*models.Wallet),
		products: make(map[string]*models.Product),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	m     *Memory
	held  map[*sync.Mutex]bool
	order []*sync.Mutex

	wallets      map[string]*models.Wallet // staged, by user id
	products     map[string]*models.Product
	transactions []models.Transaction
}

func (t *memTx) acquire(l *sync.Mutex) {
	if t.held[l] {
		return
	}
	l.Lock()
	t.held[l] = true
	t.order = append(t.order, l)
}

func (t *memTx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.order[i].Unlock()
	}
	t.order = nil
}

func (t *memTx) commit() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	for userID, w := range t.wallets {
		cp := *w
		t.m.wallets[userID] = &cp
	}
	for id, p := range t.products {
		cp := *p
		t.m.products[id] = &cp
	}
	t.m.transactions = append(t.m.transactions, t.transactions...)
}

func (t *memTx) UserByID(ctx context.Context, id string) (*models.User, error) {
	return t.m.UserByID(ctx, id)
}

func (t *memTx) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return t.m.UserByEmail(ctx, email)
}

func (t *memTx) LockWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w, ok := t.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}

	t.m.mu.RLock()
	_, exists := t.m.wallets[userID]
	t.m.mu.RUnlock()
	if !exists {
		return nil, ledger.ErrWalletNotFound
	}

	t.acquire(t.m.rowLock(t.m.walletLocks, userID))

	t.m.mu.RLock()
	w := *t.m.wallets[userID]
	t.m.mu.RUnlock()

	t.wallets[userID] = &w
	cp := w
	return &cp, nil
}

func (t *memTx) UpdateWalletBalance(_ context.Context, walletID string, c models.Currency, balance decimal.Decimal, version int64, at time.Time) error {
	if !c.Valid() {
		return ledger.ErrInvalidCurrency
	}
	for _, w := range t.wallets {
		if w.ID != walletID {
			continue
		}
		if w.Version != version {
			return ledger.ErrConflict
		}
		if balance.IsNegative() {
			return ledger.ErrInsufficientFunds
		}
		w.SetBalance(c, balance)
		w.Version++
		w.UpdatedAt = at
		return nil
	}
	// Writing a wallet this unit of work never locked.
	return ledger.ErrConflict
}

func (t *memTx) LockProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p, ok := t.products[id]; ok {
		cp := *p
		return &cp, nil
	}

	t.m.mu.RLock()
	_, exists := t.m.products[id]
	t.m.mu.RUnlock()
	if !exists {
		return nil, ledger.ErrProductNotFound
	}

	t.acquire(t.m.rowLock(t.m.productLock, id))

	t.m.mu.RLock()
	p := *t.m.products[id]
	t.m.mu.RUnlock()

	t.products[id] = &p
	cp := p
	return &cp, nil
}

func (t *memTx) DecrementStock(_ context.Context, productID string, qty int) error {
	p, ok := t.products[productID]
	if !ok {
		return ledger.ErrConflict
	}
	if p.Stock < qty {
		return ledger.ErrOutOfStock
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr *models.Transaction) error {
	t.transactions = append(t.transactions, *tr)
	return nil
}

// ─── Users ──────────────────────────────────────────────────────────────────

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[ledger.NormalizeEmail(email)]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) CreateUserWithWallet(_ context.Context, u *models.User) (*models.Wallet, error) {
	prepareUser(u)
	w := newWallet(u)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[u.Email]; ok {
		return nil, ledger.ErrDuplicateEmail
	}

	cu, cw := *u, *w
	m.users[u.ID] = &cu
	m.emails[u.Email] = u.ID
	m.wallets[u.ID] = &cw
	return w, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (m *Memory) SetUserBlocked(_ context.Context, id string, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ledger.ErrUserNotFound
	}
	u.IsBlocked = blocked
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ─── Wallets ────────────────────────────────────────────────────────────────

func (m *Memory) WalletByUserID(_ context.Context, userID string) (*models.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, ledger.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *Memory) ListWallets(_ context.Context) ([]models.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallets := make([]models.Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, *w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].UserID < wallets[j].UserID })
	return wallets, nil
}

// ─── Transactions ───────────────────────────────────────────────────────────

// TransactionsForUser returns userID's records in commit order.
func (m *Memory) TransactionsForUser(_ context.Context, userID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := []models.Transaction{}
	for i := range m.transactions {
		if m.transactions[i].Involves(userID) {
			txs = append(txs, m.transactions[i])
		}
	}
	return txs, nil
}

func (m *Memory) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if userID == "" {
		m.mu.RLock()
		txs = append([]models.Transaction{}, m.transactions...)
		m.mu.RUnlock()
	} else {
		var err error
		if txs, err = m.TransactionsForUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs, nil
}

func (m *Memory) TransactionByID(_ context.Context, id string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.transactions {
		if m.transactions[i].ID == id {
			cp := m.transactions[i]
			return &cp, nil
		}
	}
	return nil, ledger.ErrTransactionNotFound
}

// ─── Products ───────────────────────────────────────────────────────────────

func (m *Memory) ListActiveProducts(_ context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := []models.Product{}
	for _, p := range m.products {
		if p.IsActive {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	return products, nil
}

func (m *Memory) ProductByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ledger.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) CreateProduct(_ context.Context, p *models.Product) error {
	prepareProduct(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (m *Memory) InsertNotification(_ context.Context, n *models.Notification) error {
	prepareNotification(n)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return ledger.ErrNotificationNotFound
}
