package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
	"github.com/walletfc/backend/internal/store"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *captureNotifier) Notify(_ context.Context, note models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

func (n *captureNotifier) For(userID string) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notification
	for _, note := range n.sent {
		if note.UserID == userID {
			out = append(out, note)
		}
	}
	return out
}

type fixture struct {
	mem      *store.Memory
	engine   *ledger.Engine
	notifier *captureNotifier
	admin    models.Identity
}

func newFixture(t *testing.T, policy ledger.MintPolicy) *fixture {
	t.Helper()
	mem := store.NewMemory()
	notifier := &captureNotifier{}
	engine := ledger.NewEngine(mem, notifier, nil, ledger.Config{MaxRetries: 3, MintPolicy: policy})

	f := &fixture{mem: mem, engine: engine, notifier: notifier}
	f.admin = f.user(t, "admin@wallet.test", models.RoleAdmin)
	return f
}

func (f *fixture) user(t *testing.T, email string, role models.Role) models.Identity {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", LastName: "User", Role: role}
	_, err := f.mem.CreateUserWithWallet(context.Background(), u)
	require.NoError(t, err)
	return u.Identity()
}

// fund credits through the engine so the ledger justifies the balance.
func (f *fixture) fund(t *testing.T, who models.Identity, amount string, c models.Currency) {
	t.Helper()
	_, err := f.engine.CreditAccount(context.Background(), f.admin, who.Email, dec(amount), c)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, who models.Identity, c models.Currency) decimal.Decimal {
	t.Helper()
	w, err := f.mem.WalletByUserID(context.Background(), who.ID)
	require.NoError(t, err)
	return w.Balance(c)
}

func (f *fixture) product(t *testing.T, price string, c models.Currency, stock int, active bool) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Headphones", Price: dec(price), Currency: c, Stock: stock, IsActive: active}
	require.NoError(t, f.mem.CreateProduct(context.Background(), p))
	return p
}

func (f *fixture) records(t *testing.T) []models.Transaction {
	t.Helper()
	txs, err := f.mem.ListTransactions(context.Background(), "")
	require.NoError(t, err)
	return txs
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Equal(t, expected, models.FormatMoney(actual))
}

func TestEngine_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves funds and records one transfer", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)
		b := f.user(t, "b@wallet.test", models.RoleClient)
		f.fund(t, a, "100", models.CurrencyFC)

		record, err := f.engine.Transfer(ctx, a, ledger.TransferRequest{
			RecipientEmail: "B@Wallet.test",
			Amount:         dec("30"),
			Currency:       models.CurrencyFC,
		})
		require.NoError(t, err)

		assertMoney(t, "70.00", f.balance(t, a, models.CurrencyFC))
		assertMoney(t, "30.00", f.balance(t, b, models.CurrencyFC))
		assertMoney(t, "0.00", f.balance(t, a, models.CurrencyUSD))

		assert.Equal(t, models.TransactionTransfer, record.Type)
		assert.Equal(t, models.TransactionCompleted, record.Status)
		assert.Equal(t, a.ID, *record.FromUserID)
		assert.Equal(t, b.ID, *record.ToUserID)
		assert.Nil(t, record.ProductID)
		assertMoney(t, "30.00", record.Amount)

		txs, err := f.mem.TransactionsForUser(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, txs, 1)

		notes := f.notifier.For(b.ID)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0].Message, "30.00 FC")
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)
		f.fund(t, a, "100", models.CurrencyFC)
		before := len(f.records(t))

		_, err := f.engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: a.Email, Amount: dec("10"), Currency: models.CurrencyFC})

		assert.ErrorIs(t, err, ledger.ErrSelfTransferForbidden)
		assertMoney(t, "100.00", f.balance(t, a, models.CurrencyFC))
		assert.Len(t, f.records(t), before)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)

		_, err := f.engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: "ghost@wallet.test", Amount: dec("10"), Currency: models.CurrencyFC})

		assert.ErrorIs(t, err, ledger.ErrRecipientNotFound)
		assert.True(t, ledger.IsNotFound(err))
	})

	t.Run("insufficient funds changes nothing", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)
		b := f.user(t, "b@wallet.test", models.RoleClient)
		f.fund(t, a, "20", models.CurrencyUSD)
		before := len(f.records(t))

		_, err := f.engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: b.Email, Amount: dec("20.01"), Currency: models.CurrencyUSD})

		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
		var insufficient *ledger.InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assertMoney(t, "20.00", insufficient.Available)
		assertMoney(t, "20.01", insufficient.Requested)

		assertMoney(t, "20.00", f.balance(t, a, models.CurrencyUSD))
		assertMoney(t, "0.00", f.balance(t, b, models.CurrencyUSD))
		assert.Len(t, f.records(t), before)
		assert.Empty(t, f.notifier.For(b.ID))
	})

	t.Run("invalid amounts", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)
		b := f.user(t, "b@wallet.test", models.RoleClient)
		f.fund(t, a, "100", models.CurrencyFC)

		for _, amount := range []string{"0", "-5", "0.001", "10000000000"} {
			_, err := f.engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: b.Email, Amount: dec(amount), Currency: models.CurrencyFC})
			assert.ErrorIs(t, err, ledger.ErrInvalidAmount, amount)
		}
		assertMoney(t, "100.00", f.balance(t, a, models.CurrencyFC))
	})

	t.Run("invalid currency", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)
		b := f.user(t, "b@wallet.test", models.RoleClient)

		_, err := f.engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: b.Email, Amount: dec("1"), Currency: "EUR"})
		assert.ErrorIs(t, err, ledger.ErrInvalidCurrency)
	})
}

func TestEngine_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("buys the last unit then runs out", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		buyer := f.user(t, "buyer@wallet.test", models.RoleClient)
		f.fund(t, buyer, "100", models.CurrencyFC)
		p := f.product(t, "50.00", models.CurrencyFC, 1, true)

		record, err := f.engine.Purchase(ctx, buyer, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionPurchase, record.Type)
		assert.Equal(t, p.ID, *record.ProductID)
		assert.Nil(t, record.ToUserID)
		assertMoney(t, "50.00", f.balance(t, buyer, models.CurrencyFC))

		stored, err := f.mem.ProductByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.Stock)
		assert.Len(t, f.notifier.For(buyer.ID), 2) // credit + purchase

		before := len(f.records(t))
		_, err = f.engine.Purchase(ctx, buyer, p.ID)
		assert.ErrorIs(t, err, ledger.ErrOutOfStock)
		assertMoney(t, "50.00", f.balance(t, buyer, models.CurrencyFC))
		assert.Len(t, f.records(t), before)
	})

	t.Run("insufficient funds keeps stock", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		buyer := f.user(t, "buyer@wallet.test", models.RoleClient)
		f.fund(t, buyer, "49.99", models.CurrencyUSD)
		p := f.product(t, "50.00", models.CurrencyUSD, 3, true)

		_, err := f.engine.Purchase(ctx, buyer, p.ID)
		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		stored, err := f.mem.ProductByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Stock)
		assertMoney(t, "49.99", f.balance(t, buyer, models.CurrencyUSD))
	})

	t.Run("pays in the product currency", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		buyer := f.user(t, "buyer@wallet.test", models.RoleClient)
		f.fund(t, buyer, "100", models.CurrencyFC)
		p := f.product(t, "10.00", models.CurrencyUSD, 3, true)

		_, err := f.engine.Purchase(ctx, buyer, p.ID)
		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
		assertMoney(t, "100.00", f.balance(t, buyer, models.CurrencyFC))
	})

	t.Run("inactive and unknown products", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		buyer := f.user(t, "buyer@wallet.test", models.RoleClient)
		f.fund(t, buyer, "100", models.CurrencyFC)
		p := f.product(t, "5.00", models.CurrencyFC, 3, false)

		_, err := f.engine.Purchase(ctx, buyer, p.ID)
		assert.ErrorIs(t, err, ledger.ErrProductNotFound)

		_, err = f.engine.Purchase(ctx, buyer, "missing")
		assert.ErrorIs(t, err, ledger.ErrProductNotFound)
	})
}

func TestEngine_ConcurrentPurchasesRespectStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ledger.MintLogOnly)

	buyers := make([]models.Identity, 3)
	for i := range buyers {
		buyers[i] = f.user(t, fmt.Sprintf("buyer%d@wallet.test", i), models.RoleClient)
		f.fund(t, buyers[i], "1000", models.CurrencyFC)
	}
	const stock = 3
	p := f.product(t, "10.00", models.CurrencyFC, stock, true)

	const purchases = 12
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		bought     int
		outOfStock int
	)
	for i := 0; i < purchases; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := f.engine.Purchase(ctx, buyers[i%len(buyers)], p.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				bought++
			case errors.Is(err, ledger.ErrOutOfStock):
				outOfStock++
			default:
				t.Errorf("unexpected purchase error: %v", err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := f.engine.Transfer(ctx, buyers[i%len(buyers)], ledger.TransferRequest{
				RecipientEmail: buyers[(i+1)%len(buyers)].Email,
				Amount:         dec("1.50"),
				Currency:       models.CurrencyFC,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, stock, bought)
	assert.Equal(t, purchases-stock, outOfStock)

	stored, err := f.mem.ProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	total := decimal.Zero
	for _, b := range buyers {
		total = total.Add(f.balance(t, b, models.CurrencyFC))
	}
	assertMoney(t, "2970.00", total)

	report, err := ledger.NewVerifier(f.mem).VerifyAll(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), "mismatches: %v", report.Mismatches)
}

func TestEngine_Mint(t *testing.T) {
	ctx := context.Background()

	t.Run("log only records without crediting", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)

		record, err := f.engine.Mint(ctx, f.admin, dec("1000"), models.CurrencyUSD)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionMoneyCreation, record.Type)
		assert.Equal(t, f.admin.ID, *record.FromUserID)
		assert.Nil(t, record.ToUserID)
		assertMoney(t, "0.00", f.balance(t, f.admin, models.CurrencyUSD))
	})

	t.Run("credit issuer credits the admin", func(t *testing.T) {
		f := newFixture(t, ledger.MintCreditIssuer)

		record, err := f.engine.Mint(ctx, f.admin, dec("1000"), models.CurrencyUSD)
		require.NoError(t, err)
		require.NotNil(t, record.ToUserID)
		assert.Equal(t, f.admin.ID, *record.ToUserID)
		assertMoney(t, "1000.00", f.balance(t, f.admin, models.CurrencyUSD))

		report, err := ledger.NewVerifier(f.mem).VerifyAll(ctx)
		require.NoError(t, err)
		assert.True(t, report.OK())
	})

	t.Run("clients are forbidden", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		client := f.user(t, "c@wallet.test", models.RoleClient)

		_, err := f.engine.Mint(ctx, client, dec("10"), models.CurrencyFC)
		assert.ErrorIs(t, err, ledger.ErrForbidden)
		assert.Len(t, f.records(t), 0)
	})

	t.Run("invalid amount", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		_, err := f.engine.Mint(ctx, f.admin, dec("0"), models.CurrencyFC)
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})

	t.Run("unknown policy falls back to log only", func(t *testing.T) {
		f := newFixture(t, "bogus")
		_, err := f.engine.Mint(ctx, f.admin, dec("10"), models.CurrencyFC)
		require.NoError(t, err)
		assertMoney(t, "0.00", f.balance(t, f.admin, models.CurrencyFC))
	})
}

func TestEngine_CreditAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the target and records a deposit", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		target := f.user(t, "t@wallet.test", models.RoleClient)

		record, err := f.engine.CreditAccount(ctx, f.admin, "T@wallet.test", dec("12.50"), models.CurrencyUSD)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionDeposit, record.Type)
		assert.Equal(t, f.admin.ID, *record.FromUserID)
		assert.Equal(t, target.ID, *record.ToUserID)
		assertMoney(t, "12.50", f.balance(t, target, models.CurrencyUSD))
		assert.Len(t, f.notifier.For(target.ID), 1)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		_, err := f.engine.CreditAccount(ctx, f.admin, "ghost@wallet.test", dec("1"), models.CurrencyFC)
		assert.ErrorIs(t, err, ledger.ErrUserNotFound)
	})

	t.Run("unknown user is reported before a bad amount", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		_, err := f.engine.CreditAccount(ctx, f.admin, "ghost@wallet.test", dec("-1"), models.CurrencyFC)
		assert.ErrorIs(t, err, ledger.ErrUserNotFound)
	})

	t.Run("clients are forbidden", func(t *testing.T) {
		f := newFixture(t, ledger.MintLogOnly)
		client := f.user(t, "c@wallet.test", models.RoleClient)
		_, err := f.engine.CreditAccount(ctx, client, client.Email, dec("1"), models.CurrencyFC)
		assert.ErrorIs(t, err, ledger.ErrForbidden)
		assertMoney(t, "0.00", f.balance(t, client, models.CurrencyFC))
	})
}

func TestEngine_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ledger.MintLogOnly)
	sender := f.user(t, "sender@wallet.test", models.RoleClient)
	recipient := f.user(t, "recipient@wallet.test", models.RoleClient)
	f.fund(t, sender, "100", models.CurrencyFC)

	const attempts = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Transfer(ctx, sender, ledger.TransferRequest{
				RecipientEmail: recipient.Email,
				Amount:         dec("10"),
				Currency:       models.CurrencyFC,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ledger.ErrInsufficientFunds):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, attempts-10, rejected)
	assertMoney(t, "0.00", f.balance(t, sender, models.CurrencyFC))
	assertMoney(t, "100.00", f.balance(t, recipient, models.CurrencyFC))
}

func TestEngine_ConservationAndReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ledger.MintLogOnly)

	users := make([]models.Identity, 4)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("u%d@wallet.test", i), models.RoleClient)
		f.fund(t, users[i], "50", models.CurrencyFC)
		f.fund(t, users[i], "5", models.CurrencyUSD)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := users[i%len(users)]
			to := users[(i+1+i/len(users))%len(users)]
			if from.ID == to.ID {
				to = users[(i+2)%len(users)]
			}
			_, _ = f.engine.Transfer(ctx, from, ledger.TransferRequest{
				RecipientEmail: to.Email,
				Amount:         dec("7.25"),
				Currency:       models.CurrencyFC,
			})
		}(i)
	}
	wg.Wait()

	total := decimal.Zero
	for _, u := range users {
		b := f.balance(t, u, models.CurrencyFC)
		assert.False(t, b.IsNegative())
		total = total.Add(b)
	}
	assertMoney(t, "200.00", total)

	for _, u := range users {
		assertMoney(t, "5.00", f.balance(t, u, models.CurrencyUSD))
	}

	report, err := ledger.NewVerifier(f.mem).VerifyAll(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%v", report.Mismatches)
	assert.Equal(t, len(users)+1, report.WalletsChecked)
}

// conflictStore fails the first n balance writes with ErrConflict.
type conflictStore struct {
	ledger.Store
	mu        sync.Mutex
	remaining int
	attempts  int
}

func (s *conflictStore) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	s.attempts++
	s.mu.Unlock()
	return s.Store.WithinTx(ctx, func(tx ledger.Tx) error {
		return fn(&conflictTx{Tx: tx, s: s})
	})
}

type conflictTx struct {
	ledger.Tx
	s *conflictStore
}

func (t *conflictTx) UpdateWalletBalance(ctx context.Context, walletID string, c models.Currency, balance decimal.Decimal, version int64, at time.Time) error {
	t.s.mu.Lock()
	fail := t.s.remaining > 0
	if fail {
		t.s.remaining--
	}
	t.s.mu.Unlock()
	if fail {
		return ledger.ErrConflict
	}
	return t.Tx.UpdateWalletBalance(ctx, walletID, c, balance, version, at)
}

func TestEngine_RetriesConflicts(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, conflicts int) (*conflictStore, *ledger.Engine, models.Identity, models.Identity) {
		f := newFixture(t, ledger.MintLogOnly)
		a := f.user(t, "a@wallet.test", models.RoleClient)
		b := f.user(t, "b@wallet.test", models.RoleClient)
		f.fund(t, a, "10", models.CurrencyFC)

		cs := &conflictStore{Store: f.mem, remaining: conflicts}
		engine := ledger.NewEngine(cs, nil, nil, ledger.Config{MaxRetries: 2, RetryBackoff: time.Millisecond})
		return cs, engine, a, b
	}

	t.Run("succeeds within the retry budget", func(t *testing.T) {
		cs, engine, a, b := setup(t, 2)
		_, err := engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: b.Email, Amount: dec("4"), Currency: models.CurrencyFC})
		require.NoError(t, err)
		assert.Equal(t, 3, cs.attempts)

		w, err := cs.Store.(*store.Memory).WalletByUserID(ctx, a.ID)
		require.NoError(t, err)
		assertMoney(t, "6.00", w.BalanceFC)
	})

	t.Run("gives up with ErrConflict", func(t *testing.T) {
		cs, engine, a, b := setup(t, 10)
		_, err := engine.Transfer(ctx, a, ledger.TransferRequest{RecipientEmail: b.Email, Amount: dec("4"), Currency: models.CurrencyFC})
		assert.ErrorIs(t, err, ledger.ErrConflict)
		assert.Equal(t, 3, cs.attempts)

		w, err := cs.Store.(*store.Memory).WalletByUserID(ctx, a.ID)
		require.NoError(t, err)
		assertMoney(t, "10.00", w.BalanceFC)
	})
}
