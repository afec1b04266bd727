package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/audit"
	"github.com/walletfc/backend/internal/metrics"
	"github.com/walletfc/backend/internal/models"
)

// MintPolicy decides whether money creation credits anyone.
type MintPolicy string

const (
	// MintLogOnly records the money creation without touching any balance.
	MintLogOnly MintPolicy = "log_only"
	// MintCreditIssuer also credits the issuing admin and names them as recipient.
	MintCreditIssuer MintPolicy = "credit_issuer"
)

func (p MintPolicy) Valid() bool {
	return p == MintLogOnly || p == MintCreditIssuer
}

type Config struct {
	MaxRetries   int
	RetryBackoff time.Duration
	MintPolicy   MintPolicy
}

// Engine runs the ledger use cases. Each one validates, mutates balances and
// records the transaction in a single unit of work, then notifies after commit.
type Engine struct {
	store      Store
	mutator    *BalanceMutator
	recorder   *TransactionRecorder
	notifier   Notifier
	audit      *audit.Logger
	retry      RetryPolicy
	mintPolicy MintPolicy
}

func NewEngine(store Store, notifier Notifier, auditLogger *audit.Logger, cfg Config) *Engine {
	retry := RetryPolicy{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff}
	policy := cfg.MintPolicy
	if !policy.Valid() {
		policy = MintLogOnly
	}
	if auditLogger == nil {
		auditLogger = audit.NewLogger()
	}

	return &Engine{
		store:      store,
		mutator:    NewBalanceMutator(store, retry),
		recorder:   NewTransactionRecorder(),
		notifier:   notifier,
		audit:      auditLogger,
		retry:      retry,
		mintPolicy: policy,
	}
}

// Mutator exposes the engine's balance mutator for operator tooling.
func (e *Engine) Mutator() *BalanceMutator {
	return e.mutator
}

type TransferRequest struct {
	RecipientEmail string
	Amount         decimal.Decimal
	Currency       models.Currency
}

// Transfer moves funds from sender to the user registered under RecipientEmail.
func (e *Engine) Transfer(ctx context.Context, sender models.Identity, req TransferRequest) (*models.Transaction, error) {
	if !req.Currency.Valid() {
		return nil, ErrInvalidCurrency
	}
	email := NormalizeEmail(req.RecipientEmail)

	var (
		record    *models.Transaction
		recipient *models.User
	)
	err := e.run(ctx, "transfer", sender.ID, func(tx Tx) error {
		r, err := tx.UserByEmail(ctx, email)
		if errors.Is(err, ErrUserNotFound) {
			return ErrRecipientNotFound
		}
		if err != nil {
			return err
		}
		if r.ID == sender.ID {
			return ErrSelfTransferForbidden
		}
		if err := ValidateAmount(req.Amount); err != nil {
			return err
		}

		wallets, err := lockWallets(ctx, tx, sender.ID, r.ID)
		if err != nil {
			return err
		}
		if _, err := e.mutator.applyLocked(ctx, tx, wallets[sender.ID], req.Currency, req.Amount.Neg()); err != nil {
			return err
		}
		if _, err := e.mutator.applyLocked(ctx, tx, wallets[r.ID], req.Currency, req.Amount); err != nil {
			return err
		}

		record, err = e.recorder.Record(ctx, tx, RecordInput{
			Type:        models.TransactionTransfer,
			FromUserID:  sender.ID,
			ToUserID:    r.ID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Description: fmt.Sprintf("Transfer to %s", r.Email),
		})
		recipient = r
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notify(ctx, models.Notification{
		UserID:  recipient.ID,
		Title:   "Money Received",
		Message: fmt.Sprintf("You received %s %s from %s", models.FormatMoney(req.Amount), req.Currency, sender.Email),
	})
	return record, nil
}

// Purchase buys one unit of productID, paid in the product's currency.
func (e *Engine) Purchase(ctx context.Context, buyer models.Identity, productID string) (*models.Transaction, error) {
	var (
		record  *models.Transaction
		product *models.Product
	)
	err := e.run(ctx, "purchase", buyer.ID, func(tx Tx) error {
		p, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return ErrProductNotFound
		}
		if p.Stock <= 0 {
			return ErrOutOfStock
		}

		if _, err := e.mutator.ApplyDeltaTx(ctx, tx, buyer.ID, p.Currency, p.Price.Neg()); err != nil {
			return err
		}
		if err := tx.DecrementStock(ctx, p.ID, 1); err != nil {
			return err
		}

		record, err = e.recorder.Record(ctx, tx, RecordInput{
			Type:        models.TransactionPurchase,
			FromUserID:  buyer.ID,
			ProductID:   p.ID,
			Amount:      p.Price,
			Currency:    p.Currency,
			Description: fmt.Sprintf("Purchase: %s", p.Name),
		})
		product = p
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notify(ctx, models.Notification{
		UserID:  buyer.ID,
		Title:   "Purchase Successful",
		Message: fmt.Sprintf("You purchased %s for %s %s", product.Name, models.FormatMoney(product.Price), product.Currency),
	})
	return record, nil
}

// Mint records new currency supply. Under MintLogOnly no balance changes.
func (e *Engine) Mint(ctx context.Context, admin models.Identity, amount decimal.Decimal, c models.Currency) (*models.Transaction, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, ErrInvalidCurrency
	}

	var record *models.Transaction
	err := e.run(ctx, "mint", admin.ID, func(tx Tx) error {
		in := RecordInput{
			Type:        models.TransactionMoneyCreation,
			FromUserID:  admin.ID,
			Amount:      amount,
			Currency:    c,
			Description: fmt.Sprintf("Money creation: %s %s", models.FormatMoney(amount), c),
		}
		if e.mintPolicy == MintCreditIssuer {
			if _, err := e.mutator.ApplyDeltaTx(ctx, tx, admin.ID, c, amount); err != nil {
				return err
			}
			in.ToUserID = admin.ID
		}

		var err error
		record, err = e.recorder.Record(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CreditAccount deposits amount into the wallet of the user registered under targetEmail.
func (e *Engine) CreditAccount(ctx context.Context, admin models.Identity, targetEmail string, amount decimal.Decimal, c models.Currency) (*models.Transaction, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	if !c.Valid() {
		return nil, ErrInvalidCurrency
	}
	email := NormalizeEmail(targetEmail)

	var (
		record *models.Transaction
		target *models.User
	)
	err := e.run(ctx, "credit_account", admin.ID, func(tx Tx) error {
		u, err := tx.UserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if err := ValidateAmount(amount); err != nil {
			return err
		}

		if _, err := e.mutator.ApplyDeltaTx(ctx, tx, u.ID, c, amount); err != nil {
			return err
		}

		record, err = e.recorder.Record(ctx, tx, RecordInput{
			Type:        models.TransactionDeposit,
			FromUserID:  admin.ID,
			ToUserID:    u.ID,
			Amount:      amount,
			Currency:    c,
			Description: fmt.Sprintf("Account credited by admin: %s %s", models.FormatMoney(amount), c),
		})
		target = u
		return err
	})
	if err != nil {
		return nil, err
	}

	e.notify(ctx, models.Notification{
		UserID:  target.ID,
		Title:   "Account Credited",
		Message: fmt.Sprintf("Your account has been credited with %s %s", models.FormatMoney(amount), c),
	})
	return record, nil
}

// run executes fn as one unit of work, retrying write conflicts, and records
// metrics and the audit trail for the outcome.
func (e *Engine) run(ctx context.Context, operation, actorID string, fn func(tx Tx) error) error {
	start := time.Now()
	var committed *models.Transaction

	err := e.retry.Do(ctx, operation, func() error {
		return e.store.WithinTx(ctx, func(tx Tx) error {
			return fn(&recordingTx{Tx: tx, last: &committed})
		})
	})
	metrics.ObserveLedgerOperation(operation, outcome(err), time.Since(start))

	if err != nil {
		if !IsClientError(err) && !IsNotFound(err) {
			log.Printf("[LEDGER] %s failed for user %s: %v", operation, actorID, err)
		}
		e.audit.LogError(operation, actorID, err)
		return err
	}
	if committed != nil {
		e.audit.LogTransaction(committed)
	}
	return nil
}

// recordingTx remembers the last record inserted so run can audit it after commit.
type recordingTx struct {
	Tx
	last **models.Transaction
}

func (t *recordingTx) InsertTransaction(ctx context.Context, record *models.Transaction) error {
	if err := t.Tx.InsertTransaction(ctx, record); err != nil {
		return err
	}
	*t.last = record
	return nil
}

func (e *Engine) notify(ctx context.Context, n models.Notification) {
	if e.notifier == nil {
		return
	}
	// The ledger change is already committed; the request context may be
	// cancelled by the time delivery runs.
	e.notifier.Notify(context.WithoutCancel(ctx), n)
}

// lockWallets locks the wallets of userIDs in ascending id order.
func lockWallets(ctx context.Context, tx Tx, userIDs ...string) (map[string]*models.Wallet, error) {
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)

	wallets := make(map[string]*models.Wallet, len(ids))
	for _, id := range ids {
		if _, ok := wallets[id]; ok {
			continue
		}
		w, err := tx.LockWallet(ctx, id)
		if err != nil {
			return nil, err
		}
		wallets[id] = w
	}
	return wallets, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case IsNotFound(err):
		return "not_found"
	case IsClientError(err):
		return "rejected"
	default:
		return "error"
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
