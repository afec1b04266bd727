package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/walletfc/backend/internal/metrics"
	"github.com/walletfc/backend/internal/models"
)

// SignedAmount is the effect t had on userID's balance in t's currency.
//
//	transfer:       -amount for the sender, +amount for the recipient
//	purchase:       -amount for the buyer
//	deposit:        +amount for the recipient
//	money_creation: +amount for the recipient, when there is one
func SignedAmount(userID string, t *models.Transaction) decimal.Decimal {
	from := t.FromUserID != nil && *t.FromUserID == userID
	to := t.ToUserID != nil && *t.ToUserID == userID

	switch t.Type {
	case models.TransactionTransfer:
		if from {
			return t.Amount.Neg()
		}
		if to {
			return t.Amount
		}
	case models.TransactionPurchase:
		if from {
			return t.Amount.Neg()
		}
	case models.TransactionDeposit, models.TransactionMoneyCreation:
		if to {
			return t.Amount
		}
	}
	return decimal.Zero
}

// Replay folds txs, oldest first, into the balance they justify for userID in c.
func Replay(userID string, c models.Currency, txs []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for i := range txs {
		if txs[i].Currency != c || txs[i].Status != models.TransactionCompleted {
			continue
		}
		balance = balance.Add(SignedAmount(userID, &txs[i]))
	}
	return balance
}

type Mismatch struct {
	UserID   string          `json:"userId"`
	WalletID string          `json:"walletId"`
	Currency models.Currency `json:"currency"`
	Stored   decimal.Decimal `json:"stored"`
	Replayed decimal.Decimal `json:"replayed"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("user %s %s: stored %s, replayed %s",
		m.UserID, m.Currency, models.FormatMoney(m.Stored), models.FormatMoney(m.Replayed))
}

type VerifyReport struct {
	WalletsChecked int        `json:"walletsChecked"`
	Mismatches     []Mismatch `json:"mismatches"`
}

func (r *VerifyReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Verifier checks stored wallet balances against a replay of the ledger.
type Verifier struct {
	src ReplaySource
}

func NewVerifier(src ReplaySource) *Verifier {
	return &Verifier{src: src}
}

func (v *Verifier) VerifyWallet(ctx context.Context, w models.Wallet) ([]Mismatch, error) {
	txs, err := v.src.TransactionsForUser(ctx, w.UserID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", w.UserID, err)
	}

	var mismatches []Mismatch
	for _, c := range models.Currencies {
		replayed := Replay(w.UserID, c, txs)
		stored := w.Balance(c)
		if !stored.Equal(replayed) {
			mismatches = append(mismatches, Mismatch{
				UserID:   w.UserID,
				WalletID: w.ID,
				Currency: c,
				Stored:   stored,
				Replayed: replayed,
			})
		}
	}
	return mismatches, nil
}

func (v *Verifier) VerifyAll(ctx context.Context) (*VerifyReport, error) {
	wallets, err := v.src.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	report := &VerifyReport{Mismatches: []Mismatch{}}
	for _, w := range wallets {
		m, err := v.VerifyWallet(ctx, w)
		if err != nil {
			return nil, err
		}
		report.WalletsChecked++
		report.Mismatches = append(report.Mismatches, m...)
	}
	metrics.LedgerReplayMismatches.Add(float64(len(report.Mismatches)))
	return report, nil
}
