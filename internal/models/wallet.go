package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's FC and USD balances.
type Wallet struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"userId" db:"user_id"`
	BalanceFC  decimal.Decimal `json:"balanceFC" db:"balance_fc"`
	BalanceUSD decimal.Decimal `json:"balanceUSD" db:"balance_usd"`
	Version    int64           `json:"-" db:"version"` // for optimistic locking
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

type balanceField struct {
	get func(*Wallet) decimal.Decimal
	set func(*Wallet, decimal.Decimal)
}

var balanceFields = map[Currency]balanceField{
	CurrencyFC: {
		get: func(w *Wallet) decimal.Decimal { return w.BalanceFC },
		set: func(w *Wallet, d decimal.Decimal) { w.BalanceFC = d },
	},
	CurrencyUSD: {
		get: func(w *Wallet) decimal.Decimal { return w.BalanceUSD },
		set: func(w *Wallet, d decimal.Decimal) { w.BalanceUSD = d },
	},
}

// Balance returns the balance held in currency c. Unknown currencies read as zero.
func (w *Wallet) Balance(c Currency) decimal.Decimal {
	f, ok := balanceFields[c]
	if !ok {
		return decimal.Zero
	}
	return f.get(w)
}

// SetBalance overwrites the balance for c and reports whether c is supported.
// Only the ledger's balance mutator and stores should call it.
func (w *Wallet) SetBalance(c Currency, d decimal.Decimal) bool {
	f, ok := balanceFields[c]
	if !ok {
		return false
	}
	f.set(w, d)
	return true
}

// WalletResponse is the API view of a wallet with fixed two-digit balances.
type WalletResponse struct {
	ID         string    `json:"id" example:"5d0f6a1e-0c59-4b8e-9d4f-0e2d7c1b9a11"`
	UserID     string    `json:"userId"`
	BalanceFC  string    `json:"balanceFC" example:"100.00"`
	BalanceUSD string    `json:"balanceUSD" example:"0.00"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (w *Wallet) Response() WalletResponse {
	return WalletResponse{
		ID:         w.ID,
		UserID:     w.UserID,
		BalanceFC:  FormatMoney(w.BalanceFC),
		BalanceUSD: FormatMoney(w.BalanceUSD),
		UpdatedAt:  w.UpdatedAt,
	}
}
