package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies a wallet holds.
type Currency string

const (
	CurrencyFC  Currency = "FC"
	CurrencyUSD Currency = "USD"
)

// Currencies lists every supported currency in a stable order.
var Currencies = []Currency{CurrencyFC, CurrencyUSD}

// MoneyScale is the number of fractional digits stored for every amount.
const MoneyScale = 2

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyFC, CurrencyUSD:
		return true
	}
	return false
}

// ParseCurrency normalises s and reports whether it names a supported currency.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

// HasMoneyScale reports whether d carries no more than MoneyScale fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// FormatMoney renders d with exactly two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
