// Package core provides the money codec and the domain types shared by the
// reconciler, the ledger and the aggregate updater.
//
// A monetary value is serialized as its currency glyph immediately followed
// by a decimal amount with comma thousands grouping, e.g. "€1,234.50".
// Parsing and formatting round-trip losslessly for any valid Money.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency-tagged decimal amount. The currency travels as an
// explicit field everywhere in memory; the glyph only matters at the
// spreadsheet boundary.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney builds a Money without rounding the amount.
func NewMoney(amount decimal.Decimal, c Currency) Money {
	return Money{Amount: amount, Currency: c}
}

// MoneyFromFloat is a convenience constructor for literals in tests and
// dialogue code. The value is rounded half-up to two places.
func MoneyFromFloat(v float64, c Currency) Money {
	return Money{Amount: decimal.NewFromFloat(v).Round(2), Currency: c}
}

// ParseMoney decodes a serialized monetary string. Thousands separators are
// stripped, an optional leading minus sign is honored, and the currency is
// resolved from the leading glyph. Returns ErrFormat when the glyph is
// unknown or the remainder is not a valid decimal.
//
// Examples:
//
//	ParseMoney("€1,234.50") -> 1234.50 EUR
//	ParseMoney("-£40")      -> -40 GBP
//	ParseMoney("A$12.00")   -> 12.00 AUD
func ParseMoney(s string) (Money, error) {
	text := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if text == "" {
		return Money{}, fmt.Errorf("%w: empty text", ErrFormat)
	}
	neg := false
	if strings.HasPrefix(text, "-") {
		neg = true
		text = text[1:]
	}
	cur, rest, ok := currencyFromGlyph(text)
	if !ok {
		return Money{}, fmt.Errorf("%w: no currency glyph in %q", ErrFormat, s)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rest))
	if err != nil {
		return Money{}, fmt.Errorf("%w: bad amount in %q", ErrFormat, s)
	}
	if neg {
		amount = amount.Neg()
	}
	return Money{Amount: amount, Currency: cur}, nil
}

// String renders the canonical serialized form: glyph, then the amount with
// two fractional digits and comma thousands grouping. A negative amount puts
// the minus sign before the glyph, matching what ParseMoney accepts.
func (m Money) String() string {
	amount := m.Amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return sign + m.Currency.Glyph() + groupThousands(intPart) + "." + fracPart
}

// Round2 returns the money rounded half-up to two fractional digits, the
// invariant every persisted write must hold.
func (m Money) Round2() Money {
	return Money{Amount: m.Amount.Round(2), Currency: m.Currency}
}

// Equal reports value equality regardless of decimal exponent.
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Add sums two amounts of the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub subtracts an amount of the same currency.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Validate rejects amounts with a missing currency tag.
func (m Money) Validate() error {
	if !m.Currency.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, m.Currency)
	}
	return nil
}

// groupThousands inserts comma separators into a bare digit string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
