// Package ledger accumulates the expense entries of one wizard session.
package ledger

import (
	"context"
	"fmt"

	"tagtrack/internal/core"
)

// Converter is the slice of the fx converter the ledger needs when the
// session currency changes mid-session.
type Converter interface {
	Convert(ctx context.Context, m core.Money, to core.Currency) (core.Money, error)
}

// Ledger is the in-memory session log of (category, amount) pairs. It holds
// a single currency: callers normalize before Add, the ledger never converts
// on its own.
type Ledger struct {
	entries []core.ExpenseEntry
}

func New() *Ledger {
	return &Ledger{}
}

// Add appends one confirmed expense. Entries must share the currency of the
// first entry; a mismatch is a caller bug surfaced as ErrCurrencyMismatch.
func (l *Ledger) Add(category core.Category, amount core.Money) error {
	entry := core.ExpenseEntry{Category: category, Amount: amount}
	if err := entry.Validate(); err != nil {
		return err
	}
	if len(l.entries) > 0 && l.entries[0].Amount.Currency != amount.Currency {
		return fmt.Errorf("%w: ledger holds %s, entry is %s",
			core.ErrCurrencyMismatch, l.entries[0].Amount.Currency, amount.Currency)
	}
	l.entries = append(l.entries, entry)
	return nil
}

// Merge collapses the session log so each category appears once, summing
// duplicate entries. Merging is idempotent: folding an already-merged ledger
// yields the same totals.
func (l *Ledger) Merge() map[core.Category]core.Money {
	merged := make(map[core.Category]core.Money, len(l.entries))
	for _, e := range l.entries {
		if prev, ok := merged[e.Category]; ok {
			sum, err := prev.Add(e.Amount)
			if err != nil {
				// Add enforces a single currency, so this cannot happen.
				continue
			}
			merged[e.Category] = sum
		} else {
			merged[e.Category] = e.Amount
		}
	}
	return merged
}

// Categories returns the logged categories in first-seen order, for stable
// reporting and aggregate writes.
func (l *Ledger) Categories() []core.Category {
	seen := map[core.Category]struct{}{}
	order := make([]core.Category, 0, len(l.entries))
	for _, e := range l.entries {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		order = append(order, e.Category)
	}
	return order
}

// Total sums all entries. An empty ledger totals zero in the given currency.
func (l *Ledger) Total(currency core.Currency) core.Money {
	total := core.MoneyFromFloat(0, currency)
	for _, e := range l.entries {
		if sum, err := total.Add(e.Amount); err == nil {
			total = sum
		}
	}
	return total
}

// ConvertTo rewrites every entry into the given currency. Used when the user
// changes the session currency after expenses were already logged, so the
// final summation runs in the session's final currency.
func (l *Ledger) ConvertTo(ctx context.Context, conv Converter, to core.Currency) error {
	for i, e := range l.entries {
		converted, err := conv.Convert(ctx, e.Amount, to)
		if err != nil {
			return fmt.Errorf("convert ledger entry %s: %w", e.Category, err)
		}
		l.entries[i].Amount = converted
	}
	return nil
}

// Reset clears the session log for a fresh logging session.
func (l *Ledger) Reset() {
	l.entries = nil
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the raw session log.
func (l *Ledger) Entries() []core.ExpenseEntry {
	return append([]core.ExpenseEntry(nil), l.entries...)
}
