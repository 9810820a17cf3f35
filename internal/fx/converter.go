// Package fx converts monetary amounts between currencies through an
// external exchange-rate source.
package fx

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tagtrack/internal/core"
)

// RateSource looks up the from→to exchange rate. Implementations must return
// an error wrapping core.ErrConversionUnavailable when the rate cannot be
// obtained; callers never fall back to a 1:1 rate.
type RateSource interface {
	Rate(ctx context.Context, from, to core.Currency) (decimal.Decimal, error)
}

// Converter converts amounts using a RateSource. It is stateless apart from
// the rate cache its source may carry.
type Converter struct {
	source RateSource
}

func NewConverter(source RateSource) *Converter {
	return &Converter{source: source}
}

// Convert returns m re-denominated in the target currency, rounded half-up
// to two fractional digits at the point of conversion. A same-currency
// conversion returns the input unchanged without touching the rate source.
func (c *Converter) Convert(ctx context.Context, m core.Money, to core.Currency) (core.Money, error) {
	if m.Currency == to {
		return m, nil
	}
	if err := m.Validate(); err != nil {
		return core.Money{}, err
	}
	if !to.Valid() {
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrUnknownCurrency, to)
	}
	rate, err := c.source.Rate(ctx, m.Currency, to)
	if err != nil {
		return core.Money{}, fmt.Errorf("rate %s->%s: %w", m.Currency, to, err)
	}
	return core.NewMoney(m.Amount.Mul(rate), to).Round2(), nil
}
