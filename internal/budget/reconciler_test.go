package budget

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagtrack/internal/core"
)

type fixedRateConverter struct {
	rates map[string]float64
	fail  bool
}

func (c fixedRateConverter) Convert(_ context.Context, m core.Money, to core.Currency) (core.Money, error) {
	if m.Currency == to {
		return m, nil
	}
	if c.fail {
		return core.Money{}, fmt.Errorf("%w: rate service down", core.ErrConversionUnavailable)
	}
	rate, ok := c.rates[string(m.Currency)+":"+string(to)]
	if !ok {
		return core.Money{}, fmt.Errorf("%w: no rate", core.ErrConversionUnavailable)
	}
	return core.NewMoney(m.Amount.Mul(decimal.NewFromFloat(rate)), to).Round2(), nil
}

func eur(v float64) core.Money { return core.MoneyFromFloat(v, core.EUR) }
func usd(v float64) core.Money { return core.MoneyFromFloat(v, core.USD) }

func TestNoPriorBudgetBaseline(t *testing.T) {
	r, err := New(3)
	require.NoError(t, err)

	state := r.Start(nil)
	assert.Equal(t, StateAwaitingBudgetInput, state)

	require.NoError(t, r.SetInitialBudget(eur(500)))
	assert.Equal(t, StateBudgetConfirmed, r.State())

	// First-ever budget: remainder baseline equals the budget.
	assert.True(t, r.Remainder().Equal(eur(500)), "remainder %s", r.Remainder())
}

func TestReuseKeepsRemainderVerbatim(t *testing.T) {
	r, err := New(3)
	require.NoError(t, err)

	state := r.Start(&core.BudgetState{
		Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40),
	})
	assert.Equal(t, StateAwaitingReuseOrChange, state)

	require.NoError(t, r.Reuse())
	assert.True(t, r.Remainder().Equal(eur(40)))
	assert.True(t, r.Budget().Equal(eur(100)))
}

func TestBudgetChangeAdjustsByDelta(t *testing.T) {
	r, _ := New(3)
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40)})

	// 100 -> 150 with prior remainder 40: remainder' = 40 + 50 = 90.
	require.NoError(t, r.ChangeBudget(eur(150)))
	assert.True(t, r.Remainder().Equal(eur(90)), "remainder %s", r.Remainder())
	assert.True(t, r.Budget().Equal(eur(150)))
}

func TestBudgetDecreaseCanGoNegative(t *testing.T) {
	r, _ := New(3)
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40)})

	require.NoError(t, r.ChangeBudget(eur(50)))
	assert.True(t, r.Remainder().Equal(eur(-10)), "remainder %s", r.Remainder())
	assert.True(t, r.Remainder().IsNegative())
}

func TestCurrencyChangeConvertsRemainder(t *testing.T) {
	conv := fixedRateConverter{rates: map[string]float64{"EUR:USD": 1.10}}
	r, _ := New(3)
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40)})

	require.NoError(t, r.ChangeCurrency(context.Background(), conv, core.USD))

	// 40 EUR at 1.10 = 44.00 USD, rounded half-up to 2 decimals.
	assert.True(t, r.Remainder().Equal(usd(44)), "remainder %s", r.Remainder())
	// The budget amount is reinterpreted in the new currency, not converted.
	assert.True(t, r.Budget().Equal(usd(100)), "budget %s", r.Budget())
	assert.Equal(t, core.USD, r.Currency())
}

func TestCurrencyThenBudgetChange(t *testing.T) {
	conv := fixedRateConverter{rates: map[string]float64{"EUR:USD": 1.10}}
	r, _ := New(3)
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40)})

	require.NoError(t, r.ChangeCurrency(context.Background(), conv, core.USD))
	// Budget delta is computed in the new currency: 44 + (150 - 100) = 94.
	require.NoError(t, r.ChangeBudget(usd(150)))
	assert.True(t, r.Remainder().Equal(usd(94)), "remainder %s", r.Remainder())
}

func TestConversionFailureAbortsCurrencyChange(t *testing.T) {
	conv := fixedRateConverter{fail: true}
	r, _ := New(3)
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40)})

	err := r.ChangeCurrency(context.Background(), conv, core.USD)
	require.ErrorIs(t, err, core.ErrConversionUnavailable)

	// The session stays on the old currency; no silent 1:1 fallback.
	assert.Equal(t, core.EUR, r.Currency())
	assert.True(t, r.Remainder().Equal(eur(40)))
	assert.Equal(t, StateAwaitingReuseOrChange, r.State())
}

func TestPartiallyWrittenStoreRecovers(t *testing.T) {
	r, _ := New(3)
	// Budget cell written, remainder cell empty (crashed prior session):
	// remainder defaults to the full budget.
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100)})

	require.NoError(t, r.Reuse())
	assert.True(t, r.Remainder().Equal(eur(100)), "remainder %s", r.Remainder())
}

func TestFinalizeDeductsSessionExpenses(t *testing.T) {
	r, _ := New(3)
	r.Start(&core.BudgetState{Month: 3, Currency: core.EUR, Budget: eur(100), Remainder: eur(40)})
	require.NoError(t, r.ChangeBudget(eur(150))) // remainder' = 90

	final, err := r.Finalize(eur(60))
	require.NoError(t, err)
	assert.True(t, final.Remainder.Equal(eur(30)), "remainder %s", final.Remainder)
	assert.False(t, r.Overspent())

	// Finalize runs exactly once per session.
	_, err = r.Finalize(eur(0))
	require.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestFinalizePreservesNegativeSign(t *testing.T) {
	r, _ := New(3)
	r.Start(nil)
	require.NoError(t, r.SetInitialBudget(eur(50)))

	final, err := r.Finalize(eur(80))
	require.NoError(t, err)
	assert.True(t, final.Remainder.Equal(eur(-30)), "remainder %s", final.Remainder)
	assert.True(t, r.Overspent())
}

func TestTransitionGuards(t *testing.T) {
	r, _ := New(3)
	r.Start(nil)

	// Reuse and change paths are closed when no prior budget exists.
	require.ErrorIs(t, r.Reuse(), ErrBadTransition)
	require.ErrorIs(t, r.ChangeBudget(eur(100)), ErrBadTransition)
	require.ErrorIs(t, r.ChangeCurrency(context.Background(), fixedRateConverter{}, core.USD), ErrBadTransition)
	_, err := r.Finalize(eur(0))
	require.ErrorIs(t, err, ErrBadTransition)

	// ChangeBudget without a preceding currency change is closed once confirmed.
	require.NoError(t, r.SetInitialBudget(eur(100)))
	require.ErrorIs(t, r.ChangeBudget(eur(120)), ErrBadTransition)
}

func TestInvalidMonth(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, core.ErrInvalidMonth)
	_, err = New(13)
	require.ErrorIs(t, err, core.ErrInvalidMonth)
}
