// Package budget implements the reconciliation state machine that carries
// the remaining budget across independent sessions.
//
// Each session starts from whatever the month sheet holds, lets the user
// reuse or change the budget, and ends with a single finalize step that
// deducts the session's merged expenses. The remainder is never overwritten
// blindly: budget changes adjust it by the delta and currency changes
// convert it, because the persisted remainder already reflects money spent
// under the old budget.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tagtrack/internal/core"
)

// State names the positions of the reconciliation machine.
type State string

const (
	StateNoPriorBudget         State = "no_prior_budget"
	StateAwaitingBudgetInput   State = "awaiting_budget_input"
	StatePriorBudgetFound      State = "prior_budget_found"
	StateAwaitingReuseOrChange State = "awaiting_reuse_or_change"
	StateBudgetConfirmed       State = "budget_confirmed"
)

var (
	ErrBadTransition    = errors.New("reconciler: operation not allowed in current state")
	ErrAlreadyFinalized = errors.New("reconciler: session already finalized")
)

// Converter is the slice of fx the reconciler needs for currency changes.
type Converter interface {
	Convert(ctx context.Context, m core.Money, to core.Currency) (core.Money, error)
}

// Reconciler owns the budget state of one session. It is the only component
// allowed to derive a new remainder.
type Reconciler struct {
	month time.Month
	state State

	currency  core.Currency
	budget    core.Money
	remainder core.Money

	currencyChanged bool
	finalized       bool
}

// New creates a reconciler for one month's session.
func New(month time.Month) (*Reconciler, error) {
	if !core.ValidMonth(month) {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	return &Reconciler{month: month, state: StateNoPriorBudget}, nil
}

// Start feeds the persisted budget state into the machine. A nil prior means
// no budget was ever stored for this month and the user must supply one.
//
// Crash-recovery edge: a prior with a budget but no remainder (the store was
// only partially written) is treated as remainder = budget, i.e. no expenses
// recorded yet.
func (r *Reconciler) Start(prior *core.BudgetState) State {
	if prior == nil {
		r.state = StateAwaitingBudgetInput
		return r.state
	}
	r.currency = prior.Currency
	r.budget = prior.Budget
	if prior.Remainder.Currency.Valid() {
		r.remainder = prior.Remainder
	} else {
		r.remainder = prior.Budget
	}
	r.state = StateAwaitingReuseOrChange
	return r.state
}

// SetInitialBudget records the first-ever budget for this month. The budget
// doubles as the remainder baseline since nothing was ever deducted.
func (r *Reconciler) SetInitialBudget(m core.Money) error {
	if r.state != StateAwaitingBudgetInput {
		return fmt.Errorf("%w: set initial budget in %s", ErrBadTransition, r.state)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	r.currency = m.Currency
	r.budget = m.Round2()
	r.remainder = m.Round2()
	r.state = StateBudgetConfirmed
	return nil
}

// Reuse keeps the persisted budget, currency and remainder verbatim.
func (r *Reconciler) Reuse() error {
	if r.state != StateAwaitingReuseOrChange {
		return fmt.Errorf("%w: reuse in %s", ErrBadTransition, r.state)
	}
	r.state = StateBudgetConfirmed
	return nil
}

// ChangeBudget replaces the budget while keeping the currency, adjusting the
// remainder by the delta: remainder' = remainder + (new - old). Allowed
// directly after Start, or after ChangeCurrency (then the delta is computed
// in the new currency).
func (r *Reconciler) ChangeBudget(newBudget core.Money) error {
	switch r.state {
	case StateAwaitingReuseOrChange:
	case StateBudgetConfirmed:
		if !r.currencyChanged {
			return fmt.Errorf("%w: change budget in %s", ErrBadTransition, r.state)
		}
	default:
		return fmt.Errorf("%w: change budget in %s", ErrBadTransition, r.state)
	}
	if r.finalized {
		return ErrAlreadyFinalized
	}
	if newBudget.Currency != r.currency {
		return fmt.Errorf("%w: budget in %s, session in %s",
			core.ErrCurrencyMismatch, newBudget.Currency, r.currency)
	}
	if !newBudget.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	delta, err := newBudget.Sub(r.budget)
	if err != nil {
		return err
	}
	adjusted, err := r.remainder.Add(delta)
	if err != nil {
		return err
	}
	r.budget = newBudget.Round2()
	r.remainder = adjusted.Round2()
	r.state = StateBudgetConfirmed
	return nil
}

// ChangeCurrency re-denominates the session. The remainder is converted at
// the live rate; the budget amount is reinterpreted in the new currency
// unchanged, so a subsequent ChangeBudget computes its delta in the new
// currency. A failed rate lookup aborts the change and leaves the old
// currency in place.
func (r *Reconciler) ChangeCurrency(ctx context.Context, conv Converter, to core.Currency) error {
	if r.state != StateAwaitingReuseOrChange {
		return fmt.Errorf("%w: change currency in %s", ErrBadTransition, r.state)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownCurrency, to)
	}
	if to == r.currency {
		r.state = StateBudgetConfirmed
		return nil
	}

	converted, err := conv.Convert(ctx, r.remainder, to)
	if err != nil {
		return err
	}
	r.remainder = converted
	r.budget = core.NewMoney(r.budget.Amount, to)
	r.currency = to
	r.currencyChanged = true
	r.state = StateBudgetConfirmed
	return nil
}

// Finalize deducts the session's merged expense total and returns the state
// to persist. It runs exactly once, after all expenses are entered. The sign
// of the remainder is preserved; overspending shows as a negative remainder.
func (r *Reconciler) Finalize(expenseTotal core.Money) (core.BudgetState, error) {
	if r.state != StateBudgetConfirmed {
		return core.BudgetState{}, fmt.Errorf("%w: finalize in %s", ErrBadTransition, r.state)
	}
	if r.finalized {
		return core.BudgetState{}, ErrAlreadyFinalized
	}
	if expenseTotal.Currency != r.currency {
		return core.BudgetState{}, fmt.Errorf("%w: expenses in %s, session in %s",
			core.ErrCurrencyMismatch, expenseTotal.Currency, r.currency)
	}

	final, err := r.remainder.Sub(expenseTotal)
	if err != nil {
		return core.BudgetState{}, err
	}
	r.remainder = final.Round2()
	r.finalized = true

	return core.BudgetState{
		Month:     r.month,
		Currency:  r.currency,
		Budget:    r.budget.Round2(),
		Remainder: r.remainder,
	}, nil
}

// State returns the machine's current position.
func (r *Reconciler) State() State {
	return r.state
}

// Currency returns the session currency as currently confirmed or loaded.
func (r *Reconciler) Currency() core.Currency {
	return r.currency
}

// Budget returns the working budget.
func (r *Reconciler) Budget() core.Money {
	return r.budget
}

// Remainder returns the working remainder (pre-finalize: before the session's
// expenses are deducted).
func (r *Reconciler) Remainder() core.Money {
	return r.remainder
}

// Overspent reports whether the finalized remainder went negative.
func (r *Reconciler) Overspent() bool {
	return r.finalized && r.remainder.IsNegative()
}
