// Package services orchestrates one wizard session against the spreadsheet
// store, the rate converter and the aggregate updater.
//
// The operation order is strict: fetch budget/remainder, collect expenses,
// merge and finalize, write the month sheet, accumulate into Overview, then
// publish the archive event. The aggregate step depends on a merged ledger
// and a finalized remainder, so no persistence happens before finalization.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tagtrack/internal/aggregate"
	"tagtrack/internal/amqp"
	"tagtrack/internal/budget"
	"tagtrack/internal/core"
	"tagtrack/internal/fx"
	"tagtrack/internal/ledger"
	"tagtrack/internal/sheets"
)

// Session is the explicit per-run state threaded through the service: the
// reconciler owns the budget figures, the ledger owns the expense log.
type Session struct {
	Month      time.Month
	Reconciler *budget.Reconciler
	Ledger     *ledger.Ledger
}

// Currency returns the session's working currency.
func (s *Session) Currency() core.Currency {
	return s.Reconciler.Currency()
}

type SessionService struct {
	store      sheets.CellStore
	conv       *fx.Converter
	updater    *aggregate.Updater
	amqpClient *amqp.Client
}

// NewSessionService wires the service. amqpClient may be nil; archiving is
// then skipped.
func NewSessionService(store sheets.CellStore, conv *fx.Converter, updater *aggregate.Updater, amqpClient *amqp.Client) *SessionService {
	return &SessionService{
		store:      store,
		conv:       conv,
		updater:    updater,
		amqpClient: amqpClient,
	}
}

// StartSession reads the designated cells of the month sheet and feeds them
// into a fresh reconciler. An empty budget cell means no budget was ever
// stored; an empty remainder cell next to a written budget cell is the
// partial-write edge the reconciler recovers from.
func (s *SessionService) StartSession(ctx context.Context, month time.Month) (*Session, error) {
	rec, err := budget.New(month)
	if err != nil {
		return nil, err
	}

	sheet := core.MonthName(month)
	budgetText, err := s.store.GetCell(ctx, sheet, sheets.BudgetCell)
	if err != nil {
		return nil, fmt.Errorf("fetch budget cell: %w", err)
	}

	var prior *core.BudgetState
	if budgetText != "" {
		storedBudget, err := core.ParseMoney(budgetText)
		if err != nil {
			return nil, fmt.Errorf("decode budget cell: %w", err)
		}

		remainderText, err := s.store.GetCell(ctx, sheet, sheets.RemainderCell)
		if err != nil {
			return nil, fmt.Errorf("fetch remainder cell: %w", err)
		}

		prior = &core.BudgetState{
			Month:    month,
			Currency: storedBudget.Currency,
			Budget:   storedBudget,
		}
		if remainderText != "" {
			storedRemainder, err := core.ParseMoney(remainderText)
			if err != nil {
				return nil, fmt.Errorf("decode remainder cell: %w", err)
			}
			prior.Remainder = storedRemainder
		}
	}

	state := rec.Start(prior)
	slog.InfoContext(ctx, "Session started",
		"month", month.String(),
		"state", string(state),
		"prior_budget", budgetText != "")

	return &Session{Month: month, Reconciler: rec, Ledger: ledger.New()}, nil
}

// SetInitialBudget records the first-ever budget for the month.
func (s *SessionService) SetInitialBudget(sess *Session, m core.Money) error {
	return sess.Reconciler.SetInitialBudget(m)
}

// ReuseBudget keeps the persisted budget and remainder.
func (s *SessionService) ReuseBudget(sess *Session) error {
	return sess.Reconciler.Reuse()
}

// ChangeBudget swaps the budget amount, delta-adjusting the remainder.
func (s *SessionService) ChangeBudget(sess *Session, newBudget core.Money) error {
	return sess.Reconciler.ChangeBudget(newBudget)
}

// ChangeCurrency re-denominates the session and normalizes every expense
// already logged, so the final summation runs in the new currency.
func (s *SessionService) ChangeCurrency(ctx context.Context, sess *Session, to core.Currency) error {
	if err := sess.Reconciler.ChangeCurrency(ctx, s.conv, to); err != nil {
		return err
	}
	return sess.Ledger.ConvertTo(ctx, s.conv, to)
}

// AddExpense logs one confirmed expense in the session currency.
func (s *SessionService) AddExpense(sess *Session, category core.Category, amount core.Money) error {
	if amount.Currency != sess.Currency() {
		return fmt.Errorf("%w: expense in %s, session in %s",
			core.ErrCurrencyMismatch, amount.Currency, sess.Currency())
	}
	return sess.Ledger.Add(category, amount)
}

// RestartLogging clears the expense log for a fresh logging round without
// touching the budget state.
func (s *SessionService) RestartLogging(sess *Session) {
	sess.Ledger.Reset()
}

// Complete finalizes and persists the session. The remainder and budget
// cells are written before any aggregate accumulation; a schema mismatch in
// Overview (ErrCategoryNotFound) therefore fails the aggregate step only and
// is reported after the budget writes already succeeded.
func (s *SessionService) Complete(ctx context.Context, sess *Session) (core.BudgetState, error) {
	merged := sess.Ledger.Merge()
	categories := sess.Ledger.Categories()
	total := sess.Ledger.Total(sess.Currency())

	final, err := sess.Reconciler.Finalize(total)
	if err != nil {
		return core.BudgetState{}, err
	}

	sheet := core.MonthName(sess.Month)
	if err := s.store.SetCell(ctx, sheet, sheets.BudgetCell, final.Budget.String()); err != nil {
		return final, fmt.Errorf("persist budget: %w", err)
	}
	if err := s.store.SetCell(ctx, sheet, sheets.RemainderCell, final.Remainder.String()); err != nil {
		return final, fmt.Errorf("persist remainder: %w", err)
	}
	for _, cat := range categories {
		row := []string{string(cat), merged[cat].Round2().String()}
		if err := s.store.AppendRow(ctx, sheet, row); err != nil {
			return final, fmt.Errorf("append expense row: %w", err)
		}
	}

	// Aggregate accumulation runs exactly once per session per category;
	// the strict ordering above is what upholds that guarantee.
	var aggErr error
	for _, cat := range categories {
		if err := s.updater.AccumulateCategory(ctx, cat, sess.Month, merged[cat]); err != nil {
			aggErr = errors.Join(aggErr, err)
		}
	}

	if final.Remainder.IsNegative() {
		slog.WarnContext(ctx, "Budget overspent",
			"month", sess.Month.String(),
			"remainder", final.Remainder.String())
	}

	s.publishSessionRecorded(ctx, final, categories, merged)

	if aggErr != nil {
		return final, fmt.Errorf("aggregate update: %w", aggErr)
	}
	return final, nil
}

// publishSessionRecorded is best-effort: the spreadsheet writes already
// succeeded, a lost archive event never fails the session.
func (s *SessionService) publishSessionRecorded(ctx context.Context, state core.BudgetState, categories []core.Category, merged map[core.Category]core.Money) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping archive event")
		return
	}
	msg := amqp.NewSessionRecordedMessage(state, categories, merged)
	if err := s.amqpClient.PublishSessionRecorded(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish archive event",
			"month", state.Month, "error", err)
	}
}
