package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tagtrack/internal/budget"
	"tagtrack/internal/core"
	"tagtrack/internal/services"
)

// Wizard runs the interactive expense-logging dialogue. It validates input
// shape and reprompts on bad input; all domain decisions live in the service
// layer.
type Wizard struct {
	svc *services.SessionService
	in  *bufio.Scanner
	out io.Writer
}

func NewWizard(svc *services.SessionService, in io.Reader, out io.Writer) *Wizard {
	return &Wizard{svc: svc, in: bufio.NewScanner(in), out: out}
}

// Run drives one full session: pick a month, settle the budget, log expenses
// until "done", then persist. Returns nil when the user quits early.
func (w *Wizard) Run(ctx context.Context) error {
	month, ok := w.promptMonth()
	if !ok {
		return nil
	}

	sess, err := w.svc.StartSession(ctx, month)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	if ok, err := w.settleBudget(ctx, sess); err != nil || !ok {
		return err
	}

	if ok := w.logExpenses(sess); !ok {
		return nil
	}

	final, err := w.svc.Complete(ctx, sess)
	if err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			fmt.Fprintf(w.out, "Budget saved, but the Overview sheet is missing a category column: %v\n", err)
			return nil
		}
		return fmt.Errorf("complete session: %w", err)
	}

	fmt.Fprintf(w.out, "Recorded. %s budget %s, remaining %s.\n",
		core.MonthName(final.Month), final.Budget, final.Remainder)
	if final.Remainder.IsNegative() {
		fmt.Fprintln(w.out, "You are over budget this month.")
	}
	return nil
}

func (w *Wizard) promptMonth() (time.Month, bool) {
	for {
		line, ok := w.prompt("Which month are you logging for? (e.g. July)")
		if !ok || isQuit(line) {
			return 0, false
		}
		for m := time.January; m <= time.December; m++ {
			if strings.EqualFold(line, m.String()) {
				return m, true
			}
		}
		fmt.Fprintf(w.out, "%q is not a month name, try again.\n", line)
	}
}

// settleBudget walks the reconciler to a confirmed budget. Returns false
// without error when the user quits.
func (w *Wizard) settleBudget(ctx context.Context, sess *services.Session) (bool, error) {
	if sess.Reconciler.State() == budget.StateAwaitingBudgetInput {
		fmt.Fprintln(w.out, "No budget is stored for this month yet.")
		m, ok := w.promptMoney("Enter the monthly budget (e.g. €1,500.00):")
		if !ok {
			return false, nil
		}
		if err := w.svc.SetInitialBudget(sess, m); err != nil {
			return false, err
		}
		return true, nil
	}

	fmt.Fprintf(w.out, "Stored budget: %s, remaining: %s.\n",
		sess.Reconciler.Budget(), sess.Reconciler.Remainder())

	for {
		line, ok := w.prompt("Keep it? (keep / change amount / change currency)")
		if !ok || isQuit(line) {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "keep", "k", "yes", "y":
			return true, w.svc.ReuseBudget(sess)
		case "change amount", "amount", "a":
			m, ok := w.promptMoney(fmt.Sprintf("Enter the new budget in %s:", sess.Currency()))
			if !ok {
				return false, nil
			}
			if err := w.svc.ChangeBudget(sess, m); err != nil {
				if errors.Is(err, core.ErrCurrencyMismatch) || errors.Is(err, core.ErrInvalidAmount) {
					fmt.Fprintf(w.out, "Cannot use that budget: %v\n", err)
					continue
				}
				return false, err
			}
			fmt.Fprintf(w.out, "Budget updated, remaining is now %s.\n", sess.Reconciler.Remainder())
			return true, nil
		case "change currency", "currency", "c":
			cur, ok := w.promptCurrency()
			if !ok {
				return false, nil
			}
			if err := w.svc.ChangeCurrency(ctx, sess, cur); err != nil {
				if errors.Is(err, core.ErrConversionUnavailable) {
					fmt.Fprintln(w.out, "Exchange rate unavailable right now, keeping the current currency.")
					continue
				}
				return false, err
			}
			fmt.Fprintf(w.out, "Switched to %s, remaining is now %s.\n", cur, sess.Reconciler.Remainder())
			// The budget amount carried over; offer to adjust it in the
			// new currency.
			line, ok := w.prompt("Adjust the budget amount too? (yes/no)")
			if !ok || isQuit(line) {
				return false, nil
			}
			if strings.EqualFold(line, "yes") || strings.EqualFold(line, "y") {
				m, ok := w.promptMoney(fmt.Sprintf("Enter the new budget in %s:", cur))
				if !ok {
					return false, nil
				}
				if err := w.svc.ChangeBudget(sess, m); err != nil {
					return false, err
				}
				fmt.Fprintf(w.out, "Budget updated, remaining is now %s.\n", sess.Reconciler.Remainder())
			}
			return true, nil
		default:
			fmt.Fprintln(w.out, "Please answer keep, change amount or change currency.")
		}
	}
}

// logExpenses collects (category, amount) pairs until "done". Returns false
// when the user quits instead of finishing.
func (w *Wizard) logExpenses(sess *services.Session) bool {
	fmt.Fprintf(w.out, "Log expenses in %s. Categories: %s.\n",
		sess.Currency(), categoryList())
	fmt.Fprintln(w.out, "Type 'done' to finish, 'list' to review, 'restart' to discard this session's expenses, 'quit' to abort.")

	for {
		line, ok := w.prompt("Category:")
		if !ok || isQuit(line) {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "done", "d":
			return true
		case "list", "l":
			entries := sess.Ledger.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(w.out, "Nothing logged yet.")
				continue
			}
			for _, e := range entries {
				fmt.Fprintf(w.out, "  %s %s\n", e.Category, e.Amount)
			}
			continue
		case "restart":
			w.svc.RestartLogging(sess)
			fmt.Fprintln(w.out, "Expense log cleared.")
			continue
		}

		cat, err := core.ParseCategory(line)
		if err != nil {
			fmt.Fprintf(w.out, "Unknown category %q. Choose one of: %s.\n", line, categoryList())
			continue
		}

		m, ok := w.promptMoney(fmt.Sprintf("Amount for %s:", cat))
		if !ok {
			return false
		}
		if m.Currency != sess.Currency() {
			fmt.Fprintf(w.out, "This session is in %s, please enter the amount in %s.\n",
				sess.Currency(), sess.Currency())
			continue
		}
		if err := w.svc.AddExpense(sess, cat, m); err != nil {
			fmt.Fprintf(w.out, "Cannot log that expense: %v\n", err)
			continue
		}
		fmt.Fprintf(w.out, "Logged %s %s.\n", cat, m)
	}
}

func (w *Wizard) promptMoney(label string) (core.Money, bool) {
	for {
		line, ok := w.prompt(label)
		if !ok || isQuit(line) {
			return core.Money{}, false
		}
		m, err := core.ParseMoney(line)
		if err != nil {
			fmt.Fprintf(w.out, "Cannot read %q as an amount (use a currency glyph, e.g. €12.50).\n", line)
			continue
		}
		return m, true
	}
}

func (w *Wizard) promptCurrency() (core.Currency, bool) {
	for {
		line, ok := w.prompt(fmt.Sprintf("New currency (%s):", currencyList()))
		if !ok || isQuit(line) {
			return "", false
		}
		cur, err := core.ParseCurrency(line)
		if err != nil {
			fmt.Fprintf(w.out, "Unknown currency %q.\n", line)
			continue
		}
		return cur, true
	}
}

func (w *Wizard) prompt(label string) (string, bool) {
	fmt.Fprintf(w.out, "%s ", label)
	if !w.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.in.Text()), true
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "q", "exit":
		return true
	}
	return false
}

func categoryList() string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func currencyList() string {
	curs := core.Currencies()
	names := make([]string, len(curs))
	for i, c := range curs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
