package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagtrack/internal/aggregate"
	"tagtrack/internal/core"
	"tagtrack/internal/fx"
	"tagtrack/internal/services"
	"tagtrack/internal/sheets"
	"tagtrack/internal/sheets/memory"
)

type scriptedRates struct {
	rates map[string]float64
}

func (s *scriptedRates) Rate(_ context.Context, from, to core.Currency) (decimal.Decimal, error) {
	r, ok := s.rates[string(from)+":"+string(to)]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s->%s", core.ErrConversionUnavailable, from, to)
	}
	return decimal.NewFromFloat(r), nil
}

func newWizardUnderTest(store *memory.Store, rates map[string]float64, input string) (*Wizard, *strings.Builder) {
	conv := fx.NewConverter(&scriptedRates{rates: rates})
	svc := services.NewSessionService(store, conv, aggregate.NewUpdater(store, conv), nil)
	var out strings.Builder
	return NewWizard(svc, strings.NewReader(input), &out), &out
}

func seedOverviewSheet(store *memory.Store) {
	store.Seed(sheets.OverviewSheet, []string{
		"Month", "Rent", "Groceries", "Vehicle", "Cafe/Restaurant", "Online Shopping", "Other",
	})
}

func TestWizardFirstBudgetHappyPath(t *testing.T) {
	store := memory.New()
	seedOverviewSheet(store)
	w, out := newWizardUnderTest(store, nil, strings.Join([]string{
		"July",
		"€100.00",
		"Rent",
		"€30.00",
		"groceries",
		"€20.00",
		"done",
	}, "\n")+"\n")

	require.NoError(t, w.Run(context.Background()))

	budgetCell, _ := store.GetCell(context.Background(), "July", sheets.BudgetCell)
	remainderCell, _ := store.GetCell(context.Background(), "July", sheets.RemainderCell)
	assert.Equal(t, "€100.00", budgetCell)
	assert.Equal(t, "€50.00", remainderCell)
	assert.Contains(t, out.String(), "remaining €50.00")
}

func TestWizardKeepStoredBudget(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedOverviewSheet(store)
	require.NoError(t, store.SetCell(ctx, "July", sheets.BudgetCell, "€150.00"))
	require.NoError(t, store.SetCell(ctx, "July", sheets.RemainderCell, "€90.00"))

	w, _ := newWizardUnderTest(store, nil, strings.Join([]string{
		"July",
		"keep",
		"Rent",
		"€40.00",
		"done",
	}, "\n")+"\n")

	require.NoError(t, w.Run(ctx))

	remainderCell, _ := store.GetCell(ctx, "July", sheets.RemainderCell)
	assert.Equal(t, "€50.00", remainderCell)
}

func TestWizardChangeCurrencyFlow(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedOverviewSheet(store)
	require.NoError(t, store.SetCell(ctx, "July", sheets.BudgetCell, "€100.00"))
	require.NoError(t, store.SetCell(ctx, "July", sheets.RemainderCell, "€40.00"))

	w, out := newWizardUnderTest(store, map[string]float64{"EUR:USD": 1.10}, strings.Join([]string{
		"July",
		"change currency",
		"USD",
		"no",
		"Rent",
		"$4.00",
		"done",
	}, "\n")+"\n")

	require.NoError(t, w.Run(ctx))
	assert.Contains(t, out.String(), "Switched to USD")

	remainderCell, _ := store.GetCell(ctx, "July", sheets.RemainderCell)
	assert.Equal(t, "$40.00", remainderCell) // 44.00 - 4.00
}

func TestWizardRepromptsOnBadInput(t *testing.T) {
	store := memory.New()
	seedOverviewSheet(store)
	w, out := newWizardUnderTest(store, nil, strings.Join([]string{
		"Smarch",
		"July",
		"one hundred",
		"€100.00",
		"Lasers",
		"Rent",
		"€30.00",
		"done",
	}, "\n")+"\n")

	require.NoError(t, w.Run(context.Background()))

	s := out.String()
	assert.Contains(t, s, `"Smarch" is not a month name`)
	assert.Contains(t, s, `Cannot read "one hundred"`)
	assert.Contains(t, s, `Unknown category "Lasers"`)
}

func TestWizardQuitPersistsNothing(t *testing.T) {
	store := memory.New()
	w, _ := newWizardUnderTest(store, nil, strings.Join([]string{
		"July",
		"€100.00",
		"Rent",
		"quit",
	}, "\n")+"\n")

	require.NoError(t, w.Run(context.Background()))

	budgetCell, _ := store.GetCell(context.Background(), "July", sheets.BudgetCell)
	assert.Equal(t, "", budgetCell)
	assert.Empty(t, store.Rows("July"))
}

func TestWizardListShowsLoggedExpenses(t *testing.T) {
	store := memory.New()
	seedOverviewSheet(store)
	w, out := newWizardUnderTest(store, nil, strings.Join([]string{
		"July",
		"€100.00",
		"list",
		"Rent",
		"€30.00",
		"Groceries",
		"€20.00",
		"list",
		"done",
	}, "\n")+"\n")

	require.NoError(t, w.Run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "Nothing logged yet.")
	assert.Contains(t, s, "Rent €30.00")
	assert.Contains(t, s, "Groceries €20.00")
}

func TestWizardRestartClearsExpenses(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedOverviewSheet(store)
	w, _ := newWizardUnderTest(store, nil, strings.Join([]string{
		"July",
		"€100.00",
		"Rent",
		"€30.00",
		"restart",
		"Groceries",
		"€10.00",
		"done",
	}, "\n")+"\n")

	require.NoError(t, w.Run(ctx))

	remainderCell, _ := store.GetCell(ctx, "July", sheets.RemainderCell)
	assert.Equal(t, "€90.00", remainderCell)
	rows := store.Rows("July")
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Groceries", "€10.00"}, rows[0])
}
