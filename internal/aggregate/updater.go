// Package aggregate maintains the Overview sheet: one row per month, one
// column per category, cumulative totals across all sessions.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"tagtrack/internal/core"
	"tagtrack/internal/sheets"
)

// Converter re-denominates a session delta into the currency already stored
// in an Overview cell.
type Converter interface {
	Convert(ctx context.Context, m core.Money, to core.Currency) (core.Money, error)
}

// Coordinate addresses one Overview cell.
type Coordinate struct {
	Sheet string
	Col   int
	Row   int
}

// A1 renders the coordinate in A1 notation.
func (c Coordinate) A1() string {
	return sheets.CellRef(c.Col, c.Row)
}

// RowForMonth derives the Overview row of a month. Pure, so the coordinate
// arithmetic is testable without a store.
func RowForMonth(month time.Month) int {
	return int(month) + sheets.HeaderRowOffset
}

// Updater performs the read-modify-write accumulation into Overview cells.
type Updater struct {
	store sheets.CellStore
	conv  Converter
}

func NewUpdater(store sheets.CellStore, conv Converter) *Updater {
	return &Updater{store: store, conv: conv}
}

// Locate resolves the Overview cell of a category for a month by looking the
// category label up in the header row. A missing label means the sheet
// schema drifted; that is ErrCategoryNotFound, fatal for the accumulate step
// only.
func (u *Updater) Locate(ctx context.Context, category core.Category, month time.Month) (Coordinate, error) {
	if !core.ValidMonth(month) {
		return Coordinate{}, fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	col, ok, err := u.store.FindHeader(ctx, sheets.OverviewSheet, string(category))
	if err != nil {
		return Coordinate{}, fmt.Errorf("find header %q: %w", category, err)
	}
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", core.ErrCategoryNotFound, category)
	}
	return Coordinate{Sheet: sheets.OverviewSheet, Col: col, Row: RowForMonth(month)}, nil
}

// Accumulate adds a session delta into one cell. An empty cell takes the
// delta as-is; a populated cell keeps its own currency, so the delta is
// converted into it before the addition. The caller must invoke this exactly
// once per session per category: the operation itself cannot tell a rerun
// from a new session.
func (u *Updater) Accumulate(ctx context.Context, coord Coordinate, delta core.Money) error {
	addr := coord.A1()
	existing, err := u.store.GetCell(ctx, coord.Sheet, addr)
	if err != nil {
		return fmt.Errorf("read %s!%s: %w", coord.Sheet, addr, err)
	}

	if existing == "" {
		return u.store.SetCell(ctx, coord.Sheet, addr, delta.Round2().String())
	}

	stored, err := core.ParseMoney(existing)
	if err != nil {
		return fmt.Errorf("decode %s!%s: %w", coord.Sheet, addr, err)
	}

	normalized, err := u.conv.Convert(ctx, delta, stored.Currency)
	if err != nil {
		return fmt.Errorf("normalize delta into %s: %w", stored.Currency, err)
	}

	sum, err := stored.Add(normalized)
	if err != nil {
		return err
	}
	return u.store.SetCell(ctx, coord.Sheet, addr, sum.Round2().String())
}

// AccumulateCategory locates and accumulates in one call.
func (u *Updater) AccumulateCategory(ctx context.Context, category core.Category, month time.Month, delta core.Money) error {
	coord, err := u.Locate(ctx, category, month)
	if err != nil {
		return err
	}
	return u.Accumulate(ctx, coord, delta)
}
