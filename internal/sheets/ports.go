// Package sheets defines the port to the persistent spreadsheet store and
// the cell addressing shared by its adapters.
//
// The store is the single source of truth across process invocations. No
// locking exists: two sessions writing the same month race last-writer-wins.
// That single-writer assumption is accepted, not handled.
package sheets

import "context"

// Designated cells and sheet names. Each month has its own sheet (English
// month name) carrying the budget and remainder cells; the Overview sheet
// accumulates per-category totals, one row per month below the header row.
const (
	BudgetCell    = "B1"
	RemainderCell = "B2"
	OverviewSheet = "Overview"

	// HeaderRowOffset converts a month number into an Overview row:
	// row = month + HeaderRowOffset, so January lands on row 2.
	HeaderRowOffset = 1

	// ExpenseRowStart is the first row of the per-month expense log, below
	// the designated cells and the log header.
	ExpenseRowStart = 4
)

// CellStore is the narrow contract the core needs from the spreadsheet
// backend.
type CellStore interface {
	// GetCell returns the text of one cell, or "" when it is empty.
	GetCell(ctx context.Context, sheet, addr string) (string, error)

	// SetCell overwrites one cell.
	SetCell(ctx context.Context, sheet, addr, value string) error

	// FindHeader scans the header row of a sheet for the given label and
	// returns its 1-based column index. ok is false when the label is absent.
	FindHeader(ctx context.Context, sheet, label string) (col int, ok bool, err error)

	// AppendRow appends values as a new row at the bottom of the sheet.
	AppendRow(ctx context.Context, sheet string, values []string) error
}
