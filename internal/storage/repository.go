// Package storage archives finalized sessions into a local SQLite database,
// giving month-by-month history independent of the spreadsheet.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ArchivedSession is one finalized wizard session as stored in the archive.
type ArchivedSession struct {
	ID         int64
	Month      int
	Currency   string
	Budget     string
	Remainder  string
	Overspent  bool
	RecordedAt time.Time
	Expenses   []ArchivedExpense
}

// ArchivedExpense is one merged category total of an archived session.
type ArchivedExpense struct {
	Category string
	Amount   string
}

type SessionArchive struct {
	db *sql.DB
}

func NewSessionArchive(dbPath string) (*SessionArchive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SessionArchive{db: db}, nil
}

func (a *SessionArchive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// InsertSession stores a session and its expenses in one transaction and
// returns the new session id.
func (a *SessionArchive) InsertSession(ctx context.Context, s ArchivedSession) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	recordedAt := s.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (month, currency, budget, remainder, overspent, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.Month, s.Currency, s.Budget, s.Remainder, s.Overspent, recordedAt)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session id: %w", err)
	}

	for _, e := range s.Expenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_expenses (session_id, category, amount) VALUES (?, ?, ?)`,
			id, e.Category, e.Amount); err != nil {
			return 0, fmt.Errorf("insert expense %s: %w", e.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Session archived",
		"id", id,
		"month", s.Month,
		"currency", s.Currency,
		"remainder", s.Remainder,
		"expenses", len(s.Expenses))

	return id, nil
}

// ListSessions returns archived sessions for a month, newest first, with
// their expenses attached.
func (a *SessionArchive) ListSessions(ctx context.Context, month int) ([]ArchivedSession, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, month, currency, budget, remainder, overspent, recorded_at
		 FROM sessions WHERE month = ? ORDER BY recorded_at DESC`, month)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ArchivedSession
	for rows.Next() {
		var s ArchivedSession
		if err := rows.Scan(&s.ID, &s.Month, &s.Currency, &s.Budget, &s.Remainder, &s.Overspent, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range sessions {
		expenses, err := a.listExpenses(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Expenses = expenses
	}
	return sessions, nil
}

func (a *SessionArchive) listExpenses(ctx context.Context, sessionID int64) ([]ArchivedExpense, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT category, amount FROM session_expenses WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []ArchivedExpense
	for rows.Next() {
		var e ArchivedExpense
		if err := rows.Scan(&e.Category, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountSessions returns the total number of archived sessions.
func (a *SessionArchive) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
