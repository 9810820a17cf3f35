// Package worker mirrors session-recorded events into the SQLite archive.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tagtrack/internal/amqp"
	"tagtrack/internal/storage"
)

// ArchiveWorker consumes SessionRecordedMessages and writes them into the
// local archive.
type ArchiveWorker struct {
	archive *storage.SessionArchive
}

func NewArchiveWorker(archive *storage.SessionArchive) *ArchiveWorker {
	return &ArchiveWorker{archive: archive}
}

// HandleSessionRecorded processes a single session message from AMQP.
func (w *ArchiveWorker) HandleSessionRecorded(ctx context.Context, msg *amqp.SessionRecordedMessage) error {
	session := storage.ArchivedSession{
		Month:      msg.Month,
		Currency:   msg.Currency,
		Budget:     msg.Budget,
		Remainder:  msg.Remainder,
		Overspent:  msg.Overspent,
		RecordedAt: msg.Timestamp,
	}
	for _, e := range msg.Expenses {
		session.Expenses = append(session.Expenses, storage.ArchivedExpense{
			Category: e.Category,
			Amount:   e.Amount,
		})
	}

	id, err := w.archive.InsertSession(ctx, session)
	if err != nil {
		return fmt.Errorf("archive session: %w", err)
	}

	slog.InfoContext(ctx, "Session mirrored to archive",
		"id", id,
		"month", msg.Month,
		"overspent", msg.Overspent)
	return nil
}

// ReportArchiveSize logs the archive size, used by the periodic health tick.
func (w *ArchiveWorker) ReportArchiveSize(ctx context.Context) error {
	n, err := w.archive.CountSessions(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Archive status", "sessions", n)
	return nil
}

// ReportMonth logs a summary of the sessions archived for one month: how
// many, and the remainder the latest one ended on. Quiet when the month has
// no sessions yet.
func (w *ArchiveWorker) ReportMonth(ctx context.Context, month time.Month) error {
	sessions, err := w.archive.ListSessions(ctx, int(month))
	if err != nil {
		return fmt.Errorf("list %s sessions: %w", month, err)
	}
	if len(sessions) == 0 {
		return nil
	}

	latest := sessions[0]
	slog.InfoContext(ctx, "Monthly archive report",
		"month", month.String(),
		"sessions", len(sessions),
		"latest_remainder", latest.Remainder,
		"latest_overspent", latest.Overspent,
		"latest_recorded_at", latest.RecordedAt)
	return nil
}
