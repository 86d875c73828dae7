package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	timetrackDatamodel "github.com/maviontech/project-management/internal/core/datamodel/timetrack"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) ListEntriesByTask(ctx context.Context, db *sqlx.DB, taskID int64) ([]timetrackDatamodel.TimeEntry, error) {
	var entries []timetrackDatamodel.TimeEntry
	err := db.SelectContext(ctx, &entries,
		"SELECT id, task_id, member_id, hours, entry_date, created_at FROM time_entries WHERE task_id = ? ORDER BY entry_date DESC",
		taskID)
	return entries, err
}

func (r *Repository) ListEntriesByMember(ctx context.Context, db *sqlx.DB, memberID int64, from, to *time.Time) ([]timetrackDatamodel.TimeEntry, error) {
	query := "SELECT id, task_id, member_id, hours, entry_date, created_at FROM time_entries WHERE member_id = ?"
	args := []interface{}{memberID}

	if from != nil {
		query += " AND entry_date >= ?"
		args = append(args, from)
	}
	if to != nil {
		query += " AND entry_date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY entry_date DESC"

	var entries []timetrackDatamodel.TimeEntry
	err := db.SelectContext(ctx, &entries, query, args...)
	return entries, err
}

func (r *Repository) GetEntry(ctx context.Context, db *sqlx.DB, entryID int64) (*timetrackDatamodel.TimeEntry, error) {
	var e timetrackDatamodel.TimeEntry
	err := db.GetContext(ctx, &e,
		"SELECT id, task_id, member_id, hours, entry_date, created_at FROM time_entries WHERE id = ?", entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.NewNotFoundError("time entry not found", internal.ErrCodeValidationFailed)
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) CreateEntry(ctx context.Context, db *sqlx.DB, e *timetrackDatamodel.TimeEntry) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO time_entries (task_id, member_id, hours, entry_date) VALUES (?, ?, ?, ?)",
		e.TaskID, e.MemberID, e.Hours, e.EntryDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateEntry(ctx context.Context, db *sqlx.DB, e *timetrackDatamodel.TimeEntry) error {
	_, err := db.ExecContext(ctx,
		"UPDATE time_entries SET hours = ?, entry_date = ? WHERE id = ?",
		e.Hours, e.EntryDate, e.ID)
	return err
}

func (r *Repository) DeleteEntry(ctx context.Context, db *sqlx.DB, entryID int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", entryID)
	return err
}

func (r *Repository) GetRunningTimer(ctx context.Context, db *sqlx.DB, memberID int64) (*timetrackDatamodel.Timer, error) {
	var t timetrackDatamodel.Timer
	err := db.GetContext(ctx, &t,
		"SELECT id, task_id, member_id, started_at, paused_at, paused_seconds FROM timers WHERE member_id = ?", memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrTimerNotRunning
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) CreateTimer(ctx context.Context, db *sqlx.DB, t *timetrackDatamodel.Timer) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO timers (task_id, member_id, started_at, paused_seconds) VALUES (?, ?, ?, 0)",
		t.TaskID, t.MemberID, t.StartedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateTimer(ctx context.Context, db *sqlx.DB, t *timetrackDatamodel.Timer) error {
	_, err := db.ExecContext(ctx,
		"UPDATE timers SET paused_at = ?, paused_seconds = ? WHERE id = ?",
		t.PausedAt, t.PausedSeconds, t.ID)
	return err
}

func (r *Repository) DeleteTimer(ctx context.Context, db *sqlx.DB, timerID int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM timers WHERE id = ?", timerID)
	return err
}
