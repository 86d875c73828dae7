package timetrack

import "time"

type TimeEntry struct {
	ID        int64     `db:"id" json:"id"`
	TaskID    int64     `db:"task_id" json:"task_id"`
	MemberID  int64     `db:"member_id" json:"member_id"`
	Hours     float64   `db:"hours" json:"hours"`
	EntryDate time.Time `db:"entry_date" json:"entry_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Timer is the running-stopwatch state for a member on one task. A member
// has at most one running timer; stopping it materializes a TimeEntry.
type Timer struct {
	ID            int64      `db:"id" json:"id"`
	TaskID        int64      `db:"task_id" json:"task_id"`
	MemberID      int64      `db:"member_id" json:"member_id"`
	StartedAt     time.Time  `db:"started_at" json:"started_at"`
	PausedAt      *time.Time `db:"paused_at" json:"paused_at,omitempty"`
	PausedSeconds int64      `db:"paused_seconds" json:"paused_seconds"`
}

// Elapsed is the worked duration so far, excluding pauses.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	end := now
	if t.PausedAt != nil {
		end = *t.PausedAt
	}
	elapsed := end.Sub(t.StartedAt) - time.Duration(t.PausedSeconds)*time.Second
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
