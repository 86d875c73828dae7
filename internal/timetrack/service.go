package timetrack

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	timetrackDatamodel "github.com/maviontech/project-management/internal/core/datamodel/timetrack"
	"github.com/maviontech/project-management/internal/tenant"
)

type Repository interface {
	ListEntriesByTask(ctx context.Context, db *sqlx.DB, taskID int64) ([]timetrackDatamodel.TimeEntry, error)
	ListEntriesByMember(ctx context.Context, db *sqlx.DB, memberID int64, from, to *time.Time) ([]timetrackDatamodel.TimeEntry, error)
	GetEntry(ctx context.Context, db *sqlx.DB, entryID int64) (*timetrackDatamodel.TimeEntry, error)
	CreateEntry(ctx context.Context, db *sqlx.DB, e *timetrackDatamodel.TimeEntry) (int64, error)
	UpdateEntry(ctx context.Context, db *sqlx.DB, e *timetrackDatamodel.TimeEntry) error
	DeleteEntry(ctx context.Context, db *sqlx.DB, entryID int64) error

	GetRunningTimer(ctx context.Context, db *sqlx.DB, memberID int64) (*timetrackDatamodel.Timer, error)
	CreateTimer(ctx context.Context, db *sqlx.DB, t *timetrackDatamodel.Timer) (int64, error)
	UpdateTimer(ctx context.Context, db *sqlx.DB, t *timetrackDatamodel.Timer) error
	DeleteTimer(ctx context.Context, db *sqlx.DB, timerID int64) error
}

// Service tracks worked time: manual entries plus a single running stopwatch
// per member. Stopping the stopwatch materializes a time entry.
type Service struct {
	connector tenant.Connector
	repo      Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(connector tenant.Connector, repo Repository, logger *slog.Logger) *Service {
	return &Service{
		connector: connector,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) open(ctx context.Context, p *internal.Principal) (*sqlx.DB, error) {
	return s.connector.Open(ctx, &p.Tenant)
}

func (s *Service) ListTaskEntries(ctx context.Context, p *internal.Principal, taskID int64) ([]timetrackDatamodel.TimeEntry, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entries, err := s.repo.ListEntriesByTask(ctx, db, taskID)
	if err != nil {
		s.logger.Error("failed to list time entries", "task_id", taskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return entries, nil
}

func (s *Service) ListMyEntries(ctx context.Context, p *internal.Principal, from, to *time.Time) ([]timetrackDatamodel.TimeEntry, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entries, err := s.repo.ListEntriesByMember(ctx, db, p.MemberID, from, to)
	if err != nil {
		s.logger.Error("failed to list member entries", "member_id", p.MemberID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return entries, nil
}

// LogTime records a manual time entry for the caller.
func (s *Service) LogTime(ctx context.Context, p *internal.Principal, dto EntryDTO) (*timetrackDatamodel.TimeEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entry := &timetrackDatamodel.TimeEntry{
		TaskID:    dto.TaskID,
		MemberID:  p.MemberID,
		Hours:     dto.Hours,
		EntryDate: dto.EntryDate,
	}
	id, err := s.repo.CreateEntry(ctx, db, entry)
	if err != nil {
		s.logger.Error("failed to create time entry", "task_id", dto.TaskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	entry.ID = id
	return entry, nil
}

// UpdateEntry edits one of the caller's own entries.
func (s *Service) UpdateEntry(ctx context.Context, p *internal.Principal, entryID int64, dto EntryDTO) (*timetrackDatamodel.TimeEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entry, err := s.repo.GetEntry(ctx, db, entryID)
	if err != nil {
		return nil, err
	}
	if entry.MemberID != p.MemberID {
		return nil, internal.ErrEntryNotOwned
	}

	entry.Hours = dto.Hours
	entry.EntryDate = dto.EntryDate
	if err := s.repo.UpdateEntry(ctx, db, entry); err != nil {
		s.logger.Error("failed to update time entry", "entry_id", entryID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return entry, nil
}

// DeleteEntry removes one of the caller's own entries. force skips the
// ownership check; its route is gated separately.
func (s *Service) DeleteEntry(ctx context.Context, p *internal.Principal, entryID int64, force bool) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := s.repo.GetEntry(ctx, db, entryID)
	if err != nil {
		return err
	}
	if !force && entry.MemberID != p.MemberID {
		return internal.ErrEntryNotOwned
	}

	if err := s.repo.DeleteEntry(ctx, db, entryID); err != nil {
		s.logger.Error("failed to delete time entry", "entry_id", entryID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) RunningTimer(ctx context.Context, p *internal.Principal) (*timetrackDatamodel.Timer, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return s.repo.GetRunningTimer(ctx, db, p.MemberID)
}

// StartTimer begins a stopwatch on a task. A member runs at most one timer.
func (s *Service) StartTimer(ctx context.Context, p *internal.Principal, taskID int64) (*timetrackDatamodel.Timer, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if existing, err := s.repo.GetRunningTimer(ctx, db, p.MemberID); err == nil && existing != nil {
		return nil, internal.ErrTimerRunning
	}

	timer := &timetrackDatamodel.Timer{
		TaskID:    taskID,
		MemberID:  p.MemberID,
		StartedAt: s.now(),
	}
	id, err := s.repo.CreateTimer(ctx, db, timer)
	if err != nil {
		s.logger.Error("failed to start timer", "task_id", taskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	timer.ID = id

	s.logger.Info("timer started", "timer_id", id, "task_id", taskID, "member_id", p.MemberID)
	return timer, nil
}

func (s *Service) PauseTimer(ctx context.Context, p *internal.Principal) (*timetrackDatamodel.Timer, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	timer, err := s.repo.GetRunningTimer(ctx, db, p.MemberID)
	if err != nil {
		return nil, err
	}
	if timer.PausedAt != nil {
		return timer, nil
	}

	now := s.now()
	timer.PausedAt = &now
	if err := s.repo.UpdateTimer(ctx, db, timer); err != nil {
		s.logger.Error("failed to pause timer", "timer_id", timer.ID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return timer, nil
}

func (s *Service) ResumeTimer(ctx context.Context, p *internal.Principal) (*timetrackDatamodel.Timer, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	timer, err := s.repo.GetRunningTimer(ctx, db, p.MemberID)
	if err != nil {
		return nil, err
	}
	if timer.PausedAt == nil {
		return timer, nil
	}

	timer.PausedSeconds += int64(s.now().Sub(*timer.PausedAt).Seconds())
	timer.PausedAt = nil
	if err := s.repo.UpdateTimer(ctx, db, timer); err != nil {
		s.logger.Error("failed to resume timer", "timer_id", timer.ID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return timer, nil
}

// StopTimer ends the stopwatch and materializes a time entry with the worked
// hours, rounded to two decimals.
func (s *Service) StopTimer(ctx context.Context, p *internal.Principal) (*timetrackDatamodel.TimeEntry, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	timer, err := s.repo.GetRunningTimer(ctx, db, p.MemberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	hours := math.Round(timer.Elapsed(now).Hours()*100) / 100

	entry := &timetrackDatamodel.TimeEntry{
		TaskID:    timer.TaskID,
		MemberID:  p.MemberID,
		Hours:     hours,
		EntryDate: now,
	}
	id, err := s.repo.CreateEntry(ctx, db, entry)
	if err != nil {
		s.logger.Error("failed to materialize time entry", "timer_id", timer.ID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	entry.ID = id

	if err := s.repo.DeleteTimer(ctx, db, timer.ID); err != nil {
		s.logger.Error("failed to clear stopped timer", "timer_id", timer.ID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("timer stopped", "timer_id", timer.ID, "hours", hours, "member_id", p.MemberID)
	return entry, nil
}
