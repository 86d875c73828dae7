package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/tenant"
)

// TaskRow is one line of the task report, with member names resolved.
type TaskRow struct {
	ID           int64      `db:"id"`
	Title        string     `db:"title"`
	Status       string     `db:"status"`
	Priority     string     `db:"priority"`
	AssigneeName *string    `db:"assignee_name"`
	DueDate      *time.Time `db:"due_date"`
	CreatedAt    time.Time  `db:"created_at"`
}

// TimeRow is one line of the time report.
type TimeRow struct {
	EntryID    int64     `db:"entry_id"`
	TaskTitle  string    `db:"task_title"`
	MemberName string    `db:"member_name"`
	Hours      float64   `db:"hours"`
	EntryDate  time.Time `db:"entry_date"`
}

type Repository interface {
	TaskReport(ctx context.Context, db *sqlx.DB, projectID int64) ([]TaskRow, error)
	TimeReport(ctx context.Context, db *sqlx.DB, projectID int64) ([]TimeRow, error)
}

// Service streams CSV reports for a project.
type Service struct {
	connector tenant.Connector
	repo      Repository
	logger    *slog.Logger
}

func NewService(connector tenant.Connector, repo Repository, logger *slog.Logger) *Service {
	return &Service{connector: connector, repo: repo, logger: logger}
}

func (s *Service) WriteTaskReport(ctx context.Context, p *internal.Principal, projectID int64, w io.Writer) error {
	db, err := s.connector.Open(ctx, &p.Tenant)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := s.repo.TaskReport(ctx, db, projectID)
	if err != nil {
		s.logger.Error("task report query failed", "project_id", projectID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "status", "priority", "assignee", "due_date", "created_at"}); err != nil {
		return err
	}
	for _, row := range rows {
		assignee := ""
		if row.AssigneeName != nil {
			assignee = *row.AssigneeName
		}
		due := ""
		if row.DueDate != nil {
			due = row.DueDate.Format("2006-01-02")
		}
		record := []string{
			fmt.Sprintf("%d", row.ID),
			row.Title,
			row.Status,
			row.Priority,
			assignee,
			due,
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) WriteTimeReport(ctx context.Context, p *internal.Principal, projectID int64, w io.Writer) error {
	db, err := s.connector.Open(ctx, &p.Tenant)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := s.repo.TimeReport(ctx, db, projectID)
	if err != nil {
		s.logger.Error("time report query failed", "project_id", projectID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entry_id", "task", "member", "hours", "entry_date"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.EntryID),
			row.TaskTitle,
			row.MemberName,
			fmt.Sprintf("%.2f", row.Hours),
			row.EntryDate.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
