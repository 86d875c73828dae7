package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal/export"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) TaskReport(ctx context.Context, db *sqlx.DB, projectID int64) ([]export.TaskRow, error) {
	var rows []export.TaskRow
	err := db.SelectContext(ctx, &rows, `
		SELECT t.id, t.title, t.status, t.priority, m.full_name AS assignee_name, t.due_date, t.created_at
		FROM tasks t
		LEFT JOIN members m ON m.id = t.assigned_to
		WHERE t.project_id = ?
		ORDER BY t.id`, projectID)
	return rows, err
}

func (r *Repository) TimeReport(ctx context.Context, db *sqlx.DB, projectID int64) ([]export.TimeRow, error) {
	var rows []export.TimeRow
	err := db.SelectContext(ctx, &rows, `
		SELECT e.id AS entry_id, t.title AS task_title, m.full_name AS member_name, e.hours, e.entry_date
		FROM time_entries e
		JOIN tasks t ON t.id = e.task_id
		JOIN members m ON m.id = e.member_id
		WHERE t.project_id = ?
		ORDER BY e.entry_date, e.id`, projectID)
	return rows, err
}
