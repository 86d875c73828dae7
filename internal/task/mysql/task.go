package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
	"github.com/maviontech/project-management/internal/task"
)

const taskColumns = "id, project_id, subproject_id, title, description, status, priority, assigned_to, created_by, due_date, created_at, updated_at"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) ListByProject(ctx context.Context, db *sqlx.DB, projectID int64, filter task.Filter) ([]projectDatamodel.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE project_id = ?"
	args := []interface{}{projectID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.AssignedTo != 0 {
		query += " AND assigned_to = ?"
		args = append(args, filter.AssignedTo)
	}
	query += " ORDER BY created_at DESC"

	var tasks []projectDatamodel.Task
	err := db.SelectContext(ctx, &tasks, query, args...)
	return tasks, err
}

func (r *Repository) Get(ctx context.Context, db *sqlx.DB, projectID, taskID int64) (*projectDatamodel.Task, error) {
	var t projectDatamodel.Task
	err := db.GetContext(ctx, &t,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND project_id = ?", taskID, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, db *sqlx.DB, t *projectDatamodel.Task) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO tasks (project_id, subproject_id, title, description, status, priority, assigned_to, created_by, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.SubprojectID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.CreatedBy, t.DueDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) Update(ctx context.Context, db *sqlx.DB, t *projectDatamodel.Task) error {
	_, err := db.ExecContext(ctx,
		`UPDATE tasks SET subproject_id = ?, title = ?, description = ?, status = ?, priority = ?, assigned_to = ?, due_date = ?
		 WHERE id = ? AND project_id = ?`,
		t.SubprojectID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.DueDate, t.ID, t.ProjectID)
	return err
}

func (r *Repository) Delete(ctx context.Context, db *sqlx.DB, projectID, taskID int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND project_id = ?", taskID, projectID)
	return err
}

func (r *Repository) ListComments(ctx context.Context, db *sqlx.DB, taskID int64) ([]projectDatamodel.Comment, error) {
	var comments []projectDatamodel.Comment
	err := db.SelectContext(ctx, &comments,
		"SELECT id, task_id, commenter_id, comment_text, created_at FROM comments WHERE task_id = ? ORDER BY created_at",
		taskID)
	return comments, err
}

func (r *Repository) CreateComment(ctx context.Context, db *sqlx.DB, c *projectDatamodel.Comment) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO comments (task_id, commenter_id, comment_text) VALUES (?, ?, ?)",
		c.TaskID, c.CommenterID, c.CommentText)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) Notify(ctx context.Context, db *sqlx.DB, memberID int64, kind, message, entityType string, entityID int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO notifications (member_id, kind, message, entity_type, entity_id) VALUES (?, ?, ?, ?, ?)",
		memberID, kind, message, entityType, entityID)
	return err
}

func (r *Repository) LogActivity(ctx context.Context, db *sqlx.DB, entityType string, entityID int64, action string, performedBy *int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO activity_log (entity_type, entity_id, action, performed_by) VALUES (?, ?, ?, ?)",
		entityType, entityID, action, performedBy)
	return err
}
