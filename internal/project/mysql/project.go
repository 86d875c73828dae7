package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) List(ctx context.Context, db *sqlx.DB) ([]projectDatamodel.Project, error) {
	var projects []projectDatamodel.Project
	err := db.SelectContext(ctx, &projects,
		"SELECT id, name, description, start_date, end_date, status, created_by, created_at FROM projects ORDER BY created_at DESC")
	return projects, err
}

func (r *Repository) Get(ctx context.Context, db *sqlx.DB, id int64) (*projectDatamodel.Project, error) {
	var p projectDatamodel.Project
	err := db.GetContext(ctx, &p,
		"SELECT id, name, description, start_date, end_date, status, created_by, created_at FROM projects WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, db *sqlx.DB, p *projectDatamodel.Project) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO projects (name, description, start_date, end_date, status, created_by) VALUES (?, ?, ?, ?, ?, ?)",
		p.Name, p.Description, p.StartDate, p.EndDate, p.Status, p.CreatedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) Update(ctx context.Context, db *sqlx.DB, p *projectDatamodel.Project) error {
	_, err := db.ExecContext(ctx,
		"UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?, status = ? WHERE id = ?",
		p.Name, p.Description, p.StartDate, p.EndDate, p.Status, p.ID)
	return err
}

func (r *Repository) Delete(ctx context.Context, db *sqlx.DB, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *Repository) ListSubprojects(ctx context.Context, db *sqlx.DB, projectID int64) ([]projectDatamodel.Subproject, error) {
	var subs []projectDatamodel.Subproject
	err := db.SelectContext(ctx, &subs,
		"SELECT id, project_id, name, description, created_at FROM subprojects WHERE project_id = ? ORDER BY id",
		projectID)
	return subs, err
}

func (r *Repository) CreateSubproject(ctx context.Context, db *sqlx.DB, sp *projectDatamodel.Subproject) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO subprojects (project_id, name, description) VALUES (?, ?, ?)",
		sp.ProjectID, sp.Name, sp.Description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) DeleteSubproject(ctx context.Context, db *sqlx.DB, projectID, subprojectID int64) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM subprojects WHERE id = ? AND project_id = ?", subprojectID, projectID)
	return err
}

func (r *Repository) LogActivity(ctx context.Context, db *sqlx.DB, entityType string, entityID int64, action string, performedBy *int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO activity_log (entity_type, entity_id, action, performed_by) VALUES (?, ?, ?, ?)",
		entityType, entityID, action, performedBy)
	return err
}
