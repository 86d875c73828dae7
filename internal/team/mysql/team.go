package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	teamDatamodel "github.com/maviontech/project-management/internal/core/datamodel/team"
)

const teamColumns = "id, name, slug, description, team_lead_id, created_by, created_at"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) List(ctx context.Context, db *sqlx.DB) ([]teamDatamodel.Team, error) {
	var teams []teamDatamodel.Team
	err := db.SelectContext(ctx, &teams, "SELECT "+teamColumns+" FROM teams ORDER BY name")
	return teams, err
}

func (r *Repository) Get(ctx context.Context, db *sqlx.DB, id int64) (*teamDatamodel.Team, error) {
	var t teamDatamodel.Team
	err := db.GetContext(ctx, &t, "SELECT "+teamColumns+" FROM teams WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) GetBySlug(ctx context.Context, db *sqlx.DB, slug string) (*teamDatamodel.Team, error) {
	var t teamDatamodel.Team
	err := db.GetContext(ctx, &t, "SELECT "+teamColumns+" FROM teams WHERE slug = ?", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, db *sqlx.DB, t *teamDatamodel.Team) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO teams (name, slug, description, team_lead_id, created_by) VALUES (?, ?, ?, ?, ?)",
		t.Name, t.Slug, t.Description, t.TeamLeadID, t.CreatedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) Update(ctx context.Context, db *sqlx.DB, t *teamDatamodel.Team) error {
	_, err := db.ExecContext(ctx,
		"UPDATE teams SET name = ?, slug = ?, description = ?, team_lead_id = ? WHERE id = ?",
		t.Name, t.Slug, t.Description, t.TeamLeadID, t.ID)
	return err
}

func (r *Repository) Delete(ctx context.Context, db *sqlx.DB, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	return err
}

func (r *Repository) ListMemberships(ctx context.Context, db *sqlx.DB, teamID int64) ([]teamDatamodel.Membership, error) {
	var memberships []teamDatamodel.Membership
	err := db.SelectContext(ctx, &memberships,
		"SELECT id, team_id, member_id, team_role, added_by, added_at FROM team_memberships WHERE team_id = ? ORDER BY added_at",
		teamID)
	return memberships, err
}

func (r *Repository) AddMembership(ctx context.Context, db *sqlx.DB, m *teamDatamodel.Membership) error {
	_, err := db.ExecContext(ctx,
		"INSERT IGNORE INTO team_memberships (team_id, member_id, team_role, added_by) VALUES (?, ?, ?, ?)",
		m.TeamID, m.MemberID, m.TeamRole, m.AddedBy)
	return err
}

func (r *Repository) RemoveMembership(ctx context.Context, db *sqlx.DB, teamID, memberID int64) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM team_memberships WHERE team_id = ? AND member_id = ?", teamID, memberID)
	return err
}

func (r *Repository) IsTeamMember(ctx context.Context, db *sqlx.DB, teamID, memberID int64) (bool, error) {
	var count int64
	err := db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM team_memberships WHERE team_id = ? AND member_id = ?", teamID, memberID)
	return count > 0, err
}
