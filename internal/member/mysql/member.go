package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	memberDatamodel "github.com/maviontech/project-management/internal/core/datamodel/member"
)

const memberColumns = "id, email, first_name, last_name, phone, meta, created_by, created_at"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) List(ctx context.Context, db *sqlx.DB) ([]memberDatamodel.Member, error) {
	var members []memberDatamodel.Member
	err := db.SelectContext(ctx, &members,
		"SELECT "+memberColumns+" FROM members ORDER BY last_name, first_name")
	return members, err
}

func (r *Repository) Get(ctx context.Context, db *sqlx.DB, id int64) (*memberDatamodel.Member, error) {
	var m memberDatamodel.Member
	err := db.GetContext(ctx, &m, "SELECT "+memberColumns+" FROM members WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) GetByEmail(ctx context.Context, db *sqlx.DB, email string) (*memberDatamodel.Member, error) {
	var m memberDatamodel.Member
	err := db.GetContext(ctx, &m, "SELECT "+memberColumns+" FROM members WHERE email = ?", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) Create(ctx context.Context, db *sqlx.DB, m *memberDatamodel.Member) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO members (email, first_name, last_name, phone, meta, created_by) VALUES (?, ?, ?, ?, ?, ?)",
		m.Email, m.FirstName, m.LastName, m.Phone, nullableJSON(m.Meta), m.CreatedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) Update(ctx context.Context, db *sqlx.DB, m *memberDatamodel.Member) error {
	_, err := db.ExecContext(ctx,
		"UPDATE members SET email = ?, first_name = ?, last_name = ?, phone = ?, meta = ? WHERE id = ?",
		m.Email, m.FirstName, m.LastName, m.Phone, nullableJSON(m.Meta), m.ID)
	return err
}

func (r *Repository) Delete(ctx context.Context, db *sqlx.DB, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	return err
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
