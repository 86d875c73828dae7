package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/core/datamodel/member"
)

// UserRepository reads and updates login principals inside a tenant database.
// It is stateless; the connection for the resolved tenant is passed per call.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) GetByEmail(ctx context.Context, db *sqlx.DB, email string) (*member.User, error) {
	var user member.User
	err := db.GetContext(ctx, &user,
		"SELECT id, member_id, email, full_name, password_hash, role, is_active, created_at FROM users WHERE email = ?",
		email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, db *sqlx.DB, userID int64, hash string) error {
	_, err := db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = NOW() WHERE id = ?",
		hash, userID)
	return err
}

func (r *UserRepository) UpdatePasswordHashByEmail(ctx context.Context, db *sqlx.DB, email, hash string) error {
	res, err := db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = NOW() WHERE email = ?",
		hash, email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return internal.ErrInvalidResetToken
	}
	return nil
}
