package member

import (
	"encoding/json"
	"time"
)

// Member is an entry in the tenant's roster. Members may exist without login
// credentials (assigned but not yet onboarded); a login-capable account is a
// separate User row linked back here via users.member_id.
type Member struct {
	ID        int64           `db:"id" json:"id"`
	Email     string          `db:"email" json:"email"`
	FirstName string          `db:"first_name" json:"first_name"`
	LastName  string          `db:"last_name" json:"last_name"`
	Phone     string          `db:"phone" json:"phone"`
	Meta      json.RawMessage `db:"meta" json:"meta,omitempty"`
	CreatedBy *int64          `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// User is a login principal. MemberID is the canonical link to the roster;
// flows never match users to members by email or name.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	MemberID     *int64    `db:"member_id" json:"member_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
