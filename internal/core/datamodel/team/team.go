package team

import "time"

type Team struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	TeamLeadID  *int64    `db:"team_lead_id" json:"team_lead_id,omitempty"`
	CreatedBy   *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Membership struct {
	ID       int64     `db:"id" json:"id"`
	TeamID   int64     `db:"team_id" json:"team_id"`
	MemberID int64     `db:"member_id" json:"member_id"`
	TeamRole string    `db:"team_role" json:"team_role"`
	AddedBy  *int64    `db:"added_by" json:"added_by,omitempty"`
	AddedAt  time.Time `db:"added_at" json:"added_at"`
}
