package chat

import "time"

type Message struct {
	ID        int64     `db:"id" json:"id"`
	TeamID    int64     `db:"team_id" json:"team_id"`
	SenderID  int64     `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Notification struct {
	ID         int64     `db:"id" json:"id"`
	MemberID   int64     `db:"member_id" json:"member_id"`
	Kind       string    `db:"kind" json:"kind"`
	Message    string    `db:"message" json:"message"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   *int64    `db:"entity_id" json:"entity_id,omitempty"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type ActivityEntry struct {
	ID          int64     `db:"id" json:"id"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    int64     `db:"entity_id" json:"entity_id"`
	Action      string    `db:"action" json:"action"`
	PerformedBy *int64    `db:"performed_by" json:"performed_by,omitempty"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}
