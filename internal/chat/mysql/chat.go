package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"

	chatDatamodel "github.com/maviontech/project-management/internal/core/datamodel/chat"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) ListMessages(ctx context.Context, db *sqlx.DB, teamID int64, limit int) ([]chatDatamodel.Message, error) {
	var messages []chatDatamodel.Message
	err := db.SelectContext(ctx, &messages,
		"SELECT id, team_id, sender_id, body, created_at FROM chat_messages WHERE team_id = ? ORDER BY created_at DESC LIMIT ?",
		teamID, limit)
	return messages, err
}

func (r *Repository) CreateMessage(ctx context.Context, db *sqlx.DB, m *chatDatamodel.Message) (int64, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO chat_messages (team_id, sender_id, body) VALUES (?, ?, ?)",
		m.TeamID, m.SenderID, m.Body)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) IsTeamMember(ctx context.Context, db *sqlx.DB, teamID, memberID int64) (bool, error) {
	var count int64
	err := db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM team_memberships WHERE team_id = ? AND member_id = ?", teamID, memberID)
	return count > 0, err
}

func (r *Repository) TeamMemberIDs(ctx context.Context, db *sqlx.DB, teamID int64) ([]int64, error) {
	var ids []int64
	err := db.SelectContext(ctx, &ids,
		"SELECT member_id FROM team_memberships WHERE team_id = ?", teamID)
	return ids, err
}

func (r *Repository) ListNotifications(ctx context.Context, db *sqlx.DB, memberID int64, unreadOnly bool) ([]chatDatamodel.Notification, error) {
	query := "SELECT id, member_id, kind, message, entity_type, entity_id, is_read, created_at FROM notifications WHERE member_id = ?"
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	var notifications []chatDatamodel.Notification
	err := db.SelectContext(ctx, &notifications, query, memberID)
	return notifications, err
}

func (r *Repository) CreateNotification(ctx context.Context, db *sqlx.DB, n *chatDatamodel.Notification) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO notifications (member_id, kind, message, entity_type, entity_id) VALUES (?, ?, ?, ?, ?)",
		n.MemberID, n.Kind, n.Message, n.EntityType, n.EntityID)
	return err
}

func (r *Repository) MarkNotificationRead(ctx context.Context, db *sqlx.DB, memberID, notificationID int64) (bool, error) {
	res, err := db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND member_id = ?", notificationID, memberID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) MarkAllNotificationsRead(ctx context.Context, db *sqlx.DB, memberID int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE member_id = ? AND is_read = 0", memberID)
	return err
}

func (r *Repository) ListActivity(ctx context.Context, db *sqlx.DB, entityType string, entityID int64, limit int) ([]chatDatamodel.ActivityEntry, error) {
	var entries []chatDatamodel.ActivityEntry
	err := db.SelectContext(ctx, &entries,
		"SELECT id, entity_type, entity_id, action, performed_by, timestamp FROM activity_log WHERE entity_type = ? AND entity_id = ? ORDER BY timestamp DESC LIMIT ?",
		entityType, entityID, limit)
	return entries, err
}
