package chat

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	chatDatamodel "github.com/maviontech/project-management/internal/core/datamodel/chat"
	"github.com/maviontech/project-management/internal/tenant"
)

type Repository interface {
	ListMessages(ctx context.Context, db *sqlx.DB, teamID int64, limit int) ([]chatDatamodel.Message, error)
	CreateMessage(ctx context.Context, db *sqlx.DB, m *chatDatamodel.Message) (int64, error)
	IsTeamMember(ctx context.Context, db *sqlx.DB, teamID, memberID int64) (bool, error)
	TeamMemberIDs(ctx context.Context, db *sqlx.DB, teamID int64) ([]int64, error)

	ListNotifications(ctx context.Context, db *sqlx.DB, memberID int64, unreadOnly bool) ([]chatDatamodel.Notification, error)
	CreateNotification(ctx context.Context, db *sqlx.DB, n *chatDatamodel.Notification) error
	MarkNotificationRead(ctx context.Context, db *sqlx.DB, memberID, notificationID int64) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, db *sqlx.DB, memberID int64) error

	ListActivity(ctx context.Context, db *sqlx.DB, entityType string, entityID int64, limit int) ([]chatDatamodel.ActivityEntry, error)
}

const defaultMessageLimit = 50

// Service covers team chat, the notification inbox and the activity feed.
// Posting fans a notification out to every other member of the team.
type Service struct {
	connector tenant.Connector
	repo      Repository
	logger    *slog.Logger
}

func NewService(connector tenant.Connector, repo Repository, logger *slog.Logger) *Service {
	return &Service{connector: connector, repo: repo, logger: logger}
}

func (s *Service) open(ctx context.Context, p *internal.Principal) (*sqlx.DB, error) {
	return s.connector.Open(ctx, &p.Tenant)
}

// ListMessages returns the latest messages of a team the caller belongs to.
func (s *Service) ListMessages(ctx context.Context, p *internal.Principal, teamID int64) ([]chatDatamodel.Message, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := s.requireMembership(ctx, db, teamID, p.MemberID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, db, teamID, defaultMessageLimit)
	if err != nil {
		s.logger.Error("failed to list chat messages", "team_id", teamID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return messages, nil
}

// PostMessage stores a message and notifies the rest of the team. Only team
// members may post, regardless of the chat.post grant.
func (s *Service) PostMessage(ctx context.Context, p *internal.Principal, teamID int64, dto MessageDTO) (*chatDatamodel.Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := s.requireMembership(ctx, db, teamID, p.MemberID); err != nil {
		return nil, err
	}

	m := &chatDatamodel.Message{
		TeamID:   teamID,
		SenderID: p.MemberID,
		Body:     dto.Body,
	}
	id, err := s.repo.CreateMessage(ctx, db, m)
	if err != nil {
		s.logger.Error("failed to post chat message", "team_id", teamID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	m.ID = id

	s.fanOut(ctx, db, teamID, p, id)
	return m, nil
}

func (s *Service) requireMembership(ctx context.Context, db *sqlx.DB, teamID, memberID int64) error {
	ok, err := s.repo.IsTeamMember(ctx, db, teamID, memberID)
	if err != nil {
		s.logger.Error("team membership check failed", "team_id", teamID, "member_id", memberID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	if !ok {
		return internal.ErrPermissionDenied
	}
	return nil
}

func (s *Service) fanOut(ctx context.Context, db *sqlx.DB, teamID int64, sender *internal.Principal, messageID int64) {
	memberIDs, err := s.repo.TeamMemberIDs(ctx, db, teamID)
	if err != nil {
		s.logger.Warn("chat fan-out skipped", "team_id", teamID, "error", err)
		return
	}

	for _, memberID := range memberIDs {
		if memberID == sender.MemberID {
			continue
		}
		n := &chatDatamodel.Notification{
			MemberID:   memberID,
			Kind:       "chat_message",
			Message:    sender.FullName + " posted in team chat",
			EntityType: "chat_message",
			EntityID:   &messageID,
		}
		if err := s.repo.CreateNotification(ctx, db, n); err != nil {
			s.logger.Warn("chat notification not delivered", "member_id", memberID, "error", err)
		}
	}
}

func (s *Service) ListNotifications(ctx context.Context, p *internal.Principal, unreadOnly bool) ([]chatDatamodel.Notification, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	notifications, err := s.repo.ListNotifications(ctx, db, p.MemberID, unreadOnly)
	if err != nil {
		s.logger.Error("failed to list notifications", "member_id", p.MemberID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return notifications, nil
}

// MarkRead flags one of the caller's notifications as read. A notification
// belonging to someone else reads as not found.
func (s *Service) MarkRead(ctx context.Context, p *internal.Principal, notificationID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	found, err := s.repo.MarkNotificationRead(ctx, db, p.MemberID, notificationID)
	if err != nil {
		s.logger.Error("failed to mark notification read", "notification_id", notificationID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	if !found {
		return internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationGone)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, p *internal.Principal) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.repo.MarkAllNotificationsRead(ctx, db, p.MemberID); err != nil {
		s.logger.Error("failed to mark notifications read", "member_id", p.MemberID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}
	return nil
}

func (s *Service) ListActivity(ctx context.Context, p *internal.Principal, entityType string, entityID int64) ([]chatDatamodel.ActivityEntry, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	entries, err := s.repo.ListActivity(ctx, db, entityType, entityID, defaultMessageLimit)
	if err != nil {
		s.logger.Error("failed to list activity", "entity_type", entityType, "entity_id", entityID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return entries, nil
}
