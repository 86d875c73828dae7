package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
	"github.com/maviontech/project-management/internal/tenant"
)

type Repository interface {
	ListByProject(ctx context.Context, db *sqlx.DB, projectID int64, filter Filter) ([]projectDatamodel.Task, error)
	Get(ctx context.Context, db *sqlx.DB, projectID, taskID int64) (*projectDatamodel.Task, error)
	Create(ctx context.Context, db *sqlx.DB, t *projectDatamodel.Task) (int64, error)
	Update(ctx context.Context, db *sqlx.DB, t *projectDatamodel.Task) error
	Delete(ctx context.Context, db *sqlx.DB, projectID, taskID int64) error
	ListComments(ctx context.Context, db *sqlx.DB, taskID int64) ([]projectDatamodel.Comment, error)
	CreateComment(ctx context.Context, db *sqlx.DB, c *projectDatamodel.Comment) (int64, error)
	Notify(ctx context.Context, db *sqlx.DB, memberID int64, kind, message, entityType string, entityID int64) error
	LogActivity(ctx context.Context, db *sqlx.DB, entityType string, entityID int64, action string, performedBy *int64) error
}

// Service drives the task lifecycle. Assignment and comments fan out
// notifications to the affected members; notification failures never fail the
// operation itself.
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

func (s *Service) notify(ctx context.Context, db *sqlx.DB, memberID int64, kind, message string, taskID int64) {
	if err := s.repo.Notify(ctx, db, memberID, kind, message, "task", taskID); err != nil {
		s.logger.Warn("notification not delivered", "member_id", memberID, "kind", kind, "error", err)
	}
}

func (s *Service) logActivity(ctx context.Context, db *sqlx.DB, taskID int64, action string, performedBy int64) {
	if err := s.repo.LogActivity(ctx, db, "task", taskID, action, &performedBy); err != nil {
		s.logger.Warn("activity entry not recorded", "task_id", taskID, "action", action, "error", err)
	}
}

func (s *Service) ListTasks(ctx context.Context, p *internal.Principal, projectID int64, filter Filter) ([]projectDatamodel.Task, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tasks, err := s.repo.ListByProject(ctx, db, projectID, filter)
	if err != nil {
		s.logger.Error("failed to list tasks", "project_id", projectID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return tasks, nil
}

func (s *Service) GetTask(ctx context.Context, p *internal.Principal, projectID, taskID int64) (*projectDatamodel.Task, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return s.repo.Get(ctx, db, projectID, taskID)
}

func (s *Service) CreateTask(ctx context.Context, p *internal.Principal, projectID int64, dto TaskDTO) (*projectDatamodel.Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	t := dto.toModel()
	t.ProjectID = projectID
	t.CreatedBy = &p.MemberID

	id, err := s.repo.Create(ctx, db, t)
	if err != nil {
		s.logger.Error("failed to create task", "project_id", projectID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logActivity(ctx, db, id, "created", p.MemberID)
	if t.AssignedTo != nil && *t.AssignedTo != p.MemberID {
		s.notify(ctx, db, *t.AssignedTo, "task_assigned",
			fmt.Sprintf("%s assigned you: %s", p.FullName, t.Title), id)
	}

	s.logger.Info("task created", "task_id", id, "project_id", projectID, "created_by", p.MemberID)
	return s.repo.Get(ctx, db, projectID, id)
}

func (s *Service) UpdateTask(ctx context.Context, p *internal.Principal, projectID, taskID int64, dto TaskDTO) (*projectDatamodel.Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	existing, err := s.repo.Get(ctx, db, projectID, taskID)
	if err != nil {
		return nil, err
	}

	updated := dto.toModel()
	updated.ID = existing.ID
	updated.ProjectID = existing.ProjectID
	updated.CreatedBy = existing.CreatedBy

	if err := s.repo.Update(ctx, db, updated); err != nil {
		s.logger.Error("failed to update task", "task_id", taskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	if updated.Status != existing.Status {
		s.logActivity(ctx, db, taskID, "status:"+updated.Status, p.MemberID)
	} else {
		s.logActivity(ctx, db, taskID, "updated", p.MemberID)
	}

	return s.repo.Get(ctx, db, projectID, taskID)
}

// AssignTask changes the assignee and notifies them, unless they assigned the
// task to themselves.
func (s *Service) AssignTask(ctx context.Context, p *internal.Principal, projectID, taskID int64, assigneeID *int64) (*projectDatamodel.Task, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	existing, err := s.repo.Get(ctx, db, projectID, taskID)
	if err != nil {
		return nil, err
	}

	existing.AssignedTo = assigneeID
	if err := s.repo.Update(ctx, db, existing); err != nil {
		s.logger.Error("failed to assign task", "task_id", taskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logActivity(ctx, db, taskID, "assigned", p.MemberID)
	if assigneeID != nil && *assigneeID != p.MemberID {
		s.notify(ctx, db, *assigneeID, "task_assigned",
			fmt.Sprintf("%s assigned you: %s", p.FullName, existing.Title), taskID)
	}

	return s.repo.Get(ctx, db, projectID, taskID)
}

func (s *Service) DeleteTask(ctx context.Context, p *internal.Principal, projectID, taskID int64) error {
	db, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, projectID, taskID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, db, projectID, taskID); err != nil {
		s.logger.Error("failed to delete task", "task_id", taskID, "error", err)
		return internal.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.Info("task deleted", "task_id", taskID, "deleted_by", p.MemberID)
	return nil
}

func (s *Service) ListComments(ctx context.Context, p *internal.Principal, projectID, taskID int64) ([]projectDatamodel.Comment, error) {
	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := s.repo.Get(ctx, db, projectID, taskID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, db, taskID)
	if err != nil {
		s.logger.Error("failed to list comments", "task_id", taskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	return comments, nil
}

// AddComment stores a comment and notifies the task's assignee and creator,
// skipping the commenter themselves.
func (s *Service) AddComment(ctx context.Context, p *internal.Principal, projectID, taskID int64, dto CommentDTO) (*projectDatamodel.Comment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	db, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	t, err := s.repo.Get(ctx, db, projectID, taskID)
	if err != nil {
		return nil, err
	}

	c := &projectDatamodel.Comment{
		TaskID:      taskID,
		CommenterID: p.MemberID,
		CommentText: dto.Text,
	}
	id, err := s.repo.CreateComment(ctx, db, c)
	if err != nil {
		s.logger.Error("failed to create comment", "task_id", taskID, "error", err)
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}
	c.ID = id

	message := fmt.Sprintf("%s commented on: %s", p.FullName, t.Title)
	notified := map[int64]bool{p.MemberID: true}
	for _, target := range []*int64{t.AssignedTo, t.CreatedBy} {
		if target != nil && !notified[*target] {
			notified[*target] = true
			s.notify(ctx, db, *target, "task_commented", message, taskID)
		}
	}

	return c, nil
}
