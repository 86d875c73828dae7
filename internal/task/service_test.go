package task

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/internal"
	projectDatamodel "github.com/maviontech/project-management/internal/core/datamodel/project"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/pkg/logger"
)

func TestTask(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Task Suite")
}

type mockConnector struct{}

func (m *mockConnector) Open(_ context.Context, _ *tenantDatamodel.Config) (*sqlx.DB, error) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(mockDB, "sqlmock"), nil
}

type notification struct {
	MemberID int64
	Kind     string
}

type mockRepo struct {
	tasks    map[int64]*projectDatamodel.Task
	comments []projectDatamodel.Comment
	nextID   int64

	notifications []notification
	notifyErr     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{tasks: map[int64]*projectDatamodel.Task{}, nextID: 1}
}

func (m *mockRepo) ListByProject(_ context.Context, _ *sqlx.DB, projectID int64, _ Filter) ([]projectDatamodel.Task, error) {
	var out []projectDatamodel.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockRepo) Get(_ context.Context, _ *sqlx.DB, projectID, taskID int64) (*projectDatamodel.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return nil, internal.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockRepo) Create(_ context.Context, _ *sqlx.DB, t *projectDatamodel.Task) (int64, error) {
	id := m.nextID
	m.nextID++
	clone := *t
	clone.ID = id
	m.tasks[id] = &clone
	return id, nil
}

func (m *mockRepo) Update(_ context.Context, _ *sqlx.DB, t *projectDatamodel.Task) error {
	clone := *t
	m.tasks[t.ID] = &clone
	return nil
}

func (m *mockRepo) Delete(_ context.Context, _ *sqlx.DB, _, taskID int64) error {
	delete(m.tasks, taskID)
	return nil
}

func (m *mockRepo) ListComments(_ context.Context, _ *sqlx.DB, _ int64) ([]projectDatamodel.Comment, error) {
	return m.comments, nil
}

func (m *mockRepo) CreateComment(_ context.Context, _ *sqlx.DB, c *projectDatamodel.Comment) (int64, error) {
	m.comments = append(m.comments, *c)
	return int64(len(m.comments)), nil
}

func (m *mockRepo) Notify(_ context.Context, _ *sqlx.DB, memberID int64, kind, _, _ string, _ int64) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifications = append(m.notifications, notification{MemberID: memberID, Kind: kind})
	return nil
}

func (m *mockRepo) LogActivity(_ context.Context, _ *sqlx.DB, _ string, _ int64, _ string, _ *int64) error {
	return nil
}

var _ = ginkgo.Describe("Service", func() {
	var (
		repo      *mockRepo
		service   *Service
		ctx       context.Context
		principal *internal.Principal
	)

	const projectID = int64(3)

	ginkgo.BeforeEach(func() {
		repo = newMockRepo()
		service = NewService(&mockConnector{}, repo, logger.L())
		ctx = context.Background()
		principal = &internal.Principal{
			UserID:   1,
			MemberID: 7,
			FullName: "Alice Carter",
			Tenant:   tenantDatamodel.Config{Engine: "mysql", Name: "tenant_acme", User: "tenant_1", Password: "pw"},
		}
	})

	ginkgo.Describe("CreateTask", func() {
		ginkgo.It("applies defaults and records the creator", func() {
			t, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(t.Status).To(gomega.Equal("todo"))
			gomega.Expect(t.Priority).To(gomega.Equal("medium"))
			gomega.Expect(t.ProjectID).To(gomega.Equal(projectID))
			gomega.Expect(t.CreatedBy).To(gomega.HaveValue(gomega.Equal(int64(7))))
		})

		ginkgo.It("notifies the assignee on creation", func() {
			assignee := int64(12)
			_, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login", AssignedTo: &assignee})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.ConsistOf(notification{MemberID: 12, Kind: "task_assigned"}))
		})

		ginkgo.It("does not notify a self-assignment", func() {
			self := principal.MemberID
			_, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login", AssignedTo: &self})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.BeEmpty())
		})

		ginkgo.It("rejects an untitled task", func() {
			_, err := service.CreateTask(ctx, principal, projectID, TaskDTO{})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects an unknown status", func() {
			_, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "X", Status: "blocked"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("AssignTask", func() {
		ginkgo.It("reassigns and notifies the new assignee", func() {
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			assignee := int64(12)
			updated, err := service.AssignTask(ctx, principal, projectID, created.ID, &assignee)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.AssignedTo).To(gomega.HaveValue(gomega.Equal(int64(12))))
			gomega.Expect(repo.notifications).To(gomega.ConsistOf(notification{MemberID: 12, Kind: "task_assigned"}))
		})

		ginkgo.It("succeeds even when the notification insert fails", func() {
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			repo.notifyErr = internal.ErrServiceUnavailable
			assignee := int64(12)
			updated, err := service.AssignTask(ctx, principal, projectID, created.ID, &assignee)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.AssignedTo).To(gomega.HaveValue(gomega.Equal(int64(12))))
		})

		ginkgo.It("can unassign", func() {
			assignee := int64(12)
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login", AssignedTo: &assignee})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			updated, err := service.AssignTask(ctx, principal, projectID, created.ID, nil)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.AssignedTo).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("AddComment", func() {
		ginkgo.It("notifies assignee and creator once each, skipping the commenter", func() {
			assignee := int64(12)
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login", AssignedTo: &assignee})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			repo.notifications = nil

			commenter := &internal.Principal{MemberID: 20, FullName: "Bob", Tenant: principal.Tenant}
			_, err = service.AddComment(ctx, commenter, projectID, created.ID, CommentDTO{Text: "looks good"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.ConsistOf(
				notification{MemberID: 12, Kind: "task_commented"},
				notification{MemberID: 7, Kind: "task_commented"},
			))
		})

		ginkgo.It("does not notify the commenter about their own comment", func() {
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			repo.notifications = nil

			_, err = service.AddComment(ctx, principal, projectID, created.ID, CommentDTO{Text: "self note"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.BeEmpty())
		})

		ginkgo.It("refuses an empty comment", func() {
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.AddComment(ctx, principal, projectID, created.ID, CommentDTO{Text: "   "})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("UpdateTask", func() {
		ginkgo.It("rejects a task from another project", func() {
			created, err := service.CreateTask(ctx, principal, projectID, TaskDTO{Title: "Fix login"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.UpdateTask(ctx, principal, projectID+1, created.ID, TaskDTO{Title: "Hijack"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTaskNotFound))
		})
	})
})
