package timetrack

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/internal"
	timetrackDatamodel "github.com/maviontech/project-management/internal/core/datamodel/timetrack"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/pkg/logger"
)

func TestTimetrack(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Timetrack Suite")
}

type mockConnector struct{}

func (m *mockConnector) Open(_ context.Context, _ *tenantDatamodel.Config) (*sqlx.DB, error) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(mockDB, "sqlmock"), nil
}

type mockRepo struct {
	entries map[int64]*timetrackDatamodel.TimeEntry
	timers  map[int64]*timetrackDatamodel.Timer
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		entries: map[int64]*timetrackDatamodel.TimeEntry{},
		timers:  map[int64]*timetrackDatamodel.Timer{},
		nextID:  1,
	}
}

func (m *mockRepo) ListEntriesByTask(_ context.Context, _ *sqlx.DB, taskID int64) ([]timetrackDatamodel.TimeEntry, error) {
	var out []timetrackDatamodel.TimeEntry
	for _, e := range m.entries {
		if e.TaskID == taskID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListEntriesByMember(_ context.Context, _ *sqlx.DB, memberID int64, _, _ *time.Time) ([]timetrackDatamodel.TimeEntry, error) {
	var out []timetrackDatamodel.TimeEntry
	for _, e := range m.entries {
		if e.MemberID == memberID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockRepo) GetEntry(_ context.Context, _ *sqlx.DB, entryID int64) (*timetrackDatamodel.TimeEntry, error) {
	e, ok := m.entries[entryID]
	if !ok {
		return nil, internal.NewNotFoundError("time entry not found", internal.ErrCodeValidationFailed)
	}
	clone := *e
	return &clone, nil
}

func (m *mockRepo) CreateEntry(_ context.Context, _ *sqlx.DB, e *timetrackDatamodel.TimeEntry) (int64, error) {
	id := m.nextID
	m.nextID++
	clone := *e
	clone.ID = id
	m.entries[id] = &clone
	return id, nil
}

func (m *mockRepo) UpdateEntry(_ context.Context, _ *sqlx.DB, e *timetrackDatamodel.TimeEntry) error {
	clone := *e
	m.entries[e.ID] = &clone
	return nil
}

func (m *mockRepo) DeleteEntry(_ context.Context, _ *sqlx.DB, entryID int64) error {
	delete(m.entries, entryID)
	return nil
}

func (m *mockRepo) GetRunningTimer(_ context.Context, _ *sqlx.DB, memberID int64) (*timetrackDatamodel.Timer, error) {
	for _, t := range m.timers {
		if t.MemberID == memberID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, internal.ErrTimerNotRunning
}

func (m *mockRepo) CreateTimer(_ context.Context, _ *sqlx.DB, t *timetrackDatamodel.Timer) (int64, error) {
	id := m.nextID
	m.nextID++
	clone := *t
	clone.ID = id
	m.timers[id] = &clone
	return id, nil
}

func (m *mockRepo) UpdateTimer(_ context.Context, _ *sqlx.DB, t *timetrackDatamodel.Timer) error {
	clone := *t
	m.timers[t.ID] = &clone
	return nil
}

func (m *mockRepo) DeleteTimer(_ context.Context, _ *sqlx.DB, timerID int64) error {
	delete(m.timers, timerID)
	return nil
}

var _ = ginkgo.Describe("Service", func() {
	var (
		repo      *mockRepo
		service   *Service
		ctx       context.Context
		principal *internal.Principal
		clock     time.Time
	)

	advance := func(d time.Duration) {
		clock = clock.Add(d)
	}

	ginkgo.BeforeEach(func() {
		repo = newMockRepo()
		service = NewService(&mockConnector{}, repo, logger.L())
		clock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		service.now = func() time.Time { return clock }
		ctx = context.Background()
		principal = &internal.Principal{
			UserID:   1,
			MemberID: 7,
			Tenant:   tenantDatamodel.Config{Engine: "mysql", Name: "tenant_acme", User: "tenant_1", Password: "pw"},
		}
	})

	ginkgo.Describe("LogTime", func() {
		ginkgo.It("records an entry for the caller", func() {
			entry, err := service.LogTime(ctx, principal, EntryDTO{
				TaskID:    5,
				Hours:     2.5,
				EntryDate: clock,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entry.MemberID).To(gomega.Equal(int64(7)))
			gomega.Expect(entry.Hours).To(gomega.Equal(2.5))
		})

		ginkgo.It("rejects out-of-range hours", func() {
			_, err := service.LogTime(ctx, principal, EntryDTO{TaskID: 5, Hours: 30, EntryDate: clock})
			gomega.Expect(err).To(gomega.HaveOccurred())

			_, err = service.LogTime(ctx, principal, EntryDTO{TaskID: 5, Hours: 0, EntryDate: clock})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("entry ownership", func() {
		ginkgo.It("refuses edits to another member's entry", func() {
			entry, err := service.LogTime(ctx, principal, EntryDTO{TaskID: 5, Hours: 1, EntryDate: clock})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			other := &internal.Principal{MemberID: 99, Tenant: principal.Tenant}
			_, err = service.UpdateEntry(ctx, other, entry.ID, EntryDTO{TaskID: 5, Hours: 2, EntryDate: clock})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodePermissionDenied))
		})

		ginkgo.It("allows forced deletion regardless of owner", func() {
			entry, err := service.LogTime(ctx, principal, EntryDTO{TaskID: 5, Hours: 1, EntryDate: clock})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			other := &internal.Principal{MemberID: 99, Tenant: principal.Tenant}
			gomega.Expect(service.DeleteEntry(ctx, other, entry.ID, true)).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("timer lifecycle", func() {
		ginkgo.It("refuses a second concurrent timer", func() {
			_, err := service.StartTimer(ctx, principal, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.StartTimer(ctx, principal, 6)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTimerRunning))
		})

		ginkgo.It("allows different members to run timers simultaneously", func() {
			_, err := service.StartTimer(ctx, principal, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			other := &internal.Principal{MemberID: 99, Tenant: principal.Tenant}
			_, err = service.StartTimer(ctx, other, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("materializes a time entry on stop, excluding paused time", func() {
			_, err := service.StartTimer(ctx, principal, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(time.Hour)
			_, err = service.PauseTimer(ctx, principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(30 * time.Minute)
			_, err = service.ResumeTimer(ctx, principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(30 * time.Minute)
			entry, err := service.StopTimer(ctx, principal)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entry.Hours).To(gomega.Equal(1.5))
			gomega.Expect(entry.TaskID).To(gomega.Equal(int64(5)))

			_, err = service.RunningTimer(ctx, principal)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("reports elapsed time frozen while paused", func() {
			timer, err := service.StartTimer(ctx, principal, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(time.Hour)
			paused, err := service.PauseTimer(ctx, principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(2 * time.Hour)
			gomega.Expect(paused.Elapsed(clock)).To(gomega.Equal(time.Hour))
			gomega.Expect(timer.ID).To(gomega.Equal(paused.ID))
		})

		ginkgo.It("is idempotent to pause twice", func() {
			_, err := service.StartTimer(ctx, principal, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(time.Hour)
			first, err := service.PauseTimer(ctx, principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			advance(time.Hour)
			second, err := service.PauseTimer(ctx, principal)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second.PausedAt).To(gomega.Equal(first.PausedAt))
		})

		ginkgo.It("errors when no timer is running", func() {
			_, err := service.StopTimer(ctx, principal)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTimerNotRunning))
		})
	})
})
