package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/internal"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
)

func TestSession(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Session Suite")
}

var _ = ginkgo.Describe("RedisStore", func() {
	var (
		mr    *miniredis.Miniredis
		store *RedisStore
		ctx   context.Context
	)

	principal := &internal.Principal{
		UserID:   1,
		MemberID: 7,
		Email:    "alice@acme.com",
		FullName: "Alice Carter",
		Tenant: tenantDatamodel.Config{
			Engine:        "mysql",
			Host:          "127.0.0.1",
			Port:          3306,
			Name:          "tenant_acme",
			User:          "tenant_1",
			Password:      "s3cret",
			DomainPostfix: "@acme.com",
		},
	}

	ginkgo.BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		store = NewRedisStore(client, Options{TTL: time.Hour})
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		mr.Close()
	})

	ginkgo.It("round-trips a principal through an opaque token", func() {
		token, err := store.Create(ctx, principal)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(token).ToNot(gomega.BeEmpty())

		got, err := store.Get(ctx, token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(got).To(gomega.Equal(principal))
	})

	ginkgo.It("issues distinct tokens per login", func() {
		t1, err := store.Create(ctx, principal)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		t2, err := store.Create(ctx, principal)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(t1).ToNot(gomega.Equal(t2))
	})

	ginkgo.It("treats unknown tokens as expired sessions", func() {
		_, err := store.Get(ctx, "not-a-token")

		appErr, ok := internal.IsAppError(err)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeSessionExpired))
	})

	ginkgo.It("expires sessions after the TTL", func() {
		token, err := store.Create(ctx, principal)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		mr.FastForward(2 * time.Hour)

		_, err = store.Get(ctx, token)
		appErr, ok := internal.IsAppError(err)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeSessionExpired))
	})

	ginkgo.It("invalidates a session on delete", func() {
		token, err := store.Create(ctx, principal)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(store.Delete(ctx, token)).To(gomega.Succeed())

		_, err = store.Get(ctx, token)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
