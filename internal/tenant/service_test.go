package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/internal"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
	"github.com/maviontech/project-management/pkg/logger"
)

func TestTenant(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Tenant Suite")
}

type mockRegistry struct {
	clients     map[string]*tenantDatamodel.Client // domain_postfix -> client
	nextID      int64
	failLookups bool
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		clients: map[string]*tenantDatamodel.Client{
			"@acme.com": {
				ID:            1,
				ClientName:    "ACME Corp",
				DomainPostfix: "@acme.com",
				DBName:        "tenant_acme",
				DBHost:        "127.0.0.1",
				DBPort:        3306,
				DBEngine:      "mysql",
				DBUser:        "tenant_1",
				DBPassword:    "s3cret",
			},
		},
		nextID: 2,
	}
}

func (m *mockRegistry) GetByDomainPostfix(_ context.Context, postfix string) (*tenantDatamodel.Client, error) {
	if m.failLookups {
		return nil, errors.New("registry down")
	}
	if c, ok := m.clients[postfix]; ok {
		return c, nil
	}
	return nil, internal.ErrTenantNotFound
}

func (m *mockRegistry) GetByID(_ context.Context, id int64) (*tenantDatamodel.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, internal.ErrTenantNotFound
}

func (m *mockRegistry) List(_ context.Context) ([]*tenantDatamodel.Client, error) {
	out := make([]*tenantDatamodel.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockRegistry) ExistsByDomainOrDBName(_ context.Context, postfix, dbName string) (bool, error) {
	if _, ok := m.clients[postfix]; ok {
		return true, nil
	}
	for _, c := range m.clients {
		if c.DBName == dbName {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRegistry) Create(_ context.Context, client *tenantDatamodel.Client) error {
	client.ID = m.nextID
	m.nextID++
	m.clients[client.DomainPostfix] = client
	return nil
}

func (m *mockRegistry) UpdateCredentials(_ context.Context, id int64, dbUser, dbPassword string) error {
	for _, c := range m.clients {
		if c.ID == id {
			c.DBUser = dbUser
			c.DBPassword = dbPassword
			return nil
		}
	}
	return internal.ErrTenantNotFound
}

type mockProvisioner struct {
	calls int
	fail  bool
}

func (m *mockProvisioner) Provision(_ context.Context, client *tenantDatamodel.Client) (string, string, error) {
	m.calls++
	if m.fail {
		return "", "", errors.New("provisioning exploded")
	}
	return "tenant_9", "generated-pw", nil
}

var _ = ginkgo.Describe("TenantService", func() {
	var (
		service     *Service
		registry    *mockRegistry
		provisioner *mockProvisioner
	)

	ginkgo.BeforeEach(func() {
		registry = newMockRegistry()
		provisioner = &mockProvisioner{}
		service = NewService(registry, provisioner, logger.L())
	})

	ginkgo.Describe("ResolveByEmail", func() {
		ginkgo.It("resolves a registered domain to the tenant config", func() {
			cfg, err := service.ResolveByEmail(context.Background(), "alice@acme.com")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(cfg.Name).To(gomega.Equal("tenant_acme"))
			gomega.Expect(cfg.User).To(gomega.Equal("tenant_1"))
			gomega.Expect(cfg.DomainPostfix).To(gomega.Equal("@acme.com"))
		})

		ginkgo.It("resolves purely by domain: local part is irrelevant", func() {
			a, err := service.ResolveByEmail(context.Background(), "alice@acme.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			b, err := service.ResolveByEmail(context.Background(), "bob.builder@acme.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(a).To(gomega.Equal(b))
		})

		ginkgo.It("returns TenantNotFound for unknown domains", func() {
			_, err := service.ResolveByEmail(context.Background(), "alice@nowhere.dev")

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTenantNotFound))
		})

		ginkgo.It("rejects malformed emails", func() {
			for _, email := range []string{"", "no-at-sign", "two@@acme.com", "a@b@c.com", "@acme.com", "alice@"} {
				_, err := service.ResolveByEmail(context.Background(), email)
				gomega.Expect(err).To(gomega.HaveOccurred(), "email=%q", email)
			}
		})

		ginkgo.It("maps registry failures to a generic unavailable error", func() {
			registry.failLookups = true

			_, err := service.ResolveByEmail(context.Background(), "alice@acme.com")

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeUnavailable))
		})
	})

	ginkgo.Describe("CreateTenant", func() {
		ginkgo.It("registers and provisions a new tenant", func() {
			client, err := service.CreateTenant(context.Background(), CreateTenantDTO{
				ClientName: "Globex",
				Domain:     "globex.io",
				DBName:     "tenant_globex",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(client.DomainPostfix).To(gomega.Equal("@globex.io"))
			gomega.Expect(client.DBUser).To(gomega.Equal("tenant_9"))
			gomega.Expect(provisioner.calls).To(gomega.Equal(1))
		})

		ginkgo.It("rejects duplicate domains", func() {
			_, err := service.CreateTenant(context.Background(), CreateTenantDTO{
				ClientName: "Impostor",
				Domain:     "acme.com",
				DBName:     "tenant_other",
			})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTenantExists))
			gomega.Expect(provisioner.calls).To(gomega.BeZero())
		})

		ginkgo.It("surfaces provisioning failures", func() {
			provisioner.fail = true

			_, err := service.CreateTenant(context.Background(), CreateTenantDTO{
				ClientName: "Globex",
				Domain:     "globex.io",
				DBName:     "tenant_globex",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
