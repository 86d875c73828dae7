package mysql

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maviontech/project-management/internal"
	tenantDatamodel "github.com/maviontech/project-management/internal/core/datamodel/tenant"
)

func TestRegistryRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RegistryRepository Suite")
}

// SQLiteClient mirrors clients_master for the in-memory test schema.
type SQLiteClient struct {
	ID            int64     `gorm:"primaryKey"`
	ClientName    string    `gorm:"column:client_name;not null"`
	DomainPostfix string    `gorm:"column:domain_postfix;uniqueIndex;not null"`
	DBName        string    `gorm:"column:db_name;uniqueIndex;not null"`
	DBHost        string    `gorm:"column:db_host"`
	DBPort        int       `gorm:"column:db_port"`
	DBEngine      string    `gorm:"column:db_engine"`
	DBUser        string    `gorm:"column:db_user"`
	DBPassword    string    `gorm:"column:db_password"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (SQLiteClient) TableName() string {
	return "clients_master"
}

var _ = Describe("RegistryRepository", func() {
	var (
		db   *gorm.DB
		repo *RegistryRepository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteClient{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRegistryRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	seedAcme := func() *tenantDatamodel.Client {
		client := &tenantDatamodel.Client{
			ClientName:    "ACME Corp",
			DomainPostfix: "@acme.com",
			DBName:        "tenant_acme",
			DBHost:        "127.0.0.1",
			DBPort:        3306,
			DBEngine:      "mysql",
		}
		Expect(repo.Create(ctx, client)).To(Succeed())
		return client
	}

	Describe("GetByDomainPostfix", func() {
		It("finds a client by its domain suffix", func() {
			seedAcme()

			found, err := repo.GetByDomainPostfix(ctx, "@acme.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.DBName).To(Equal("tenant_acme"))
		})

		It("returns TenantNotFound on a miss", func() {
			_, err := repo.GetByDomainPostfix(ctx, "@nowhere.dev")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeTenantNotFound))
		})
	})

	Describe("ExistsByDomainOrDBName", func() {
		It("matches on either unique column", func() {
			seedAcme()

			exists, err := repo.ExistsByDomainOrDBName(ctx, "@acme.com", "tenant_other")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.ExistsByDomainOrDBName(ctx, "@other.com", "tenant_acme")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.ExistsByDomainOrDBName(ctx, "@other.com", "tenant_other")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("UpdateCredentials", func() {
		It("persists provisioned credentials", func() {
			client := seedAcme()

			Expect(repo.UpdateCredentials(ctx, client.ID, "tenant_1", "generated-pw")).To(Succeed())

			found, err := repo.GetByID(ctx, client.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.DBUser).To(Equal("tenant_1"))
			Expect(found.DBPassword).To(Equal("generated-pw"))
			Expect(found.Config().Complete()).To(BeTrue())
		})
	})
})
