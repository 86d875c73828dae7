package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/maviontech/project-management/pkg/logger"
)

func TestRBAC(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "RBAC Suite")
}

const (
	tenantRolesQuery  = "SELECT role_id FROM tenant_role_assignments WHERE member_id = ?"
	projectRolesQuery = "SELECT role_id FROM project_role_assignments WHERE member_id = ? AND project_id = ?"
	permsQueryOneRole = "SELECT p.code FROM permissions p JOIN role_permissions rp ON p.id = rp.permission_id WHERE rp.role_id IN (?)"
	permsQueryTwoRole = "SELECT p.code FROM permissions p JOIN role_permissions rp ON p.id = rp.permission_id WHERE rp.role_id IN (?, ?)"
)

var _ = ginkgo.Describe("Resolver", func() {
	var (
		db       *sqlx.DB
		mock     sqlmock.Sqlmock
		resolver *Resolver
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		mockDB, m, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		db = sqlx.NewDb(mockDB, "sqlmock")
		mock = m
		resolver = NewResolver(logger.L())
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		gomega.Expect(mock.ExpectationsWereMet()).To(gomega.Succeed())
		_ = db.Close()
	})

	roleRows := func(ids ...int64) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"role_id"})
		for _, id := range ids {
			rows.AddRow(id)
		}
		return rows
	}

	codeRows := func(codes ...string) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"code"})
		for _, code := range codes {
			rows.AddRow(code)
		}
		return rows
	}

	ginkgo.Describe("HasPermission", func() {
		// alice: tenant-wide Viewer (role 1: projects.view, tasks.view),
		// Developer on project 7 (role 2: adds tasks.create, tasks.edit)
		const alice = int64(10)

		ginkgo.It("grants a project-scoped permission on that project", func() {
			projectID := int64(7)
			mock.ExpectQuery(tenantRolesQuery).WithArgs(alice).WillReturnRows(roleRows(1))
			mock.ExpectQuery(projectRolesQuery).WithArgs(alice, projectID).WillReturnRows(roleRows(2))
			mock.ExpectQuery(permsQueryTwoRole).WithArgs(int64(1), int64(2)).
				WillReturnRows(codeRows("projects.view", "tasks.view", "tasks.create", "tasks.edit"))

			gomega.Expect(resolver.HasPermission(ctx, db, alice, &projectID, "tasks.create")).To(gomega.BeTrue())
		})

		ginkgo.It("does not leak a project-scoped grant to another project", func() {
			projectID := int64(8)
			mock.ExpectQuery(tenantRolesQuery).WithArgs(alice).WillReturnRows(roleRows(1))
			mock.ExpectQuery(projectRolesQuery).WithArgs(alice, projectID).WillReturnRows(roleRows())
			mock.ExpectQuery(permsQueryOneRole).WithArgs(int64(1)).
				WillReturnRows(codeRows("projects.view", "tasks.view"))

			gomega.Expect(resolver.HasPermission(ctx, db, alice, &projectID, "tasks.create")).To(gomega.BeFalse())
		})

		ginkgo.It("evaluates tenant-wide grants without a project scope", func() {
			mock.ExpectQuery(tenantRolesQuery).WithArgs(alice).WillReturnRows(roleRows(1))
			mock.ExpectQuery(permsQueryOneRole).WithArgs(int64(1)).
				WillReturnRows(codeRows("projects.view", "tasks.view"))

			gomega.Expect(resolver.HasPermission(ctx, db, alice, nil, "projects.view")).To(gomega.BeTrue())
		})

		ginkgo.It("denies everything for a member with zero assignments", func() {
			mock.ExpectQuery(tenantRolesQuery).WithArgs(alice).WillReturnRows(roleRows())

			gomega.Expect(resolver.HasPermission(ctx, db, alice, nil, "projects.view")).To(gomega.BeFalse())
		})

		ginkgo.It("denies when only the other scope grants the code", func() {
			projectID := int64(7)
			mock.ExpectQuery(tenantRolesQuery).WithArgs(alice).WillReturnRows(roleRows())
			mock.ExpectQuery(projectRolesQuery).WithArgs(alice, projectID).WillReturnRows(roleRows(2))
			mock.ExpectQuery(permsQueryOneRole).WithArgs(int64(2)).
				WillReturnRows(codeRows("tasks.create", "tasks.edit"))

			gomega.Expect(resolver.HasPermission(ctx, db, alice, &projectID, "roles.manage")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("degraded resolution", func() {
		const memberID = int64(42)

		ginkgo.It("treats a failing tenant source as zero roles from it", func() {
			projectID := int64(3)
			mock.ExpectQuery(tenantRolesQuery).WithArgs(memberID).
				WillReturnError(errors.New("table tenant_role_assignments does not exist"))
			mock.ExpectQuery(projectRolesQuery).WithArgs(memberID, projectID).WillReturnRows(roleRows(5))
			mock.ExpectQuery(permsQueryOneRole).WithArgs(int64(5)).
				WillReturnRows(codeRows("tasks.view"))

			gomega.Expect(resolver.HasPermission(ctx, db, memberID, &projectID, "tasks.view")).To(gomega.BeTrue())
		})

		ginkgo.It("fails closed when the permission join fails", func() {
			mock.ExpectQuery(tenantRolesQuery).WithArgs(memberID).WillReturnRows(roleRows(1))
			mock.ExpectQuery(permsQueryOneRole).WithArgs(int64(1)).
				WillReturnError(errors.New("connection reset"))

			gomega.Expect(resolver.HasPermission(ctx, db, memberID, nil, "projects.view")).To(gomega.BeFalse())
		})

		ginkgo.It("fails closed when every source fails", func() {
			mock.ExpectQuery(tenantRolesQuery).WithArgs(memberID).
				WillReturnError(errors.New("down"))

			gomega.Expect(resolver.HasPermission(ctx, db, memberID, nil, "projects.view")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("EffectiveRoleIDs", func() {
		ginkgo.It("deduplicates roles granted in both scopes", func() {
			projectID := int64(7)
			mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(10)).WillReturnRows(roleRows(1, 2))
			mock.ExpectQuery(projectRolesQuery).WithArgs(int64(10), projectID).WillReturnRows(roleRows(2))

			ids := resolver.EffectiveRoleIDs(ctx, db, 10, &projectID)
			gomega.Expect(ids).To(gomega.Equal([]int64{1, 2}))
		})
	})

	ginkgo.Describe("EffectivePermissions", func() {
		ginkgo.It("returns a sorted union of codes", func() {
			mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(10)).WillReturnRows(roleRows(1))
			mock.ExpectQuery(permsQueryOneRole).WithArgs(int64(1)).
				WillReturnRows(codeRows("tasks.view", "projects.view"))

			perms := resolver.EffectivePermissions(ctx, db, 10, nil)
			gomega.Expect(perms).To(gomega.Equal([]string{"projects.view", "tasks.view"}))
		})

		ginkgo.It("is empty for a member with no assignments", func() {
			mock.ExpectQuery(tenantRolesQuery).WithArgs(int64(10)).WillReturnRows(roleRows())

			gomega.Expect(resolver.EffectivePermissions(ctx, db, 10, nil)).To(gomega.BeEmpty())
		})
	})
})
