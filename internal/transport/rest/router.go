package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"

	"github.com/maviontech/project-management/internal/auth"
	"github.com/maviontech/project-management/internal/chat"
	"github.com/maviontech/project-management/internal/export"
	"github.com/maviontech/project-management/internal/member"
	"github.com/maviontech/project-management/internal/project"
	"github.com/maviontech/project-management/internal/rbac"
	"github.com/maviontech/project-management/internal/session"
	"github.com/maviontech/project-management/internal/task"
	"github.com/maviontech/project-management/internal/team"
	"github.com/maviontech/project-management/internal/tenant"
	"github.com/maviontech/project-management/internal/timetrack"
	"github.com/maviontech/project-management/internal/transport/middleware"
)

// Handlers bundles every feature handler wired by the server entrypoint.
type Handlers struct {
	Auth      *auth.Handler
	Project   *project.Handler
	Task      *task.Handler
	TimeTrack *timetrack.Handler
	Member    *member.Handler
	Team      *team.Handler
	RBAC      *rbac.Handler
	Chat      *chat.Handler
	Export    *export.Handler
	Tenant    *tenant.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. Every authenticated route
// runs behind the session middleware; mutating feature routes additionally
// pass the permission gate, which evaluates against the caller's tenant
// database. Operator routes live under /admin and are guarded by the static
// admin key instead of a tenant session.
func RegisterAllRoutes(router *chi.Mux, masterDB *sql.DB, redisClient *redis.Client, h Handlers, gate *middleware.Gate, sessions session.Store, cookieName, adminKey string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(masterDB, redisClient)

	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/password-reset/request", h.Auth.RequestPasswordReset)
			sr.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
		})

		// Operator surface: tenant registration and provisioning. No tenant
		// session exists here, so the static admin key is the only guard.
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.AdminKey(adminKey))
			ar.Post("/tenants", h.Tenant.CreateTenant)
			ar.Get("/tenants", h.Tenant.ListTenants)
			ar.Post("/tenants/{tenantID}/provision", h.Tenant.ProvisionTenant)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.SessionAuth(sessions, cookieName))

			pr.Post("/auth/logout", h.Auth.Logout)
			pr.Get("/auth/me", h.Auth.Me)
			pr.Get("/auth/permissions", h.RBAC.MyPermissions)

			pr.Route("/projects", func(er chi.Router) {
				er.With(gate.RequirePermission("projects.view", "")).Get("/", h.Project.ListProjects)
				er.With(gate.RequirePermission("projects.create", "")).Post("/", h.Project.CreateProject)

				er.Route("/{projectID}", func(sr chi.Router) {
					sr.With(gate.RequirePermission("projects.view", "projectID")).Get("/", h.Project.GetProject)
					sr.With(gate.RequirePermission("projects.edit", "projectID")).Put("/", h.Project.UpdateProject)
					sr.With(gate.RequirePermission("projects.delete", "projectID")).Delete("/", h.Project.DeleteProject)

					sr.With(gate.RequirePermission("projects.view", "projectID")).Get("/subprojects", h.Project.ListSubprojects)
					sr.With(gate.RequirePermission("projects.edit", "projectID")).Post("/subprojects", h.Project.CreateSubproject)
					sr.With(gate.RequirePermission("projects.edit", "projectID")).Delete("/subprojects/{subprojectID}", h.Project.DeleteSubproject)

					sr.Route("/tasks", func(tr chi.Router) {
						tr.With(gate.RequirePermission("tasks.view", "projectID")).Get("/", h.Task.ListTasks)
						tr.With(gate.RequirePermission("tasks.create", "projectID")).Post("/", h.Task.CreateTask)
						tr.With(gate.RequirePermission("tasks.view", "projectID")).Get("/{taskID}", h.Task.GetTask)
						tr.With(gate.RequirePermission("tasks.edit", "projectID")).Put("/{taskID}", h.Task.UpdateTask)
						tr.With(gate.RequirePermission("tasks.assign", "projectID")).Patch("/{taskID}/assign", h.Task.AssignTask)
						tr.With(gate.RequirePermission("tasks.delete", "projectID")).Delete("/{taskID}", h.Task.DeleteTask)

						tr.With(gate.RequirePermission("tasks.view", "projectID")).Get("/{taskID}/comments", h.Task.ListComments)
						tr.With(gate.RequirePermission("tasks.comment", "projectID")).Post("/{taskID}/comments", h.Task.AddComment)

						tr.With(gate.RequirePermission("time.view", "projectID")).Get("/{taskID}/time", h.TimeTrack.ListTaskEntries)
					})

					sr.Route("/export", func(xr chi.Router) {
						xr.Use(gate.RequirePermission("reports.export", "projectID"))
						xr.Get("/tasks.csv", h.Export.ExportTasks)
						xr.Get("/time.csv", h.Export.ExportTimeEntries)
					})

					// Project-scoped role grants live under the project they
					// narrow to, so the scope falls out of the URL.
					sr.Route("/roles", func(rr chi.Router) {
						rr.Use(gate.RequirePermission("members.manage_roles", "projectID"))
						rr.Post("/", h.RBAC.AssignProjectRole)
						rr.Delete("/members/{memberID}/roles/{roleID}", h.RBAC.RevokeProjectRole)
					})
				})
			})

			pr.Route("/time", func(er chi.Router) {
				er.With(gate.RequirePermission("time.view", "")).Get("/entries", h.TimeTrack.ListMyEntries)
				er.With(gate.RequirePermission("time.log", "")).Post("/entries", h.TimeTrack.LogTime)
				er.With(gate.RequirePermission("time.log", "")).Put("/entries/{entryID}", h.TimeTrack.UpdateEntry)
				er.With(gate.RequirePermission("time.log", "")).Delete("/entries/{entryID}", h.TimeTrack.DeleteEntry)
				er.With(gate.RequirePermission("time.manage", "")).Delete("/entries/{entryID}/any", h.TimeTrack.DeleteAnyEntry)

				er.Group(func(tr chi.Router) {
					tr.Use(gate.RequirePermission("time.log", ""))
					tr.Get("/timer", h.TimeTrack.RunningTimer)
					tr.Post("/timer/start", h.TimeTrack.StartTimer)
					tr.Post("/timer/pause", h.TimeTrack.PauseTimer)
					tr.Post("/timer/resume", h.TimeTrack.ResumeTimer)
					tr.Post("/timer/stop", h.TimeTrack.StopTimer)
				})
			})

			pr.Route("/teams", func(er chi.Router) {
				er.With(gate.RequirePermission("teams.view", "")).Get("/", h.Team.ListTeams)
				er.With(gate.RequirePermission("teams.manage", "")).Post("/", h.Team.CreateTeam)
				er.With(gate.RequirePermission("teams.view", "")).Get("/{teamID}", h.Team.GetTeam)
				er.With(gate.RequirePermission("teams.manage", "")).Put("/{teamID}", h.Team.UpdateTeam)
				er.With(gate.RequirePermission("teams.manage", "")).Delete("/{teamID}", h.Team.DeleteTeam)

				er.With(gate.RequirePermission("teams.view", "")).Get("/{teamID}/members", h.Team.ListMemberships)
				er.With(gate.RequirePermission("teams.manage", "")).Post("/{teamID}/members", h.Team.AddMember)
				er.With(gate.RequirePermission("teams.manage", "")).Delete("/{teamID}/members/{memberID}", h.Team.RemoveMember)

				// Reading messages only needs team membership, which the
				// service enforces; posting needs the permission as well.
				er.Get("/{teamID}/messages", h.Chat.ListMessages)
				er.With(gate.RequirePermission("chat.post", "")).Post("/{teamID}/messages", h.Chat.PostMessage)
			})

			pr.Route("/members", func(er chi.Router) {
				er.With(gate.RequirePermission("members.view", "")).Get("/", h.Member.ListMembers)
				er.With(gate.RequirePermission("members.manage", "")).Post("/", h.Member.CreateMember)
				er.With(gate.RequirePermission("members.view", "")).Get("/{memberID}", h.Member.GetMember)
				er.With(gate.RequirePermission("members.manage", "")).Put("/{memberID}", h.Member.UpdateMember)
				er.With(gate.RequirePermission("members.manage", "")).Delete("/{memberID}", h.Member.DeleteMember)

				er.With(gate.RequirePermission("members.manage_roles", "")).Post("/{memberID}/roles/{roleID}", h.RBAC.AssignTenantRole)
				er.With(gate.RequirePermission("members.manage_roles", "")).Delete("/{memberID}/roles/{roleID}", h.RBAC.RevokeTenantRole)
			})

			pr.Route("/roles", func(er chi.Router) {
				er.With(gate.RequirePermission("members.manage_roles", "")).Get("/", h.RBAC.ListRoles)
				er.With(gate.RequirePermission("members.manage_roles", "")).Get("/permissions", h.RBAC.ListPermissions)

				er.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission("roles.manage", ""))
					mr.Post("/", h.RBAC.CreateRole)
					mr.Put("/{roleID}", h.RBAC.UpdateRole)
					mr.Delete("/{roleID}", h.RBAC.DeleteRole)
					mr.Put("/{roleID}/permissions", h.RBAC.SetRolePermissions)
				})
			})

			pr.Get("/notifications", h.Chat.ListNotifications)
			pr.Patch("/notifications/{notificationID}/read", h.Chat.MarkRead)
			pr.Post("/notifications/read-all", h.Chat.MarkAllRead)

			pr.With(gate.RequirePermission("projects.view", "")).Get("/activity", h.Chat.ListActivity)
		})
	})
}
