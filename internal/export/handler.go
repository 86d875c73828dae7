package export

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/transport"
	"github.com/maviontech/project-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*internal.Principal, bool) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "projectID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid projectID")
		return 0, false
	}
	return id, true
}

// ExportTasks streams the project's task report as a CSV attachment. Errors
// after the first write can only be logged, the status line is already gone.
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"project_%d_tasks.csv\"", projectID))
	if err := h.Service.WriteTaskReport(r.Context(), p, projectID, w); err != nil {
		h.Logger.Error("task export aborted", "project_id", projectID, "error", err)
	}
}

func (h *Handler) ExportTimeEntries(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"project_%d_time.csv\"", projectID))
	if err := h.Service.WriteTimeReport(r.Context(), p, projectID, w); err != nil {
		h.Logger.Error("time export aborted", "project_id", projectID, "error", err)
	}
}
