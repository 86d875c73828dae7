package tenant

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

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

// CreateTenant registers and provisions a new tenant. Operator-only; guarded
// by the admin key middleware in the router.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var dto CreateTenantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.Service.CreateTenant(r.Context(), dto)
	if err != nil {
		if vErr, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, client)
}

// ListTenants lists registered tenants without credentials.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.ListTenants(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, clients)
}

// ProvisionTenant re-runs provisioning for one tenant to repair schema or
// credentials.
func (h *Handler) ProvisionTenant(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "tenantID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid tenantID")
		return
	}

	if err := h.Service.ReprovisionTenant(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "provisioned"})
}
