package auth

import (
	"encoding/json"
	"net/http"

	"github.com/maviontech/project-management/internal"
	"github.com/maviontech/project-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service    *Service
	CookieName string
}

func NewHandler(base *transport.BaseHandler, service *Service, cookieName string) *Handler {
	return &Handler{BaseHandler: base, Service: service, CookieName: cookieName}
}

// Login authenticates against the tenant resolved from the email domain and
// sets the session cookie. The token is also returned in the body for API
// clients that prefer the Authorization header.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, principal, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   principal.UserID,
		MemberID: principal.MemberID,
		Email:    principal.Email,
		FullName: principal.FullName,
		Tenant:   principal.Tenant.DomainPostfix,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.SessionToken(r, h.CookieName)
	if err := h.Service.Logout(r.Context(), token); err != nil {
		h.Logger.Warn("logout failed", "error", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the current principal, mainly so SPAs can restore state after a
// page reload.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrSessionExpired)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   principal.UserID,
		"member_id": principal.MemberID,
		"email":     principal.Email,
		"full_name": principal.FullName,
		"tenant":    principal.Tenant.DomainPostfix,
	})
}

// RequestPasswordReset always answers with the same acknowledgement; whether
// the account exists is decided, and acted on, server-side only.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var dto RequestResetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Service.RequestPasswordReset(r.Context(), dto.Email)

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "if the account exists, a reset link has been sent",
	})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var dto ConfirmResetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.ConfirmPasswordReset(r.Context(), dto.Token, dto.NewPassword); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
