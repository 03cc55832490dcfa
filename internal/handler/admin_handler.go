package handler

import (
	"net/http"
	"strings"

	"github.com/tenantkyc/kycdesk/internal/service"
)

// AdminHandler serves the account and form overviews for admins.
type AdminHandler struct {
	authSvc *service.AuthService
	formSvc *service.FormService
}

func NewAdminHandler(authSvc *service.AuthService, formSvc *service.FormService) *AdminHandler {
	return &AdminHandler{authSvc: authSvc, formSvc: formSvc}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.authSvc.Users(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "total": len(users)})
}

// Forms lists every form across owners, most submissions first.
func (h *AdminHandler) Forms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.List(r.Context(), actor(r), service.FormListQuery{
		Search:    r.URL.Query().Get("q"),
		SortBy:    service.SortFormsBySubmissionCount,
		Ascending: strings.EqualFold(r.URL.Query().Get("order"), "asc"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": forms, "total": len(forms)})
}
