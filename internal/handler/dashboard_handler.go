package handler

import (
	"net/http"

	"github.com/tenantkyc/kycdesk/internal/service"
)

type DashboardHandler struct {
	formSvc *service.FormService
}

func NewDashboardHandler(formSvc *service.FormService) *DashboardHandler {
	return &DashboardHandler{formSvc: formSvc}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.formSvc.Dashboard(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
