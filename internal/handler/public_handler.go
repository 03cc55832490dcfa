package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/service"
)

// PublicHandler serves the unauthenticated form link.
type PublicHandler struct {
	formSvc *service.FormService
	subSvc  *service.SubmissionService
}

func NewPublicHandler(formSvc *service.FormService, subSvc *service.SubmissionService) *PublicHandler {
	return &PublicHandler{formSvc: formSvc, subSvc: subSvc}
}

type publicForm struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	ApartmentName    string         `json:"apartmentName,omitempty"`
	ApartmentAddress string         `json:"apartmentAddress,omitempty"`
	Fields           []models.Field `json:"fields"`
}

func (h *PublicHandler) Form(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.PublicForm(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicForm{
		ID:               form.ID,
		Title:            form.Title,
		ApartmentName:    form.ApartmentName,
		ApartmentAddress: form.ApartmentAddress,
		Fields:           form.Fields,
	})
}

func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.subSvc.Submit(r.Context(), chi.URLParam(r, "formId"), req.Data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":          sub.ID,
		"submittedAt": sub.SubmittedAt,
	})
}
