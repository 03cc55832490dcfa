package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/service"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

type SubmissionHandler struct {
	subSvc   *service.SubmissionService
	shareSvc *service.ShareService
}

func NewSubmissionHandler(subSvc *service.SubmissionService, shareSvc *service.ShareService) *SubmissionHandler {
	return &SubmissionHandler{subSvc: subSvc, shareSvc: shareSvc}
}

// selectionRequest is the body shared by export and share: the dashboard's
// current criteria plus the checked ids.
type selectionRequest struct {
	IDs   []string `json:"ids"`
	Query string   `json:"q"`
	Date  string   `json:"date"`
	Sort  string   `json:"sort"`
	Order string   `json:"order"`
}

func (s selectionRequest) criteria() submissions.Criteria {
	return submissions.ParseCriteria(s.Query, s.Date, s.Sort, s.Order, s.IDs)
}

func queryCriteria(r *http.Request) submissions.Criteria {
	q := r.URL.Query()
	return submissions.ParseCriteria(q.Get("q"), q.Get("date"), q.Get("sort"), q.Get("order"), nil)
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subSvc.List(r.Context(), actor(r), chi.URLParam(r, "formId"), queryCriteria(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       len(subs),
	})
}

func (h *SubmissionHandler) Archived(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subSvc.Archived(r.Context(), actor(r), chi.URLParam(r, "formId"), queryCriteria(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       len(subs),
	})
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subSvc.Get(r.Context(), actor(r), chi.URLParam(r, "formId"), chi.URLParam(r, "subId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.subSvc.SetStatus(r.Context(), actor(r), chi.URLParam(r, "formId"), chi.URLParam(r, "subId"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.subSvc.Recommend(r.Context(), actor(r), chi.URLParam(r, "formId"), chi.URLParam(r, "subId"), req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	archived, err := h.subSvc.Archive(r.Context(), actor(r), chi.URLParam(r, "formId"), req.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"archived": archived,
		"count":    len(archived),
	})
}

// Export streams the selected submissions as a CSV download.
func (h *SubmissionHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := h.subSvc.Export(r.Context(), actor(r), chi.URLParam(r, "formId"), req.criteria())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Body)
}

func (h *SubmissionHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req struct {
		selectionRequest
		Channel    submissions.Channel `json:"channel"`
		Recipient  string              `json:"recipient"`
		Recipients []string            `json:"recipients"`
		Message    string              `json:"message"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recipients := req.Recipients
	if req.Recipient != "" {
		recipients = append(recipients, req.Recipient)
	}
	receipt, err := h.shareSvc.ShareReport(r.Context(), actor(r), chi.URLParam(r, "formId"), req.criteria(), service.ShareRequest{
		Channel:    req.Channel,
		Message:    req.Message,
		Recipients: recipients,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}
