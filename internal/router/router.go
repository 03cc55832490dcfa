package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tenantkyc/kycdesk/internal/auth"
	"github.com/tenantkyc/kycdesk/internal/handler"
	mw "github.com/tenantkyc/kycdesk/internal/middleware"
	"github.com/tenantkyc/kycdesk/internal/models"
)

func New(
	tokens *auth.Tokens,
	corsOrigin string,
	logger *zap.Logger,
	authH *handler.AuthHandler,
	formH *handler.FormHandler,
	subH *handler.SubmissionHandler,
	pubH *handler.PublicHandler,
	dashH *handler.DashboardHandler,
	adminH *handler.AdminHandler,
	healthH *handler.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery(logger))
	r.Use(mw.Metrics)
	r.Use(mw.Logger(logger))
	r.Use(mw.CORS(corsOrigin))

	r.Get("/healthz", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)
		r.Get("/public/forms/{formId}", pubH.Form)
		r.Post("/public/forms/{formId}/submissions", pubH.Submit)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))

			// Auth
			r.Get("/auth/me", authH.Me)

			// Dashboard
			r.Get("/dashboard", dashH.Dashboard)

			// Forms
			r.Get("/templates", formH.Templates)
			r.Get("/forms", formH.List)
			r.Post("/forms", formH.Create)
			r.Get("/forms/{formId}", formH.Get)
			r.Put("/forms/{formId}", formH.Update)
			r.Delete("/forms/{formId}", formH.Delete)
			r.Post("/forms/{formId}/share", formH.Share)

			// Submissions
			r.Get("/forms/{formId}/submissions", subH.List)
			r.Get("/forms/{formId}/submissions/archived", subH.Archived)
			r.Post("/forms/{formId}/submissions/archive", subH.Archive)
			r.Post("/forms/{formId}/submissions/export", subH.Export)
			r.Post("/forms/{formId}/submissions/share", subH.Share)
			r.Get("/forms/{formId}/submissions/{subId}", subH.Get)
			r.Patch("/forms/{formId}/submissions/{subId}/status", subH.SetStatus)
			r.Put("/forms/{formId}/submissions/{subId}/recommendation", subH.Recommend)

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Get("/users", adminH.Users)
				r.Get("/forms", adminH.Forms)
			})
		})
	})

	return r
}
