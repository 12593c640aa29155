package backend

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler is the thin HTTP layer over the stores and token service.
type Handler struct {
	logger  *slog.Logger
	users   UserStore
	reports ReportStore
	tokens  *TokenService
}

// NewHandler wires the development backend's dependencies.
func NewHandler(users UserStore, reports ReportStore, tokens *TokenService, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		users:   users,
		reports: reports,
		tokens:  tokens,
	}
}

// NewRouter exposes the diagnostic service surface: open auth endpoints,
// bearer-guarded profile/classify/reports, and operational extras.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", h.handleStatus)
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(h.tokens, h.logger))
		r.Get("/profile", h.handleGetProfile)
		r.Put("/profile", h.handleSaveProfile)
		r.Post("/classify", h.handleClassify)
		r.Get("/reports", h.handleListReports)
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "Online",
		"message": "Backend is running!",
	})
}
