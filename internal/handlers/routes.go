package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Dashboard page
	r.Get("/", h.handleIndex)

	// API
	r.Get("/api/get-categories", h.handleGetCategories)
	r.Post("/api/search-drivers", h.handleSearchDrivers)
	r.Get("/api/get-seasons", h.handleGetSeasons)
	r.Post("/api/get-stats", h.handleGetStats)
	r.Post("/api/get-driver-data", h.handleGetStats) // kept for older dashboard builds
	r.Post("/api/get-subsession-result", h.handleGetSubsessionResult)
	r.Get("/api/recent-drivers", h.handleRecentDrivers)
	r.Get("/api/share-qr", h.handleShareQR)

	return r
}
