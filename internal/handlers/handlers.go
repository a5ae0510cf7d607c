// Package handlers wires the HTTP surface: the JSON API consumed by the
// dashboard and the embedded dashboard page itself.
package handlers

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/apexlaps/pitwall/internal/repository"
	"github.com/apexlaps/pitwall/internal/services"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// RecentDriverLister defines the repository methods needed for the
// recently-viewed endpoint
type RecentDriverLister interface {
	RecentDrivers(ctx context.Context, limit int) ([]repository.RecentDriver, error)
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
	Error(msg string, args ...any)
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Report       services.ReportServicer
	Category     services.CategoryServicer
	Season       services.SeasonServicer
	Driver       services.DriverServicer
	Recent       RecentDriverLister
	Log          HTTPLogger
	index        *template.Template
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	report services.ReportServicer,
	category services.CategoryServicer,
	season services.SeasonServicer,
	driver services.DriverServicer,
	recent RecentDriverLister,
	templatesFS fs.FS,
	staticServer http.Handler,
	log HTTPLogger,
) (*Handlers, error) {
	index, err := template.ParseFS(templatesFS, "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Report:       report,
		Category:     category,
		Season:       season,
		Driver:       driver,
		Recent:       recent,
		Log:          log,
		index:        index,
		staticServer: staticServer,
	}, nil
}

// handleIndex serves the dashboard page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, nil); err != nil {
		h.Log.Error("Failed to render dashboard", "error", err)
	}
}
