// Package app wires the application dependencies together.
package app

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apexlaps/pitwall/internal/handlers"
	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/internal/repository"
	"github.com/apexlaps/pitwall/internal/services"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
}

// New creates and initializes a new application instance
func New(log logger.Logger, dbPath string, client iracing.Client, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	categoryService := services.NewCategoryService(log, client, repo)
	seasonService := services.NewSeasonService(log, client)
	driverService := services.NewDriverService(log, client)
	reportService := services.NewReportService(log, client, categoryService, repo)

	// Create static file server
	staticServer := handlers.NewStaticServer(staticFS)

	// Initialize handlers
	h, err := handlers.New(
		reportService,
		categoryService,
		seasonService,
		driverService,
		repo,
		templatesFS,
		staticServer,
		log,
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:      log,
		handlers: h,
		repo:     repo,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close releases app resources
func (a *App) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}
