package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taguchi/app"
	"taguchi/internal/metrics"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App is the HTTP surface: a chi root router serving health, metrics and HTML
// reports, with the gin JSON API mounted under /api
type App struct {
	router    *chi.Mux
	api       *gin.Engine
	service   *app.DesignService
	metrics   *metrics.Recorder
	logger    *slog.Logger
	templates *template.Template
}

// Config holds UI application configuration
type Config struct {
	GinMode string
	// Metrics is served on /metrics when non-nil
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// NewApp creates the HTTP application around a design service
func NewApp(service *app.DesignService, config Config) (*App, error) {
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	a := &App{
		router:    chi.NewRouter(),
		api:       gin.New(),
		service:   service,
		metrics:   config.Metrics,
		logger:    logger,
		templates: templates,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// Handler returns the root handler
func (a *App) Handler() http.Handler {
	return a.router
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	a.api.Use(gin.Recovery())
	a.api.Use(requestLogger(a.logger))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	if a.metrics != nil {
		a.router.Handle("/metrics", a.metrics.Handler())
	}

	// HTML reports
	a.router.Post("/reports", a.handleReport)
	a.router.Get("/reports/arrays/{id}", a.handleStoredReport)
	a.router.Get("/reports/catalogue/{name}", a.handleCatalogueReport)

	// JSON API; gin sees the full path, so its routes carry the prefix
	a.registerAPI(a.api.Group("/api"))
	a.router.Mount("/api", a.api)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
