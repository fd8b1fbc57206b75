// Package ui serves the dashboard page, its JSON API and the admin endpoints.
package ui

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"habitboard/adapters/store"
	"habitboard/internal/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/css/*.css static/js/*.js panels.yaml
var embeddedFiles embed.FS

// Config holds what the page needs to know about its environment
type Config struct {
	// DataFile and DataDir are named on the error page when no dataset is loaded
	DataFile string
	DataDir  string
	GinMode  string
}

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	service   *dashboard.Service
	views     store.Repository
	templates *template.Template
	panels    []Panel
	config    Config
	logger    *zap.Logger
}

// NewServer wires routes, templates and panels. views may be nil, which disables saved views.
func NewServer(cfg Config, service *dashboard.Service, views store.Repository, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	funcMap := template.FuncMap{
		"selected": func(values []string, v string) bool {
			for _, s := range values {
				if s == v {
					return true
				}
			}
			return false
		},
		"css": func(s string) template.CSS { return template.CSS(s) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	panelsYAML, err := embeddedFiles.ReadFile("panels.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read panels: %w", err)
	}
	panels, err := LoadPanels(panelsYAML)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		views:     views,
		templates: templates,
		panels:    panels,
		config:    cfg,
		logger:    logger.Named("http"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/views/:id", s.handleViewPage)
	s.router.GET("/export.xlsx", s.handleExport)

	api := s.router.Group("/api")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/theme", s.handleTheme)
	api.GET("/options", s.handleOptions)
	api.GET("/views", s.handleListViews)
	api.POST("/views", s.handleCreateView)
	api.DELETE("/views/:id", s.handleDeleteView)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, s.logger)
}

func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", "http://"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
