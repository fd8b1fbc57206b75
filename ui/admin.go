package ui

import (
	"context"
	"net/http"
	"time"

	"habitboard/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AdminRouter serves /metrics, /healthz and /debug/pprof on a separate listener.
// ready reports whether a dataset is loaded.
func AdminRouter(m *metrics.Metrics, ready func() bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("no dataset\n"))
			return
		}
		w.Write([]byte("ok\n"))
	})
	r.Mount("/debug", middleware.Profiler())
	return r
}

// RunAdmin serves the admin router on addr until ctx is cancelled
func RunAdmin(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, logger.Named("admin"))
}
