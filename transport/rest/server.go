package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	// MetricsPath exposes Prometheus metrics when not empty.
	MetricsPath string
}

// NewRouter wires the board page, the JSON API and the service endpoints.
func NewRouter(logger *slog.Logger, game gameUseCase, opts Options) http.Handler {
	h := newHandlers(logger, game)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.ping)

	r.Get("/", h.page)
	r.Post("/move", h.pageMove)
	r.Post("/restart", h.pageRestart)

	r.Route("/api/game", func(r chi.Router) {
		r.Get("/", h.getGame)
		r.Post("/", h.startGame)
		r.Post("/moves", h.makeMove)
	})

	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, promhttp.Handler())
	}

	return r
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
