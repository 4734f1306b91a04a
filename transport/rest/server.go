package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger *slog.Logger
	router *chi.Mux
}

// New - wires the router. ws is mounted outside the request timeout because it is long lived.
func New(logger *slog.Logger, uGame uGame, ws http.Handler) *Server {
	server := &Server{
		logger: logger.With("component", "http"),
		router: chi.NewRouter(),
	}

	handlers := NewHandlers(logger, uGame)
	ping := NewPingHandler(logger)

	server.router.Use(chimw.RequestID)
	server.router.Use(chimw.RealIP)
	server.router.Use(server.logRequests)
	server.router.Use(chimw.Recoverer)

	server.router.Get("/ping", ping.PingHandler)
	server.router.Handle("/ws", ws)

	server.router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))

		r.Get("/", handlers.Index)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", handlers.GetState)
			r.Post("/cells/{index}", handlers.ClickCell)
			r.Post("/reset", handlers.ResetBoard)
			r.Post("/score/reset", handlers.ResetScore)
			r.Put("/mode", handlers.SetMode)
		})
	})

	return server
}

func (that *Server) Router() http.Handler {
	return that.router
}

// Start - serves until ctx is cancelled, then shuts down gracefully.
// It returns once Shutdown has completed.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	stopped := make(chan struct{})
	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		close(stopped)
		<-shutdownDone
		return fmt.Errorf("failed to start server: %w", err)
	}

	// ListenAndServe returns as soon as Shutdown begins; wait for it to finish.
	<-shutdownDone

	return nil
}

func (that *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		that.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
