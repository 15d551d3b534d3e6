package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinelist/internal/repositories"
)

// Backend is the mock persistence service: the list and user resources over SQLite,
// behind request logging and panic recovery.
type Backend struct {
	router *BasicRouter
	logger *log.Logger
}

// NewBackend wires repositories on db into a router. The database must already be migrated.
func NewBackend(db *sql.DB, logger *log.Logger) *Backend {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger), Recoverer(logger))

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	router.Handler(NewListHandler(repositories.NewListRepository(db), logger))
	router.Handler(NewUserHandler(repositories.NewUserRepository(db), logger))
	logger.Debug("routes registered", "patterns", router.Patterns())

	return &Backend{router: router, logger: logger}
}

// ServeHTTP implements [http.Handler].
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (b *Backend) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           b,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		b.logger.Info("list backend listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	b.logger.Info("list backend stopped")
	return nil
}
