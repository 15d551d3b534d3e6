package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinelist/internal/server"
	"github.com/desertthunder/cinelist/internal/shared"
)

// Serve runs the mock list backend until interrupted.
//
// A lock file next to the database keeps a second server off the same file.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := r.config.Server.Addr()
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}
	dbConfig := r.config.Database
	if cmd.IsSet("db") {
		dbConfig.Path = cmd.String("db")
	}

	if dbConfig.Path != ":memory:" {
		lock := flock.New(dbConfig.Path + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("%w: another server is using %s", shared.ErrServiceUnavailable, dbConfig.Path)
		}
		defer func() {
			lock.Unlock()
			os.Remove(dbConfig.Path + ".lock")
		}()
	}

	db, err := openDatabase(dbConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := server.NewBackend(db, shared.WithLogger(r.logger, "component", "server"))
	r.logger.Info("serving list backend", "addr", addr, "database", dbConfig.Path)
	return backend.ListenAndServe(ctx, addr)
}
