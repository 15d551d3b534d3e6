package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// AuthRegister creates a user on the backend and persists it as the signed-in identity.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	user := models.User{
		Email: strings.ToLower(strings.TrimSpace(cmd.String("email"))),
		Name:  strings.TrimSpace(cmd.String("name")),
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	session, err := r.sessionStore()
	if err != nil {
		return err
	}

	r.logger.Info("registering user", "email", user.Email)
	created, err := r.listStore().RegisterUser(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrRemote, err)
	}
	if err := session.Save(*created); err != nil {
		return err
	}

	r.logger.Debug("session saved", "path", session.Path())
	return r.writePlain("✓ Registered and signed in as %s (%s)\n", created.Email, created.ID)
}

// AuthLogin looks the user up by email and persists it as the signed-in identity.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, err := requiredArg(cmd, "email")
	if err != nil {
		return err
	}
	email = strings.ToLower(email)

	session, err := r.sessionStore()
	if err != nil {
		return err
	}

	user, err := r.listStore().FindUserByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: no user with email %s (try `cinelist auth register`)", shared.ErrUnauthenticated, email)
	} else if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrRemote, err)
	}

	if err := session.Save(*user); err != nil {
		return err
	}
	r.logger.Info("signed in", "user", user.ID)
	return r.writePlain("✓ Signed in as %s\n", user.Email)
}

// AuthLogout forgets the signed-in user.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	session, err := r.sessionStore()
	if err != nil {
		return err
	}
	if err := session.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the persisted identity without contacting the backend.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.sessionStore()
	if err != nil {
		return err
	}

	user, err := session.Load()
	if errors.Is(err, shared.ErrUnauthenticated) {
		if cmd.Bool("json") {
			return r.writeJSON(map[string]any{"authenticated": false}, cmd.Bool("pretty"))
		}
		return r.writePlain("✗ Not signed in\n")
	} else if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"authenticated": true, "user": user}, cmd.Bool("pretty"))
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Email:   %s\n", user.Email)
	if user.Name != "" {
		r.writePlain("Name:    %s\n", user.Name)
	}
	r.writePlain("ID:      %s\n", user.ID)
	if !user.CreatedAt.IsZero() {
		r.writePlain("Joined:  %s\n", humanize.Time(user.CreatedAt))
	}
	r.writePlain("Backend: %s\n", r.config.Store.BaseURL)
	return nil
}
