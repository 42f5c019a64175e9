package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cecilia/internal/config"
	"cecilia/internal/middleware"
	"cecilia/internal/models"
	"cecilia/internal/service"
)

// AdminOutcome tells what EnsureAdmin did.
type AdminOutcome string

const (
	AdminSkipped AdminOutcome = "skipped"
	AdminExists  AdminOutcome = "exists"
	AdminCreated AdminOutcome = "created"
)

// EnsureAdmin creates the configured admin account once. Missing
// credentials skip the step; an existing account is never modified.
func EnsureAdmin(ctx context.Context, cfg *config.Config, users *service.UserService) (AdminOutcome, error) {
	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" || cfg.AdminPassword == "" {
		middleware.Logger.WarnContext(ctx, "ADMIN_EMAIL or ADMIN_PASSWORD not set; skipping admin bootstrap")
		return AdminSkipped, nil
	}

	existing, err := users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		middleware.Logger.InfoContext(ctx, "admin account present", slog.Uint64("user_id", uint64(existing.ID)))
		return AdminExists, nil
	case !models.IsCode(err, models.CodeNotFound):
		return "", fmt.Errorf("look up admin: %w", err)
	}

	user, err := users.CreateUser(ctx, service.CreateUserInput{
		Email:    email,
		Name:     "Admin",
		Password: cfg.AdminPassword,
	})
	if models.IsCode(err, models.CodeConflict) {
		// another instance won the race
		return AdminExists, nil
	}
	if err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "admin account created", slog.Uint64("user_id", uint64(user.ID)))
	return AdminCreated, nil
}
