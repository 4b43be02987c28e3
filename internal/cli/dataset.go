package cli

import (
	"context"
	"errors"
	"log/slog"

	"asiacup/internal/config"
	"asiacup/internal/dataset"
	"asiacup/internal/services"
)

// openService loads the dataset named by cfg and returns a service over it.
func openService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.DashboardService, *config.Paths, error) {
	paths, err := cfg.ResolvePaths("")
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to resolve paths", err)
	}

	store := dataset.NewStore(paths.DatasetFile, logger)
	if _, err := store.Table(ctx); err != nil {
		return nil, nil, WrapExitError(ExitFailure, "failed to load dataset", err)
	}

	return services.NewDashboardService(store, services.DashboardServiceConfig{}, logger), paths, nil
}

// serviceError maps a dashboard service error to an exit code.
func serviceError(err error) error {
	if errors.Is(err, services.ErrInvalidSelection) {
		return WrapExitError(ExitCommandError, "invalid selection", err)
	}
	return WrapExitError(ExitFailure, "query failed", err)
}
