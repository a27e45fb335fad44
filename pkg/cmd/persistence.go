// Package cmd provides shared bootstrap helpers for the binaries.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/codecatalog/codecatalog/pkg/persistence"
	"github.com/codecatalog/codecatalog/pkg/persistence/file"
	"github.com/codecatalog/codecatalog/pkg/persistence/postgresql"
)

// NewPersistence selects a storage backend from the database URL scheme:
// postgres URLs get the PostgreSQL layer, anything else is treated as a
// file root for local development. Startup aborts when the backend cannot
// be reached.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		persistence, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to initialize PostgreSQL persistence", "error", err)
			os.Exit(1)
		}

		return persistence
	}

	return file.NewPersistence(databaseURL)
}
