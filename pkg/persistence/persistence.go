// Package persistence provides the data storage abstraction layer for
// software metadata records.
package persistence

import (
	"context"

	"github.com/codecatalog/codecatalog/pkg/models"
)

// Persistence is the top-level storage contract handed to the service layer.
type Persistence interface {
	MetadataRepository() MetadataRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// MetadataRepository exposes read access plus an explicit transaction
// boundary for mutations. The workflow engine opens and closes the
// transaction; repositories never commit on their own.
type MetadataRepository interface {
	// GetByID returns the record for codeID, or nil when not on file.
	GetByID(ctx context.Context, codeID int64) (*models.Metadata, error)

	// ListByOwner returns every record owned by the given identity.
	ListByOwner(ctx context.Context, owner string) ([]*models.Metadata, error)

	// Begin opens a transaction scoped to a single workflow operation.
	Begin(ctx context.Context) (MetadataTx, error)
}

// MetadataTx is a transaction-scoped view of the metadata store.
type MetadataTx interface {
	// GetByID returns the record for codeID, or nil when not on file.
	GetByID(ctx context.Context, codeID int64) (*models.Metadata, error)

	// Save persists the record. A record without a code ID is inserted and
	// receives one; otherwise the stored row is replaced.
	Save(ctx context.Context, record *models.Metadata) error

	Commit() error
	Rollback() error
}
