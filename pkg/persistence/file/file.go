// Package file provides a file-based persistence implementation for
// metadata records. It backs local development and tests; production
// deployments use the postgresql package.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/codecatalog/codecatalog/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	root         string
	metadataRepo *MetadataRepository
}

// NewPersistence creates a new instance of Persistence with the specified
// root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		metadataRepo: NewMetadataRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there
// is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying
// the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// MetadataRepository returns the metadata repository implementation for
// file persistence.
func (fp *Persistence) MetadataRepository() persistence.MetadataRepository {
	return fp.metadataRepo
}
