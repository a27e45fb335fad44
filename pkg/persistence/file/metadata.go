package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/persistence"
)

// MetadataRepository stores each record as <root>/<code_id>.json. A single
// mutex serializes directory access; transactions stage writes in memory
// and flush on commit, so a rollback leaves the directory untouched.
type MetadataRepository struct {
	root string
	mu   sync.Mutex
}

// NewMetadataRepository creates a new file-backed metadata repository.
func NewMetadataRepository(root string) *MetadataRepository {
	return &MetadataRepository{root: root}
}

// GetByID returns the record for codeID, or nil when not on file.
func (r *MetadataRepository) GetByID(_ context.Context, codeID int64) (*models.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.read(codeID)
}

// ListByOwner returns all records owned by the given identity.
func (r *MetadataRepository) ListByOwner(_ context.Context, owner string) ([]*models.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.ids()
	if err != nil {
		return nil, err
	}

	records := make([]*models.Metadata, 0)

	for _, id := range ids {
		record, err := r.read(id)
		if err != nil {
			return nil, err
		}

		if record != nil && record.Owner == owner {
			records = append(records, record)
		}
	}

	return records, nil
}

// Begin opens a transaction that stages writes in memory until Commit.
func (r *MetadataRepository) Begin(_ context.Context) (persistence.MetadataTx, error) {
	return &metadataTx{repo: r, staged: make(map[int64]*models.Metadata)}, nil
}

type metadataTx struct {
	repo   *MetadataRepository
	staged map[int64]*models.Metadata
	nextID int64
	done   bool
}

func (t *metadataTx) GetByID(ctx context.Context, codeID int64) (*models.Metadata, error) {
	if t.done {
		return nil, persistence.ErrTxClosed
	}

	if staged, ok := t.staged[codeID]; ok {
		return clone(staged)
	}

	return t.repo.GetByID(ctx, codeID)
}

func (t *metadataTx) Save(_ context.Context, record *models.Metadata) error {
	if t.done {
		return persistence.ErrTxClosed
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	record.UpdatedAt = now

	if record.OpenSource == nil {
		record.RecomputeOpenSource()
	}

	if record.CodeID == nil {
		id, err := t.assignID()
		if err != nil {
			return err
		}

		record.CodeID = &id
	}

	staged, err := clone(record)
	if err != nil {
		return err
	}

	t.staged[*record.CodeID] = staged

	return nil
}

func (t *metadataTx) Commit() error {
	if t.done {
		return persistence.ErrTxClosed
	}

	t.done = true

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	for codeID, record := range t.staged {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", codeID, err)
		}

		err = os.WriteFile(t.repo.path(codeID), data, 0o600)
		if err != nil {
			return persistence.NewRecordError("Commit", codeID, err)
		}
	}

	return nil
}

func (t *metadataTx) Rollback() error {
	if t.done {
		return persistence.ErrTxClosed
	}

	t.done = true
	t.staged = nil

	return nil
}

// assignID hands out the next free code ID, accounting for rows staged in
// this transaction but not yet committed.
func (t *metadataTx) assignID() (int64, error) {
	t.repo.mu.Lock()
	ids, err := t.repo.ids()
	t.repo.mu.Unlock()

	if err != nil {
		return 0, err
	}

	var maxID int64
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
	}

	for id := range t.staged {
		if id > maxID {
			maxID = id
		}
	}

	if t.nextID <= maxID {
		t.nextID = maxID
	}

	t.nextID++

	return t.nextID, nil
}

func (r *MetadataRepository) path(codeID int64) string {
	return filepath.Join(r.root, strconv.FormatInt(codeID, 10)+".json")
}

func (r *MetadataRepository) read(codeID int64) (*models.Metadata, error) {
	data, err := os.ReadFile(r.path(codeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, persistence.NewRecordError("GetByID", codeID, err)
	}

	var record models.Metadata

	err = json.Unmarshal(data, &record)
	if err != nil {
		return nil, persistence.NewRecordError("GetByID", codeID, err)
	}

	return &record, nil
}

func (r *MetadataRepository) ids() ([]int64, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	ids := make([]int64, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// clone deep-copies a record so staged writes never alias caller memory.
func clone(record *models.Metadata) (*models.Metadata, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to clone record: %w", err)
	}

	var copied models.Metadata

	err = json.Unmarshal(data, &copied)
	if err != nil {
		return nil, fmt.Errorf("failed to clone record: %w", err)
	}

	return &copied, nil
}
