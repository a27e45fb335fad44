package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/persistence"
)

// Registrar registers DOIs for published records. Register reports
// success; a failed registration never fails the workflow.
type Registrar interface {
	Register(ctx context.Context, record *models.Metadata) bool
}

// Publisher posts records to the upstream software center. A rejection
// is a precondition failure for the submit workflow.
type Publisher interface {
	Submit(ctx context.Context, record *models.Metadata) (string, error)
}

// Indexer pushes committed records to the search index.
type Indexer interface {
	Push(ctx context.Context, record *models.Metadata) error
}

// Metadata is the workflow engine for software metadata records. Every
// mutation runs inside a single storage transaction which the engine
// alone opens and closes.
type Metadata struct {
	persistence persistence.Persistence
	registrar   Registrar
	publisher   Publisher
	indexer     Indexer
	logger      *slog.Logger
}

// NewMetadata creates a new metadata workflow service.
func NewMetadata(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registrar Registrar,
	publisher Publisher,
	indexer Indexer,
) *Metadata {
	return &Metadata{
		persistence: persistence,
		registrar:   registrar,
		publisher:   publisher,
		indexer:     indexer,
		logger:      logger.With("module", "metadata_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (m *Metadata) HealthCheck(ctx context.Context) (string, bool) {
	if m.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := m.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// FetchByID retrieves a record by its code ID.
func (m *Metadata) FetchByID(ctx context.Context, codeID int64) (*models.Metadata, error) {
	record, err := m.persistence.MetadataRepository().GetByID(ctx, codeID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		return nil, ErrRecordNotFound
	}

	return record, nil
}

// FetchForEdit retrieves a record for editing. Only the owner may load a
// record through this path.
func (m *Metadata) FetchForEdit(ctx context.Context, owner string, codeID int64) (*models.Metadata, error) {
	record, err := m.FetchByID(ctx, codeID)
	if err != nil {
		return nil, err
	}

	if record.Owner != owner {
		return nil, NewServiceError("FetchForEdit", codeID, "", ErrNotOwner)
	}

	return record, nil
}

// ListProjects returns every record owned by the caller.
func (m *Metadata) ListProjects(ctx context.Context, owner string) ([]*models.Metadata, error) {
	records, err := m.persistence.MetadataRepository().ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return records, nil
}

// Save stores the record as a draft. A published record saved again keeps
// its published status; publication is never undone by a later save.
func (m *Metadata) Save(ctx context.Context, owner string, in *models.Metadata) (*models.Metadata, error) {
	tx, err := m.persistence.MetadataRepository().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}

	record, err := m.store(ctx, tx, owner, in, models.StatusSaved)
	if err != nil {
		m.rollback(ctx, tx)

		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit save: %w", err)
	}

	return record, nil
}

// Publish stores the record in published state and then announces it:
// when the record carries a DOI it is registered, and the record is
// pushed to the search index. Both side effects are best-effort; the
// record stays published even if they fail.
func (m *Metadata) Publish(ctx context.Context, owner string, in *models.Metadata) (*models.Metadata, error) {
	tx, err := m.persistence.MetadataRepository().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}

	record, err := m.store(ctx, tx, owner, in, models.StatusPublished)
	if err != nil {
		m.rollback(ctx, tx)

		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit publish: %w", err)
	}

	m.announce(ctx, record)

	return record, nil
}

// Submit publishes the record to the upstream software center. Upstream
// acceptance is a precondition: the local transaction commits only after
// the software center accepts the submission, otherwise everything rolls
// back and the stored record is untouched.
func (m *Metadata) Submit(ctx context.Context, owner string, in *models.Metadata) (*models.Metadata, error) {
	tx, err := m.persistence.MetadataRepository().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}

	record, err := m.store(ctx, tx, owner, in, models.StatusPublished)
	if err != nil {
		m.rollback(ctx, tx)

		return nil, err
	}

	response, err := m.publisher.Submit(ctx, record)
	if err != nil {
		m.rollback(ctx, tx)
		m.logger.WarnContext(ctx, "Submission rejected by software center",
			"code_id", record.CodeID, "response", response, "error", err)

		return nil, NewServiceError("Submit", valueOf(record.CodeID), response, ErrUpstreamRejected)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	m.announce(ctx, record)

	return record, nil
}

// store stages the record inside the transaction: new records are created
// under the caller's ownership, existing records are merged field by
// field after an ownership check.
func (m *Metadata) store(
	ctx context.Context,
	tx persistence.MetadataTx,
	owner string,
	in *models.Metadata,
	status models.Status,
) (*models.Metadata, error) {
	now := time.Now().UTC()

	if in.CodeID == nil {
		record := &models.Metadata{}
		record.MergeFrom(in)
		record.Owner = owner
		record.WorkflowStatus = status
		record.CreatedAt = now
		record.UpdatedAt = now
		record.RecomputeOpenSource()

		if err := tx.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store record: %w", err)
		}

		return record, nil
	}

	existing, err := tx.GetByID(ctx, *in.CodeID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, NewServiceError("store", *in.CodeID, "", ErrRecordNotFound)
	}

	if existing.Owner != owner {
		return nil, NewServiceError("store", *in.CodeID, "", ErrNotOwner)
	}

	wasPublished := existing.IsPublished()

	existing.MergeFrom(in)
	existing.Owner = owner
	existing.WorkflowStatus = status

	// Publication is a one-way gate: once published, a record never
	// returns to the saved state. The stored status decides, not the
	// payload's.
	if wasPublished || status == models.StatusPublished {
		existing.WorkflowStatus = models.StatusPublished
	}

	existing.UpdatedAt = now
	existing.RecomputeOpenSource()

	if err := tx.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to store record: %w", err)
	}

	return existing, nil
}

// announce runs the post-commit side effects for a published record. Both
// are logged and swallowed; by this point the record is committed and
// remote outages must not unwind it.
func (m *Metadata) announce(ctx context.Context, record *models.Metadata) {
	if record.DOI != nil && *record.DOI != "" {
		if ok := m.registrar.Register(ctx, record); !ok {
			m.logger.WarnContext(ctx, "DOI registration failed", "code_id", record.CodeID, "doi", *record.DOI)
		}
	}

	if err := m.indexer.Push(ctx, record); err != nil {
		m.logger.WarnContext(ctx, "Index push failed", "code_id", record.CodeID, "error", err)
	}
}

func (m *Metadata) rollback(ctx context.Context, tx persistence.MetadataTx) {
	if err := tx.Rollback(); err != nil {
		m.logger.ErrorContext(ctx, "Failed to roll back transaction", "error", err)
	}
}

func valueOf(codeID *int64) int64 {
	if codeID == nil {
		return 0
	}

	return *codeID
}
