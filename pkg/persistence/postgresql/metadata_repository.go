package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/persistence"
)

// MetadataRepository handles metadata record database operations.
type MetadataRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMetadataRepository creates a new metadata repository.
func NewMetadataRepository(db *sql.DB, logger *slog.Logger) *MetadataRepository {
	return &MetadataRepository{db: db, logger: logger}
}

const metadataColumns = `
	code_id
  , owner
  , workflow_status
  , accessibility
  , software_title
  , description
  , licenses
  , developers
  , repository_link
  , landing_page
  , release_date
  , doi
  , file_name
  , open_source
  , created_at
  , updated_at
`

// GetByID returns the record for codeID, or nil when not on file.
func (r *MetadataRepository) GetByID(ctx context.Context, codeID int64) (*models.Metadata, error) {
	return getByID(ctx, r.db, codeID)
}

// ListByOwner returns all records owned by the given identity.
func (r *MetadataRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Metadata, error) {
	query := `SELECT ` + metadataColumns + ` FROM metadata_records WHERE owner = $1 ORDER BY code_id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata records: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.Metadata, 0)

	for rows.Next() {
		record, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata record: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating metadata records: %w", err)
	}

	return records, nil
}

// Begin opens a transaction scoped to a single workflow operation.
func (r *MetadataRepository) Begin(ctx context.Context) (persistence.MetadataTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence.NewRecordError("Begin", 0, err)
	}

	return &metadataTx{tx: tx}, nil
}

// metadataTx implements persistence.MetadataTx against a live *sql.Tx.
type metadataTx struct {
	tx   *sql.Tx
	done bool
}

func (t *metadataTx) GetByID(ctx context.Context, codeID int64) (*models.Metadata, error) {
	if t.done {
		return nil, persistence.ErrTxClosed
	}

	return getByID(ctx, t.tx, codeID)
}

func (t *metadataTx) Save(ctx context.Context, record *models.Metadata) error {
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

	licensesJSON, err := json.Marshal(record.Licenses)
	if err != nil {
		return fmt.Errorf("failed to marshal licenses: %w", err)
	}

	developersJSON, err := json.Marshal(record.Developers)
	if err != nil {
		return fmt.Errorf("failed to marshal developers: %w", err)
	}

	var releaseDate sql.NullTime
	if record.ReleaseDate != nil {
		releaseDate = sql.NullTime{Time: record.ReleaseDate.Time, Valid: true}
	}

	if record.CodeID == nil {
		insertQuery := `
			INSERT INTO metadata_records (owner, workflow_status, accessibility,
	software_title, description, licenses, developers, repository_link,
	landing_page, release_date, doi, file_name, open_source, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING code_id
		`

		var codeID int64

		err = t.tx.QueryRowContext(ctx, insertQuery,
			record.Owner,
			record.WorkflowStatus,
			record.Accessibility,
			record.SoftwareTitle,
			record.Description,
			licensesJSON,
			developersJSON,
			record.RepositoryLink,
			record.LandingPage,
			releaseDate,
			record.DOI,
			record.FileName,
			record.OpenSource,
			record.CreatedAt,
			record.UpdatedAt,
		).Scan(&codeID)
		if err != nil {
			return persistence.NewRecordError("Save", 0, err)
		}

		record.CodeID = &codeID

		return nil
	}

	updateQuery := `
		UPDATE metadata_records SET
			owner = $2,
			workflow_status = $3,
			accessibility = $4,
			software_title = $5,
			description = $6,
			licenses = $7,
			developers = $8,
			repository_link = $9,
			landing_page = $10,
			release_date = $11,
			doi = $12,
			file_name = $13,
			open_source = $14,
			updated_at = $15
		WHERE code_id = $1
	`

	result, err := t.tx.ExecContext(ctx, updateQuery,
		*record.CodeID,
		record.Owner,
		record.WorkflowStatus,
		record.Accessibility,
		record.SoftwareTitle,
		record.Description,
		licensesJSON,
		developersJSON,
		record.RepositoryLink,
		record.LandingPage,
		releaseDate,
		record.DOI,
		record.FileName,
		record.OpenSource,
		record.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRecordError("Save", *record.CodeID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRecordError("Save", *record.CodeID, err)
	}

	if affected == 0 {
		return persistence.NewRecordError("Save", *record.CodeID, persistence.ErrRecordNotFound)
	}

	return nil
}

func (t *metadataTx) Commit() error {
	if t.done {
		return persistence.ErrTxClosed
	}

	t.done = true

	err := t.tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (t *metadataTx) Rollback() error {
	if t.done {
		return persistence.ErrTxClosed
	}

	t.done = true

	err := t.tx.Rollback()
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByID(ctx context.Context, q queryer, codeID int64) (*models.Metadata, error) {
	query := `SELECT ` + metadataColumns + ` FROM metadata_records WHERE code_id = $1`

	record, err := scanMetadata(q.QueryRowContext(ctx, query, codeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewRecordError("GetByID", codeID, err)
	}

	return record, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMetadata(row scanner) (*models.Metadata, error) {
	var (
		record         models.Metadata
		codeID         int64
		accessibility  sql.NullString
		softwareTitle  sql.NullString
		description    sql.NullString
		licensesJSON   []byte
		developersJSON []byte
		repositoryLink sql.NullString
		landingPage    sql.NullString
		releaseDate    sql.NullTime
		doi            sql.NullString
		fileName       sql.NullString
		openSource     bool
	)

	err := row.Scan(
		&codeID,
		&record.Owner,
		&record.WorkflowStatus,
		&accessibility,
		&softwareTitle,
		&description,
		&licensesJSON,
		&developersJSON,
		&repositoryLink,
		&landingPage,
		&releaseDate,
		&doi,
		&fileName,
		&openSource,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.CodeID = &codeID
	record.OpenSource = &openSource

	if accessibility.Valid {
		value := models.Accessibility(accessibility.String)
		record.Accessibility = &value
	}

	record.SoftwareTitle = nullableString(softwareTitle)
	record.Description = nullableString(description)
	record.RepositoryLink = nullableString(repositoryLink)
	record.LandingPage = nullableString(landingPage)
	record.DOI = nullableString(doi)
	record.FileName = nullableString(fileName)

	if releaseDate.Valid {
		record.ReleaseDate = &models.Date{Time: releaseDate.Time}
	}

	if licensesJSON != nil {
		err = json.Unmarshal(licensesJSON, &record.Licenses)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal licenses: %w", err)
		}
	}

	if developersJSON != nil {
		err = json.Unmarshal(developersJSON, &record.Developers)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal developers: %w", err)
		}
	}

	return &record, nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}

	return &value.String
}
