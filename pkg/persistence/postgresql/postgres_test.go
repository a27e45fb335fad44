package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/persistence"
	"github.com/codecatalog/codecatalog/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"metadata_records", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("codecatalog_test"),
			postgres.WithUsername("codecatalog"),
			postgres.WithPassword("codecatalog"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			cancel()
			t.Skipf("container runtime unavailable: %v", err)
		}
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func stringPtr(value string) *string { return &value }

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	// Verify tables were created
	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'metadata_records')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "metadata_records table should exist")

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'schema_migrations')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "schema_migrations table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestMetadataRepository_SaveAndRetrieve(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	repo := p.MetadataRepository()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)

	record := &models.Metadata{
		Owner:          "u@x.com",
		WorkflowStatus: models.StatusSaved,
		SoftwareTitle:  stringPtr("Neutron Transport Toolkit"),
		Licenses:       []string{"BSD-3-Clause"},
		Developers: []*models.Developer{
			{FirstName: stringPtr("Ada"), LastName: stringPtr("Carter")},
		},
		ReleaseDate: models.NewDate(2017, 3, 1),
	}

	require.NoError(t, tx.Save(ctx, record))
	require.NotNil(t, record.CodeID, "insert must assign a code ID")
	require.NoError(t, tx.Commit())

	stored, err := repo.GetByID(ctx, *record.CodeID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "u@x.com", stored.Owner)
	assert.Equal(t, models.StatusSaved, stored.WorkflowStatus)
	assert.Equal(t, "Neutron Transport Toolkit", *stored.SoftwareTitle)
	assert.Equal(t, []string{"BSD-3-Clause"}, stored.Licenses)
	require.Len(t, stored.Developers, 1)
	assert.Equal(t, "Ada Carter", stored.Developers[0].DisplayName())
	require.NotNil(t, stored.ReleaseDate)
	assert.Equal(t, "2017-03-01", stored.ReleaseDate.String())
	require.NotNil(t, stored.OpenSource)
	assert.True(t, *stored.OpenSource)
}

func TestMetadataRepository_GetByID_NotFound(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	record, err := p.MetadataRepository().GetByID(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMetadataRepository_UpdateUnknownID(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	tx, err := p.MetadataRepository().Begin(ctx)
	require.NoError(t, err)

	defer func() { _ = tx.Rollback() }()

	missing := int64(424242)
	record := &models.Metadata{
		CodeID:         &missing,
		Owner:          "u@x.com",
		WorkflowStatus: models.StatusSaved,
	}

	err = tx.Save(ctx, record)
	require.Error(t, err)
	assert.True(t, persistence.IsRecordNotFound(err))
}

func TestMetadataRepository_RollbackDiscardsChanges(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	repo := p.MetadataRepository()

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)

	record := &models.Metadata{
		Owner:          "u@x.com",
		WorkflowStatus: models.StatusSaved,
		SoftwareTitle:  stringPtr("Discarded"),
	}

	require.NoError(t, tx.Save(ctx, record))
	require.NotNil(t, record.CodeID)
	require.NoError(t, tx.Rollback())

	stored, err := repo.GetByID(ctx, *record.CodeID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestMetadataRepository_ListByOwner(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	repo := p.MetadataRepository()

	for _, owner := range []string{"u@x.com", "u@x.com", "other@y.com"} {
		tx, err := repo.Begin(ctx)
		require.NoError(t, err)

		record := &models.Metadata{
			Owner:          owner,
			WorkflowStatus: models.StatusSaved,
		}

		require.NoError(t, tx.Save(ctx, record))
		require.NoError(t, tx.Commit())
	}

	records, err := repo.ListByOwner(ctx, "u@x.com")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
