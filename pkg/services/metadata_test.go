package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/persistence"
	"github.com/codecatalog/codecatalog/pkg/persistence/file"
	"github.com/codecatalog/codecatalog/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	calls   int
	succeed bool
}

func (f *fakeRegistrar) Register(_ context.Context, _ *models.Metadata) bool {
	f.calls++

	return f.succeed
}

type fakePublisher struct {
	calls  int
	reject bool
}

func (f *fakePublisher) Submit(_ context.Context, _ *models.Metadata) (string, error) {
	f.calls++

	if f.reject {
		return "upstream maintenance window", errors.New("status 502")
	}

	return `{"status":"accepted"}`, nil
}

type fakeIndexer struct {
	calls int
	fail  bool
}

func (f *fakeIndexer) Push(_ context.Context, _ *models.Metadata) error {
	f.calls++

	if f.fail {
		return errors.New("index unavailable")
	}

	return nil
}

type fixture struct {
	service   *services.Metadata
	store     persistence.Persistence
	registrar *fakeRegistrar
	publisher *fakePublisher
	indexer   *fakeIndexer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	registrar := &fakeRegistrar{succeed: true}
	publisher := &fakePublisher{}
	indexer := &fakeIndexer{}

	return &fixture{
		service:   services.NewMetadata(slog.Default(), store, registrar, publisher, indexer),
		store:     store,
		registrar: registrar,
		publisher: publisher,
		indexer:   indexer,
	}
}

func stringPtr(value string) *string { return &value }

func draftRecord() *models.Metadata {
	return &models.Metadata{
		SoftwareTitle: stringPtr("Neutron Transport Toolkit"),
		Description:   stringPtr("Discrete-ordinates neutron transport solvers."),
	}
}

func TestSave_CreatesRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	record, err := f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	require.NotNil(t, record.CodeID)
	assert.Equal(t, "u@x.com", record.Owner)
	assert.Equal(t, models.StatusSaved, record.WorkflowStatus)

	stored, err := f.store.MetadataRepository().GetByID(t.Context(), *record.CodeID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Neutron Transport Toolkit", *stored.SoftwareTitle)
}

func TestSave_UpdateRetainsOwnerAndMergesFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	created, err := f.service.Save(t.Context(), "u@x.com", &models.Metadata{
		SoftwareTitle: stringPtr("X"),
	})
	require.NoError(t, err)

	updated, err := f.service.Save(t.Context(), "u@x.com", &models.Metadata{
		CodeID:        created.CodeID,
		SoftwareTitle: stringPtr("Y"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Y", *updated.SoftwareTitle)
	assert.Equal(t, "u@x.com", updated.Owner)
	assert.Equal(t, models.StatusSaved, updated.WorkflowStatus)
}

func TestSave_PartialPayloadPreservesStoredFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	created, err := f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	updated, err := f.service.Save(t.Context(), "u@x.com", &models.Metadata{
		CodeID:   created.CodeID,
		Licenses: []string{"BSD-3-Clause"},
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Description, "omitted fields must keep their stored values")
	assert.Equal(t, "Discrete-ordinates neutron transport solvers.", *updated.Description)
	assert.Equal(t, []string{"BSD-3-Clause"}, updated.Licenses)
}

func TestSave_UnknownIDFailsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	missing := int64(9999)

	_, err := f.service.Save(t.Context(), "u@x.com", &models.Metadata{CodeID: &missing})
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err))
}

func TestSave_OtherOwnerForbiddenWithoutMutation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	created, err := f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	_, err = f.service.Save(t.Context(), "intruder@y.com", &models.Metadata{
		CodeID:        created.CodeID,
		SoftwareTitle: stringPtr("Hijacked"),
	})
	require.Error(t, err)
	assert.True(t, services.IsForbidden(err))

	stored, err := f.store.MetadataRepository().GetByID(t.Context(), *created.CodeID)
	require.NoError(t, err)
	assert.Equal(t, "Neutron Transport Toolkit", *stored.SoftwareTitle)
	assert.Equal(t, "u@x.com", stored.Owner)
}

func TestPublish_StatusRatchet(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	published, err := f.service.Publish(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, published.WorkflowStatus)

	// A later save cannot pull a published record back to Saved, even when
	// the payload asks for it.
	saved, err := f.service.Save(t.Context(), "u@x.com", &models.Metadata{
		CodeID:         published.CodeID,
		WorkflowStatus: models.StatusSaved,
		SoftwareTitle:  stringPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, saved.WorkflowStatus)
	assert.Equal(t, "Renamed", *saved.SoftwareTitle)

	stored, err := f.service.FetchByID(t.Context(), *published.CodeID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, stored.WorkflowStatus)
}

func TestPublish_FanOutRunsAfterCommit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	in := draftRecord()
	in.DOI = stringPtr("10.5072/example.2017")

	_, err := f.service.Publish(t.Context(), "u@x.com", in)
	require.NoError(t, err)

	assert.Equal(t, 1, f.registrar.calls)
	assert.Equal(t, 1, f.indexer.calls)
	assert.Equal(t, 0, f.publisher.calls, "publish never posts to the software center")
}

func TestPublish_SkipsRegistrarWithoutDOI(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.service.Publish(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	assert.Equal(t, 0, f.registrar.calls)
	assert.Equal(t, 1, f.indexer.calls)
}

func TestPublish_SucceedsDespiteFanOutFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.registrar.succeed = false
	f.indexer.fail = true

	in := draftRecord()
	in.DOI = stringPtr("10.5072/example.2017")

	record, err := f.service.Publish(t.Context(), "u@x.com", in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, record.WorkflowStatus)

	stored, err := f.store.MetadataRepository().GetByID(t.Context(), *record.CodeID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusPublished, stored.WorkflowStatus)
}

func TestSubmit_CommitsOnUpstreamAcceptance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	record, err := f.service.Submit(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPublished, record.WorkflowStatus)
	assert.Equal(t, 1, f.publisher.calls)
	assert.Equal(t, 1, f.indexer.calls)
}

func TestSubmit_RejectionRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.publisher.reject = true

	_, err := f.service.Submit(t.Context(), "u@x.com", draftRecord())
	require.Error(t, err)
	assert.True(t, services.IsUpstreamRejection(err))

	records, err := f.store.MetadataRepository().ListByOwner(t.Context(), "u@x.com")
	require.NoError(t, err)
	assert.Empty(t, records, "a rejected submission must leave the store unchanged")

	assert.Equal(t, 0, f.registrar.calls)
	assert.Equal(t, 0, f.indexer.calls)
}

func TestSubmit_RejectionOnExistingRecordKeepsStoredState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	created, err := f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	f.publisher.reject = true

	_, err = f.service.Submit(t.Context(), "u@x.com", &models.Metadata{
		CodeID:        created.CodeID,
		SoftwareTitle: stringPtr("Should not stick"),
	})
	require.Error(t, err)

	stored, err := f.store.MetadataRepository().GetByID(t.Context(), *created.CodeID)
	require.NoError(t, err)
	assert.Equal(t, "Neutron Transport Toolkit", *stored.SoftwareTitle)
	assert.Equal(t, models.StatusSaved, stored.WorkflowStatus)
}

func TestFetchForEdit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	created, err := f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)

	record, err := f.service.FetchForEdit(t.Context(), "u@x.com", *created.CodeID)
	require.NoError(t, err)
	assert.Equal(t, *created.CodeID, *record.CodeID)

	_, err = f.service.FetchForEdit(t.Context(), "intruder@y.com", *created.CodeID)
	require.Error(t, err)
	assert.True(t, services.IsForbidden(err))
}

func TestListProjects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)
	_, err = f.service.Save(t.Context(), "u@x.com", draftRecord())
	require.NoError(t, err)
	_, err = f.service.Save(t.Context(), "other@y.com", draftRecord())
	require.NoError(t, err)

	records, err := f.service.ListProjects(t.Context(), "u@x.com")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestOpenSourceDerivedFromAccessibility(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	closed := models.AccessibilityClosed
	supplied := true

	in := draftRecord()
	in.Accessibility = &closed
	in.OpenSource = &supplied // callers cannot set the derived flag

	record, err := f.service.Save(t.Context(), "u@x.com", in)
	require.NoError(t, err)

	require.NotNil(t, record.OpenSource)
	assert.False(t, *record.OpenSource)
}
