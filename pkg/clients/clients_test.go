package clients_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codecatalog/codecatalog/pkg/clients"
	"github.com/codecatalog/codecatalog/pkg/config"
	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(value string) *string { return &value }

func int64Ptr(value int64) *int64 { return &value }

func sampleRecord() *models.Metadata {
	return &models.Metadata{
		CodeID:        int64Ptr(42),
		Owner:         "owner@research.example.gov",
		SoftwareTitle: stringPtr("Neutron Transport Toolkit"),
		DOI:           stringPtr("10.5072/example.2017"),
		Developers: []*models.Developer{
			{FirstName: stringPtr("Ada"), MiddleName: stringPtr("B"), LastName: stringPtr("Carter")},
			{LastName: stringPtr("Ruiz")},
		},
	}
}

func TestDOIRegistrar_Register(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured registrar succeeds without a call", func(t *testing.T) {
		t.Parallel()

		registrar := clients.NewDOIRegistrar(slog.Default(), config.Default())
		assert.True(t, registrar.Register(t.Context(), sampleRecord()))
	})

	t.Run("accepted registration", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "10.5072/example.2017", payload["doi"])

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.DOIRegistrarURL = server.URL

		registrar := clients.NewDOIRegistrar(slog.Default(), cfg)
		assert.True(t, registrar.Register(t.Context(), sampleRecord()))
	})

	t.Run("rejected registration reports failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.DOIRegistrarURL = server.URL

		registrar := clients.NewDOIRegistrar(slog.Default(), cfg)
		assert.False(t, registrar.Register(t.Context(), sampleRecord()))
	})

	t.Run("network error reports failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		cfg := config.Default()
		cfg.DOIRegistrarURL = server.URL

		registrar := clients.NewDOIRegistrar(slog.Default(), cfg)
		assert.False(t, registrar.Register(t.Context(), sampleRecord()))
	})
}

func TestSoftwareCenter_Submit(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured host is a no-op", func(t *testing.T) {
		t.Parallel()

		center := clients.NewSoftwareCenter(slog.Default(), config.Default())

		response, err := center.Submit(t.Context(), sampleRecord())
		require.NoError(t, err)
		assert.Empty(t, response)
	})

	t.Run("accepted submission returns the response body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/services/softwarecenter", r.URL.Path)
			assert.Equal(t, "api", r.URL.Query().Get("action"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "Neutron Transport Toolkit")

			_, _ = w.Write([]byte(`{"status":"accepted"}`))
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.PublishingHost = server.URL

		center := clients.NewSoftwareCenter(slog.Default(), cfg)

		response, err := center.Submit(t.Context(), sampleRecord())
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"accepted"}`, response)
	})

	t.Run("rejection returns body and sentinel error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream maintenance window"))
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.PublishingHost = server.URL

		center := clients.NewSoftwareCenter(slog.Default(), cfg)

		response, err := center.Submit(t.Context(), sampleRecord())
		require.Error(t, err)
		assert.ErrorIs(t, err, clients.ErrSubmissionRejected)
		assert.Equal(t, "upstream maintenance window", response)
	})
}

func TestIndexer_Push(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured index is a no-op", func(t *testing.T) {
		t.Parallel()

		indexer := clients.NewIndexer(slog.Default(), config.Default())
		require.NoError(t, indexer.Push(t.Context(), sampleRecord()))
	})

	t.Run("developers are consolidated to display names", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload struct {
				Developers []string `json:"developers"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []string{"Ada B Carter", "Ruiz"}, payload.Developers)

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.IndexURL = server.URL

		indexer := clients.NewIndexer(slog.Default(), cfg)
		require.NoError(t, indexer.Push(t.Context(), sampleRecord()))
	})

	t.Run("index rejection surfaces as an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("index unavailable"))
		}))
		defer server.Close()

		cfg := config.Default()
		cfg.IndexURL = server.URL

		indexer := clients.NewIndexer(slog.Default(), cfg)

		err := indexer.Push(t.Context(), sampleRecord())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index unavailable")
	})
}
