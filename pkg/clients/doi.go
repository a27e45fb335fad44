package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/codecatalog/codecatalog/pkg/config"
	"github.com/codecatalog/codecatalog/pkg/models"
)

// DOIRegistrar registers or updates DOIs for published records. Register
// reports success as a boolean and never lets an error escape its
// boundary; registration is a best-effort side effect.
type DOIRegistrar struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewDOIRegistrar creates a DOI registrar client from configuration.
func NewDOIRegistrar(logger *slog.Logger, cfg config.Config) *DOIRegistrar {
	return &DOIRegistrar{
		url:    cfg.DOIRegistrarURL,
		client: &http.Client{Timeout: cfg.ExternalTimeout()},
		logger: logger.With("module", "doi_registrar"),
	}
}

// Register submits the record's DOI metadata to the registrar. When no
// registrar is configured there is nothing to do and the call succeeds.
func (r *DOIRegistrar) Register(ctx context.Context, record *models.Metadata) bool {
	if r.url == "" {
		r.logger.DebugContext(ctx, "DOI registrar not configured, skipping registration")

		return true
	}

	body, err := json.Marshal(newPublicationDocument(record))
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to marshal DOI registration", "error", err)

		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to build DOI registration request", "error", err)

		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.WarnContext(ctx, "DOI registration failed", "error", err)

		return false
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)

		if err := resp.Body.Close(); err != nil {
			r.logger.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "DOI registration rejected", "status", resp.StatusCode)

		return false
	}

	return true
}
