package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/codecatalog/codecatalog/pkg/config"
	"github.com/codecatalog/codecatalog/pkg/models"
)

// Indexer pushes records to the configured search index endpoint.
// Pushes are fire-and-forget: the caller logs a failure and moves on, it
// never affects the committed record.
type Indexer struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewIndexer creates a search index client from configuration.
func NewIndexer(logger *slog.Logger, cfg config.Config) *Indexer {
	return &Indexer{
		url:    cfg.IndexURL,
		client: &http.Client{Timeout: cfg.ExternalTimeout()},
		logger: logger.With("module", "indexer"),
	}
}

// Push sends the record's index document to the search index. When no
// index is configured there is nothing to do.
func (i *Indexer) Push(ctx context.Context, record *models.Metadata) error {
	if i.url == "" {
		return nil
	}

	body, err := json.Marshal(newIndexDocument(record))
	if err != nil {
		return fmt.Errorf("failed to marshal index document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build index request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("index push failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			i.logger.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read index response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("index push returned status %d: %s", resp.StatusCode, string(text))
	}

	i.logger.InfoContext(ctx, "Index push accepted", "response", string(text))

	return nil
}
