package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/codecatalog/codecatalog/pkg/config"
	"github.com/codecatalog/codecatalog/pkg/models"
)

// ErrSubmissionRejected indicates the software center answered a
// submission with a non-success status.
var ErrSubmissionRejected = errors.New("software center rejected submission")

// SoftwareCenter posts records to the upstream publication host. Unlike
// the other clients its failure is not best-effort: the workflow engine
// treats a failed submission as a precondition failure and rolls back.
type SoftwareCenter struct {
	host   string
	client *http.Client
	logger *slog.Logger
}

// NewSoftwareCenter creates an upstream publication client from
// configuration.
func NewSoftwareCenter(logger *slog.Logger, cfg config.Config) *SoftwareCenter {
	return &SoftwareCenter{
		host:   cfg.PublishingHost,
		client: &http.Client{Timeout: cfg.ExternalTimeout()},
		logger: logger.With("module", "software_center"),
	}
}

// Submit posts the transformed record to the publication host and returns
// the response body for diagnostics. An unconfigured host is a no-op.
func (c *SoftwareCenter) Submit(ctx context.Context, record *models.Metadata) (string, error) {
	if c.host == "" {
		c.logger.DebugContext(ctx, "Publishing host not configured, skipping submission")

		return "", nil
	}

	body, err := json.Marshal(newPublicationDocument(record))
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission: %w", err)
	}

	target := c.host + "/services/softwarecenter?action=api"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submission request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submission response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Software center error", "status", resp.StatusCode, "response", string(text))

		return string(text), fmt.Errorf("%w: status %d", ErrSubmissionRejected, resp.StatusCode)
	}

	return string(text), nil
}
