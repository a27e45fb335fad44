// Package validation implements the field validators for metadata records:
// local pattern matching for emails and URLs, and remote-backed checks for
// DOIs, award numbers, and repository links. Every failure mode collapses
// to a boolean false; validators never propagate errors to callers.
package validation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/nyaruka/phonenumbers"

	"github.com/codecatalog/codecatalog/pkg/config"
)

// Regular expressions for validating email addresses, URLs, and DOIs.
var (
	emailPattern = regexp.MustCompile(`^[_A-Za-z0-9+-]+(\.[_A-Za-z0-9-]+)*@[A-Za-z0-9-]+(\.[A-Za-z0-9]+)*(\.[A-Za-z]{2,})$`)
	urlPattern   = regexp.MustCompile(`^https?://[-a-zA-Z0-9+&@#/%?=~_|!:,.;]*[-a-zA-Z0-9+&@#/%=~_|]$`)
	doiPattern   = regexp.MustCompile(`^10\.\d{4,9}/[-._;()/:A-Za-z0-9]+$`)
)

// IsValidEmail determines whether the value conforms to an email address
// pattern.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsValidURL checks whether the value appears to be a URL. Bare-domain
// input without a scheme is tried with an "http://" prefix; the caller's
// value is not mutated.
func IsValidURL(value string) bool {
	if value == "" {
		return false
	}

	if !strings.HasPrefix(strings.ToLower(value), "http") && !strings.Contains(value, "://") {
		value = "http://" + value
	}

	return urlPattern.MatchString(value)
}

// Service bundles the validators that need configuration or a shared HTTP
// client. It is stateless aside from that fixed configuration and safe for
// concurrent use.
type Service struct {
	cfg        config.Config
	client     *http.Client
	logger     *slog.Logger
	validators map[string]validator
}

type validator struct {
	check func(ctx context.Context, value string) bool
	label string
}

// NewService creates a validation service with the given configuration.
func NewService(logger *slog.Logger, cfg config.Config) *Service {
	service := &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.ExternalTimeout()},
		logger: logger.With("module", "validation"),
	}

	// Dispatch is a plain type-tag to predicate mapping so new validator
	// types slot in without touching the dispatcher.
	service.validators = map[string]validator{
		"email": {
			check: func(_ context.Context, value string) bool { return IsValidEmail(value) },
			label: "email address",
		},
		"url": {
			check: func(_ context.Context, value string) bool { return IsValidURL(value) },
			label: "URL",
		},
		"phonenumber": {
			check: func(_ context.Context, value string) bool { return service.IsValidPhoneNumber(value) },
			label: "phone number",
		},
		"doi": {
			check: service.IsValidDOI,
			label: "DOI",
		},
		"awardnumber": {
			check: service.IsValidAwardNumber,
			label: "Award Number",
		},
		"repositorylink": {
			check: service.IsValidRepositoryLink,
			label: "repository link",
		},
	}

	return service
}

// IsValidPhoneNumber determines whether the value parses as a valid phone
// number, defaulting to the configured region.
func (s *Service) IsValidPhoneNumber(value string) bool {
	if value == "" {
		return false
	}

	number, err := phonenumbers.Parse(value, s.cfg.PhoneRegion)
	if err != nil {
		s.logger.Warn("Phone number parse error", "value", value, "error", err)

		return false
	}

	return phonenumbers.IsValidNumber(number)
}

// IsValidDOI checks a DOI against the prefix grammar and, only when the
// grammar matches, resolves it over HTTP. Values that fail the grammar
// never trigger a network call.
func (s *Service) IsValidDOI(ctx context.Context, value string) bool {
	target := strings.TrimSpace(value)
	suffix := target

	// Accept a full resolver URL as well as a bare DOI.
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/"} {
		if strings.HasPrefix(target, prefix) {
			suffix = strings.TrimPrefix(target, prefix)

			break
		}
	}

	if !doiPattern.MatchString(suffix) {
		return false
	}

	if suffix == target {
		target = s.cfg.DOIResolverURL + url.PathEscape(suffix)
	}

	return s.httpOK(ctx, target, "DOI", value)
}

// awardResponse is the body returned by the award number validation API.
type awardResponse struct {
	IsValid bool   `json:"isValid"`
	Site    string `json:"site"`
}

// IsValidAwardNumber asks the external validation API about an award or
// contract number. An unconfigured API host, a network error, or an
// unreadable response all conservatively yield false.
func (s *Service) IsValidAwardNumber(ctx context.Context, value string) bool {
	if s.cfg.ValidationAPIHost == "" {
		return false
	}

	target := s.cfg.ValidationAPIHost + "/contract/validate/" + url.PathEscape(strings.TrimSpace(value))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		s.logger.Warn("Award number request error", "value", value, "error", err)

		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Award number check failed", "value", value, "error", err)

		return false
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	var apiResponse awardResponse

	err = json.NewDecoder(resp.Body).Decode(&apiResponse)
	if err != nil {
		s.logger.Warn("Award number response unreadable", "value", value, "error", err)

		return false
	}

	return apiResponse.IsValid
}

// IsValidRepositoryLink probes the value as a live source repository by
// listing its remote references. Any probe failure means invalid.
func (s *Service) IsValidRepositoryLink(ctx context.Context, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}

	if !strings.HasPrefix(strings.ToLower(value), "http") {
		value = "http://" + value
	}

	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{value},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		s.logger.Warn("Repository probe failed", "url", value, "error", err)

		return false
	}

	return len(refs) > 0
}

// httpOK performs a GET and reports whether the response was 200 OK.
func (s *Service) httpOK(ctx context.Context, target, kind, value string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		s.logger.Warn(kind+" request error", "value", value, "error", err)

		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn(kind+" check failed", "value", value, "error", err)

		return false
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	return resp.StatusCode == http.StatusOK
}
