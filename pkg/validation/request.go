package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned when a batch carries a validation type no
// validator is registered for. The whole batch fails rather than silently
// skipping the entry.
var ErrUnknownType = errors.New("unknown validation request type")

// Request is a single (type, value) pair in a batch validation call. The
// Error field is filled in by Validate: empty means the value passed the
// indicated validation rule.
type Request struct {
	Type  string `json:"type"  validate:"required"`
	Value string `json:"value"`
	Error string `json:"error"`
}

// Validate dispatches each request to the validator matching its type name
// (case-insensitive) and annotates it with an empty error string on
// success or a descriptive message on failure.
func (s *Service) Validate(ctx context.Context, requests []*Request) error {
	for _, req := range requests {
		v, ok := s.validators[strings.ToLower(req.Type)]
		if !ok {
			s.logger.Warn("Unknown validation request type", "type", req.Type)

			return fmt.Errorf("%w: %s", ErrUnknownType, req.Type)
		}

		if v.check(ctx, req.Value) {
			req.Error = ""
		} else {
			req.Error = fmt.Sprintf("%s is not a valid %s.", req.Value, v.label)
		}
	}

	return nil
}
