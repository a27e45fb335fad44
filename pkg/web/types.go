// Package web provides the HTTP handlers and REST API endpoints for the
// metadata catalog.
package web

import (
	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/validation"
)

// MetadataResponse wraps a single record. Workflow responses additionally
// carry the advisory validation reasons computed for the committed
// record; callers decide whether to surface them.
type MetadataResponse struct {
	Metadata          *models.Metadata `json:"metadata"                     yaml:"metadata"`
	ValidationReasons []string         `json:"validation_reasons,omitempty" yaml:"validation_reasons,omitempty"`
}

// ProjectsResponse lists every record owned by the caller.
type ProjectsResponse struct {
	Records []*models.Metadata `json:"records"`
	Total   int                `json:"total"`
}

// ValidationRequest is the body of a batch validation call.
type ValidationRequest struct {
	Requests []*validation.Request `json:"requests" validate:"required,min=1,dive,required"`
}

// ValidationResponse returns the same pairs annotated with an error
// string per value, empty on success.
type ValidationResponse struct {
	Requests []*validation.Request `json:"requests"`
}
