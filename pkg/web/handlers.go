package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/services"
	"github.com/codecatalog/codecatalog/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"gopkg.in/yaml.v3"
)

type APIHandlers struct {
	metadataService   *services.Metadata
	validationService *validation.Service
	validator         *validator.Validate
	auth              Authenticator
}

func NewAPIHandlers(
	metadataService *services.Metadata,
	validationService *validation.Service,
	validator *validator.Validate,
	auth Authenticator,
) *APIHandlers {
	return &APIHandlers{
		metadataService:   metadataService,
		validationService: validationService,
		validator:         validator,
		auth:              auth,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.metadataService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Code Catalog API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Code Catalog API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

var errUnauthenticated = errors.New("an authenticated user is required")

// bindRecord authenticates the caller and decodes the record payload,
// gating the raw body through the JSON schema before binding. A non-nil
// error means the request was rejected; rejectRecord maps it to the
// problem response.
func (h *APIHandlers) bindRecord(c fiber.Ctx) (string, *models.Metadata, error) {
	owner := h.auth.Identify(c)
	if owner == "" {
		return "", nil, errUnauthenticated
	}

	body := c.Body()
	if err := validateMetadataPayload(body); err != nil {
		return "", nil, err
	}

	var record models.Metadata
	if err := json.Unmarshal(body, &record); err != nil {
		return "", nil, errors.New("Invalid JSON format")
	}

	if err := h.validator.Struct(record); err != nil {
		return "", nil, err
	}

	return owner, &record, nil
}

func rejectRecord(c fiber.Ctx, err error) error {
	if errors.Is(err, errUnauthenticated) {
		return unauthorized(c, "An authenticated user is required")
	}

	return badRequest(c, err.Error())
}

func (h *APIHandlers) SaveMetadata(c fiber.Ctx) error {
	owner, record, err := h.bindRecord(c)
	if err != nil {
		return rejectRecord(c, err)
	}

	saved, err := h.metadataService.Save(c.Context(), owner, record)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MetadataResponse{Metadata: saved})
}

func (h *APIHandlers) PublishMetadata(c fiber.Ctx) error {
	owner, record, err := h.bindRecord(c)
	if err != nil {
		return rejectRecord(c, err)
	}

	published, err := h.metadataService.Publish(c.Context(), owner, record)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MetadataResponse{
		Metadata:          published,
		ValidationReasons: services.ValidateForPublication(published),
	})
}

func (h *APIHandlers) SubmitMetadata(c fiber.Ctx) error {
	owner, record, err := h.bindRecord(c)
	if err != nil {
		return rejectRecord(c, err)
	}

	submitted, err := h.metadataService.Submit(c.Context(), owner, record)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MetadataResponse{
		Metadata:          submitted,
		ValidationReasons: services.ValidateForSubmission(submitted),
	})
}

// GetMetadata serves a single published record. Drafts are only visible
// through the edit endpoint, so an unpublished record reads as absent.
func (h *APIHandlers) GetMetadata(c fiber.Ctx) error {
	codeID, err := parseCodeID(c)
	if err != nil {
		return badRequest(c, "Invalid code ID")
	}

	record, err := h.metadataService.FetchByID(c.Context(), codeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if !record.IsPublished() {
		return notFound(c, "Record not found")
	}

	if c.Query("format") == "yaml" {
		return sendYAML(c, MetadataResponse{Metadata: record})
	}

	return c.JSON(MetadataResponse{Metadata: record})
}

func (h *APIHandlers) GetMetadataForEdit(c fiber.Ctx) error {
	owner := h.auth.Identify(c)
	if owner == "" {
		return unauthorized(c, "An authenticated user is required")
	}

	codeID, err := parseCodeID(c)
	if err != nil {
		return badRequest(c, "Invalid code ID")
	}

	record, err := h.metadataService.FetchForEdit(c.Context(), owner, codeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MetadataResponse{Metadata: record})
}

func (h *APIHandlers) GetProjects(c fiber.Ctx) error {
	owner := h.auth.Identify(c)
	if owner == "" {
		return unauthorized(c, "An authenticated user is required")
	}

	records, err := h.metadataService.ListProjects(c.Context(), owner)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(ProjectsResponse{Records: records, Total: len(records)})
}

// ConvertToYAML renders a record payload as YAML without storing it.
func (h *APIHandlers) ConvertToYAML(c fiber.Ctx) error {
	body := c.Body()
	if err := validateMetadataPayload(body); err != nil {
		return badRequest(c, err.Error())
	}

	var record models.Metadata
	if err := json.Unmarshal(body, &record); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return sendYAML(c, MetadataResponse{Metadata: &record})
}

// ValidateSingle checks one value against the validator named in the
// path, reusing the batch dispatch.
func (h *APIHandlers) ValidateSingle(c fiber.Ctx) error {
	request := &validation.Request{
		Type:  c.Params("type"),
		Value: c.Query("value"),
	}

	if err := h.validationService.Validate(c.Context(), []*validation.Request{request}); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(request)
}

func (h *APIHandlers) ValidateBatch(c fiber.Ctx) error {
	var req ValidationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validationService.Validate(c.Context(), req.Requests); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(ValidationResponse{Requests: req.Requests})
}

func parseCodeID(c fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("codeId"), 10, 64)
}

func sendYAML(c fiber.Ctx, payload any) error {
	out, err := yaml.Marshal(payload)
	if err != nil {
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")

	return c.Send(out)
}
