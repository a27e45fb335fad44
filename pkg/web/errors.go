package web

import (
	"github.com/codecatalog/codecatalog/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func forbidden(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(403).
		WithInstance(c.Path()).
		WithType("forbidden").
		WithDetail(detail)

	return c.Status(fiber.StatusForbidden).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func badGateway(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(502).
		WithInstance(c.Path()).
		WithType("upstream_rejection").
		WithDetail(detail)

	return c.Status(fiber.StatusBadGateway).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for workflow errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsNotFound(err):
		return notFound(c, "Record not found")

	case services.IsForbidden(err):
		return forbidden(c, "Record is owned by another user")

	case services.IsUpstreamRejection(err):
		return badGateway(c, err.Error())

	default:
		return internalError(c, err)
	}
}
