// Package main provides the Code Catalog API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/codecatalog/codecatalog/pkg/clients"
	"github.com/codecatalog/codecatalog/pkg/config"
	"github.com/codecatalog/codecatalog/pkg/otelhelper"
	"github.com/codecatalog/codecatalog/pkg/persistence"
	"github.com/codecatalog/codecatalog/pkg/services"
	"github.com/codecatalog/codecatalog/pkg/validation"
	"github.com/codecatalog/codecatalog/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	cfg         config.Config
	authHeader  string
	validate    *validator.Validate
	tracer      trace.Tracer
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	cfg config.Config,
	authHeader string,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		cfg:         cfg,
		authHeader:  authHeader,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	metadataService := services.NewMetadata(
		a.logger,
		a.persistence,
		clients.NewDOIRegistrar(a.logger, a.cfg),
		clients.NewSoftwareCenter(a.logger, a.cfg),
		clients.NewIndexer(a.logger, a.cfg),
	)
	validationService := validation.NewService(a.logger, a.cfg)

	handlers := web.NewAPIHandlers(
		metadataService,
		validationService,
		a.validate,
		web.NewHeaderAuthenticator(a.authHeader),
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))
	app.Use(web.RequestID())

	if a.tracer != nil {
		app.Use(a.traceRequests)
	}

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Code Catalog API")
	})

	m := app.Group("/metadata")
	m.Post("/", handlers.SaveMetadata)
	m.Post("/publish", handlers.PublishMetadata)
	m.Post("/submit", handlers.SubmitMetadata)
	m.Post("/yaml", handlers.ConvertToYAML)
	m.Get("/projects", handlers.GetProjects)
	m.Get("/edit/:codeId", handlers.GetMetadataForEdit)
	m.Get("/:codeId", handlers.GetMetadata)

	app.Post("/validation", handlers.ValidateBatch)
	app.Get("/validation/:type", handlers.ValidateSingle)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) traceRequests(c fiber.Ctx) error {
	requestID, _ := c.Locals("request_id").(string)

	ctx, span := otelhelper.StartSpan(
		c.Context(),
		a.tracer,
		c.Method()+" "+c.Path(),
		attribute.String(otelhelper.RequestIDKey, requestID),
	)
	defer span.End()

	c.SetContext(ctx)

	err := c.Next()
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return err
}

func (a *API) Start(ctx context.Context, port int) error {
	tracer, err := otelhelper.NewTracer(ctx, "codecatalog-api")
	if err != nil {
		a.logger.WarnContext(ctx, "Tracing disabled", "error", err)
	} else {
		a.tracer = tracer
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
