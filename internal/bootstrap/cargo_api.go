package bootstrap

import (
	"strings"

	"cargo_server/adapter/in/http"
	"cargo_server/config"
	"cargo_server/infra/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
)

// NewAPI builds the fiber app with the full middleware stack and all route
// handlers registered.
func NewAPI(cfg *config.Config, log zerolog.Logger, deps *Dependencies) *fiber.App {
	middleware.InitTokenBlacklist(deps.Redis)

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(log),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(middleware.Recover(log))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// AllowCredentials requires explicit origins, never "*".
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health check (no auth required)
	healthHandler := http.NewHealthHandler(deps.DB, deps.Redis, deps.MongoDB)
	healthHandler.Register(app)

	// API routes (auth required)
	api := app.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	classificationHandler := http.NewClassificationHandler(
		deps.EmailRepo,
		deps.ClassificationRepo,
		deps.Orchestrator,
		deps.MessageProducer,
		deps.Cache,
	)
	classificationHandler.Register(api)

	linkHandler := http.NewLinkHandler(deps.LinkRepo, deps.LinkingService, deps.MessageProducer)
	linkHandler.Register(api)

	shipmentHandler := http.NewShipmentHandler(deps.ShipmentRepo, deps.EmailRepo, deps.MessageProducer)
	shipmentHandler.Register(api)

	log.Info().Str("port", cfg.Port).Msg("api server initialized")

	return app
}
