package bootstrap

import (
	"context"

	"cargo_server/adapter/out/ai"
	"cargo_server/adapter/out/messaging"
	"cargo_server/adapter/out/mongodb"
	"cargo_server/adapter/out/persistence"
	"cargo_server/config"
	"cargo_server/core/agent/llm"
	"cargo_server/core/port/out"
	"cargo_server/core/service/classification"
	"cargo_server/core/service/linking"
	"cargo_server/infra/database"
	"cargo_server/pkg/cache"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies wires every adapter and service the API server and worker
// share. Postgres is required; Redis, MongoDB, and the AI client degrade to
// reduced functionality when unconfigured.
type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	EmailRepo          out.EmailRepository
	EntityRepo         out.EntityExtractionRepository
	ShipmentRepo       *persistence.ShipmentAdapter
	ClassificationRepo out.ClassificationRepository
	LinkRepo           out.LinkRepository
	AuditRepo          out.AuditLogRepository
	DocumentTextRepo   out.EmailBodyRepository

	// Messaging
	MessageProducer out.MessageProducer

	// Cache
	Cache out.Cache

	// AI
	LLMClient    *llm.Client
	AIClassifier out.AIClassifier

	// Services
	Orchestrator   *classification.Orchestrator
	LinkingService *linking.Service
}

func NewDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool for health checks and pool stats)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the persistence adapters)
	sqlDB, err := database.NewSqlx(cfg.DatabaseURL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis connection failed, streaming and cache disabled")
	} else {
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })

		deps.MessageProducer = messaging.NewRedisProducer(redisClient)
		deps.Cache = cache.NewRedisCache(redisClient)
	}

	// MongoDB (document text storage for attachment-derived text)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			log.Warn().Err(err).Msg("mongodb connection failed, document text lookup disabled")
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			textAdapter := mongodb.NewDocumentTextAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := textAdapter.EnsureIndexes(context.Background()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure mongodb indexes")
			}
			deps.DocumentTextRepo = textAdapter
		}
	}

	// Repositories
	deps.EmailRepo = persistence.NewEmailAdapter(sqlDB)
	deps.EntityRepo = persistence.NewEntityExtractionAdapter(sqlDB)
	deps.ShipmentRepo = persistence.NewShipmentAdapter(sqlDB)
	deps.ClassificationRepo = persistence.NewClassificationAdapter(sqlDB)
	deps.LinkRepo = persistence.NewLinkAdapter(sqlDB)
	deps.AuditRepo = persistence.NewAuditAdapter(sqlDB)

	// AI classifier behind a circuit breaker
	if cfg.OpenAIAPIKey != "" && cfg.AIFallback {
		deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
		})
		deps.AIClassifier = ai.NewBreakerClassifier(deps.LLMClient, log)
		log.Info().Str("model", cfg.LLMModel).Msg("ai fallback classifier initialized")
	}

	// Classification pipeline
	senders := classification.NewSenderMatcher(&classification.SenderMatcherConfig{
		CarrierDomains:  cfg.CarrierDomains,
		InternalDomains: cfg.InternalDomains,
		CustomsDomains:  cfg.CustomsDomains,
		TruckerDomains:  cfg.TruckerDomains,
	})
	deps.Orchestrator = classification.NewOrchestrator(&classification.Deps{
		Senders:   senders,
		Direction: ai.NewDirectionAdapter(cfg.InternalDomains),
		Bodies:    deps.DocumentTextRepo,
		Results:   deps.ClassificationRepo,
		AI:        deps.AIClassifier,
		Logger:    log,
	}, nil)

	// Linking service
	deps.LinkingService = linking.NewService(&linking.ServiceDeps{
		Emails:    deps.EmailRepo,
		Entities:  deps.EntityRepo,
		Shipments: deps.ShipmentRepo,
		Enricher:  deps.ShipmentRepo,
		Results:   deps.ClassificationRepo,
		Links:     deps.LinkRepo,
		Audit:     deps.AuditRepo,
		Logger:    log,
	}, &linking.Config{
		AutoLinkThreshold: cfg.AutoLinkThreshold,
		SuggestThreshold:  cfg.SuggestThreshold,
		CarrierDomains:    cfg.CarrierDomains,
		InternalDomains:   cfg.InternalDomains,
	})

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if err := d.DB.Ping(ctx); err != nil {
		return err
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
