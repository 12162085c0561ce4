package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/internal/agent"
	"github.com/dialectic-ai/dialectic-api/internal/config"
	"github.com/dialectic-ai/dialectic-api/internal/database"
	"github.com/dialectic-ai/dialectic-api/internal/dto"
	"github.com/dialectic-ai/dialectic-api/internal/events"
	"github.com/dialectic-ai/dialectic-api/internal/grading"
	"github.com/dialectic-ai/dialectic-api/internal/handler"
	"github.com/dialectic-ai/dialectic-api/internal/middleware"
	"github.com/dialectic-ai/dialectic-api/internal/repository"
	"github.com/dialectic-ai/dialectic-api/internal/router"
	"github.com/dialectic-ai/dialectic-api/internal/service"
	"github.com/dialectic-ai/dialectic-api/pkg/judge"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Persistence, caching, and events are optional. The service degrades to
	// stateless grading when they are not configured.
	var evaluationRepo repository.EvaluationRepository
	if cfg.DatabaseURL != "" {
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		evaluationRepo = repository.NewEvaluationRepository(db)
	} else {
		logger.Warn().Msg("database url not configured, evaluation history disabled")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, result caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, task events disabled")
	}
	publisher := events.NewPublisher(natsConn, cfg.EventChannel, logger)

	var judgeClient judge.Client
	if cfg.JudgeAPIKey != "" {
		judgeClient, err = judge.NewOpenAIClient(judge.OpenAIConfig{
			APIKey:      cfg.JudgeAPIKey,
			BaseURL:     cfg.JudgeBaseURL,
			Model:       cfg.JudgeModel,
			MaxTokens:   cfg.JudgeMaxTokens,
			Temperature: float32(cfg.JudgeTemperature),
			Timeout:     cfg.JudgeTimeout,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create judge client: %v", err)
		}
	} else {
		logger.Warn().Msg("judge api key not configured, evaluations will score zero")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	engine := grading.NewEngine(judgeClient, logger)
	evaluationService := service.NewEvaluationService(engine, evaluationRepo, validate, redisClient, cfg.CacheTTL, cfg.JudgeModel, logger)

	messenger := agent.NewMessenger(cfg.MessengerTimeout, logger)
	taskAgent := agent.New(messenger, evaluationDelegate{evaluationService}, logger)

	evaluateHandler := handler.NewEvaluateHandler(evaluationService, logger)
	agentHandler := handler.NewAgentHandler(taskAgent, publisher, agentCard(cfg), logger)
	historyHandler := handler.NewHistoryHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})

	var jwtMiddleware fiber.Handler
	if cfg.JWTSecret != "" {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	} else {
		logger.Warn().Msg("jwt secret not configured, evaluation history is unauthenticated")
	}

	router.Register(app, cfg, router.Dependencies{
		EvaluateHandler: evaluateHandler,
		AgentHandler:    agentHandler,
		HistoryHandler:  historyHandler,
		JWTMiddleware:   jwtMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// evaluationDelegate narrows the evaluation service to the agent's needs.
type evaluationDelegate struct {
	service service.EvaluationService
}

func (d evaluationDelegate) Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	return d.service.Evaluate(ctx, payload)
}

func agentCard(cfg config.Config) dto.AgentCard {
	return dto.AgentCard{
		Name:               cfg.AppName,
		Description:        "Grades free-text answers against weighted rubrics using an external AI judge.",
		URL:                cfg.PublicURL(),
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Capabilities:       dto.AgentCapabilities{Streaming: false},
		Skills: []dto.AgentSkill{{
			ID:          "evaluate_answer",
			Name:        "Evaluate Answer",
			Description: "Scores an answer against reference rubric points with per-point evidence.",
			Tags:        []string{"evaluation", "grading", "rubric"},
		}},
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
