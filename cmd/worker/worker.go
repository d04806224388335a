package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"instagram-agent-platform/internal/agent"
	"instagram-agent-platform/internal/ai"
	"instagram-agent-platform/internal/config"
	"instagram-agent-platform/internal/instagram"
	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/internal/queue"
	"instagram-agent-platform/internal/storage"
	"instagram-agent-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	store := storage.NewMongoStorage(mongoClient.Database(cfg.DBName))
	loc := cfg.Location()

	textGen, err := ai.NewGeminiTextGenerator(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer textGen.Close()

	imageGen := ai.NewOpenAIImageGenerator(cfg.OpenAIAPIKey, cfg.OpenAIImageURL, cfg.OpenAIImageSize)
	publisher := instagram.NewClient(cfg.InstagramAPIBase, cfg.InstagramAccountID, cfg.InstagramAccessToken)

	pipeline := agent.NewPipeline(store, textGen, imageGen, publisher, loc,
		time.Duration(cfg.ExternalCallTimeout)*time.Second)
	notifier := services.NewRunAlertNotifier(*cfg, services.NewSMTPEmailSender(*cfg))

	redisOpt, err := config.AsynqRedisOpt(cfg)
	if err != nil {
		log.Fatal("Failed to configure queue broker:", err)
	}

	// Runs are strictly sequential inside a single invocation; low
	// concurrency just lets a manual run coexist with a scheduled one.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(pipeline, notifier)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskAgentRun, processor.HandleAgentRun)

	logger.Info("Starting agent worker", "redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
