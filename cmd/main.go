package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"instagram-agent-platform/internal/agent"
	"instagram-agent-platform/internal/ai"
	"instagram-agent-platform/internal/config"
	"instagram-agent-platform/internal/instagram"
	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/internal/queue"
	"instagram-agent-platform/internal/storage"
	"instagram-agent-platform/internal/telemetry"
	"instagram-agent-platform/internal/trigger"
	"instagram-agent-platform/middleware"
	"instagram-agent-platform/routes"
	"instagram-agent-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer("insta-agent-api", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled, OTLP exporter unavailable", "error", err)
		} else {
			defer shutdownTracer()
		}
	}

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

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	redisOpt, err := config.AsynqRedisOpt(cfg)
	if err != nil {
		log.Fatal("Failed to configure queue broker:", err)
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Assemble the agent core
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
	scheduler := agent.NewScheduler(store, loc)
	notifier := services.NewRunAlertNotifier(*cfg, services.NewSMTPEmailSender(*cfg))

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		mongoStatus := "up"
		if err := mongoClient.Ping(ctx, nil); err != nil {
			mongoStatus = "down"
		}
		redisStatus := "up"
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"mongo":     mongoStatus,
			"redis":     redisStatus,
		})
	})

	routes.SetupAgentRoutes(router, cfg, store, scheduler, pipeline, asynqClient, notifier)

	// In-process trigger: check the schedule every minute and enqueue a
	// run for the worker when it is due. The queued run persists
	// lastRunDate, which keeps later checks the same day quiet.
	cron := trigger.NewScheduler(loc)
	if err := cron.ScheduleInterval("daily-post-check", time.Minute, func() error {
		now := time.Now()
		evaluation, err := scheduler.Evaluate(context.Background(), now)
		if err != nil {
			logger.Error("Scheduled check failed", "error", err)
			return err
		}
		if !evaluation.Ready {
			return nil
		}

		// The task id is keyed by day: a run slower than the check
		// interval leaves lastRunDate unset, and without the key every
		// following check would queue another run.
		enqueued, err := queue.EnqueueScheduledRun(asynqClient, now.In(loc).Format("2006-01-02"))
		if err != nil {
			logger.Error("Failed to enqueue scheduled run", "error", err)
			return err
		}
		if !enqueued {
			logger.Debug("Scheduled run already queued for today")
			return nil
		}
		logger.Info("Scheduled run enqueued", "daily_time", evaluation.Config.DailyTime)
		return nil
	}); err != nil {
		log.Fatal("Failed to schedule daily check:", err)
	}
	cron.Start()
	defer cron.Stop()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
