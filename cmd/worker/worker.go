package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/logger"
	"dermo-chatbot-platform/internal/queue"
	"dermo-chatbot-platform/internal/stock"
	"dermo-chatbot-platform/internal/telemetry"
	"dermo-chatbot-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
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

	sessionService := services.NewSessionService(mongoClient, cfg)
	emailSender := services.NewSMTPEmailSender(*cfg)

	ctx := context.Background()
	syncer, err := stock.NewSyncer(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to init stock syncer:", err)
	}

	// Redis options for Asynq
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	redisOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	rdb.Close()

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(sessionService, emailSender, syncer, metrics)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskChatExport, processor.ExportChat)
	mux.HandleFunc(queue.TaskStockRefresh, processor.RefreshStock)

	logger.Info("starting worker", "redis", redisOpt.Addr, "queues", "critical(6), default(3), low(1)")

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
