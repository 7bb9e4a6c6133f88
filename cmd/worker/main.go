package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opentrainer/plan-service/internal/api"
	"opentrainer/plan-service/internal/config"
	"opentrainer/plan-service/internal/genai"
	"opentrainer/plan-service/internal/notifier"
	"opentrainer/plan-service/internal/queue"
	"opentrainer/plan-service/internal/repository"
	"opentrainer/plan-service/internal/repository/dynamo"
	mongoRepo "opentrainer/plan-service/internal/repository/mongo"
	"opentrainer/plan-service/internal/service"
	"opentrainer/plan-service/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Training Plan Worker...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Plan Store ---
	var planRepo repository.PlanRepository
	switch cfg.Store.Backend {
	case "mongodb":
		log.Println("Connecting to MongoDB plan store...")
		dbClient, err := mongoRepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongoRepo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongoRepo.EnsurePlanIndexes(ctx, appDB.Collection("plan_records"))
		}()
		planRepo = mongoRepo.NewMongoPlanRepository(appDB)
	case "dynamodb":
		log.Println("Initializing DynamoDB plan store...")
		dynamoClient, err := dynamo.NewClient(cfg.DynamoDB)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize DynamoDB client: %v", err)
		}
		planRepo = dynamo.NewDynamoPlanRepository(dynamoClient, cfg.DynamoDB.Table)
	default:
		log.Fatalf("FATAL: Unknown store backend: %q", cfg.Store.Backend)
	}
	log.Printf("Plan store initialized (backend: %s).", cfg.Store.Backend)

	// --- Queues ---
	log.Println("Initializing SQS clients...")
	sqsClient, err := queue.NewRawClient(cfg.SQS)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SQS client: %v", err)
	}
	healthQueue := queue.NewSQSQueue(sqsClient, cfg.SQS)
	notif := notifier.NewSQSNotifier(sqsClient, cfg.SQS.NotificationQueueURL, log.Default())

	// --- Plan Archive ---
	var planArchive storage.PlanArchive
	if cfg.S3.BucketName != "" {
		planArchive, err = storage.NewS3Archive(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 plan archive: %v", err)
		}
	} else {
		log.Println("WARN: No S3 bucket configured, plan document archiving disabled.")
	}

	// --- Generation Client ---
	generator := genai.NewOpenAIClient(cfg.OpenAI)

	// --- Orchestrator & Poll Loop ---
	orchestrator := service.NewOrchestrator(planRepo, generator, notif, planArchive)
	poller := service.NewPoller(healthQueue, orchestrator, cfg.Scheduler.PollInterval)

	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()

	if cfg.Scheduler.Enabled {
		go func() {
			log.Printf("Poll loop starting (interval: %s).", cfg.Scheduler.PollInterval)
			if err := poller.Run(pollCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("ERROR: Poll loop stopped: %v", err)
			}
		}()
	} else {
		log.Println("WARN: Scheduler disabled, not polling the health queue.")
	}

	// --- HTTP Server (read-side plans API) ---
	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, planRepo, planArchive)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down worker...")

	// Stop receiving new messages, then drain in-flight generation
	// continuations before exiting. Once dispatched, a generation runs to
	// completion or to exhaustion of its retry budget.
	stopPolling()
	log.Println("Draining in-flight plan generations...")
	orchestrator.Wait()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Worker exiting.")
}
