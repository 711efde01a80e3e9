package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"villagemart-admin/config"
	"villagemart-admin/internal/api"
	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/broker"
	"villagemart-admin/internal/redisclient"
	"villagemart-admin/internal/service"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/store"
	"villagemart-admin/internal/util"
	"villagemart-admin/internal/worker"
	"villagemart-admin/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting admin console", zap.String("api", cfg.Backend.BaseURL))

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	checks := map[string]api.Pinger{}

	var sessionStore session.Store
	switch cfg.Session.Store {
	case "memory":
		sessionStore = session.NewMemoryStore()
		logger.Warn("Using in-memory sessions; they are lost on restart")
	default:
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
		sessionStore = redisClient
		checks["redis"] = redisClient
	}
	sessions := session.NewManager(sessionStore, cfg.Session.TTL)

	var (
		recorder service.ActionRecorder
		activity api.ActivityReader
	)
	if cfg.Database.URL != "" {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare audit schema: %v", err)
		}
		log.Println("Database connected")
		recorder, activity = db, db
		checks["database"] = db
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var publisher service.ActionPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicActions)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	audit := service.NewAuditor(recorder, publisher)
	client := apiclient.New(cfg.Backend.BaseURL, nil)
	tables := service.TableConfig{Timeout: cfg.Backend.Timeout, SampleFallback: cfg.Backend.SampleFallback}

	services := api.Services{
		Auth:       service.NewAuthService(client, sessions, cfg.Session.RequiredRole, audit),
		Products:   service.NewProductService(client, audit),
		Categories: service.NewCategoryService(client, audit),
		Orders:     service.NewOrderService(client, audit),
		Customers:  service.NewCustomerService(client, audit),
		Inventory:  service.NewInventoryService(client, audit),
		Settings:   service.NewSettingsService(client, sessions, audit),
		Dashboard:  service.NewDashboardService(client, tables),
	}

	workspaces := workspace.NewManager(tables)
	defer workspaces.CloseAll()

	var catalogWorker *worker.CatalogWorker
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
		catalogWorker = worker.NewCatalogWorker(consumer, workspaces)
		go func() {
			if err := catalogWorker.Start(workerCtx); err != nil {
				log.Printf("Catalog worker error: %v", err)
			}
		}()
	}

	pruner := worker.NewPoller("workspace-prune", time.Minute, func(ctx context.Context) error {
		if n := workspaces.Prune(cfg.Session.TTL); n > 0 {
			logger.Info("Pruned idle workspaces", zap.Int("count", n))
		}
		return nil
	})
	pruner.Start(workerCtx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, sessions, session.NewGuard(sessions, cfg.Session.RequiredRole), workspaces, api.Options{
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Server.Env == "production",
		SessionTTL:   cfg.Session.TTL,
		LoginPath:    cfg.Server.LoginPath,
		PollInterval: cfg.Dashboard.PollInterval,
		Activity:     activity,
		Checks:       checks,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Observ.PrometheusPort != "" && cfg.Observ.PrometheusPort != cfg.Server.Port {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Observ.PrometheusPort),
			Handler: mux,
		}
		go func() {
			log.Printf("Starting metrics server on port %s", cfg.Observ.PrometheusPort)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	workerCancel()
	pruner.Stop()
	if catalogWorker != nil {
		if err := catalogWorker.Stop(); err != nil {
			log.Printf("Error closing catalog consumer: %v", err)
		}
	}

	log.Println("Server exited")
}
