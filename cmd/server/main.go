package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"projecttracker/internal/engine"
	"projecttracker/internal/grants"
	"projecttracker/internal/handler"
	"projecttracker/internal/httpserver"
	"projecttracker/internal/notify"
	"projecttracker/internal/store/postgres"
	"projecttracker/pkg/config"
	"projecttracker/pkg/db"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/mq"
	pkgredis "projecttracker/pkg/redis"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/base.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting tracker server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// MQ publisher for notification events. Startup proceeds without the
	// broker; events are dropped with an error log until it comes back.
	var publisher *mq.Publisher
	if p, err := mq.NewPublisher(cfg.MQ.URL); err != nil {
		log.Error("Failed to init MQ publisher, notifications disabled", zap.Error(err))
	} else {
		publisher = p
		defer publisher.Close()
		log.Info("MQ publisher initialized")
	}

	// Redis cache for permission grants, optional as well.
	redisClient := pkgredis.NewClient(cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Redis unreachable, grant cache disabled", zap.Error(err))
		redisClient = nil
	}
	pingCancel()
	if redisClient != nil {
		defer redisClient.Close()
	}

	st := postgres.New(dbConn, log)

	var dispatcher notify.Dispatcher
	if publisher != nil {
		dispatcher = notify.NewAMQPDispatcher(publisher)
	}
	notifier := notify.NewNotifier(dispatcher, log)

	grantService := grants.NewService(st.Grants, redisClient, notifier, log)
	eng := engine.New(st, notifier, log)

	projectHandler := handler.NewProjectHandler(eng, st, log)
	phaseHandler := handler.NewPhaseHandler(eng, st, grantService, log)
	deliverableHandler := handler.NewDeliverableHandler(eng, st, grantService, log)
	taskHandler := handler.NewTaskHandler(eng, st, grantService, log)
	permissionHandler := handler.NewPermissionHandler(grantService, st, log)

	router := httpserver.NewRouter(
		projectHandler,
		phaseHandler,
		deliverableHandler,
		taskHandler,
		permissionHandler,
		log,
		dbConn,
		publisher,
		cfg.JWT.Secret,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("tracker server is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down tracker server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("tracker server shutdown complete")
}
