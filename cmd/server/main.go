package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medvoyage/lead-service/internal/cache"
	"github.com/medvoyage/lead-service/internal/config"
	"github.com/medvoyage/lead-service/internal/events"
	"github.com/medvoyage/lead-service/internal/handlers"
	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/repositories/postgres"
	"github.com/medvoyage/lead-service/internal/services"
	"github.com/medvoyage/lead-service/internal/storage"
	"github.com/medvoyage/lead-service/internal/utils"
	"github.com/medvoyage/lead-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer publisher.Close()

	attachments, err := storage.NewLocalAttachmentStore(cfg.AttachmentDir, cfg.AttachmentBaseURL, cfg.MaxAttachmentSize, logger)
	if err != nil {
		logger.Error("Failed to initialise attachment store", "error", err)
		os.Exit(1)
	}

	validator := utils.NewValidator()

	serviceManager := services.NewServiceManager(services.ManagerDeps{
		Repo:        repo,
		Graph:       questionnaire.DefaultGraph(),
		Sessions:    cache.NewRedisSessionStore(redisClient, logger),
		Attachments: attachments,
		Publisher:   publisher,
		Logger:      slogger,
		Validator:   validator,
		SessionTTL:  cfg.SessionTTL,
	})

	auth := handlers.NewAuthenticator(cfg.Casdoor, logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, auth, validator, cfg.MaxAttachmentSize, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting lead service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down lead service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
