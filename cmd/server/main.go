package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/adapter"
	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/config"
	"github.com/stayandpark/service-frontdesk/internal/domain"
	frontdeskEvents "github.com/stayandpark/service-frontdesk/internal/events"
	"github.com/stayandpark/service-frontdesk/internal/handler"
	"github.com/stayandpark/service-frontdesk/internal/platform/auth"
	"github.com/stayandpark/service-frontdesk/internal/platform/database"
	"github.com/stayandpark/service-frontdesk/internal/platform/health"
	"github.com/stayandpark/service-frontdesk/internal/platform/kafka"
	"github.com/stayandpark/service-frontdesk/internal/platform/logger"
	"github.com/stayandpark/service-frontdesk/internal/platform/metrics"
	"github.com/stayandpark/service-frontdesk/internal/platform/middleware"
	"github.com/stayandpark/service-frontdesk/internal/repository"
)

const serviceName = "service-frontdesk"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.Bool("kafka", cfg.KafkaConfig.Enabled()),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.PersonModel{},
			&repository.ReservationModel{},
			&repository.AttendanceModel{},
			&repository.PromotionModel{},
		); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager and password hasher
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)
	hasher, err := adapter.NewPasswordHasher(cfg.PasswordHasher, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize password hasher", zap.Error(err))
	}

	appMetrics := metrics.New(serviceName)
	clock := domain.SystemClock{}

	// Initialize event publisher
	var publisher application.EventPublisher = application.NoopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		publisher = frontdeskEvents.NewKafkaPublisher(kafkaProducer, zapLogger)
	} else {
		zapLogger.Warn("no kafka brokers configured, integration events are disabled")
	}

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	personRepo := repository.NewPersonRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	promotionRepo := repository.NewGormPromotionRepository(db)

	// Initialize application services
	identityService := application.NewIdentityService(personRepo, hasher, jwtManager, txManager, clock, publisher, appMetrics, zapLogger)
	reservationService := application.NewReservationService(reservationRepo, personRepo, hasher, txManager, clock, publisher, appMetrics, zapLogger)
	attendanceService := application.NewAttendanceService(attendanceRepo, personRepo, txManager, clock, publisher, appMetrics, cfg.AttendanceHistoryLimit, zapLogger)
	promotionService := application.NewPromotionService(promotionRepo, personRepo, clock, zapLogger)
	reportService := application.NewReportService(personRepo, reservationRepo, attendanceRepo, clock, zapLogger)

	// Start Kafka consumer for parking gate events
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.KafkaConfig.Enabled() {
		gateConsumer := frontdeskEvents.NewGateEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+"frontdesk-service",
			reservationService,
			zapLogger,
		)
		defer gateConsumer.Close()

		go func() {
			zapLogger.Info("starting gate event consumer")
			if err := gateConsumer.Start(consumerCtx); err != nil {
				if consumerCtx.Err() == nil {
					zapLogger.Error("gate event consumer failed", zap.Error(err))
				}
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.MetricsMiddleware(appMetrics))
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health and metrics routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	// Register API routes
	apiV1 := router.Group("/api/v1")
	handler.NewAuthHandler(identityService).RegisterRoutes(apiV1, jwtManager)
	handler.NewReservationHandler(reservationService).RegisterRoutes(apiV1, jwtManager)
	handler.NewStaffHandler(reservationService, identityService).RegisterRoutes(apiV1, jwtManager)
	handler.NewAttendanceHandler(attendanceService).RegisterRoutes(apiV1, jwtManager)
	handler.NewPromotionHandler(promotionService).RegisterRoutes(apiV1, jwtManager)
	handler.NewAdminHandler(identityService, attendanceService, promotionService, reportService).RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info(serviceName + " stopped")
}
