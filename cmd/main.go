package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/civic_incident_system/internal/auth"
	"github.com/shenikar/civic_incident_system/internal/config"
	v1 "github.com/shenikar/civic_incident_system/internal/handler/http/v1"
	"github.com/shenikar/civic_incident_system/internal/mailer"
	"github.com/shenikar/civic_incident_system/internal/metrics"
	"github.com/shenikar/civic_incident_system/internal/notify"
	"github.com/shenikar/civic_incident_system/internal/realtime"
	"github.com/shenikar/civic_incident_system/internal/repository"
	"github.com/shenikar/civic_incident_system/internal/service"
	"github.com/shenikar/civic_incident_system/internal/storage"
	"github.com/shenikar/civic_incident_system/internal/verifier"
	"github.com/shenikar/civic_incident_system/internal/webhook"
	"github.com/shenikar/civic_incident_system/pkg/logger"
	"github.com/shenikar/civic_incident_system/pkg/postgres"
	redisclient "github.com/shenikar/civic_incident_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/civic_incident_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Civic Incident Reporting API
// @version 1.0
// @description Citizens report civic incidents, admins review and resolve them.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	appMetrics := metrics.New()

	// Хаб подписчиков и мост через Redis pub/sub между экземплярами
	hub := realtime.NewHub(0, func(n int) { appMetrics.RealtimeSubscribers.Set(float64(n)) })
	bridge := realtime.NewRedisBridge(redisClient, hub, log)
	bridge.Start(ctx)

	// Инициализация издателя и воркера вебхуков служб
	dispatchPublisher := webhook.NewRedisDispatchPublisher(redisClient)
	dispatchWorker := webhook.NewDispatchWorker(redisClient, log, cfg, appMetrics)
	dispatchWorker.Start(ctx)

	// Хранилище фотографий
	photos, err := storage.NewLocalPhotoStore(cfg.DataRoot, cfg.PublicBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	// Инициализация репозиториев
	reportRepo := repository.NewReportRepository(dbpool, redisClient, cfg.CacheTTL)
	userRepo := repository.NewUserRepository(dbpool)

	// Инициализация сервисов
	reportOpts := []service.ReportOption{
		service.WithMetrics(appMetrics),
		service.WithNotifier(notify.NewEmailNotifier(newMailer(cfg, log), log)),
	}
	if v := newVerifier(ctx, cfg, log); v != nil {
		reportOpts = append(reportOpts, service.WithVerifier(v))
	}
	reportService := service.NewReportService(reportRepo, userRepo, photos, bridge, dispatchPublisher, log, cfg, reportOpts...)
	authService := service.NewAuthService(userRepo, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), log)
	adminService := service.NewAdminService(reportRepo, userRepo, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(reportService, authService, adminService, hub, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	router.Use(appMetrics.Middleware())
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	handler.RegisterMediaRoutes(router)

	router.GET("/metrics", metrics.Handler())

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	// Останавливаем воркеры и закрываем потоки SSE до остановки сервера
	cancel()
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}

// newMailer выбирает Resend при наличии ключа, иначе письма только пишутся в лог
func newMailer(cfg *config.Config, log *logrus.Logger) *mailer.Mailer {
	if cfg.ResendAPIKey != "" {
		log.Info("Reporter emails are sent through Resend")
		return mailer.New(mailer.NewResendProvider(cfg.ResendAPIKey), cfg.MailFrom)
	}
	log.Warn("RESEND_API_KEY is not set, reporter emails are only logged")
	return mailer.New(mailer.NewLogProvider(log), cfg.MailFrom)
}

// newVerifier возвращает nil, если ключ Gemini не задан: проверка тогда отключена
func newVerifier(ctx context.Context, cfg *config.Config, log *logrus.Logger) service.Verifier {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, AI verification is disabled")
		return nil
	}
	v, err := verifier.NewGeminiVerifier(ctx, verifier.Options{
		APIKey:             cfg.GeminiAPIKey,
		Model:              cfg.GeminiModel,
		BaseURL:            cfg.GeminiBaseURL,
		RateLimitPerSecond: cfg.AIRateLimitPerSecond,
	}, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Gemini verifier, AI verification is disabled")
		return nil
	}
	return v
}
