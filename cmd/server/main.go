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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"calendar_notes/internal/config"
	"calendar_notes/internal/handler"
	"calendar_notes/internal/hub"
	"calendar_notes/internal/middleware"
	"calendar_notes/internal/repository"
	"calendar_notes/internal/service"
	"calendar_notes/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев
	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	// Хаб уведомлений создается до сервисов: сканер вещает через него
	notificationHub := hub.NewNotificationHub(appLogger)

	// Инициализация сервисов
	services := service.NewServices(repos, cfg, notificationHub, appLogger)

	// Хаб чата
	chatHub := hub.NewChatHub(services.Chat, appLogger)

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, chatHub, notificationHub, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	// Фоновый сканер уведомлений
	scannerCtx, stopScanner := context.WithCancel(context.Background())
	scannerDone := make(chan struct{})
	go func() {
		defer close(scannerDone)
		services.Notifier.Run(scannerCtx)
	}()

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Останавливаем сканер, не дожидаясь конца его паузы
	stopScanner()
	<-scannerDone

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Заметки — только для аутентифицированных пользователей,
		// токены выдает внешний identity-сервис
		notes := v1.Group("/notes")
		notes.Use(authMiddleware.RequireAuth())
		{
			notes.GET("", handlers.Note.List)
			notes.GET("/:id", handlers.Note.GetByID)
			notes.POST("", rateLimitMiddleware.Limit(), handlers.Note.Create)
			notes.PUT("/:id", handlers.Note.Update)
			notes.DELETE("/:id", handlers.Note.Delete)
		}

		// Чат — анонимный доступ (демо-режим)
		chat := v1.Group("/chat")
		{
			chat.POST("/rooms", rateLimitMiddleware.Limit(), handlers.Chat.CreateRoom)
			chat.GET("/rooms", handlers.Chat.GetUserRooms)
			chat.GET("/rooms/:id", handlers.Chat.GetRoomByID)
			chat.DELETE("/rooms/:id", handlers.Chat.DeleteRoom)
			chat.GET("/rooms/:id/messages", handlers.Chat.GetRoomMessages)
			chat.POST("/rooms/:id/messages", rateLimitMiddleware.Limit(), handlers.Chat.SendMessage)
			chat.POST("/rooms/:id/read", handlers.Chat.MarkMessagesAsRead)
			chat.POST("/rooms/private", handlers.Chat.GetOrCreatePrivateRoom)
		}
	}

	// WebSocket endpoints
	router.GET("/ws/chat", handlers.WebSocket.HandleChat)
	router.GET("/ws/notifications", handlers.WebSocket.HandleNotifications)

	return router
}
