package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelbank/kestrel/internal/account"
	"github.com/kestrelbank/kestrel/internal/auth"
	"github.com/kestrelbank/kestrel/internal/config"
	"github.com/kestrelbank/kestrel/internal/events"
	"github.com/kestrelbank/kestrel/internal/handler"
	"github.com/kestrelbank/kestrel/internal/ledger"
	"github.com/kestrelbank/kestrel/internal/middleware"
	kredis "github.com/kestrelbank/kestrel/internal/redis"
	"github.com/kestrelbank/kestrel/internal/repository"
	"github.com/kestrelbank/kestrel/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is not set")
		os.Exit(1)
	}
	secret := []byte(cfg.JWTSecret)

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	redisClient, err := kredis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher := events.NewPublisher(redisClient.Client)

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	accountReadRepo := repository.NewAccountReadRepository(redisClient.Client)

	authService := auth.NewService(userRepo, secret, publisher)
	accountService := account.NewService(accountRepo, accountReadRepo, publisher)
	engine := ledger.NewEngine(db, accountRepo, transactionRepo, accountReadRepo, publisher)
	queryService := ledger.NewQueryService(accountRepo, transactionRepo, accountReadRepo)

	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService, queryService)
	transactionHandler := handler.NewTransactionHandler(engine, queryService)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logging())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
	}

	protected := v1.Group("", middleware.Auth(secret))
	{
		protected.GET("/users/me", authHandler.Me)

		accounts := protected.Group("/accounts")
		accounts.POST("", accountHandler.OpenAccount)
		accounts.GET("", accountHandler.ListAccounts)
		accounts.GET("/:accountNumber", accountHandler.GetAccount)
		accounts.PUT("/:accountNumber/status", accountHandler.UpdateAccountStatus)
		accounts.GET("/:accountNumber/balance", accountHandler.GetBalance)
		accounts.GET("/:accountNumber/transactions", transactionHandler.ListAccountTransactions)
		accounts.POST("/:accountNumber/deposit", transactionHandler.Deposit)

		transactions := protected.Group("/transactions")
		transactions.POST("", transactionHandler.CreateTransaction)
		transactions.GET("", transactionHandler.ListTransactions)
		transactions.GET("/latest", transactionHandler.LatestTransactions)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}
