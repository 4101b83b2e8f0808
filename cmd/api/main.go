package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zbourini/tigertickets-sub000/internal/api"
	"github.com/zbourini/tigertickets-sub000/internal/api/handler"
	apimiddleware "github.com/zbourini/tigertickets-sub000/internal/api/middleware"
	"github.com/zbourini/tigertickets-sub000/internal/application"
	"github.com/zbourini/tigertickets-sub000/internal/config"
	"github.com/zbourini/tigertickets-sub000/internal/infrastructure/postgres"
	redisinfra "github.com/zbourini/tigertickets-sub000/internal/infrastructure/redis"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/clock"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/logger"
	"github.com/zbourini/tigertickets-sub000/internal/pkg/metrics"
	"github.com/zbourini/tigertickets-sub000/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	// データベース接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redisは補助ロック用。未起動でも購入機能は動作する
	var lockManager *redisinfra.LockManager
	redisClient := redisinfra.NewClient(&cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		logger.Warn("Redisに接続できないため補助ロックなしで起動します", zap.Error(err))
		redisClient.Close()
	} else {
		lockManager = redisinfra.NewLockManager(redisClient)
		defer redisClient.Close()
	}
	pingCancel()

	m := metrics.Init()

	// リポジトリとサービス
	eventRepo := postgres.NewEventRepository(db)
	txManager := postgres.NewTxManager(db)

	catalogService := application.NewCatalogService(eventRepo, clock.NewSystem())
	queryService := application.NewInventoryQueryService(eventRepo)
	ticketService := application.NewTicketService(txManager, eventRepo, lockManager, m)

	// ハンドラー
	eventHandler := handler.NewEventHandler(catalogService, queryService)
	purchaseHandler := handler.NewPurchaseHandler(ticketService)
	healthHandler := handler.NewHealthHandler()

	// Echo設定
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.PUT("/events/:id", eventHandler.Update)
	v1.POST("/events/:id/purchase", purchaseHandler.Purchase)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	// バックグラウンドワーカー
	workerCtx, workerCancel := context.WithCancel(context.Background())
	gaugeRefresher := worker.NewInventoryGaugeRefresher(queryService, m, cfg.Worker.GaugeRefreshInterval)
	go gaugeRefresher.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	workerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
