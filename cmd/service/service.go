// @title        Account API
// @version      1.0
// @description  帳號註冊、token 驗證與個人資料 API
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"os"

	"account-api/internal/cache"
	"account-api/internal/config"
	"account-api/internal/database"
	"account-api/internal/logger"
	appmw "account-api/internal/middleware"
	"account-api/internal/router"
	"account-api/internal/service"
	"account-api/internal/validation"
	"account-api/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	_ "account-api/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

var (
	loadConfig      = config.Load
	initLogger      = logger.Init
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
)

func newEcho(cfg *config.Config, db database.DB, tokens cache.Cache) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Use(middleware.Recover())
	e.Use(appmw.RequestLogger())

	router.Setup(e, db, tokens, cfg.TokenTTL)

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return e
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("無效的 LOG_LEVEL: %v", err)
	}

	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	redis, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer redis.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	service.SetJWTSecret(cfg.JWTSecret)

	// bcrypt 走固定大小的 worker pool
	wp := newWorkerPool(cfg.WorkerCount)
	defer wp.Stop()
	service.SetHashingPool(wp)
	defer service.SetHashingPool(nil)

	e := newEcho(cfg, db, redis)
	log.Info().Str("addr", cfg.Addr()).Int("workers", cfg.WorkerCount).Msg("starting server")
	return startServer(e, cfg.Addr())
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("service stopped")
		exitFunc(1)
	}
}
