package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 服務啟動所需設定，皆來自環境變數
type Config struct {
	Port          int
	DatabaseURL   string
	RedisAddr     string
	RedisDB       int
	RedisPassword string
	JWTSecret     string
	// <= 0 表示 token 不過期
	TokenTTL    time.Duration
	WorkerCount int
	LogLevel    string
	LogFormat   string
}

// loadDotEnv 讀取工作目錄下的 .env，不覆寫既有環境變數
var loadDotEnv = func() error { return godotenv.Load() }

// LoadDatabase 只讀取資料庫與 log 設定，供不需要 Redis 與 JWT 的指令使用
func LoadDatabase() (*Config, error) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("讀取 .env 失敗: %v", err)
	}

	cfg := &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.DatabaseURL, err = requireEnv("DATABASE_URL"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load 讀取環境變數；.env 不存在時忽略
func Load() (*Config, error) {
	cfg, err := LoadDatabase()
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr, err = requireEnv("REDIS_ADDR"); err != nil {
		return nil, err
	}
	redisDBStr, err := requireEnv("REDIS_DB")
	if err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = strconv.Atoi(redisDBStr); err != nil {
		return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
	}
	if cfg.RedisPassword, err = requireEnv("REDIS_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port <= 0 {
		return nil, fmt.Errorf("無效的 PORT: %q", os.Getenv("PORT"))
	}

	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("無效的 TOKEN_TTL: %v", err)
	}

	cfg.WorkerCount = runtime.NumCPU()
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("無效的 WORKER_COUNT: %q", v)
		}
		cfg.WorkerCount = c
	}

	return cfg, nil
}

// Addr 回傳 HTTP 監聽位址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("環境變數 %s 未設定", key)
	}
	return v, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
