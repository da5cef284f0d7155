package config

import (
	"log"
	"time"

	"github.com/baronblk/guestbook-project/pkg/config"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type WebConfig struct {
	config.GlobalConfig
	ApiBaseURL           string
	ImageBaseURL         string
	RequestTimeout       time.Duration
	StorageDriver        string
	RedisURL             string
	RedisPort            string
	RedisPassword        string
	PostgresDSN          string
	SessionCheckInterval time.Duration
	SessionAutoRefresh   bool
	ReviewsPerPage       int
	CommentsPerPage      int
	WorkspaceIdle        time.Duration
	CookieSecure         bool
	MaxImageBytes        int64
}

func LoadWebConfig() *WebConfig {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}
	cfg := &WebConfig{
		GlobalConfig:         *config.LoadGlobalConfig(),
		ApiBaseURL:           config.GetEnv("API_BASE_URL"),
		ImageBaseURL:         config.GetEnvOrDefault("IMAGE_BASE_URL", ""),
		RequestTimeout:       time.Duration(config.GetEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		StorageDriver:        config.GetEnvOrDefault("STORAGE_DRIVER", StorageMemory),
		SessionCheckInterval: time.Duration(config.GetEnvInt("SESSION_CHECK_INTERVAL_MINUTES", 5)) * time.Minute,
		SessionAutoRefresh:   config.GetEnvBool("SESSION_AUTO_REFRESH", true),
		ReviewsPerPage:       config.GetEnvInt("REVIEWS_PER_PAGE", 10),
		CommentsPerPage:      config.GetEnvInt("COMMENTS_PER_PAGE", 10),
		WorkspaceIdle:        time.Duration(config.GetEnvInt("WORKSPACE_IDLE_MINUTES", 120)) * time.Minute,
		CookieSecure:         config.GetEnvBool("COOKIE_SECURE", false),
		MaxImageBytes:        int64(config.GetEnvInt("MAX_IMAGE_BYTES", 5*1024*1024)),
	}
	switch cfg.StorageDriver {
	case StorageRedis:
		cfg.RedisURL = config.GetEnv("REDIS_DB_URL")
		cfg.RedisPort = config.GetEnvOrDefault("REDIS_DB_PORT", "6379")
		cfg.RedisPassword = config.GetEnvOrDefault("REDIS_DB_PASSWORD", "")
	case StoragePostgres:
		cfg.PostgresDSN = config.GetEnv("POSTGRE_CONNECTION_STRING")
	}
	return cfg
}
