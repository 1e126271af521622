package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppURL                       string
	DatabaseDSN                  string
	RateLimit                    int
	RateLimitBurst               int
	RedisEnabled                 bool
	RedisAddr                    string
	NotificationQueuePrefix      string
	CachePrefix                  string
	CacheTTL                     time.Duration
	CacheSize                    int
	FollowUpWorkers              int
	FollowUpQueueSize            int
	ReconcileSchedule            string
	ReconcileBatchSize           int
	JWTSecret                    string
	AllowMessagesAfterCompletion bool
	LogLevel                     string
	LogPretty                    bool
	ShutdownTimeoutSeconds       int
}

var defaults = map[string]any{
	"APP_HOST":                        "127.0.0.1",
	"APP_PORT":                        "8080",
	"DATABASE_DSN":                    "tasks.db",
	"RATE_LIMIT_PER_MINUTE":           60,
	"RATE_LIMIT_BURST":                20,
	"REDIS_ENABLED":                   false,
	"REDIS_HOST":                      "127.0.0.1",
	"REDIS_PORT":                      "6379",
	"NOTIFICATION_QUEUE_PREFIX":       "notifications",
	"CACHE_PREFIX":                    "taskcache",
	"CACHE_TTL_SECONDS":               30,
	"CACHE_SIZE":                      1024,
	"FOLLOWUP_WORKERS":                4,
	"FOLLOWUP_QUEUE_SIZE":             256,
	"RECONCILE_SCHEDULE":              "@every 30s",
	"RECONCILE_BATCH_SIZE":            100,
	"JWT_SECRET":                      "",
	"ALLOW_MESSAGES_AFTER_COMPLETION": false,
	"LOG_LEVEL":                       "info",
	"LOG_PRETTY":                      false,
	"SHUTDOWN_TIMEOUT_SECONDS":        20,
}

// Load resolves the configuration from the environment (and any .env file
// already loaded into it), falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	cfg := Config{
		AppURL:                       fmt.Sprintf("%s:%s", v.GetString("APP_HOST"), v.GetString("APP_PORT")),
		DatabaseDSN:                  v.GetString("DATABASE_DSN"),
		RateLimit:                    v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RateLimitBurst:               v.GetInt("RATE_LIMIT_BURST"),
		RedisEnabled:                 v.GetBool("REDIS_ENABLED"),
		RedisAddr:                    fmt.Sprintf("%s:%s", v.GetString("REDIS_HOST"), v.GetString("REDIS_PORT")),
		NotificationQueuePrefix:      v.GetString("NOTIFICATION_QUEUE_PREFIX"),
		CachePrefix:                  v.GetString("CACHE_PREFIX"),
		CacheTTL:                     time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		CacheSize:                    v.GetInt("CACHE_SIZE"),
		FollowUpWorkers:              v.GetInt("FOLLOWUP_WORKERS"),
		FollowUpQueueSize:            v.GetInt("FOLLOWUP_QUEUE_SIZE"),
		ReconcileSchedule:            v.GetString("RECONCILE_SCHEDULE"),
		ReconcileBatchSize:           v.GetInt("RECONCILE_BATCH_SIZE"),
		JWTSecret:                    v.GetString("JWT_SECRET"),
		AllowMessagesAfterCompletion: v.GetBool("ALLOW_MESSAGES_AFTER_COMPLETION"),
		LogLevel:                     v.GetString("LOG_LEVEL"),
		LogPretty:                    v.GetBool("LOG_PRETTY"),
		ShutdownTimeoutSeconds:       v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"),
	}

	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.AppURL == "" || cfg.AppURL == ":" {
		errs = append(errs, errors.New("APP_HOST/APP_PORT must not be empty (e.g. 127.0.0.1:8080)"))
	}
	if cfg.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
	}
	if cfg.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if cfg.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be greater than 0"))
	}
	if cfg.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must be greater than 0"))
	}
	if cfg.CachePrefix == "" || cfg.CachePrefix == cfg.NotificationQueuePrefix {
		errs = append(errs, errors.New("CACHE_PREFIX must be set and differ from NOTIFICATION_QUEUE_PREFIX"))
	}
	if cfg.CacheSize <= 0 {
		errs = append(errs, errors.New("CACHE_SIZE must be greater than 0"))
	}
	if cfg.FollowUpWorkers < 0 {
		errs = append(errs, errors.New("FOLLOWUP_WORKERS must not be negative"))
	}
	if cfg.FollowUpQueueSize <= 0 {
		errs = append(errs, errors.New("FOLLOWUP_QUEUE_SIZE must be greater than 0"))
	}
	if cfg.ReconcileBatchSize <= 0 {
		errs = append(errs, errors.New("RECONCILE_BATCH_SIZE must be greater than 0"))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	return errors.Join(errs...)
}
