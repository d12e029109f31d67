package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/clientip"
	"github.com/dmitrymomot/apimgmt/pkg/config"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/email"
	"github.com/dmitrymomot/apimgmt/pkg/file"
	"github.com/dmitrymomot/apimgmt/pkg/httpserver"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/mongo"
	"github.com/dmitrymomot/apimgmt/pkg/opensearch"
	"github.com/dmitrymomot/apimgmt/pkg/pg"
	"github.com/dmitrymomot/apimgmt/pkg/redis"
	"github.com/dmitrymomot/apimgmt/pkg/requestid"
)

const serviceName = "apimgmt"

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
	driverMongo    = "mongo"
	driverRedis    = "redis"
)

var errInvalidDriver = errors.New("invalid driver")

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	AuditDriver   string `env:"AUDIT_DRIVER" envDefault:"memory"`
	KeySyncDriver string `env:"KEYSYNC_DRIVER" envDefault:"memory"`

	RenewGrace      time.Duration `env:"APIKEY_RENEW_GRACE" envDefault:"2h"`
	KeySyncChannel  string        `env:"KEYSYNC_CHANNEL" envDefault:"apimgmt:apikeys"`
	AuditCollection string        `env:"AUDIT_COLLECTION" envDefault:"audits"`

	TrustedIPHeaders []string `env:"HTTP_TRUSTED_IP_HEADERS" envSeparator:","`

	HTTP     httpserver.Config
	Postgres pg.Config
	Mongo    mongo.Config
	Redis    redis.Config
	Search   opensearch.Config
	Email    email.Config
	Export   file.Config
	Webhook  webhookConfig
}

// webhookConfig enables the webhook notification channel when URLs is set.
type webhookConfig struct {
	URLs       []string      `env:"NOTIFY_WEBHOOK_URLS" envSeparator:","`
	Secret     string        `env:"NOTIFY_WEBHOOK_SECRET"`
	MaxRetries int           `env:"NOTIFY_WEBHOOK_MAX_RETRIES" envDefault:"3"`
	Timeout    time.Duration `env:"NOTIFY_WEBHOOK_TIMEOUT" envDefault:"10s"`
}

func loadConfig(envFiles ...string) (appConfig, error) {
	if err := config.LoadEnv(envFiles...); err != nil {
		return appConfig{}, err
	}
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, cfg.validate()
}

func (c appConfig) validate() error {
	switch c.StorageDriver {
	case driverMemory, driverPostgres:
	default:
		return fmt.Errorf("%w: STORAGE_DRIVER=%q", errInvalidDriver, c.StorageDriver)
	}
	switch c.AuditDriver {
	case driverMemory, driverMongo:
	default:
		return fmt.Errorf("%w: AUDIT_DRIVER=%q", errInvalidDriver, c.AuditDriver)
	}
	switch c.KeySyncDriver {
	case driverMemory, driverRedis:
	default:
		return fmt.Errorf("%w: KEYSYNC_DRIVER=%q", errInvalidDriver, c.KeySyncDriver)
	}
	if c.RenewGrace <= 0 {
		return fmt.Errorf("APIKEY_RENEW_GRACE must be positive, got %s", c.RenewGrace)
	}
	if c.KeySyncChannel == "" {
		return fmt.Errorf("KEYSYNC_CHANNEL must not be empty")
	}
	return nil
}

func (c appConfig) logger() *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(c.Env, serviceName),
		logger.WithContextExtractors(requestid.LogAttr, clientip.LogAttr, actorLogAttr),
	}
	if c.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(c.LogLevel))
	}
	return logger.New(opts...)
}

func actorLogAttr(ctx context.Context) (slog.Attr, bool) {
	if id, ok := domain.ActorUserID(ctx); ok {
		return logger.UserID(id), true
	}
	return slog.Attr{}, false
}
