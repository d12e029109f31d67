package file

import (
	"context"
	"fmt"
)

// Storage drivers accepted by New.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures the export storage backend.
type Config struct {
	Driver   string `env:"EXPORT_DRIVER" envDefault:"local"`
	LocalDir string `env:"EXPORT_DIR" envDefault:"./exports"`
	BaseURL  string `env:"EXPORT_BASE_URL"`
	S3       S3Config
}

// S3Config contains the S3 backend settings.
type S3Config struct {
	Bucket         string `env:"EXPORT_S3_BUCKET"`
	Region         string `env:"EXPORT_S3_REGION"`
	AccessKeyID    string `env:"EXPORT_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"EXPORT_S3_SECRET_KEY"`
	Endpoint       string `env:"EXPORT_S3_ENDPOINT"`
	BaseURL        string `env:"EXPORT_S3_BASE_URL"`
	ForcePathStyle bool   `env:"EXPORT_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// New builds the storage selected by cfg.Driver.
func New(ctx context.Context, cfg Config, opts ...S3Option) (Storage, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	case DriverS3:
		return NewS3Storage(ctx, cfg.S3, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
