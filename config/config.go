package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	QueueDriverNats     = "nats"
	QueueDriverRabbitMQ = "rabbitmq"

	StockSourceArgs     = "args"
	StockSourcePostgres = "postgres"
)

type Config struct {
	Port           string         `mapstructure:"PORT" validate:"required"`
	ApiKey         string         `mapstructure:"API_KEY" validate:"required"`
	StockThreshold int64          `mapstructure:"STOCK_THRESHOLD" validate:"gte=0"`
	StockSource    string         `mapstructure:"STOCK_SOURCE" validate:"oneof=args postgres"`
	Queue          QueueConfig    `mapstructure:",squash"`
	Supplier       SupplierConfig `mapstructure:",squash"`
	Redis          RedisConfig    `mapstructure:",squash"`
	Db             DbConfig       `mapstructure:",squash"`
}

type QueueConfig struct {
	Driver         string        `mapstructure:"QUEUE_DRIVER" validate:"oneof=nats rabbitmq"`
	Name           string        `mapstructure:"QUEUE_NAME" validate:"required"`
	NatsUrl        string        `mapstructure:"NATS_URL" validate:"required_if=Driver nats"`
	StreamName     string        `mapstructure:"NATS_STREAM_NAME" validate:"required_if=Driver nats"`
	RabbitMQUrl    string        `mapstructure:"RABBITMQ_URL" validate:"required_if=Driver rabbitmq"`
	PublishTimeout time.Duration `mapstructure:"PUBLISH_TIMEOUT" validate:"gt=0"`
	Concurrency    int           `mapstructure:"DISPATCHER_CONCURRENCY" validate:"gte=1"`
}

// SupplierConfig is deliberately not required at boot: a missing url or key
// fails each message with a configuration error instead.
type SupplierConfig struct {
	ApiUrl  string        `mapstructure:"SUPPLIER_API_URL" validate:"omitempty,url"`
	ApiKey  string        `mapstructure:"SUPPLIER_API_KEY"`
	Timeout time.Duration `mapstructure:"SUPPLIER_TIMEOUT" validate:"gt=0"`
}

// RedisConfig enables the order ledger when Addr is set.
type RedisConfig struct {
	Addr      string        `mapstructure:"REDIS_ADDR"`
	Password  string        `mapstructure:"REDIS_PASSWORD"`
	LedgerTTL time.Duration `mapstructure:"LEDGER_TTL" validate:"gt=0"`
}

type DbConfig struct {
	Host     string `mapstructure:"DB_HOST"`
	Port     string `mapstructure:"DB_PORT"`
	Username string `mapstructure:"DB_USERNAME"`
	Password string `mapstructure:"DB_PASSWORD"`
	DbName   string `mapstructure:"DB_DBNAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`
}

func (c QueueConfig) NatsStream() string {
	return strings.ToUpper(c.StreamName)
}

// NatsSubjects is the subject space owned by the stream.
func (c QueueConfig) NatsSubjects() string {
	return strings.ToLower(c.StreamName) + ".*"
}

// NatsSubject is the subject stock events are published on.
func (c QueueConfig) NatsSubject() string {
	return strings.ToLower(c.StreamName) + "." + c.Name
}

func (c QueueConfig) NatsDurable() string {
	return c.Name + "-dispatcher"
}

func setDefaults() {
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("API_KEY", "no-key-configured")
	viper.SetDefault("STOCK_THRESHOLD", 10)
	viper.SetDefault("STOCK_SOURCE", StockSourceArgs)
	viper.SetDefault("QUEUE_DRIVER", QueueDriverNats)
	viper.SetDefault("QUEUE_NAME", "product-stock-events")
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("NATS_STREAM_NAME", "stock")
	viper.SetDefault("PUBLISH_TIMEOUT", "5s")
	viper.SetDefault("DISPATCHER_CONCURRENCY", 4)
	viper.SetDefault("SUPPLIER_TIMEOUT", "10s")
	viper.SetDefault("LEDGER_TTL", "24h")
	viper.SetDefault("DB_SSLMODE", "disable")
}

func InitConfig(ctx context.Context) (*Config, error) {
	var cfg Config

	// Reset viper to avoid any previous configuration
	viper.Reset()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType("env")
	setDefaults()

	// Try to load from .env file if it exists
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	_, err := os.Stat(envFile)
	if !os.IsNotExist(err) {
		viper.SetConfigFile(envFile)

		if err := viper.ReadInConfig(); err != nil {
			slog.WarnContext(ctx, "[InitConfig] ReadInConfig warning, continuing with env vars only", "error", err)
		} else {
			slog.InfoContext(ctx, "[InitConfig] Successfully loaded config file", "file", envFile)
		}
	} else {
		slog.InfoContext(ctx, "[InitConfig] No config file found, using environment variables")
	}

	viper.AutomaticEnv()

	envVars := []string{
		"PORT",
		"API_KEY",
		"STOCK_THRESHOLD",
		"STOCK_SOURCE",
		"QUEUE_DRIVER",
		"QUEUE_NAME",
		"NATS_URL",
		"NATS_STREAM_NAME",
		"RABBITMQ_URL",
		"PUBLISH_TIMEOUT",
		"DISPATCHER_CONCURRENCY",
		"SUPPLIER_API_URL",
		"SUPPLIER_API_KEY",
		"SUPPLIER_TIMEOUT",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"LEDGER_TTL",
		"DB_HOST",
		"DB_PORT",
		"DB_USERNAME",
		"DB_PASSWORD",
		"DB_DBNAME",
		"DB_SSLMODE",
	}

	// Bind environment variables explicitly so squashed structs are populated
	for _, key := range envVars {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.ErrorContext(ctx, "[InitConfig] Unmarshal", "failed bind config", err)
		return nil, err
	}

	// Secrets are reported as present/absent only
	slog.InfoContext(ctx, "[InitConfig] Configuration after binding",
		"PORT", cfg.Port,
		"STOCK_THRESHOLD", cfg.StockThreshold,
		"STOCK_SOURCE", cfg.StockSource,
		"QUEUE_DRIVER", cfg.Queue.Driver,
		"QUEUE_NAME", cfg.Queue.Name,
		"NATS_STREAM_NAME", cfg.Queue.StreamName,
		"DISPATCHER_CONCURRENCY", cfg.Queue.Concurrency,
		"SUPPLIER_API_URL", cfg.Supplier.ApiUrl,
		"SUPPLIER_API_KEY_SET", cfg.Supplier.ApiKey != "",
		"SUPPLIER_TIMEOUT", cfg.Supplier.Timeout,
		"REDIS_ADDR", cfg.Redis.Addr,
		"DB_HOST", cfg.Db.Host)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if ok {
			for _, validationErr := range validationErrs {
				slog.ErrorContext(ctx, "[InitConfig] Validation error",
					"field", validationErr.Field(),
					"namespace", validationErr.Namespace(),
					"tag", validationErr.Tag(),
					"value", validationErr.Value())
			}
		} else {
			slog.ErrorContext(ctx, "[InitConfig] Validation", "error", err)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "[InitConfig] Config loaded successfully")
	return &cfg, nil
}
