package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Notify  NotifyConfig
	Storage StorageConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clienttracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type NotifyConfig struct {
	WebhookURL string `env:"NOTIFY_WEBHOOK_URL"`
	Workers    int    `env:"NOTIFY_WORKERS, default=4"`

	// When ChatSpace is set, notifications go to a Google Chat space using
	// the service-account credential bundle instead of the webhook.
	ChatSpace       string `env:"NOTIFY_CHAT_SPACE"`
	ChatCredentials string `env:"NOTIFY_CHAT_CREDENTIALS"`
}

type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Bucket    string `env:"STORAGE_BUCKET,     default=crm-attachments"`
	Region    string `env:"STORAGE_REGION"`
	UseSSL    bool   `env:"STORAGE_USE_SSL,    default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
