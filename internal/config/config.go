// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HS256 secret used to validate dashboard tokens for /ws
	// and dashboard routes. Tokens are issued by the admin service.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the expected iss claim on dashboard tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim on dashboard tokens.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// RequestTimeout bounds each tracker request (e.g. "10s"); agents retry
	// on their own schedule after a timeout.
	RequestTimeout string `mapstructure:"REQUEST_TIMEOUT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Archiving (optional). When Kafka brokers are set, accepted samples and
	// punch events are emitted to Kafka; otherwise to OTel logs when an OTLP
	// endpoint is set.
	// ArchiveKafkaBrokers is a comma-separated list of Kafka broker addresses.
	ArchiveKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// ArchiveKafkaTopic is the Kafka topic for archived activity records.
	ArchiveKafkaTopic string `mapstructure:"ARCHIVE_KAFKA_TOPIC"`
	// OTLPEndpoint is the OTLP gRPC endpoint for telemetry export (empty disables it).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Worker-only: Loki URL for the archive worker to push records (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the archive worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "workeye-admin")
	v.SetDefault("JWT_AUDIENCE", "workeye-api")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ARCHIVE_KAFKA_TOPIC", "workeye-activity")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "workeye-archive-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// RequestTimeoutDuration parses RequestTimeout as a time.Duration. Returns 10s if unset or invalid.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// ArchiveKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka archiving is enabled (non-empty list) and to create the producer.
func (c *Config) ArchiveKafkaBrokersList() []string {
	if c == nil || c.ArchiveKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.ArchiveKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
