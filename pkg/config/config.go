// Package config loads application configuration from YAML files with
// environment-variable overrides. It provides typed structs for every
// subsystem (Server, Logging, Metrics, Indexer, Source and its backends).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds accepted by SourceConfig.Kind.
const (
	SourceFile     = "file"
	SourceKafka    = "kafka"
	SourceRedis    = "redis"
	SourcePostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Indexer IndexerConfig `yaml:"indexer"`
	Source  SourceConfig  `yaml:"source"`
}

// ServerConfig holds display server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// IndexerConfig controls how the document stream is folded into an index.
// Workers > 1 switches to the ordered parallel reduction, which buffers the
// whole document stream before indexing.
type IndexerConfig struct {
	Workers      int           `yaml:"workers"`
	BuildTimeout time.Duration `yaml:"buildTimeout"`
}

// SourceConfig selects where NDJSON records are read from.
type SourceConfig struct {
	Kind     string         `yaml:"kind"`
	Path     string         `yaml:"path"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers"`
	ConsumerGroup string        `yaml:"consumerGroup"`
	Topic         string        `yaml:"topic"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
}

// RedisConfig holds Redis connection parameters and the list to drain.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
	List     string `yaml:"list"`
}

// PostgresConfig holds PostgreSQL connection parameters and the table whose
// payload column holds one record per row.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	Table           string        `yaml:"table"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceFile, SourceKafka, SourceRedis, SourcePostgres:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Indexer.Workers < 1 {
		return fmt.Errorf("indexer workers must be at least 1, got %d", c.Indexer.Workers)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Indexer: IndexerConfig{
			Workers: 1,
		},
		Source: SourceConfig{
			Kind: SourceFile,
			Path: "-",
			Kafka: KafkaConfig{
				Brokers:       []string{"localhost:9092"},
				ConsumerGroup: "varys-indexer",
				Topic:         "http-transactions",
				IdleTimeout:   10 * time.Second,
			},
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				List:     "varys:http-transactions",
			},
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				Database:        "varys",
				User:            "varys",
				Password:        "localdev",
				SSLMode:         "disable",
				MaxOpenConns:    5,
				MaxIdleConns:    2,
				ConnMaxLifetime: 5 * time.Minute,
				Table:           "http_transactions",
			},
		},
	}
}

// applyEnvOverrides reads VARYS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VARYS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VARYS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VARYS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("VARYS_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("VARYS_INDEXER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("VARYS_SOURCE_KIND"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("VARYS_SOURCE_PATH"); v != "" {
		cfg.Source.Path = v
	}
	if v := os.Getenv("VARYS_KAFKA_BROKERS"); v != "" {
		cfg.Source.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("VARYS_KAFKA_TOPIC"); v != "" {
		cfg.Source.Kafka.Topic = v
	}
	if v := os.Getenv("VARYS_REDIS_ADDR"); v != "" {
		cfg.Source.Redis.Addr = v
	}
	if v := os.Getenv("VARYS_REDIS_PASSWORD"); v != "" {
		cfg.Source.Redis.Password = v
	}
	if v := os.Getenv("VARYS_REDIS_LIST"); v != "" {
		cfg.Source.Redis.List = v
	}
	if v := os.Getenv("VARYS_POSTGRES_HOST"); v != "" {
		cfg.Source.Postgres.Host = v
	}
	if v := os.Getenv("VARYS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Source.Postgres.Port = port
		}
	}
	if v := os.Getenv("VARYS_POSTGRES_DATABASE"); v != "" {
		cfg.Source.Postgres.Database = v
	}
	if v := os.Getenv("VARYS_POSTGRES_USER"); v != "" {
		cfg.Source.Postgres.User = v
	}
	if v := os.Getenv("VARYS_POSTGRES_PASSWORD"); v != "" {
		cfg.Source.Postgres.Password = v
	}
	if v := os.Getenv("VARYS_POSTGRES_TABLE"); v != "" {
		cfg.Source.Postgres.Table = v
	}
}
