package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		// Topic receives aggregated error logs when kafka is enabled.
		Topic string `yaml:"topic"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Upstream struct {
		StockHost    string        `yaml:"stock_host"`
		ExternalHost string        `yaml:"external_host"`
		AuthHost     string        `yaml:"auth_host"`
		ChartHost    string        `yaml:"chart_host"`
		Timeout      time.Duration `yaml:"timeout"`
		// AnalysisTimeout applies to analyze endpoints, which run a model upstream.
		AnalysisTimeout time.Duration `yaml:"analysis_timeout"`
		RPS             float64       `yaml:"rps"`
		Burst           int           `yaml:"burst"`
	} `yaml:"upstream"`
	Pipeline struct {
		NewsLimit         int           `yaml:"news_limit"`
		DetailConcurrency int           `yaml:"detail_concurrency"`
		PageSize          int           `yaml:"page_size"`
		ChangeRankSize    int           `yaml:"change_rank_size"`
		NewsTTL           time.Duration `yaml:"news_ttl"`
		TableTTL          time.Duration `yaml:"table_ttl"`
		InFlightTTL       time.Duration `yaml:"in_flight_ttl"`
		ChartDays         int           `yaml:"chart_days"`
	} `yaml:"pipeline"`
	Session struct {
		// TokenTTL bounds how long a login stays valid without a new verify.
		TokenTTL time.Duration `yaml:"token_ttl"`
	} `yaml:"session"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
		PoolSize int    `yaml:"pool_size"`
		MinIdle  int    `yaml:"min_idle_conns"`
		// Queue carries table refresh jobs when kafka is disabled.
		Queue struct {
			Workers    int           `yaml:"workers"`
			RetryLimit int           `yaml:"retry_limit"`
			RetryDelay time.Duration `yaml:"retry_delay"`
		} `yaml:"queue"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic"`
		RefreshTopic string   `yaml:"refresh_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"ratelimit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file next to the working directory is loaded first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCK_SERVER_HOST"); v != "" {
		c.Upstream.StockHost = v
	}
	if v := os.Getenv("EXTERNAL_SERVER_HOST"); v != "" {
		c.Upstream.ExternalHost = v
	}
	if v := os.Getenv("AUTH_SERVER_HOST"); v != "" {
		c.Upstream.AuthHost = v
	}
	if v := os.Getenv("CHART_SERVER_HOST"); v != "" {
		c.Upstream.ChartHost = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Upstream.ChartHost == "" {
		c.Upstream.ChartHost = c.Upstream.StockHost
	}
	if c.Upstream.AuthHost == "" {
		c.Upstream.AuthHost = c.Upstream.StockHost
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 20 * time.Second
	}
	if c.Upstream.AnalysisTimeout <= 0 {
		c.Upstream.AnalysisTimeout = 90 * time.Second
	}
	if c.Pipeline.NewsLimit <= 0 {
		c.Pipeline.NewsLimit = 5
	}
	if c.Pipeline.PageSize <= 0 {
		c.Pipeline.PageSize = 10
	}
	if c.Pipeline.ChangeRankSize <= 0 {
		c.Pipeline.ChangeRankSize = 10
	}
	if c.Pipeline.InFlightTTL <= 0 {
		c.Pipeline.InFlightTTL = 2 * time.Minute
	}
	if c.Pipeline.ChartDays <= 0 {
		c.Pipeline.ChartDays = 365
	}
	if c.Session.TokenTTL <= 0 {
		c.Session.TokenTTL = 24 * time.Hour
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "stockdash"
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "stock.events"
	}
	if c.Kafka.RefreshTopic == "" {
		c.Kafka.RefreshTopic = "stock.refresh"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Upstream.StockHost == "" {
		return fmt.Errorf("upstream.stock_host is required")
	}
	if c.Upstream.ExternalHost == "" {
		return fmt.Errorf("upstream.external_host is required")
	}
	if c.Pipeline.NewsLimit > 5 {
		return fmt.Errorf("pipeline.news_limit must be at most 5, got %d", c.Pipeline.NewsLimit)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
