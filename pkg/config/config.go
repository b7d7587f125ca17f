package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MacroTilt/internal/domain/models"
	"MacroTilt/pkg/util"
)

// Store backends for settings and assets.
const (
	StoreYAML       = "yaml"
	StoreClickHouse = "clickhouse"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps" default:"5"`
			Burst int     `yaml:"burst" default:"10"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	FRED struct {
		APIKey         string                  `yaml:"api_key"`
		BaseURL        string                  `yaml:"base_url" default:"https://api.stlouisfed.org/fred"`
		Timeout        time.Duration           `yaml:"timeout" default:"10s"`
		RateLimit      float64                 `yaml:"rate_limit" default:"2"`
		Attempts       int                     `yaml:"attempts" default:"3"`
		Backoff        time.Duration           `yaml:"backoff" default:"250ms"`
		CollectTimeout time.Duration           `yaml:"collect_timeout" default:"15s"`
		Series         map[string]SeriesConfig `yaml:"series"`
	} `yaml:"fred"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"6h"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Scheduler struct {
		Enabled   bool   `yaml:"enabled" default:"true"`
		WarmCache string `yaml:"warm_cache" default:"0 */30 * * * *"`
	} `yaml:"scheduler"`
	Store struct {
		Backend string `yaml:"backend" default:"yaml"`
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"macrotilt"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic" default:"rebalance.requests"`
		SignalTopic  string   `yaml:"signal_topic" default:"rebalance.signals"`
		Compression  string   `yaml:"compression" default:"snappy"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"macrotilt"`
			Workers    int           `yaml:"workers" default:"2"`
			RetryMax   int           `yaml:"retry_max" default:"2"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Feed struct {
		Interval time.Duration `yaml:"interval" default:"1m"`
	} `yaml:"feed"`
	Portfolio struct {
		Assets []AssetConfig `yaml:"assets"`
	} `yaml:"portfolio"`
	Engine models.EngineConfig `yaml:"engine"`
}

// SeriesConfig maps one indicator onto a FRED series.
type SeriesConfig struct {
	ID      string `yaml:"id"`
	Units   string `yaml:"units"`
	History int    `yaml:"history" default:"6"`
}

// AssetConfig is one portfolio row as written by hand. Allocation is kept as text so that
// "12.5%" and "0.125" go through the same canonical parser.
type AssetConfig struct {
	Ticker      string  `yaml:"ticker"`
	Allocation  string  `yaml:"allocation"`
	Class       string  `yaml:"class"`
	Region      string  `yaml:"region"`
	Sensitivity float64 `yaml:"sensitivity"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Parse decodes YAML over the defaults so that explicit false and zero values survive.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for k, s := range c.FRED.Series {
		if s.History <= 0 {
			s.History = 6
			c.FRED.Series[k] = s
		}
	}
	return c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, and then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.LookupEnv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("FRED_API_KEY"); ok && v != "" {
		c.FRED.APIKey = v
	}
	if v, ok := lookup("STORE_BACKEND"); ok && v != "" {
		c.Store.Backend = v
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v, ok := lookup("CLICKHOUSE_HOST"); ok && v != "" {
		c.ClickHouse.Host = v
	}
	if v, ok := lookup("CLICKHOUSE_PASSWORD"); ok {
		c.ClickHouse.Password = v
	}
	if v, ok := lookup("PORT"); ok {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Store.Backend {
	case StoreYAML:
		if len(c.Portfolio.Assets) == 0 {
			return fmt.Errorf("portfolio.assets cannot be empty with the yaml store")
		}
	case StoreClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required with the clickhouse store")
		}
	default:
		return fmt.Errorf("store.backend must be 'yaml' or 'clickhouse', got '%s'", c.Store.Backend)
	}
	for name := range c.FRED.Series {
		if !models.Indicator(name).IsValid() {
			return fmt.Errorf("fred.series: unknown indicator %q", name)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return nil
}
