package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Env     string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		URL             string        `yaml:"url"`
		MaxConns        int32         `yaml:"max_conns"`
		MinConns        int32         `yaml:"min_conns"`
		MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		AdminSecret    string        `yaml:"admin_secret"`
		JWTSecret      string        `yaml:"jwt_secret"`
		AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	} `yaml:"auth"`

	Webhook struct {
		URL             string        `yaml:"url"`
		Secret          string        `yaml:"secret"`
		SignatureHeader string        `yaml:"signature_header"`
		Timeout         time.Duration `yaml:"timeout"`
		MaxRetries      int           `yaml:"max_retries"`
		MaxSkew         time.Duration `yaml:"max_skew"`
	} `yaml:"webhook"`

	Notify struct {
		WebhookURL string        `yaml:"webhook_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"notify"`

	Scheduler struct {
		Enabled         bool          `yaml:"enabled"`
		SweepInterval   time.Duration `yaml:"sweep_interval"`
		RetryInterval   time.Duration `yaml:"retry_interval"`
		RetryBatchLimit int           `yaml:"retry_batch_limit"`
	} `yaml:"scheduler"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		JaegerURL  string  `yaml:"jaeger_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database.url must not be empty (set DATABASE_URL)")
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.AdminSecret == "" {
		return fmt.Errorf("auth.admin_secret must not be empty")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0")
	}

	if c.Webhook.URL != "" {
		if c.Webhook.Timeout <= 0 {
			return fmt.Errorf("webhook.timeout must be > 0 when webhook.url is set")
		}
		if c.Webhook.MaxRetries < 1 {
			return fmt.Errorf("webhook.max_retries must be >= 1 when webhook.url is set")
		}
	}
	if c.Webhook.MaxSkew <= 0 {
		return fmt.Errorf("webhook.max_skew must be > 0")
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.SweepInterval <= 0 {
			return fmt.Errorf("scheduler.sweep_interval must be > 0 when scheduler is enabled")
		}
		if c.Scheduler.RetryInterval <= 0 {
			return fmt.Errorf("scheduler.retry_interval must be > 0 when scheduler is enabled")
		}
		if c.Scheduler.RetryBatchLimit <= 0 {
			return fmt.Errorf("scheduler.retry_batch_limit must be > 0 when scheduler is enabled")
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in (0, 1]")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.App.Name = "VoiceGuide AirLink API"
	cfg.App.Version = "dev"
	cfg.App.Env = "dev"

	cfg.Server.Address = ":8000"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Database.MaxConns = 10
	cfg.Database.MinConns = 2
	cfg.Database.MaxConnLifetime = time.Hour

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Auth.AdminSecret = "change-me-in-production"
	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.AccessTokenTTL = 2 * time.Hour

	cfg.Webhook.SignatureHeader = "X-Webhook-Signature"
	cfg.Webhook.Timeout = 5 * time.Second
	cfg.Webhook.MaxRetries = 5
	cfg.Webhook.MaxSkew = 5 * time.Minute

	cfg.Notify.Timeout = 10 * time.Second

	cfg.Scheduler.Enabled = true
	cfg.Scheduler.SweepInterval = time.Minute
	cfg.Scheduler.RetryInterval = time.Minute
	cfg.Scheduler.RetryBatchLimit = 200

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100
	cfg.RateLimiting.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Deploy environments inject these instead of editing the YAML.
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Address = ":" + port
	}
	if addr := os.Getenv("AIRLINK_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Address = addr
		c.Redis.Enabled = true
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("ADMIN_SECRET"); secret != "" {
		c.Auth.AdminSecret = secret
	}
	if secret := os.Getenv("AIRLINK_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if url := os.Getenv("ADMIN_WEBHOOK_URL"); url != "" {
		c.Webhook.URL = url
	}
	if secret := os.Getenv("ADMIN_WEBHOOK_SECRET"); secret != "" {
		c.Webhook.Secret = secret
	}
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		c.Notify.WebhookURL = url
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		c.App.Version = v
	}
	if env := os.Getenv("ENV"); env != "" {
		c.App.Env = env
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Scheduler.Enabled = enabled
		}
	}
}
