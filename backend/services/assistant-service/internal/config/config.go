package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargeassist/backend/libs/config"
)

// Config defines assistant service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"ASSISTANT_HTTP_PORT"`
	} `yaml:"http"`
	Directory struct {
		BaseURL        string `yaml:"baseUrl" env:"DIRECTORY_API_URL"`
		APIKey         string `yaml:"apiKey" env:"DIRECTORY_API_KEY"`
		MaxResults     int    `yaml:"maxResults" env:"DIRECTORY_MAX_RESULTS"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"DIRECTORY_TIMEOUT"`
	} `yaml:"directory"`
	Generation struct {
		BaseURL        string  `yaml:"baseUrl" env:"GENERATION_API_URL"`
		APIKey         string  `yaml:"apiKey" env:"GENERATION_API_KEY"`
		Model          string  `yaml:"model" env:"GENERATION_MODEL"`
		MaxTokens      int     `yaml:"maxTokens" env:"GENERATION_MAX_TOKENS"`
		Temperature    float64 `yaml:"temperature" env:"GENERATION_TEMPERATURE"`
		TimeoutSeconds int     `yaml:"timeoutSeconds" env:"GENERATION_TIMEOUT"`
	} `yaml:"generation"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ASSISTANT_REDIS_ADDR"`
		Password string `yaml:"password" env:"ASSISTANT_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"ASSISTANT_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"ASSISTANT_SESSION_TTL"`
	} `yaml:"redis"`
	Database struct {
		DSN string `yaml:"dsn" env:"ASSISTANT_POSTGRES_DSN"`
	} `yaml:"database"`
	JWT struct {
		Secret          string `yaml:"secret" env:"ASSISTANT_JWT_SECRET"`
		TokenTTLSeconds int    `yaml:"tokenTtlSeconds" env:"ASSISTANT_TOKEN_TTL"`
	} `yaml:"jwt"`
	Chat struct {
		HistoryLimit    int     `yaml:"historyLimit" env:"ASSISTANT_HISTORY_LIMIT"`
		MaxStoredTurns  int     `yaml:"maxStoredTurns" env:"ASSISTANT_MAX_STORED_TURNS"`
		ContextStations int     `yaml:"contextStations" env:"ASSISTANT_CONTEXT_STATIONS"`
		DefaultRadiusKm float64 `yaml:"defaultRadiusKm" env:"ASSISTANT_DEFAULT_RADIUS_KM"`
	} `yaml:"chat"`
	WebSocket struct {
		PingIntervalSeconds int `yaml:"pingIntervalSeconds" env:"ASSISTANT_WS_PING_INTERVAL"`
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"ASSISTANT_WS_WRITE_TIMEOUT"`
	} `yaml:"websocket"`
}

// Load reads configuration via the shared loader and validates required
// fields. The Postgres DSN is optional; without it search history is
// disabled. The JWT secret is optional; without it session ids travel in
// plain headers.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: struct {
			Port string `yaml:"port" env:"ASSISTANT_HTTP_PORT"`
		}{
			Port: "8084",
		},
		Redis: struct {
			Addr     string `yaml:"addr" env:"ASSISTANT_REDIS_ADDR"`
			Password string `yaml:"password" env:"ASSISTANT_REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"ASSISTANT_REDIS_DB"`
			TTL      int    `yaml:"ttlSeconds" env:"ASSISTANT_SESSION_TTL"`
		}{
			Addr: "localhost:6379",
			TTL:  86400,
		},
	}

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Generation.APIKey) == "" {
		return nil, errors.New("config: generation API key is required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr is required")
	}

	if strings.TrimSpace(cfg.Directory.BaseURL) == "" {
		cfg.Directory.BaseURL = "https://api.openchargemap.io/v3"
	}
	if cfg.Directory.MaxResults <= 0 {
		cfg.Directory.MaxResults = 10
	}
	if strings.TrimSpace(cfg.Generation.BaseURL) == "" {
		cfg.Generation.BaseURL = "https://api.openai.com"
	}
	if strings.TrimSpace(cfg.Generation.Model) == "" {
		cfg.Generation.Model = "gpt-3.5-turbo"
	}
	if cfg.Generation.MaxTokens <= 0 {
		cfg.Generation.MaxTokens = 500
	}
	if cfg.Generation.Temperature <= 0 {
		cfg.Generation.Temperature = 0.7
	}

	return cfg, nil
}

// HTTPAddress returns :port style address.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// DirectoryTimeout returns the directory client timeout.
func (c *Config) DirectoryTimeout() time.Duration {
	if c.Directory.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Directory.TimeoutSeconds) * time.Second
}

// GenerationTimeout returns the generation client timeout.
func (c *Config) GenerationTimeout() time.Duration {
	if c.Generation.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// SessionTTL returns the redis session lifetime.
func (c *Config) SessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// TokenTTL returns the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.JWT.TokenTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWT.TokenTTLSeconds) * time.Second
}

// PingInterval returns websocket ping interval.
func (c *Config) PingInterval() time.Duration {
	if c.WebSocket.PingIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WebSocket.PingIntervalSeconds) * time.Second
}

// WriteTimeout returns websocket write timeout.
func (c *Config) WriteTimeout() time.Duration {
	if c.WebSocket.WriteTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.WebSocket.WriteTimeoutSeconds) * time.Second
}
