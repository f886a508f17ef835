package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is built once at process start and passed down explicitly.
type Config struct {
	Database   Database
	MarketData MarketData
	Sync       Sync
	Portfolio  Portfolio
	Server     Server
	Log        Log
}

// Database configures the local SQLite cache.
type Database struct {
	Path  string `env:"DB_PATH" envDefault:"./data/portfolio.db"`
	Debug bool   `env:"DB_DEBUG" envDefault:"false"`
}

// MarketData configures the FMP client.
type MarketData struct {
	APIKey        string        `env:"FMP_API_KEY"`
	BaseURL       string        `env:"FMP_BASE_URL" envDefault:"https://financialmodelingprep.com/stable"`
	Timeout       time.Duration `env:"FMP_TIMEOUT" envDefault:"30s"`
	RateLimitFile string        `env:"FMP_RATE_LIMIT_FILE"`
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"60s"`
}

// Sync configures the statement sync job and its admin trigger.
type Sync struct {
	Token    string `env:"SYNC_TOKEN"`
	Schedule string `env:"SYNC_SCHEDULE"`
	Limit    int    `env:"STATEMENT_LIMIT" envDefault:"5"`
	Period   string `env:"STATEMENT_PERIOD" envDefault:"annual"`
}

// Portfolio configures holdings and the symbols shown on the financial page.
type Portfolio struct {
	HoldingsFile  string `env:"HOLDINGS_FILE"`
	BaseSymbol    string `env:"BASE_SYMBOL" envDefault:"AAPL"`
	CompareSymbol string `env:"COMPARE_SYMBOL" envDefault:"MSFT"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// ErrMissingAPIKey is returned by RequireAPIKey when FMP_API_KEY is unset.
var ErrMissingAPIKey = errors.New("FMP_API_KEY is not set in the environment")

// Load parses the process environment into a Config.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg.normalize()
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: vars})
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.MarketData.BaseURL = strings.TrimRight(c.MarketData.BaseURL, "/")
	c.Sync.Period = strings.ToLower(strings.TrimSpace(c.Sync.Period))
	c.Portfolio.BaseSymbol = strings.ToUpper(strings.TrimSpace(c.Portfolio.BaseSymbol))
	c.Portfolio.CompareSymbol = strings.ToUpper(strings.TrimSpace(c.Portfolio.CompareSymbol))

	if c.Database.Path == "" {
		return Config{}, errors.New("DB_PATH must not be empty")
	}
	if c.Sync.Limit <= 0 {
		return Config{}, fmt.Errorf("STATEMENT_LIMIT must be positive, got %d", c.Sync.Limit)
	}
	switch c.Sync.Period {
	case "annual", "quarter":
	default:
		return Config{}, fmt.Errorf("STATEMENT_PERIOD must be annual or quarter, got %q", c.Sync.Period)
	}
	return c, nil
}

// RequireAPIKey fails when no market data key is configured.
func (m MarketData) RequireAPIKey() error {
	if strings.TrimSpace(m.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
