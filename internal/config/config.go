package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for stockscope.
type Config struct {
	Finnhub   Finnhub   `yaml:"finnhub"`
	Directory Directory `yaml:"directory"`
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Logging   Logging   `yaml:"logging"`
}

// Finnhub holds credentials and fetch behaviour for the Finnhub API.
type Finnhub struct {
	APIKey           string        `yaml:"api_key"`
	BaseURL          string        `yaml:"base_url"`
	Throttle         time.Duration `yaml:"throttle"`
	Timeout          time.Duration `yaml:"timeout"`
	NewsLookbackDays int           `yaml:"news_lookback_days"`
	FetchConcurrency int           `yaml:"fetch_concurrency"`
}

// Directory controls the cached symbol universe.
type Directory struct {
	Exchange      string        `yaml:"exchange"`
	MIC           string        `yaml:"mic"`
	TTL           time.Duration `yaml:"ttl"`
	FetchAttempts int           `yaml:"fetch_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// Server holds network listener configuration.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// Storage holds paths for local state.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Alpaca holds credentials for the optional watch-list mirror.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	Watchlist string `yaml:"watchlist"`
}

// Enabled reports whether Alpaca credentials are configured.
func (a Alpaca) Enabled() bool {
	return a.APIKey != "" && a.APISecret != ""
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file is given. Values in a
// loaded file override these field by field.
func Default() *Config {
	return &Config{
		Finnhub: Finnhub{
			BaseURL:          "https://finnhub.io/api/v1",
			Throttle:         700 * time.Millisecond,
			Timeout:          10 * time.Second,
			NewsLookbackDays: 30,
			FetchConcurrency: 1,
		},
		Directory: Directory{
			Exchange:      "US",
			MIC:           "XNAS",
			TTL:           time.Hour,
			FetchAttempts: 2,
			RetryDelay:    time.Second,
		},
		Server: Server{
			Host:     "127.0.0.1",
			Port:     8080,
			GRPCPort: 9090,
		},
		Storage: Storage{
			SQLitePath: "stockscope.db",
		},
		Alpaca: Alpaca{
			BaseURL:   "https://paper-api.alpaca.markets",
			Watchlist: "stockscope",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path over the defaults
// and then applies environment variable overrides. An empty path skips the
// file. A .env file in the working directory, if present, is loaded into the
// environment first without replacing variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		cfg.Finnhub.BaseURL = v
	}

	if v := os.Getenv("STOCKSCOPE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars, the canonical names used by the SDK.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
}
