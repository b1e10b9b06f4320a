package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TICKERWEB"

type Config struct {
	Server   Server   `mapstructure:"server"`
	Log      Log      `mapstructure:"log"`
	Provider Provider `mapstructure:"provider"`
	Yahoo    Yahoo    `mapstructure:"yahoo"`
	History  History  `mapstructure:"history"`
	Alpaca   Alpaca   `mapstructure:"alpaca"`
	Secrets  Secrets  `mapstructure:"secrets"`
	Display  Display  `mapstructure:"display"`
}

type Server struct {
	Port            string        `mapstructure:"port"`
	MaxSymbols      int           `mapstructure:"max_symbols"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level       string `mapstructure:"level"`       // debug, info, warn, error
	Format      string `mapstructure:"format"`      // json or console
	OutputFile  string `mapstructure:"output_file"` // optional rotated file
	Environment string `mapstructure:"environment"` // dev or prod
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

type Provider struct {
	// CallTimeout bounds a single snapshot or history call.
	CallTimeout          time.Duration `mapstructure:"call_timeout"`
	HTTPTimeout          time.Duration `mapstructure:"http_timeout"`
	FlightTimeout        time.Duration `mapstructure:"flight_timeout"`
	Quiet                bool          `mapstructure:"quiet"`
	MaxRequestsPerMinute int           `mapstructure:"max_requests_per_minute"`
	Burst                int           `mapstructure:"burst"`
	MinRequestInterval   time.Duration `mapstructure:"min_request_interval"`
	UserAgent            string        `mapstructure:"user_agent"`
}

type Yahoo struct {
	BaseURL string `mapstructure:"base_url"`
}

type History struct {
	Source       string `mapstructure:"source"` // yahoo or alpaca
	LookbackDays int    `mapstructure:"lookback_days"`
}

type Alpaca struct {
	APIKey      string `mapstructure:"api_key"`
	APISecret   string `mapstructure:"api_secret"`
	DataBaseURL string `mapstructure:"data_base_url"`
	Feed        string `mapstructure:"feed"`
}

type Secrets struct {
	Source            string `mapstructure:"source"` // env or ssm
	Region            string `mapstructure:"region"`
	AlpacaKeyParam    string `mapstructure:"alpaca_key_param"`
	AlpacaSecretParam string `mapstructure:"alpaca_secret_param"`
}

type Display struct {
	QuoteURLTemplate string `mapstructure:"quote_url_template"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:            "8080",
			MaxSymbols:      100,
			MaxBodyBytes:    64 << 10,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{
			Level:       "info",
			Format:      "json",
			Environment: "prod",
			MaxSizeMB:   10,
			MaxBackups:  5,
			MaxAgeDays:  7,
		},
		Provider: Provider{
			CallTimeout:          10 * time.Second,
			HTTPTimeout:          15 * time.Second,
			FlightTimeout:        30 * time.Second,
			Quiet:                true,
			MaxRequestsPerMinute: 120,
			Burst:                5,
			UserAgent:            "Mozilla/5.0 (compatible; tickerweb/1.0)",
		},
		Yahoo:   Yahoo{BaseURL: "https://query1.finance.yahoo.com"},
		History: History{Source: "yahoo", LookbackDays: 366},
		Alpaca:  Alpaca{Feed: "iex"},
		Secrets: Secrets{Source: "env"},
		Display: Display{QuoteURLTemplate: "https://finance.yahoo.com/quote/%s/"},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_symbols", d.Server.MaxSymbols)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_file", d.Log.OutputFile)
	v.SetDefault("log.environment", d.Log.Environment)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)

	v.SetDefault("provider.call_timeout", d.Provider.CallTimeout)
	v.SetDefault("provider.http_timeout", d.Provider.HTTPTimeout)
	v.SetDefault("provider.flight_timeout", d.Provider.FlightTimeout)
	v.SetDefault("provider.quiet", d.Provider.Quiet)
	v.SetDefault("provider.max_requests_per_minute", d.Provider.MaxRequestsPerMinute)
	v.SetDefault("provider.burst", d.Provider.Burst)
	v.SetDefault("provider.min_request_interval", d.Provider.MinRequestInterval)
	v.SetDefault("provider.user_agent", d.Provider.UserAgent)

	v.SetDefault("yahoo.base_url", d.Yahoo.BaseURL)

	v.SetDefault("history.source", d.History.Source)
	v.SetDefault("history.lookback_days", d.History.LookbackDays)

	v.SetDefault("alpaca.api_key", d.Alpaca.APIKey)
	v.SetDefault("alpaca.api_secret", d.Alpaca.APISecret)
	v.SetDefault("alpaca.data_base_url", d.Alpaca.DataBaseURL)
	v.SetDefault("alpaca.feed", d.Alpaca.Feed)

	v.SetDefault("secrets.source", d.Secrets.Source)
	v.SetDefault("secrets.region", d.Secrets.Region)
	v.SetDefault("secrets.alpaca_key_param", d.Secrets.AlpacaKeyParam)
	v.SetDefault("secrets.alpaca_secret_param", d.Secrets.AlpacaSecretParam)

	v.SetDefault("display.quote_url_template", d.Display.QuoteURLTemplate)
}

// Load reads configuration from path (or CONFIG_FILE, or config.yaml in the
// working directory or ./config). A missing file yields defaults. Variables
// from .env are loaded first; TICKERWEB_* variables override file values,
// and PORT, ALPACA_API_KEY, ALPACA_SECRET_KEY override those.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Default(), fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Default(), fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

func (c Config) Validate() error {
	switch c.History.Source {
	case "yahoo", "alpaca":
	default:
		return fmt.Errorf("history.source: unknown source %q", c.History.Source)
	}
	switch c.Secrets.Source {
	case "env", "ssm":
	default:
		return fmt.Errorf("secrets.source: unknown source %q", c.Secrets.Source)
	}
	if c.History.LookbackDays < 2 {
		return fmt.Errorf("history.lookback_days: must be at least 2, got %d", c.History.LookbackDays)
	}
	if c.Server.MaxSymbols <= 0 {
		return fmt.Errorf("server.max_symbols: must be positive, got %d", c.Server.MaxSymbols)
	}
	if strings.Count(c.Display.QuoteURLTemplate, "%s") != 1 {
		return errors.New("display.quote_url_template: must contain exactly one %s")
	}
	return nil
}
