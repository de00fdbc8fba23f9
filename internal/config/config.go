package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Rates     RatesConfig     `yaml:"rates" mapstructure:"rates"`
	Quotes    QuotesConfig    `yaml:"quotes" mapstructure:"quotes"`
	Offers    OffersConfig    `yaml:"offers" mapstructure:"offers"`
	Ratesheet RatesheetConfig `yaml:"ratesheet" mapstructure:"ratesheet"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the offer database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres or sqlite
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// RatesConfig configures where vehicle facts and provider rates come from.
type RatesConfig struct {
	Source string `yaml:"source" mapstructure:"source"` // postgres or file
	File   string `yaml:"file" mapstructure:"file"`     // catalog path for the file source
}

// QuotesConfig configures the quote calculator.
type QuotesConfig struct {
	ProviderTimeoutSecs int   `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
	MaxParallel         int   `yaml:"max_parallel" mapstructure:"max_parallel"`
	IndicativeUSD       int64 `yaml:"indicative_usd" mapstructure:"indicative_usd"`
}

// OffersConfig configures the offer lifecycle.
type OffersConfig struct {
	ValidityDays int `yaml:"validity_days" mapstructure:"validity_days"`
	SweepMinutes int `yaml:"sweep_minutes" mapstructure:"sweep_minutes"`
}

// RatesheetConfig configures provider rate-sheet import.
type RatesheetConfig struct {
	FTPTimeoutSecs int    `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	QuoteRPS       float64  `yaml:"quote_rps" mapstructure:"quote_rps"`
	QuoteBurst     int      `yaml:"quote_burst" mapstructure:"quote_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IMPORTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "importd.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("rates.source", "postgres")
	v.SetDefault("rates.file", "rates.yaml")
	v.SetDefault("quotes.provider_timeout_secs", 5)
	v.SetDefault("quotes.max_parallel", 8)
	v.SetDefault("quotes.indicative_usd", 3500)
	v.SetDefault("offers.validity_days", 30)
	v.SetDefault("offers.sweep_minutes", 60)
	v.SetDefault("ratesheet.ftp_timeout_secs", 30)
	v.SetDefault("ratesheet.temp_dir", "/tmp/importd")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.quote_rps", 10.0)
	v.SetDefault("server.quote_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
