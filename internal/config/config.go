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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// MatchConfig holds the compatibility scoring weights and thresholds.
// Each weight is the maximum contribution of one sub-score; the default
// rule set sums to 100.
type MatchConfig struct {
	IndustryWeight     float64 `yaml:"industry_weight" mapstructure:"industry_weight"`
	PriceWeight        float64 `yaml:"price_weight" mapstructure:"price_weight"`
	PricePartialWeight float64 `yaml:"price_partial_weight" mapstructure:"price_partial_weight"`
	SizeWeight         float64 `yaml:"size_weight" mapstructure:"size_weight"`
	LocationWeight     float64 `yaml:"location_weight" mapstructure:"location_weight"`
	FinancialWeight    float64 `yaml:"financial_weight" mapstructure:"financial_weight"`

	MinScore   float64 `yaml:"min_score" mapstructure:"min_score"`
	MaxMatches int     `yaml:"max_matches" mapstructure:"max_matches"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	ScoreWorkers   int      `yaml:"score_workers" mapstructure:"score_workers"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("DEALMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "dealmatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.score_workers", 4)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("match.industry_weight", 30)
	v.SetDefault("match.price_weight", 25)
	v.SetDefault("match.price_partial_weight", 15)
	v.SetDefault("match.size_weight", 15)
	v.SetDefault("match.location_weight", 10)
	v.SetDefault("match.financial_weight", 20)
	v.SetDefault("match.min_score", 0)
	v.SetDefault("match.max_matches", 0)

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
