package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "github.com/kungming2/translator-BOT-reborn/internal/shared/config"
)

type Config struct {
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Bot        sharedConfig.BotConfig        `mapstructure:"bot"`
	Processing sharedConfig.ProcessingConfig `mapstructure:"processing"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("ZIWEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults plus environment variables are a complete configuration.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("logger.level", loggerLevelFor(env))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func loggerLevelFor(env string) string {
	switch env {
	case "development", "debug":
		return "debug"
	default:
		return "info"
	}
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("database.path", "ziwen.db")
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("bot.username", "translator-BOT")
	viper.SetDefault("bot.community", "translator")
	viper.SetDefault("bot.poll_interval_seconds", 30)
	viper.SetDefault("bot.batch_size", 100)
	viper.SetDefault("bot.freshness_hours", 6)

	viper.SetDefault("processing.claim_expiry_hours", 8)
	viper.SetDefault("processing.closeout_days", 14)
	viper.SetDefault("processing.long_post_chars", 1400)
	viper.SetDefault("processing.long_video_seconds", 300)
	viper.SetDefault("processing.notify_cap", 100)
	viper.SetDefault("processing.label_max_runes", 64)
	viper.SetDefault("processing.fuzzy_threshold", 0.75)
	viper.SetDefault("processing.resolver_cache_ttl_minutes", 60)
}
