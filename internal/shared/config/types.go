package config

import "fmt"

type DatabaseConfig struct {
	Path            string `mapstructure:"path" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", d.Path)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type BotConfig struct {
	Username            string   `mapstructure:"username" validate:"required"`
	Community           string   `mapstructure:"community" validate:"required"`
	Moderators          []string `mapstructure:"moderators"`
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds" validate:"gt=0"`
	BatchSize           int      `mapstructure:"batch_size" validate:"gt=0"`
	FreshnessHours      int      `mapstructure:"freshness_hours" validate:"gt=0"`
}

type ProcessingConfig struct {
	ClaimExpiryHours  int     `mapstructure:"claim_expiry_hours" validate:"gt=0"`
	CloseoutDays      int     `mapstructure:"closeout_days" validate:"gt=0"`
	LongPostChars     int     `mapstructure:"long_post_chars" validate:"gt=0"`
	LongVideoSeconds  int     `mapstructure:"long_video_seconds" validate:"gt=0"`
	NotifyCap         int     `mapstructure:"notify_cap" validate:"gt=0"`
	LabelMaxRunes     int     `mapstructure:"label_max_runes" validate:"gt=0"`
	FuzzyThreshold    float64 `mapstructure:"fuzzy_threshold" validate:"gt=0,lte=1"`
	ResolverCacheTTLM int     `mapstructure:"resolver_cache_ttl_minutes"`
}
