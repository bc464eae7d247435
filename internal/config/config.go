package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode        string        `mapstructure:"mode"`
	Port        int           `mapstructure:"port"`
	StaticPath  string        `mapstructure:"static_path"`
	ReadLimit   int64         `mapstructure:"read_limit"`
	PingPeriod  time.Duration `mapstructure:"ping_period"`
	WriteWait   time.Duration `mapstructure:"write_wait"`
	SendBuffer  int           `mapstructure:"send_buffer"`
	Secret      string        `mapstructure:"secret"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	CORSOrigins []string      `mapstructure:"cors_origins"`

	Sync      SyncConfig      `mapstructure:"sync"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Directory DirectoryConfig `mapstructure:"directory"`
}

type SyncConfig struct {
	DriftThreshold   float64       `mapstructure:"drift_threshold"`
	BootstrapTimeout time.Duration `mapstructure:"bootstrap_timeout"`
	// MaxClockSkew bounds trusted client timestamps.
	MaxClockSkew     time.Duration `mapstructure:"max_clock_skew"`
	// Policy is "kick" or "tolerant".
	Policy           string        `mapstructure:"policy"`
}

type RateLimitConfig struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type DirectoryConfig struct {
	// Driver is "none", "static" or "postgres".
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
	Rooms   []StaticRoom  `mapstructure:"rooms"`
}

type StaticRoom struct {
	ID           string   `mapstructure:"id"`
	Name         string   `mapstructure:"name"`
	CreatedBy    string   `mapstructure:"created_by"`
	InvitedUsers []string `mapstructure:"invited_users"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("WATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Str("directory", cfg.Directory.Driver).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "watch-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("sync.drift_threshold", 2.0)
	v.SetDefault("sync.bootstrap_timeout", "2s")
	v.SetDefault("sync.max_clock_skew", "2s")
	v.SetDefault("sync.policy", "kick")

	v.SetDefault("rate_limit.events", 30)
	v.SetDefault("rate_limit.interval", "1s")

	v.SetDefault("directory.driver", "none")
	v.SetDefault("directory.timeout", "3s")
}

func (c *Config) validate() error {
	switch c.Directory.Driver {
	case "none", "static":
	case "postgres":
		if c.Directory.DSN == "" {
			return fmt.Errorf("directory.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown directory driver %q", c.Directory.Driver)
	}
	if c.Sync.DriftThreshold <= 0 {
		return fmt.Errorf("sync.drift_threshold must be positive, got %v", c.Sync.DriftThreshold)
	}
	if c.Sync.MaxClockSkew <= 0 {
		return fmt.Errorf("sync.max_clock_skew must be positive, got %v", c.Sync.MaxClockSkew)
	}
	if c.RateLimit.Events <= 0 {
		return fmt.Errorf("rate_limit.events must be positive, got %d", c.RateLimit.Events)
	}
	if c.RateLimit.Interval <= 0 {
		return fmt.Errorf("rate_limit.interval must be positive, got %v", c.RateLimit.Interval)
	}
	return nil
}
