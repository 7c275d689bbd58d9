// Package config loads server configuration from an optional YAML file and
// ULTMA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so server.http.address
// becomes ULTMA_SERVER_HTTP_ADDRESS.
const EnvPrefix = "ULTMA"

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	Game    GameConfig    `mapstructure:"game"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	HTTP            HTTPConfig    `mapstructure:"http"`
	GRPC            GRPCConfig    `mapstructure:"grpc"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig configures the REST and websocket listener.
type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// GRPCConfig configures the gRPC listener.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// LoggingConfig selects the zap level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// GameConfig toggles optional rules. A zero Seed draws a fresh one at startup.
type GameConfig struct {
	Seed                  int64 `mapstructure:"seed"`
	DiscoveryPotionReward bool  `mapstructure:"discovery_potion_reward"`
	AutoStartArena        bool  `mapstructure:"auto_start_arena"`
	RequireGlyphsForArena bool  `mapstructure:"require_glyphs_for_arena"`
	JournalSize           int   `mapstructure:"journal_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.address", ":8080")
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "data/ultma.db")
	v.SetDefault("store.dsn", "")

	v.SetDefault("game.seed", 0)
	v.SetDefault("game.discovery_potion_reward", true)
	v.SetDefault("game.auto_start_arena", true)
	v.SetDefault("game.require_glyphs_for_arena", false)
	v.SetDefault("game.journal_size", 256)
}

// Load reads configuration from path, if it exists, layered over defaults
// and under environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.HTTP.Address) == "" {
		return fmt.Errorf("server.http.address is required")
	}
	if c.Server.GRPC.MaxConcurrentStreams < 0 {
		return fmt.Errorf("server.grpc.max_concurrent_streams must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "file", "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for the %s driver", c.Store.Driver)
		}
	case "postgres":
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}
