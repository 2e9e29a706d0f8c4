package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// DatabaseConfig selects where finished game records go.
// Driver is one of "gorm", "postgres" or "memory".
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type GameConfig struct {
	HandSize     int           `mapstructure:"hand_size"`
	MinPlayers   int           `mapstructure:"min_players"`
	StrictLegacy bool          `mapstructure:"strict_legacy"`
	TurnTimeout  time.Duration `mapstructure:"turn_timeout"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.metrics_address", ":9090")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("game.hand_size", 10)
	v.SetDefault("game.min_players", 2)
	v.SetDefault("game.strict_legacy", true)
	v.SetDefault("game.turn_timeout", 0)
	v.SetDefault("log.development", false)
}

// LoadConfig reads config.yaml from path. A missing file is not an error;
// defaults and UNO_* environment variables still apply.
func LoadConfig(path string) (config *Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("uno")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the game engine cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "gorm", "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("game.hand_size must be positive, got %d", c.Game.HandSize)
	}
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("game.min_players must be at least 2, got %d", c.Game.MinPlayers)
	}
	if c.Game.TurnTimeout < 0 {
		return fmt.Errorf("game.turn_timeout must not be negative")
	}
	return nil
}
