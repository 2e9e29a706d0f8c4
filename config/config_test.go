package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig without a file should use defaults, got: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("Expected default http address :8080, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Expected default driver memory, got %s", cfg.Database.Driver)
	}
	if cfg.Game.HandSize != 10 || cfg.Game.MinPlayers != 2 {
		t.Errorf("Unexpected game defaults: %+v", cfg.Game)
	}
	if !cfg.Game.StrictLegacy {
		t.Error("Expected strict legacy behavior to be on by default")
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  http_address: ":9000"
database:
  driver: gorm
  postgres:
    host: db
    port: 6543
    user: uno
    dbname: games
game:
  hand_size: 7
  strict_legacy: false
  turn_timeout: 45s
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.HTTPAddress != ":9000" {
		t.Errorf("Expected :9000, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Database.Driver != "gorm" || cfg.Database.Postgres.Port != 6543 {
		t.Errorf("Unexpected database config: %+v", cfg.Database)
	}
	if cfg.Game.HandSize != 7 || cfg.Game.StrictLegacy {
		t.Errorf("Unexpected game config: %+v", cfg.Game)
	}
	if cfg.Game.TurnTimeout != 45*time.Second {
		t.Errorf("Expected 45s turn timeout, got %v", cfg.Game.TurnTimeout)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("UNO_GAME_HAND_SIZE", "5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Game.HandSize != 5 {
		t.Errorf("Expected hand size from env to be 5, got %d", cfg.Game.HandSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }},
		{"zero hand", func(c *Config) { c.Game.HandSize = 0 }},
		{"one player", func(c *Config) { c.Game.MinPlayers = 1 }},
		{"negative timeout", func(c *Config) { c.Game.TurnTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{Driver: "memory"},
				Game:     GameConfig{HandSize: 10, MinPlayers: 2},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected Validate to fail")
			}
		})
	}
}
