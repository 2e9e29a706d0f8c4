// persistence/interface.go
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/unoserver/config"
	"github.com/wfunc/unoserver/models"
)

// Database stores finished game records. Running games are never persisted.
type Database interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	RecentGames(ctx context.Context, roomID string, limit int) ([]models.GameRecord, error)
	GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error)
	Close() error
}

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Open connects the store selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "gorm":
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "postgres":
		return NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "memory", "":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func dsn(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// playerFilter builds the jsonb containment argument that matches records
// listing name, optionally with a given outcome.
func playerFilter(name, outcome string) string {
	entry := map[string]string{"name": name}
	if outcome != "" {
		entry["outcome"] = outcome
	}
	data, _ := json.Marshal([]map[string]string{entry})
	return string(data)
}
