package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/wfunc/unoserver/config"
	"github.com/wfunc/unoserver/models"
)

func record(id, room, winner string, finished time.Time, players ...models.PlayerResult) *models.GameRecord {
	return &models.GameRecord{
		GameID:     id,
		RoomID:     room,
		Winner:     winner,
		Players:    players,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
	}
}

func TestMemory_SaveAndStats(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	now := time.Now()

	games := []*models.GameRecord{
		record("g1", "table", "ann", now,
			models.PlayerResult{Name: "ann", Outcome: models.OutcomeWin},
			models.PlayerResult{Name: "bob", Outcome: models.OutcomeLose, CardsLeft: 3}),
		record("g2", "table", "bob", now.Add(time.Minute),
			models.PlayerResult{Name: "ann", Outcome: models.OutcomeWithdrawn, CardsLeft: 8},
			models.PlayerResult{Name: "bob", Outcome: models.OutcomeWin}),
	}
	for _, g := range games {
		if err := db.SaveGameRecord(ctx, g); err != nil {
			t.Fatalf("SaveGameRecord failed: %v", err)
		}
	}
	// Saving the same game again is ignored.
	if err := db.SaveGameRecord(ctx, games[0]); err != nil {
		t.Fatalf("Duplicate save failed: %v", err)
	}

	stats, err := db.GetPlayerStats(ctx, "ann")
	if err != nil {
		t.Fatalf("GetPlayerStats failed: %v", err)
	}
	if stats.TotalGames != 2 || stats.Wins != 1 || stats.Withdrawals != 1 || stats.Losses != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if _, err := db.GetPlayerStats(ctx, "nobody"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemory_RecentGames(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()
	now := time.Now()

	_ = db.SaveGameRecord(ctx, record("old", "table", "ann", now))
	_ = db.SaveGameRecord(ctx, record("new", "table", "bob", now.Add(time.Hour)))
	_ = db.SaveGameRecord(ctx, record("other", "lounge", "cy", now))

	games, err := db.RecentGames(ctx, "table", 1)
	if err != nil {
		t.Fatalf("RecentGames failed: %v", err)
	}
	if len(games) != 1 || games[0].GameID != "new" {
		t.Errorf("Expected only the newest game, got %+v", games)
	}

	games, _ = db.RecentGames(ctx, "table", 10)
	if len(games) != 2 {
		t.Errorf("Expected 2 games for table, got %d", len(games))
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	db := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.SaveGameRecord(ctx, record("g", "r", "", time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPlayerFilter(t *testing.T) {
	var entries []map[string]string
	if err := json.Unmarshal([]byte(playerFilter("ann", models.OutcomeWithdrawn)), &entries); err != nil {
		t.Fatalf("Filter is not JSON: %v", err)
	}
	if len(entries) != 1 || entries[0]["name"] != "ann" || entries[0]["outcome"] != "withdrawn" {
		t.Errorf("Unexpected filter: %v", entries)
	}

	if got := playerFilter("bob", ""); got != `[{"name":"bob"}]` {
		t.Errorf("Unexpected filter without outcome: %s", got)
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, ok := db.(*Memory); !ok {
		t.Errorf("Expected *Memory, got %T", db)
	}

	if _, err := Open(config.DatabaseConfig{Driver: "mongo"}); err == nil {
		t.Error("Expected error for unknown driver")
	}
}
