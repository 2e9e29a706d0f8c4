package models

import (
	"testing"
	"time"
)

func TestGormGameRecord_Conversion(t *testing.T) {
	now := time.Now()
	record := &GameRecord{
		GameID:     "g1",
		RoomID:     "table",
		Winner:     "ann",
		Players:    []PlayerResult{{Name: "ann", Outcome: OutcomeWin}, {Name: "bob", Outcome: OutcomeLose, CardsLeft: 4}},
		Turns:      12,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}

	back := NewGormGameRecord(record).ToRecord()
	if back.GameID != record.GameID || back.Winner != record.Winner || back.Turns != record.Turns {
		t.Errorf("Conversion lost fields: %+v", back)
	}
	if len(back.Players) != 2 || back.Players[1].CardsLeft != 4 {
		t.Errorf("Conversion lost players: %+v", back.Players)
	}
	if (GormGameRecord{}).TableName() != "game_records" {
		t.Error("Unexpected table name")
	}
}
