// models/models.go
package models

import (
	"time"
)

// Outcomes recorded per player.
const (
	OutcomeWin       = "win"
	OutcomeLose      = "lose"
	OutcomeWithdrawn = "withdrawn"
)

// GameRecord is the history entry written when a game finishes.
type GameRecord struct {
	GameID     string         `json:"game_id"`
	RoomID     string         `json:"room_id"`
	Winner     string         `json:"winner"`
	Players    []PlayerResult `json:"players"`
	Turns      uint64         `json:"turns"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// PlayerResult is one player's line in a game record.
type PlayerResult struct {
	Name      string `json:"name"`
	Outcome   string `json:"outcome"`
	CardsLeft int    `json:"cards_left"`
}

// PlayerStats aggregates a player's records.
type PlayerStats struct {
	Name        string `json:"name"`
	TotalGames  int    `json:"total_games"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Withdrawals int    `json:"withdrawals"`
}
