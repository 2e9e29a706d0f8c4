// services/record_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/unoserver/logger"
	"github.com/wfunc/unoserver/models"
	"github.com/wfunc/unoserver/persistence"
	"github.com/wfunc/unoserver/uno"
)

var ErrGameNotFinished = errors.New("game has no winner yet")

// RecordService turns finished games into history records and answers
// player statistics queries.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// RecordGame implements room.Recorder.
func (s *RecordService) RecordGame(ctx context.Context, roomID string, snap uno.Snapshot) error {
	record, err := BuildRecord(roomID, snap)
	if err != nil {
		return err
	}
	if err := s.db.SaveGameRecord(ctx, record); err != nil {
		return fmt.Errorf("save game %s: %w", record.GameID, err)
	}
	logger.Log.Infow("game recorded", "room", roomID, "game", record.GameID, "winner", record.Winner)
	return nil
}

// PlayerStats aggregates every record that lists name.
func (s *RecordService) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	return s.db.GetPlayerStats(ctx, name)
}

func (s *RecordService) RecentGames(ctx context.Context, roomID string, limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.RecentGames(ctx, roomID, limit)
}

// BuildRecord converts the snapshot of a game that has a winner into a record.
func BuildRecord(roomID string, snap uno.Snapshot) (*models.GameRecord, error) {
	if !snap.Over() {
		return nil, ErrGameNotFinished
	}

	record := &models.GameRecord{
		GameID:     snap.ID,
		RoomID:     roomID,
		Winner:     string(snap.Winner),
		Players:    make([]models.PlayerResult, 0, len(snap.Players)),
		Turns:      snap.TurnSeq,
		StartedAt:  snap.StartedAt,
		FinishedAt: snap.FinishedAt,
	}
	for _, p := range snap.Players {
		outcome := models.OutcomeLose
		switch {
		case p.ID == snap.Winner:
			outcome = models.OutcomeWin
		case p.Withdrawn:
			outcome = models.OutcomeWithdrawn
		}
		record.Players = append(record.Players, models.PlayerResult{
			Name:      string(p.ID),
			Outcome:   outcome,
			CardsLeft: p.HandSize,
		})
	}
	return record, nil
}
