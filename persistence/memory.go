// persistence/memory.go
package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/wfunc/unoserver/models"
)

// Memory keeps records in process. Used when no database is configured and
// in tests.
type Memory struct {
	mu      sync.RWMutex
	records []models.GameRecord
	byGame  map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{byGame: make(map[string]struct{})}
}

func (m *Memory) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byGame[record.GameID]; ok {
		return nil
	}
	r := *record
	r.Players = append([]models.PlayerResult(nil), record.Players...)
	m.records = append(m.records, r)
	m.byGame[r.GameID] = struct{}{}
	return nil
}

func (m *Memory) RecentGames(ctx context.Context, roomID string, limit int) ([]models.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.GameRecord
	for _, r := range m.records {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.PlayerStats{Name: name}
	for _, r := range m.records {
		for _, p := range r.Players {
			if p.Name != name {
				continue
			}
			stats.TotalGames++
			switch p.Outcome {
			case models.OutcomeWin:
				stats.Wins++
			case models.OutcomeWithdrawn:
				stats.Withdrawals++
			default:
				stats.Losses++
			}
		}
	}
	if stats.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return stats, nil
}

func (m *Memory) Close() error { return nil }
