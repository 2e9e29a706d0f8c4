// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	GameID     string         `gorm:"uniqueIndex;not null"`
	RoomID     string         `gorm:"index;not null"`
	Winner     string         `gorm:"index"`
	Players    []PlayerResult `gorm:"type:jsonb;serializer:json;not null"`
	Turns      uint64         `gorm:"default:0"`
	StartedAt  time.Time
	FinishedAt time.Time `gorm:"index"`
}

func (GormGameRecord) TableName() string {
	return "game_records"
}

func NewGormGameRecord(r *GameRecord) *GormGameRecord {
	return &GormGameRecord{
		GameID:     r.GameID,
		RoomID:     r.RoomID,
		Winner:     r.Winner,
		Players:    r.Players,
		Turns:      r.Turns,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func (g *GormGameRecord) ToRecord() GameRecord {
	return GameRecord{
		GameID:     g.GameID,
		RoomID:     g.RoomID,
		Winner:     g.Winner,
		Players:    g.Players,
		Turns:      g.Turns,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
}
