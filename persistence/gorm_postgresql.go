// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/wfunc/unoserver/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn(host, port, user, password, dbname)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 保存游戏记录，同一局重复保存不生效
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "game_id"}}, DoNothing: true}).
		Create(models.NewGormGameRecord(record)).Error
}

func (p *GormPostgreSQL) RecentGames(ctx context.Context, roomID string, limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	err := p.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("finished_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToRecord()
	}
	return records, nil
}

func (p *GormPostgreSQL) GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	var total, wins, withdrawals int64

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := func() *gorm.DB { return tx.Model(&models.GormGameRecord{}) }

		if err := base().Where("players @> ?::jsonb", playerFilter(name, "")).Count(&total).Error; err != nil {
			return err
		}
		if err := base().Where("winner = ?", name).Count(&wins).Error; err != nil {
			return err
		}
		return base().Where("players @> ?::jsonb", playerFilter(name, models.OutcomeWithdrawn)).Count(&withdrawals).Error
	})
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrRecordNotFound
	}

	return &models.PlayerStats{
		Name:        name,
		TotalGames:  int(total),
		Wins:        int(wins),
		Losses:      int(total - wins - withdrawals),
		Withdrawals: int(withdrawals),
	}, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
