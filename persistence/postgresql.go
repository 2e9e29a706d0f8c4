// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/unoserver/models"
)

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn(host, port, user, password, dbname))
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            game_id VARCHAR(64) UNIQUE NOT NULL,
            room_id VARCHAR(255) NOT NULL,
            winner VARCHAR(255),
            players JSONB NOT NULL,
            turns BIGINT NOT NULL DEFAULT 0,
            started_at TIMESTAMP,
            finished_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_game_records_room ON game_records (room_id, finished_at DESC)`)
	return err
}

func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
        INSERT INTO game_records (game_id, room_id, winner, players, turns, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (game_id) DO NOTHING
    `, record.GameID, record.RoomID, record.Winner, string(players), record.Turns, record.StartedAt, record.FinishedAt)
	return err
}

func (p *PostgreSQL) RecentGames(ctx context.Context, roomID string, limit int) ([]models.GameRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT game_id, room_id, COALESCE(winner, ''), players, turns, started_at, finished_at
        FROM game_records
        WHERE room_id = $1
        ORDER BY finished_at DESC
        LIMIT $2
    `, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var (
			r       models.GameRecord
			players []byte
		)
		if err := rows.Scan(&r.GameID, &r.RoomID, &r.Winner, &players, &r.Turns, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &r.Players); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{Name: name}
	err := p.db.QueryRowContext(ctx, `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE winner = $1),
            COUNT(*) FILTER (WHERE players @> $3::jsonb)
        FROM game_records
        WHERE players @> $2::jsonb
    `, name, playerFilter(name, ""), playerFilter(name, models.OutcomeWithdrawn)).
		Scan(&stats.TotalGames, &stats.Wins, &stats.Withdrawals)
	if err != nil {
		return nil, err
	}
	if stats.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	stats.Losses = stats.TotalGames - stats.Wins - stats.Withdrawals
	return stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
