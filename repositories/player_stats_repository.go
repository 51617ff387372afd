package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtflow/venue-platform/models"
)

var ErrPlayerStatsInvalid = errors.New("player stat record references a missing player")

// PlayerStatsRepository хранит исторические снапшоты статистики игроков по
// играм. Upsert идемпотентен: повторная финализация той же игры перепишет
// снапшот, а не создаст дубликат.
type PlayerStatsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, record *models.PlayerStatRecord) error
	ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStatRecord, error)
}

type postgresPlayerStatsRepository struct {
	db *sql.DB
}

func NewPostgresPlayerStatsRepository(db *sql.DB) PlayerStatsRepository {
	return &postgresPlayerStatsRepository{db: db}
}

func (r *postgresPlayerStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, record *models.PlayerStatRecord) error {
	stats, err := json.Marshal(record.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats for player %d: %w", record.PlayerID, err)
	}

	query := `
		INSERT INTO player_stat_records (player_id, game_id, stats, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (player_id, game_id)
		DO UPDATE SET stats = EXCLUDED.stats, updated_at = now()
		RETURNING updated_at`

	err = exec.QueryRowContext(ctx, query, record.PlayerID, record.GameID, stats).
		Scan(&record.UpdatedAt)
	return handlePlayerStatsError(err)
}

func (r *postgresPlayerStatsRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStatRecord, error) {
	query := `
		SELECT player_id, game_id, stats, updated_at
		FROM player_stat_records
		WHERE player_id = $1
		ORDER BY game_id`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PlayerStatRecord
	for rows.Next() {
		record := &models.PlayerStatRecord{}
		var stats []byte
		if err := rows.Scan(&record.PlayerID, &record.GameID, &stats, &record.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(stats, &record.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats for player %d game %d: %w",
				record.PlayerID, record.GameID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func handlePlayerStatsError(err error) error {
	if err == nil {
		return nil
	}
	if isForeignKeyViolation(err, "player_stat_records_player_id_fkey") {
		return ErrPlayerStatsInvalid
	}
	return err
}
