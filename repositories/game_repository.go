package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/courtflow/venue-platform/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound = errors.New("game not found")
	// ErrGameVersionConflict означает проигранную гонку оптимистической
	// записи: агрегат изменился между чтением и записью.
	ErrGameVersionConflict  = errors.New("game version conflict")
	ErrGameReferenceInvalid = errors.New("game references a missing court, sport or tournament")
)

// GameRepository хранит агрегат игры как документ: скалярные поля игры в
// колонках, стороны и журнал событий — в JSONB. Каждая запись проверяет
// версию строки, что даёт дисциплину single-writer на один id игры.
type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	// GetByIDForUpdate читает агрегат с блокировкой строки; вызывается
	// только внутри транзакции финализации.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Game, error)
	// Update пишет агрегат при совпадении версии и инкрементирует её,
	// иначе возвращает ErrGameVersionConflict.
	Update(ctx context.Context, exec SQLExecutor, game *models.Game) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `
	id, tournament_id, sport_id, sport_name, court_id, court_name,
	game_date, game_time, details, status, current_quarter, quarter_minutes,
	clock_running, clock_started_at, overtime_started_at, undo_available,
	team_sides, action_log, version, created_at, updated_at`

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	teamSides, actionLog, err := marshalGameDocuments(game)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO games
			(tournament_id, sport_id, sport_name, court_id, court_name,
			 game_date, game_time, details, status, current_quarter, quarter_minutes,
			 clock_running, clock_started_at, overtime_started_at, undo_available,
			 team_sides, action_log, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1)
		RETURNING id, version, created_at, updated_at`

	err = exec.QueryRowContext(ctx, query,
		game.TournamentID,
		game.SportID,
		game.SportName,
		game.CourtID,
		game.CourtName,
		game.GameDate,
		game.GameTime,
		game.Details,
		game.Status,
		game.CurrentQuarter,
		game.QuarterMinutes,
		game.ClockRunning,
		game.ClockStartedAt,
		game.OvertimeStartedAt,
		game.UndoAvailable,
		teamSides,
		actionLog,
	).Scan(&game.ID, &game.Version, &game.CreatedAt, &game.UpdatedAt)

	return handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1`
	return scanGame(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresGameRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`
	return scanGame(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresGameRepository) Update(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	teamSides, actionLog, err := marshalGameDocuments(game)
	if err != nil {
		return err
	}

	query := `
		UPDATE games SET
			status = $1, current_quarter = $2, quarter_minutes = $3,
			clock_running = $4, clock_started_at = $5, overtime_started_at = $6,
			undo_available = $7, team_sides = $8, action_log = $9,
			version = version + 1, updated_at = now()
		WHERE id = $10 AND version = $11`

	result, err := exec.ExecContext(ctx, query,
		game.Status,
		game.CurrentQuarter,
		game.QuarterMinutes,
		game.ClockRunning,
		game.ClockStartedAt,
		game.OvertimeStartedAt,
		game.UndoAvailable,
		teamSides,
		actionLog,
		game.ID,
		game.Version,
	)
	if err != nil {
		return handleGameError(err)
	}
	if err := checkAffectedRows(result, ErrGameVersionConflict); err != nil {
		return err
	}
	game.Version++
	game.UpdatedAt = time.Now()
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	game := &models.Game{}
	var teamSides, actionLog []byte

	err := row.Scan(
		&game.ID,
		&game.TournamentID,
		&game.SportID,
		&game.SportName,
		&game.CourtID,
		&game.CourtName,
		&game.GameDate,
		&game.GameTime,
		&game.Details,
		&game.Status,
		&game.CurrentQuarter,
		&game.QuarterMinutes,
		&game.ClockRunning,
		&game.ClockStartedAt,
		&game.OvertimeStartedAt,
		&game.UndoAvailable,
		&teamSides,
		&actionLog,
		&game.Version,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(teamSides, &game.TeamSides); err != nil {
		return nil, fmt.Errorf("failed to decode team sides for game %d: %w", game.ID, err)
	}
	if actionLog != nil {
		if err := json.Unmarshal(actionLog, &game.ActionLog); err != nil {
			return nil, fmt.Errorf("failed to decode action log for game %d: %w", game.ID, err)
		}
	}
	return game, nil
}

func marshalGameDocuments(game *models.Game) ([]byte, []byte, error) {
	teamSides, err := json.Marshal(game.TeamSides)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode team sides: %w", err)
	}
	if game.ActionLog == nil {
		game.ActionLog = []models.GameAction{}
	}
	actionLog, err := json.Marshal(game.ActionLog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode action log: %w", err)
	}
	return teamSides, actionLog, nil
}

func handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "games_tournament_id_fkey", "games_sport_id_fkey", "games_court_id_fkey":
			return ErrGameReferenceInvalid
		}
	}
	return err
}
