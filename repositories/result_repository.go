package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtflow/venue-platform/models"
	"github.com/lib/pq"
)

var (
	ErrGameResultNotFound = errors.New("game result not found")
	// У игры может быть не больше одного итога — уникальный индекс по game_id.
	ErrGameResultExists = errors.New("game result already exists")
)

type GameResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.GameResult) error
	GetByGameID(ctx context.Context, gameID int) (*models.GameResult, error)
}

type postgresGameResultRepository struct {
	db *sql.DB
}

func NewPostgresGameResultRepository(db *sql.DB) GameResultRepository {
	return &postgresGameResultRepository{db: db}
}

func (r *postgresGameResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.GameResult) error {
	query := `
		INSERT INTO game_results
			(game_id, tournament_id, team_a_score, team_b_score, winner_team_id, loser_team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		result.GameID,
		result.TournamentID,
		result.TeamAScore,
		result.TeamBScore,
		result.WinnerTeamID,
		result.LoserTeamID,
	).Scan(&result.ID, &result.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "game_results_game_id_key" {
				return ErrGameResultExists
			}
		}
		return err
	}
	return nil
}

func (r *postgresGameResultRepository) GetByGameID(ctx context.Context, gameID int) (*models.GameResult, error) {
	query := `
		SELECT id, game_id, tournament_id, team_a_score, team_b_score,
		       winner_team_id, loser_team_id, created_at
		FROM game_results
		WHERE game_id = $1`

	result := &models.GameResult{}
	err := r.db.QueryRowContext(ctx, query, gameID).Scan(
		&result.ID,
		&result.GameID,
		&result.TournamentID,
		&result.TeamAScore,
		&result.TeamBScore,
		&result.WinnerTeamID,
		&result.LoserTeamID,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameResultNotFound
		}
		return nil, err
	}
	return result, nil
}
