package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtflow/venue-platform/models"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository — справочный доступ к командам и ростерам. Скоринговое
// ядро обращается сюда один раз, при создании игры, чтобы снять снапшоты.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListPlayers(ctx context.Context, teamID int) ([]models.Player, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, sport_id, logo_url FROM teams WHERE id = $1`

	var team models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.SportID,
		&team.LogoURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListPlayers(ctx context.Context, teamID int) ([]models.Player, error) {
	query := `
		SELECT id, team_id, name, no, position
		FROM players
		WHERE team_id = $1
		ORDER BY no NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(&player.ID, &player.TeamID, &player.Name, &player.Number, &player.Position); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}
