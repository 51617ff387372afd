package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtflow/venue-platform/models"
)

var (
	ErrCourtNotFound      = errors.New("court not found")
	ErrSportNotFound      = errors.New("sport not found")
	ErrTournamentNotFound = errors.New("tournament not found")
)

type CourtRepository interface {
	GetByID(ctx context.Context, id int) (*models.Court, error)
}

type SportRepository interface {
	GetByName(ctx context.Context, name string) (*models.Sport, error)
}

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT id, name, location FROM courts WHERE id = $1`

	var court models.Court
	err := r.db.QueryRowContext(ctx, query, id).Scan(&court.ID, &court.Name, &court.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return &court, nil
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) GetByName(ctx context.Context, name string) (*models.Sport, error) {
	query := `SELECT id, name FROM sports WHERE name = $1`

	var sport models.Sport
	err := r.db.QueryRowContext(ctx, query, name).Scan(&sport.ID, &sport.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return &sport, nil
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT id, name, sport_id FROM tournaments WHERE id = $1`

	var tournament models.Tournament
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tournament.ID, &tournament.Name, &tournament.SportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &tournament, nil
}
