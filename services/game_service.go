package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtflow/venue-platform/models"
	"github.com/courtflow/venue-platform/repositories"
	"github.com/courtflow/venue-platform/scoring"
)

const (
	defaultQuarterMinutes = 8

	// Оптимистическая запись агрегата: сколько раз перечитать и повторить
	// мутацию при проигранной гонке, прежде чем отдать конфликт наружу.
	maxMutationRetries = 3
	mutationRetryDelay = 25 * time.Millisecond
)

// Broadcaster рассылает новое состояние игры подписчикам её канала.
// Доставка fire-and-forget: рассылка не может заблокировать или провалить
// мутацию, которая её вызвала.
type Broadcaster interface {
	BroadcastGame(gameID int, payload interface{})
}

// TimerCommand — команда управления игровыми часами.
type TimerCommand string

const (
	TimerPlay     TimerCommand = "play"
	TimerStop     TimerCommand = "stop"
	TimerResume   TimerCommand = "resume"
	TimerIncrease TimerCommand = "increase"
	TimerDecrease TimerCommand = "decrease"
)

type CreateGameInput struct {
	SportName      string
	TournamentID   *int
	Team1ID        int
	Team2ID        int
	CourtID        int
	GameDate       string
	GameTime       string
	Details        *string
	QuarterMinutes int
}

// GameService — скоринговое ядро: машина состояний живой игры. Каждая
// мутация выполняется как один атомарный read-modify-write по id игры и
// после фиксации рассылается подписчикам. Игры независимы друг от друга.
type GameService interface {
	Create(ctx context.Context, input CreateGameInput) (*models.Game, error)
	Get(ctx context.Context, gameID int) (*models.GameDetail, error)
	ApplyAction(ctx context.Context, gameID, teamID, playerID int, action models.ActionType) (*models.Game, error)
	Undo(ctx context.Context, gameID int) (*models.Game, error)
	SubstituteIn(ctx context.Context, gameID, teamID, playerID int, position *int) (*models.Game, error)
	SubstituteOut(ctx context.Context, gameID, teamID, playerID int) (*models.Game, error)
	Timer(ctx context.Context, gameID int, command TimerCommand, quarter *int) (*models.Game, error)
	Timeout(ctx context.Context, gameID, teamID int) (*models.Game, error)
	StartOvertime(ctx context.Context, gameID int) (*models.Game, error)
	Finalize(ctx context.Context, gameID int) (*models.Game, error)
}

type gameService struct {
	db          *sql.DB
	games       repositories.GameRepository
	results     repositories.GameResultRepository
	playerStats repositories.PlayerStatsRepository
	teams       repositories.TeamRepository
	courts      repositories.CourtRepository
	sports      repositories.SportRepository
	tournaments repositories.TournamentRepository
	hub         Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

// NewGameService собирает сервис. nowFn инжектируется ради детерминизма
// расчётов времени в тестах; nil означает time.Now.
func NewGameService(
	db *sql.DB,
	games repositories.GameRepository,
	results repositories.GameResultRepository,
	playerStats repositories.PlayerStatsRepository,
	teams repositories.TeamRepository,
	courts repositories.CourtRepository,
	sports repositories.SportRepository,
	tournaments repositories.TournamentRepository,
	hub Broadcaster,
	logger *slog.Logger,
	nowFn func() time.Time,
) GameService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &gameService{
		db:          db,
		games:       games,
		results:     results,
		playerStats: playerStats,
		teams:       teams,
		courts:      courts,
		sports:      sports,
		tournaments: tournaments,
		hub:         hub,
		logger:      logger,
		now:         nowFn,
	}
}

func (s *gameService) Create(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if input.Team1ID == input.Team2ID {
		return nil, fmt.Errorf("%w: a game needs two distinct teams", ErrValidationFailed)
	}

	sport, err := s.sports.GetByName(ctx, input.SportName)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}

	court, err := s.courts.GetByID(ctx, input.CourtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	if input.TournamentID != nil {
		if _, err := s.tournaments.GetByID(ctx, *input.TournamentID); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, err
		}
	}

	// Снапшоты составов: дальнейшие переименования и трансферы в ростерах
	// не меняют уже созданную игру.
	var sides [2]models.TeamSide
	for i, teamID := range [2]int{input.Team1ID, input.Team2ID} {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)
			}
			return nil, err
		}
		players, err := s.teams.ListPlayers(ctx, teamID)
		if err != nil {
			return nil, err
		}
		entries := make([]models.PlayerEntry, 0, len(players))
		for _, player := range players {
			entries = append(entries, models.PlayerEntry{
				PlayerID: player.ID,
				Name:     player.Name,
				Number:   player.Number,
				Position: player.Position,
				Stats:    models.StatLine{},
			})
		}
		sides[i] = models.TeamSide{
			TeamID:  team.ID,
			Name:    team.Name,
			LogoURL: team.LogoURL,
			Stats:   models.StatLine{},
			Players: entries,
		}
	}

	quarterMinutes := input.QuarterMinutes
	if quarterMinutes <= 0 {
		quarterMinutes = defaultQuarterMinutes
	}

	game := &models.Game{
		TournamentID:   input.TournamentID,
		SportID:        sport.ID,
		SportName:      sport.Name,
		CourtID:        court.ID,
		CourtName:      court.Name,
		GameDate:       input.GameDate,
		GameTime:       input.GameTime,
		Details:        input.Details,
		Status:         models.GameStatusNotStarted,
		CurrentQuarter: 0,
		QuarterMinutes: quarterMinutes,
		TeamSides:      sides,
		ActionLog:      []models.GameAction{},
	}
	if err := s.games.Create(ctx, s.db, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	s.logger.Info("game created",
		slog.Int("game_id", game.ID),
		slog.String("sport", game.SportName),
		slog.Int("team1", input.Team1ID),
		slog.Int("team2", input.Team2ID))
	return game, nil
}

func (s *gameService) Get(ctx context.Context, gameID int) (*models.GameDetail, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	detail := &models.GameDetail{Game: game}
	now := s.now()
	for i := range game.TeamSides {
		detail.Stats[i] = scoring.SummarizeSide(&game.TeamSides[i], game.ClockRunning, now)
	}
	return detail, nil
}

func (s *gameService) ApplyAction(ctx context.Context, gameID, teamID, playerID int, action models.ActionType) (*models.Game, error) {
	// Неизвестный тип события отклоняется до чтения агрегата: ни записи в
	// журнал, ни рассылки.
	if !scoring.KnownAction(action) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		if err := requireMutable(game); err != nil {
			return err
		}
		sideIdx, ok := game.SideIndex(teamID)
		if !ok {
			return ErrTeamNotInGame
		}
		playerIdx, ok := game.TeamSides[sideIdx].PlayerIndex(playerID)
		if !ok {
			return ErrPlayerNotInGame
		}
		if err := scoring.ApplyAction(game, sideIdx, playerIdx, action); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidAction, action)
		}
		game.ActionLog = append(game.ActionLog, models.GameAction{
			TeamID:    teamID,
			PlayerID:  playerID,
			Action:    action,
			AppliedAt: s.now(),
		})
		game.UndoAvailable = true
		return nil
	})
}

// Undo откатывает ровно одно последнее событие. Это одноуровневый undo по
// флагу, а не стек: повторный откат разрешается только после нового события.
func (s *gameService) Undo(ctx context.Context, gameID int) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		if err := requireMutable(game); err != nil {
			return err
		}
		if !game.UndoAvailable {
			return ErrUndoNotAvailable
		}
		if len(game.ActionLog) == 0 {
			return ErrNoActionsToUndo
		}

		last := game.ActionLog[len(game.ActionLog)-1]
		sideIdx, ok := game.SideIndex(last.TeamID)
		if !ok {
			return ErrTeamNotInGame
		}
		playerIdx, ok := game.TeamSides[sideIdx].PlayerIndex(last.PlayerID)
		if !ok {
			return ErrPlayerNotInGame
		}
		if err := scoring.InvertAction(game, sideIdx, playerIdx, last.Action); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidAction, last.Action)
		}
		game.ActionLog = game.ActionLog[:len(game.ActionLog)-1]
		game.UndoAvailable = false
		return nil
	})
}

func (s *gameService) SubstituteIn(ctx context.Context, gameID, teamID, playerID int, position *int) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		player, err := findGamePlayer(game, teamID, playerID)
		if err != nil {
			return err
		}
		if position != nil {
			player.Position = position
		}
		scoring.PlayerCheckIn(player, game.ClockRunning, s.now())
		return nil
	})
}

func (s *gameService) SubstituteOut(ctx context.Context, gameID, teamID, playerID int) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		player, err := findGamePlayer(game, teamID, playerID)
		if err != nil {
			return err
		}
		scoring.PlayerCheckOut(player, s.now())
		return nil
	})
}

func (s *gameService) Timer(ctx context.Context, gameID int, command TimerCommand, quarter *int) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		if err := requireMutable(game); err != nil {
			return err
		}
		now := s.now()
		switch command {
		case TimerPlay:
			if quarter == nil || *quarter < 1 {
				return fmt.Errorf("%w: a positive quarter is required for play", ErrValidationFailed)
			}
			scoring.StartClock(game, *quarter, now)
			game.Status = models.GameStatusRunning
		case TimerResume:
			scoring.ResumeClock(game, now)
			game.Status = models.GameStatusRunning
		case TimerStop:
			scoring.StopClock(game, now)
			game.Status = models.GameStatusStopped
		case TimerIncrease:
			scoring.IncreaseQuarterMinutes(game)
		case TimerDecrease:
			scoring.DecreaseQuarterMinutes(game)
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTimer, command)
		}
		return nil
	})
}

// Timeout поднимает счётчик таймаутов стороны и останавливает часы.
func (s *gameService) Timeout(ctx context.Context, gameID, teamID int) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		if err := requireMutable(game); err != nil {
			return err
		}
		sideIdx, ok := game.SideIndex(teamID)
		if !ok {
			return ErrTeamNotInGame
		}
		scoring.EnsureLedgers(game)
		game.TeamSides[sideIdx].Stats.Add(models.StatTimeout, 1)
		scoring.StopClock(game, s.now())
		game.Status = models.GameStatusStopped
		return nil
	})
}

func (s *gameService) StartOvertime(ctx context.Context, gameID int) (*models.Game, error) {
	return s.mutate(ctx, gameID, func(game *models.Game) error {
		if err := requireMutable(game); err != nil {
			return err
		}
		startedAt := s.now()
		game.OvertimeStartedAt = &startedAt
		return nil
	})
}

// Finalize терминально переводит игру в finished: докручивает минуты и
// овертайм, сохраняет исторические снапшоты игроков, создаёт GameResult и
// фиксирует агрегат — всё в одной транзакции. Любой сбой откатывает всё.
func (s *gameService) Finalize(ctx context.Context, gameID int) (*models.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrFinalizationFailed, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	game, err := s.games.GetByIDForUpdate(ctx, tx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.Status == models.GameStatusFinished {
		return nil, ErrGameFinished
	}

	scoring.StopClock(game, s.now())
	game.Status = models.GameStatusFinished
	game.UndoAvailable = false

	for i := range game.TeamSides {
		side := &game.TeamSides[i]
		for j := range side.Players {
			player := &side.Players[j]
			record := &models.PlayerStatRecord{
				PlayerID: player.PlayerID,
				GameID:   game.ID,
				Stats:    player.Stats.Clone(),
			}
			if err := s.playerStats.Upsert(ctx, tx, record); err != nil {
				return nil, fmt.Errorf("%w: persist stats for player %d: %v",
					ErrFinalizationFailed, player.PlayerID, err)
			}
		}
	}

	scoreA := int(game.TeamSides[0].Stats.Get(models.StatScore))
	scoreB := int(game.TeamSides[1].Stats.Get(models.StatScore))
	result := &models.GameResult{
		GameID:       game.ID,
		TournamentID: game.TournamentID,
		TeamAScore:   scoreA,
		TeamBScore:   scoreB,
	}
	// Ничья оставляет победителя и проигравшего пустыми.
	switch {
	case scoreA > scoreB:
		winner, loser := game.TeamSides[0].TeamID, game.TeamSides[1].TeamID
		result.WinnerTeamID, result.LoserTeamID = &winner, &loser
	case scoreB > scoreA:
		winner, loser := game.TeamSides[1].TeamID, game.TeamSides[0].TeamID
		result.WinnerTeamID, result.LoserTeamID = &winner, &loser
	}
	if err := s.results.Create(ctx, tx, result); err != nil {
		return nil, fmt.Errorf("%w: create game result: %v", ErrFinalizationFailed, err)
	}

	if err := s.games.Update(ctx, tx, game); err != nil {
		return nil, fmt.Errorf("%w: persist game: %v", ErrFinalizationFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrFinalizationFailed, err)
	}
	committed = true

	s.logger.Info("game finalized",
		slog.Int("game_id", game.ID),
		slog.Int("team_a_score", scoreA),
		slog.Int("team_b_score", scoreB))
	s.broadcast(game)
	return game, nil
}

// mutate — единая дисциплина записи агрегата: прочитать, применить fn,
// записать с проверкой версии. Проигранная гонка перечитывается и
// повторяется ограниченное число раз, наружу уходит только исчерпание.
func (s *gameService) mutate(ctx context.Context, gameID int, fn func(game *models.Game) error) (*models.Game, error) {
	var conflict error
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * mutationRetryDelay):
			}
		}

		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, err
		}
		if err := fn(game); err != nil {
			return nil, err
		}

		err = s.games.Update(ctx, s.db, game)
		if err == nil {
			s.broadcast(game)
			return game, nil
		}
		if !errors.Is(err, repositories.ErrGameVersionConflict) {
			return nil, err
		}
		conflict = err
	}

	s.logger.Warn("game mutation retries exhausted", slog.Int("game_id", gameID))
	return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, conflict)
}

func (s *gameService) broadcast(game *models.Game) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastGame(game.ID, game)
}

func requireMutable(game *models.Game) error {
	if game.Status == models.GameStatusFinished {
		return ErrGameFinished
	}
	return nil
}

func findGamePlayer(game *models.Game, teamID, playerID int) (*models.PlayerEntry, error) {
	if err := requireMutable(game); err != nil {
		return nil, err
	}
	sideIdx, ok := game.SideIndex(teamID)
	if !ok {
		return nil, ErrTeamNotInGame
	}
	playerIdx, ok := game.TeamSides[sideIdx].PlayerIndex(playerID)
	if !ok {
		return nil, ErrPlayerNotInGame
	}
	return &game.TeamSides[sideIdx].Players[playerIdx], nil
}
