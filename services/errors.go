package services

import "errors"

// Общие ошибки сервисного слоя и маппинга HTTP.
var (
	// Ресурсы не найдены
	ErrGameNotFound       = errors.New("game not found")
	ErrTeamNotInGame      = errors.New("team not found in this game")
	ErrPlayerNotInGame    = errors.New("player not found in this team")
	ErrTeamNotFound       = errors.New("team not found")
	ErrCourtNotFound      = errors.New("court not found")
	ErrSportNotFound      = errors.New("sport type not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrNoActionsToUndo    = errors.New("no actions to undo")

	// Невалидный вход
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidAction    = errors.New("invalid game action")
	ErrInvalidTimer     = errors.New("invalid timer action")

	// Нарушения состояния агрегата
	ErrGameFinished     = errors.New("game is already finished")
	ErrUndoNotAvailable = errors.New("undo is not allowed")

	// Конкуренция и транзакции
	ErrConcurrencyConflict = errors.New("game was modified concurrently, retries exhausted")
	ErrFinalizationFailed  = errors.New("game finalization failed")
)
