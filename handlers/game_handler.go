package handlers

import (
	"log/slog"
	"net/http"

	"github.com/courtflow/venue-platform/middleware"
	"github.com/courtflow/venue-platform/models"
	"github.com/courtflow/venue-platform/services"
	"github.com/go-playground/validator/v10"
)

type GameHandler struct {
	service  services.GameService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewGameHandler(service services.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type createGameRequest struct {
	SportsType     string  `json:"sports_type" validate:"required"`
	Team1          int     `json:"team1" validate:"required,gt=0"`
	Team2          int     `json:"team2" validate:"required,gt=0,nefield=Team1"`
	Court          int     `json:"court" validate:"required,gt=0"`
	GameDate       string  `json:"game_date" validate:"required"`
	GameTime       string  `json:"game_time" validate:"required"`
	TournamentID   *int    `json:"tournament_id,omitempty" validate:"omitempty,gt=0"`
	QuarterMinutes int     `json:"quarter_minutes,omitempty" validate:"gte=0"`
	Details        *string `json:"details,omitempty"`
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	game, err := h.service.Create(r.Context(), services.CreateGameInput{
		SportName:      req.SportsType,
		TournamentID:   req.TournamentID,
		Team1ID:        req.Team1,
		Team2ID:        req.Team2,
		CourtID:        req.Court,
		GameDate:       req.GameDate,
		GameTime:       req.GameTime,
		Details:        req.Details,
		QuarterMinutes: req.QuarterMinutes,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil)
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	detail, err := h.service.Get(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail, nil)
}

type actionRequest struct {
	Action string `json:"action" validate:"required"`
}

// ApplyAction — игровое событие для игрока: POST
// /games/{gameID}/teams/{teamID}/players/{playerID}/actions.
func (h *GameHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	gameID, teamID, playerID, err := gamePathParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req actionRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	game, err := h.service.ApplyAction(r.Context(), gameID, teamID, playerID, models.ActionType(req.Action))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.service.Undo(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

type substitutionRequest struct {
	Position *int `json:"position,omitempty" validate:"omitempty,gte=0"`
}

func (h *GameHandler) SubstitutePlayerIn(w http.ResponseWriter, r *http.Request) {
	gameID, teamID, playerID, err := gamePathParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req substitutionRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if err := h.validate.Struct(req); err != nil {
			failedValidationResponse(w, r, validationErrors(err))
			return
		}
	}

	game, err := h.service.SubstituteIn(r.Context(), gameID, teamID, playerID, req.Position)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

func (h *GameHandler) SubstitutePlayerOut(w http.ResponseWriter, r *http.Request) {
	gameID, teamID, playerID, err := gamePathParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.service.SubstituteOut(r.Context(), gameID, teamID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

type timerRequest struct {
	Action  string `json:"action" validate:"required,oneof=play stop resume increase decrease"`
	Quarter *int   `json:"quarter,omitempty" validate:"omitempty,gte=1"`
}

func (h *GameHandler) Timer(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var req timerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failedValidationResponse(w, r, validationErrors(err))
		return
	}

	game, err := h.service.Timer(r.Context(), gameID, services.TimerCommand(req.Action), req.Quarter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

func (h *GameHandler) Timeout(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.service.Timeout(r.Context(), gameID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

func (h *GameHandler) StartOvertime(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.service.StartOvertime(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

func (h *GameHandler) FinishGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlParamInt(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Финализация терминальна — фиксируем инициатора в логе.
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		h.logger.Info("game finish requested",
			slog.Int("game_id", gameID), slog.Int("user_id", userID))
	}

	game, err := h.service.Finalize(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil)
}

func gamePathParams(r *http.Request) (gameID, teamID, playerID int, err error) {
	if gameID, err = urlParamInt(r, "gameID"); err != nil {
		return
	}
	if teamID, err = urlParamInt(r, "teamID"); err != nil {
		return
	}
	playerID, err = urlParamInt(r, "playerID")
	return
}
