package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/venue-platform/handlers"
	"github.com/courtflow/venue-platform/middleware"
	"github.com/courtflow/venue-platform/models"
	"github.com/courtflow/venue-platform/services"
)

// stubGameService подменяет сервисный слой: каждый метод при необходимости
// перекрывается функцией теста, по умолчанию отдаёт пустую игру.
type stubGameService struct {
	applyAction func(ctx context.Context, gameID, teamID, playerID int, action models.ActionType) (*models.Game, error)
	undo        func(ctx context.Context, gameID int) (*models.Game, error)
	timer       func(ctx context.Context, gameID int, command services.TimerCommand, quarter *int) (*models.Game, error)
	finalize    func(ctx context.Context, gameID int) (*models.Game, error)
	get         func(ctx context.Context, gameID int) (*models.GameDetail, error)
}

func emptyGame() *models.Game {
	return &models.Game{ID: 1, Status: models.GameStatusRunning}
}

func (s *stubGameService) Create(context.Context, services.CreateGameInput) (*models.Game, error) {
	return emptyGame(), nil
}

func (s *stubGameService) Get(ctx context.Context, gameID int) (*models.GameDetail, error) {
	if s.get != nil {
		return s.get(ctx, gameID)
	}
	return &models.GameDetail{Game: emptyGame()}, nil
}

func (s *stubGameService) ApplyAction(ctx context.Context, gameID, teamID, playerID int, action models.ActionType) (*models.Game, error) {
	if s.applyAction != nil {
		return s.applyAction(ctx, gameID, teamID, playerID, action)
	}
	return emptyGame(), nil
}

func (s *stubGameService) Undo(ctx context.Context, gameID int) (*models.Game, error) {
	if s.undo != nil {
		return s.undo(ctx, gameID)
	}
	return emptyGame(), nil
}

func (s *stubGameService) SubstituteIn(context.Context, int, int, int, *int) (*models.Game, error) {
	return emptyGame(), nil
}

func (s *stubGameService) SubstituteOut(context.Context, int, int, int) (*models.Game, error) {
	return emptyGame(), nil
}

func (s *stubGameService) Timer(ctx context.Context, gameID int, command services.TimerCommand, quarter *int) (*models.Game, error) {
	if s.timer != nil {
		return s.timer(ctx, gameID, command, quarter)
	}
	return emptyGame(), nil
}

func (s *stubGameService) Timeout(context.Context, int, int) (*models.Game, error) {
	return emptyGame(), nil
}

func (s *stubGameService) StartOvertime(context.Context, int) (*models.Game, error) {
	return emptyGame(), nil
}

func (s *stubGameService) Finalize(ctx context.Context, gameID int) (*models.Game, error) {
	if s.finalize != nil {
		return s.finalize(ctx, gameID)
	}
	return emptyGame(), nil
}

var _ services.GameService = (*stubGameService)(nil)

func newTestRouter(svc services.GameService) *chi.Mux {
	h := handlers.NewGameHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := chi.NewRouter()
	router.Get("/games/{gameID}", h.GetGame)
	router.Post("/games/{gameID}/teams/{teamID}/players/{playerID}/actions", h.ApplyAction)
	router.Post("/games/{gameID}/undo", h.Undo)
	router.Post("/games/{gameID}/timer", h.Timer)
	router.Post("/games/{gameID}/finish", h.FinishGame)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestApplyActionHandler(t *testing.T) {
	var gotAction models.ActionType
	svc := &stubGameService{
		applyAction: func(_ context.Context, gameID, teamID, playerID int, action models.ActionType) (*models.Game, error) {
			assert.Equal(t, 1, gameID)
			assert.Equal(t, 10, teamID)
			assert.Equal(t, 101, playerID)
			gotAction = action
			return emptyGame(), nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodPost,
		"/games/1/teams/10/players/101/actions", `{"action":"point2"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ActionPoint2, gotAction)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope, "game")
}

func TestApplyActionHandlerRejectsBadBody(t *testing.T) {
	router := newTestRouter(&stubGameService{})

	rec := doRequest(t, router, http.MethodPost,
		"/games/1/teams/10/players/101/actions", `{"action":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost,
		"/games/1/teams/10/players/101/actions", `{"unexpected":"point2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost,
		"/games/1/teams/10/players/101/actions", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApplyActionHandlerBadGameID(t *testing.T) {
	router := newTestRouter(&stubGameService{})

	rec := doRequest(t, router, http.MethodPost,
		"/games/abc/teams/10/players/101/actions", `{"action":"point2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimerHandlerRejectsUnknownCommand(t *testing.T) {
	router := newTestRouter(&stubGameService{})

	rec := doRequest(t, router, http.MethodPost, "/games/1/timer", `{"action":"pause"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// Ошибки сервисного слоя переводятся в коды HTTP единообразно для всех
// операций.
func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", services.ErrGameNotFound, http.StatusNotFound},
		{"undo window closed", services.ErrUndoNotAvailable, http.StatusConflict},
		{"finished", services.ErrGameFinished, http.StatusConflict},
		{"lost race", services.ErrConcurrencyConflict, http.StatusConflict},
		{"invalid action", services.ErrInvalidAction, http.StatusBadRequest},
		{"empty log", services.ErrNoActionsToUndo, http.StatusNotFound},
		{"failed finalization", services.ErrFinalizationFailed, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubGameService{
				undo: func(context.Context, int) (*models.Game, error) {
					return nil, tc.err
				},
			}
			router := newTestRouter(svc)

			rec := doRequest(t, router, http.MethodPost, "/games/1/undo", "")
			assert.Equal(t, tc.wantCode, rec.Code)

			var envelope map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Contains(t, envelope, "error")
		})
	}
}

// Завершение за аутентификацией: id вызывающего из токена попадает в лог
// вместе с id игры.
func TestFinishGameLogsActingUser(t *testing.T) {
	finalized := false
	svc := &stubGameService{
		finalize: func(_ context.Context, gameID int) (*models.Game, error) {
			assert.Equal(t, 1, gameID)
			finalized = true
			return emptyGame(), nil
		},
	}

	var logBuf bytes.Buffer
	h := handlers.NewGameHandler(svc, slog.New(slog.NewTextHandler(&logBuf, nil)))
	secret := []byte("test-secret")
	router := chi.NewRouter()
	router.With(middleware.Authenticator(secret)).Post("/games/{gameID}/finish", h.FinishGame)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/games/1/finish", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, finalized)
	assert.Contains(t, logBuf.String(), "user_id=42")
}

func TestGetGameHandler(t *testing.T) {
	svc := &stubGameService{
		get: func(_ context.Context, gameID int) (*models.GameDetail, error) {
			assert.Equal(t, 7, gameID)
			detail := &models.GameDetail{Game: emptyGame()}
			detail.Stats[0].Points = 42
			return detail, nil
		},
	}
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/games/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var detail models.GameDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 42, detail.Stats[0].Points)
}
