package models

import "time"

// GameStatus представляет статусы живой игры, соответствующие ENUM в БД.
type GameStatus string

const (
	GameStatusNotStarted GameStatus = "not_started"
	GameStatusRunning    GameStatus = "running"
	GameStatusStopped    GameStatus = "stopped"
	GameStatusFinished   GameStatus = "finished"
)

// ActionType — тип игрового события из таксономии скоринга.
type ActionType string

const (
	ActionPoint1     ActionType = "point1"
	ActionPoint2     ActionType = "point2"
	ActionPoint3     ActionType = "point3"
	ActionMiss1      ActionType = "miss1"
	ActionMiss2      ActionType = "miss2"
	ActionMiss3      ActionType = "miss3"
	ActionAssist     ActionType = "AST"
	ActionTurnover   ActionType = "TO"
	ActionFoul       ActionType = "FOUL"
	ActionBlock      ActionType = "BLK"
	ActionSteal      ActionType = "STL"
	ActionOffRebound ActionType = "REB_OFEN"
	ActionDefRebound ActionType = "REB_DEFE"
)

// PlayerEntry — игрок в составе стороны на конкретную игру. Имя и номер —
// снапшоты на момент создания игры, чтобы переименования ростера не меняли
// историю.
type PlayerEntry struct {
	PlayerID int      `json:"player_id"`
	Name     string   `json:"name"`
	Number   *int     `json:"no,omitempty"`
	Position *int     `json:"position,omitempty"`
	OnCourt  bool     `json:"is_in_court"`
	Stats    StatLine `json:"stats"`
}

// TeamSide — одна из двух сторон игры. Ссылается на постоянную команду, но
// живёт внутри агрегата игры со своим леджером и составом.
type TeamSide struct {
	TeamID  int           `json:"team_id"`
	Name    string        `json:"team_name"`
	LogoURL *string       `json:"team_logo,omitempty"`
	Stats   StatLine      `json:"stats"`
	Players []PlayerEntry `json:"players"`
}

// GameAction — запись журнала событий игры. Журнал принадлежит агрегату:
// только append при действии и снятие последней записи при undo.
type GameAction struct {
	TeamID    int        `json:"team_id"`
	PlayerID  int        `json:"player_id"`
	Action    ActionType `json:"action"`
	AppliedAt time.Time  `json:"time"`
}

// Game — агрегат живой игры. Все мутации идут через services.GameService
// как атомарный read-modify-write с оптимистической версией.
type Game struct {
	ID           int     `json:"id"`
	TournamentID *int    `json:"tournament_id,omitempty"`
	SportID      int     `json:"sport_id"`
	SportName    string  `json:"sports_type"`
	CourtID      int     `json:"court_id"`
	CourtName    string  `json:"court_name"`
	GameDate     string  `json:"game_date"`
	GameTime     string  `json:"game_time"`
	Details      *string `json:"details,omitempty"`

	Status            GameStatus `json:"status"`
	CurrentQuarter    int        `json:"current_quarter"`
	QuarterMinutes    int        `json:"quarter_minutes"`
	ClockRunning      bool       `json:"clock_running"`
	ClockStartedAt    *time.Time `json:"clock_started_at,omitempty"`
	OvertimeStartedAt *time.Time `json:"overtime_started_at,omitempty"`
	UndoAvailable     bool       `json:"undo_available"`

	TeamSides [2]TeamSide  `json:"teams"`
	ActionLog []GameAction `json:"game_action"`

	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SideIndex возвращает индекс стороны по id команды.
func (g *Game) SideIndex(teamID int) (int, bool) {
	for i := range g.TeamSides {
		if g.TeamSides[i].TeamID == teamID {
			return i, true
		}
	}
	return 0, false
}

// OpponentIndex возвращает индекс противоположной стороны.
func (g *Game) OpponentIndex(sideIdx int) int {
	return 1 - sideIdx
}

// PlayerIndex возвращает индекс игрока внутри стороны.
func (s *TeamSide) PlayerIndex(playerID int) (int, bool) {
	for i := range s.Players {
		if s.Players[i].PlayerID == playerID {
			return i, true
		}
	}
	return 0, false
}
