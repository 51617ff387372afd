package models

// TeamSummary — производная сводка по стороне игры для отображения:
// суммы счётных статистик по игрокам плюс проценты бросков. Считается на
// чтении, в леджер не пишется.
type TeamSummary struct {
	TeamID      int     `json:"team_id"`
	Name        string  `json:"team_name"`
	LogoURL     *string `json:"team_logo,omitempty"`
	Players     int     `json:"total_players"`
	Points      int     `json:"PTS"`
	Rebounds    int     `json:"REB"`
	OffRebounds int     `json:"OREB"`
	DefRebounds int     `json:"DREB"`
	Assists     int     `json:"AST"`
	Turnovers   int     `json:"TO"`
	Fouls       int     `json:"PF"`
	Blocks      int     `json:"BLK"`
	Steals      int     `json:"STL"`
	PlusMinus   int     `json:"PM"`
	Minutes     float64 `json:"MIN"`

	FieldGoalPct  float64 `json:"FG_PERCENTAGE"`
	FreeThrowPct  float64 `json:"FT_PERCENTAGE"`
	ThreePointPct float64 `json:"3P_PERCENTAGE"`
}

// GameDetail — агрегат игры вместе с посчитанными сводками обеих сторон.
type GameDetail struct {
	Game  *Game          `json:"game"`
	Stats [2]TeamSummary `json:"game_stats"`
}
