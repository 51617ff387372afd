package models

import "time"

// GameResult — итог завершённой игры. Создаётся ровно один раз транзакцией
// финализации и после этого не изменяется. При ничьей победитель и
// проигравший не записываются.
type GameResult struct {
	ID           int       `json:"id"`
	GameID       int       `json:"game_id"`
	TournamentID *int      `json:"tournament_id,omitempty"`
	TeamAScore   int       `json:"team_a_score"`
	TeamBScore   int       `json:"team_b_score"`
	WinnerTeamID *int      `json:"winner_team_id,omitempty"`
	LoserTeamID  *int      `json:"loser_team_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlayerStatRecord — исторический снапшот статистики игрока за одну игру,
// ключ (player_id, game_id). Пишется транзакцией финализации.
type PlayerStatRecord struct {
	PlayerID  int       `json:"player_id"`
	GameID    int       `json:"game_id"`
	Stats     StatLine  `json:"stats"`
	UpdatedAt time.Time `json:"updated_at"`
}
