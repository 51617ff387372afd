package models

// Справочные сущности платформы. Ядру скоринга они нужны только в момент
// создания игры — для снапшотов имён, логотипов и номеров. CRUD по ним
// живёт вне этого модуля.

// Team представляет постоянную команду площадки.
type Team struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	SportID int     `json:"sport_id" db:"sport_id"`
	LogoURL *string `json:"logo_url,omitempty" db:"logo_url"`

	Players []Player `json:"players,omitempty" db:"-"`
}

// Player представляет игрока ростера команды.
type Player struct {
	ID       int    `json:"id" db:"id"`
	TeamID   int    `json:"team_id" db:"team_id"`
	Name     string `json:"name" db:"name"`
	Number   *int   `json:"no,omitempty" db:"no"`
	Position *int   `json:"position,omitempty" db:"position"`
}

// Court представляет площадку, на которой проводится игра.
type Court struct {
	ID       int     `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Location *string `json:"location,omitempty" db:"location"`
}

// Sport представляет вид спорта.
type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Tournament — минимальная проекция турнира для привязки игры.
type Tournament struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	SportID int    `json:"sport_id" db:"sport_id"`
}
