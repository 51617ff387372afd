package models

import (
	"math"
	"strconv"
)

// StatKey идентифицирует одну статистику в леджере команды или игрока.
// Ключи фиксированы; единственное открытое семейство — поквартальные очки,
// которые строятся через QuarterKey.
type StatKey string

const (
	// Player counting stats.
	StatPTS  StatKey = "PTS"
	StatFGM  StatKey = "FGM"
	StatFGA  StatKey = "FGA"
	Stat2PM  StatKey = "2PM"
	Stat2PA  StatKey = "2PA"
	Stat3PM  StatKey = "3PM"
	Stat3PA  StatKey = "3PA"
	StatFTM  StatKey = "FTM"
	StatFTA  StatKey = "FTA"
	StatAST  StatKey = "AST"
	StatTO   StatKey = "TO"
	StatPF   StatKey = "PF"
	StatOREB StatKey = "OREB"
	StatDREB StatKey = "DREB"
	StatREB  StatKey = "REB"
	StatBLK  StatKey = "BLK"
	StatSTL  StatKey = "STL"

	// Signed and time-based stats.
	StatPlusMinus StatKey = "PM"
	StatMinutes   StatKey = "MIN"

	// Derived shooting percentages, recomputed after every made or missed shot.
	StatFTPercent StatKey = "FT_PERCENT"
	StatFGPercent StatKey = "FG_PERCENT"
	Stat3PPercent StatKey = "3P_PERCENT"

	// Team-side stats.
	StatScore    StatKey = "SCORE"
	StatTimeout  StatKey = "timeout"
	StatOvertime StatKey = "OT"

	// Clock bookkeeping scratch keys.
	StatStartTime StatKey = "startTime"
	StatTempMin   StatKey = "TEMPMIN"
)

// QuarterKey возвращает ключ поквартальных очков команды (Q1, Q2, ...).
func QuarterKey(quarter int) StatKey {
	return StatKey("Q" + strconv.Itoa(quarter))
}

// StatLine — леджер статистик одной сущности (команды или игрока в игре).
// Отсутствующий ключ читается как 0.
type StatLine map[StatKey]float64

// Get возвращает текущее значение ключа, 0 если ключ не записан.
func (s StatLine) Get(key StatKey) float64 {
	return s[key]
}

// Add прибавляет delta к значению ключа. Счётные статистики не могут уйти
// ниже нуля: это защитный пол при откате действия. Знаковые (PM) и
// служебные ключи полом не ограничиваются.
func (s StatLine) Add(key StatKey, delta float64) {
	v := s[key] + delta
	if v < 0 && isCountKey(key) {
		v = 0
	}
	s[key] = v
}

// SetPercentage пересчитывает процент попаданий по паре made/attempt и
// записывает его под percentKey. При нуле попыток процент равен 0.
func (s StatLine) SetPercentage(madeKey, attemptKey, percentKey StatKey) {
	attempts := s[attemptKey]
	if attempts <= 0 {
		s[percentKey] = 0
		return
	}
	s[percentKey] = Round2(s[madeKey] / attempts * 100)
}

// Delete удаляет ключ из леджера (используется для служебных ключей часов).
func (s StatLine) Delete(key StatKey) {
	delete(s, key)
}

// Clone возвращает независимую копию леджера.
func (s StatLine) Clone() StatLine {
	out := make(StatLine, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Round2 округляет значение до двух знаков после запятой.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isCountKey(key StatKey) bool {
	switch key {
	case StatPlusMinus, StatMinutes, StatOvertime, StatStartTime, StatTempMin,
		StatFTPercent, StatFGPercent, Stat3PPercent:
		return false
	}
	return true
}
