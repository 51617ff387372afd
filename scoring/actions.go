// Package scoring содержит чистые функции скорингового движка: применение
// и откат игровых событий над агрегатом игры и управление игровыми часами.
// Пакет не знает про транспорт и персистентность — всё это слой services.
package scoring

import (
	"errors"

	"github.com/courtflow/venue-platform/models"
)

// ErrUnknownAction возвращается до любой мутации, если тип события не входит
// в таксономию.
var ErrUnknownAction = errors.New("unknown game action")

type statDelta struct {
	key   models.StatKey
	delta float64
}

// shotKind связывает счётчики попаданий/попыток с производным процентом.
type shotKind struct {
	made    models.StatKey
	attempt models.StatKey
	percent models.StatKey
}

var (
	freeThrow  = shotKind{models.StatFTM, models.StatFTA, models.StatFTPercent}
	fieldGoal  = shotKind{models.StatFGM, models.StatFGA, models.StatFGPercent}
	threePoint = shotKind{models.Stat3PM, models.Stat3PA, models.Stat3PPercent}
)

// actionEffect описывает полный эффект одного типа события. Таблица
// исчерпывающая: событие вне таблицы отклоняется.
type actionEffect struct {
	shot     *shotKind
	madeShot bool
	points   float64
	deltas   []statDelta
}

var actionEffects = map[models.ActionType]actionEffect{
	models.ActionPoint1: {shot: &freeThrow, madeShot: true, points: 1,
		deltas: []statDelta{{models.StatPTS, 1}}},
	models.ActionPoint2: {shot: &fieldGoal, madeShot: true, points: 2,
		deltas: []statDelta{{models.StatPTS, 2}}},
	models.ActionPoint3: {shot: &threePoint, madeShot: true, points: 3,
		deltas: []statDelta{{models.StatPTS, 3}}},

	models.ActionMiss1: {shot: &freeThrow},
	models.ActionMiss2: {shot: &fieldGoal},
	models.ActionMiss3: {shot: &threePoint},

	models.ActionAssist:   {deltas: []statDelta{{models.StatAST, 1}}},
	models.ActionTurnover: {deltas: []statDelta{{models.StatTO, 1}}},
	models.ActionFoul:     {deltas: []statDelta{{models.StatPF, 1}}},
	models.ActionBlock:    {deltas: []statDelta{{models.StatBLK, 1}}},
	models.ActionSteal:    {deltas: []statDelta{{models.StatSTL, 1}}},

	models.ActionOffRebound: {deltas: []statDelta{
		{models.StatOREB, 1}, {models.StatREB, 1}}},
	models.ActionDefRebound: {deltas: []statDelta{
		{models.StatDREB, 1}, {models.StatREB, 1}}},
}

// KnownAction сообщает, входит ли тип события в таксономию.
func KnownAction(action models.ActionType) bool {
	_, ok := actionEffects[action]
	return ok
}

// ApplyAction применяет событие к игроку стороны sideIdx. Очки поднимают
// счёт команды и текущую четверть, плюс-минус расходится по всем игрокам
// на площадке с обеих сторон.
func ApplyAction(g *models.Game, sideIdx, playerIdx int, action models.ActionType) error {
	return applyAction(g, sideIdx, playerIdx, action, +1)
}

// InvertAction применяет точную инверсию события — те же дельты со знаком
// минус, с защитным полом на счётных ключах и пересчётом процентов.
func InvertAction(g *models.Game, sideIdx, playerIdx int, action models.ActionType) error {
	return applyAction(g, sideIdx, playerIdx, action, -1)
}

func applyAction(g *models.Game, sideIdx, playerIdx int, action models.ActionType, sign float64) error {
	eff, ok := actionEffects[action]
	if !ok {
		return ErrUnknownAction
	}

	side := &g.TeamSides[sideIdx]
	player := &side.Players[playerIdx]
	EnsureLedgers(g)

	if eff.shot != nil {
		if eff.madeShot {
			player.Stats.Add(eff.shot.made, sign)
		}
		player.Stats.Add(eff.shot.attempt, sign)
	}
	for _, d := range eff.deltas {
		player.Stats.Add(d.key, d.delta*sign)
	}
	if eff.shot != nil {
		player.Stats.SetPercentage(eff.shot.made, eff.shot.attempt, eff.shot.percent)
	}

	if eff.points != 0 {
		points := eff.points * sign
		side.Stats.Add(models.QuarterKey(g.CurrentQuarter), points)
		side.Stats.Add(models.StatScore, points)

		opponent := &g.TeamSides[g.OpponentIndex(sideIdx)]
		addOnCourtPlusMinus(side, points)
		addOnCourtPlusMinus(opponent, -points)
	}
	return nil
}

// addOnCourtPlusMinus распределяет плюс-минус по игрокам на площадке.
func addOnCourtPlusMinus(side *models.TeamSide, points float64) {
	for i := range side.Players {
		if side.Players[i].OnCourt {
			side.Players[i].Stats.Add(models.StatPlusMinus, points)
		}
	}
}

// EnsureLedgers гарантирует, что у сторон и игроков есть леджеры. Снимает
// вопрос nil-карт для игр, созданных до заполнения составов.
func EnsureLedgers(g *models.Game) {
	for i := range g.TeamSides {
		if g.TeamSides[i].Stats == nil {
			g.TeamSides[i].Stats = models.StatLine{}
		}
		for j := range g.TeamSides[i].Players {
			if g.TeamSides[i].Players[j].Stats == nil {
				g.TeamSides[i].Players[j].Stats = models.StatLine{}
			}
		}
	}
}
