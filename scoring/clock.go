package scoring

import (
	"time"

	"github.com/courtflow/venue-platform/models"
)

// Часы игры двухсостоянийные: Stopped и Running. Прошедшее время не тикает
// фоновой задачей — оно считается дискретными дельтами в момент остановки,
// поэтому повторные stop/resume внутри четверти складываются аддитивно.
//
// Для каждого игрока на площадке в леджере держится служебный ключ
// startTime (unix-миллисекунды момента запуска). На остановке дельта
// now-startTime в минутах падает в MIN, ключ снимается.

// StartClock запускает часы на указанной четверти.
func StartClock(g *models.Game, quarter int, now time.Time) {
	g.CurrentQuarter = quarter
	resumeClock(g, now)
}

// ResumeClock запускает часы, не трогая номер четверти.
func ResumeClock(g *models.Game, now time.Time) {
	resumeClock(g, now)
}

func resumeClock(g *models.Game, now time.Time) {
	EnsureLedgers(g)
	g.ClockRunning = true
	startedAt := now
	g.ClockStartedAt = &startedAt
	for i := range g.TeamSides {
		for j := range g.TeamSides[i].Players {
			p := &g.TeamSides[i].Players[j]
			if p.OnCourt {
				p.Stats[models.StatStartTime] = float64(now.UnixMilli())
			}
		}
	}
}

// StopClock останавливает часы: каждому игроку с записанным startTime
// прибавляет прошедшие минуты к MIN, накопленный овертайм складывает в OT
// обеих сторон.
func StopClock(g *models.Game, now time.Time) {
	EnsureLedgers(g)
	for i := range g.TeamSides {
		for j := range g.TeamSides[i].Players {
			FoldPlayerMinutes(&g.TeamSides[i].Players[j], now)
		}
	}
	if g.OvertimeStartedAt != nil {
		otMinutes := elapsedMinutes(*g.OvertimeStartedAt, now)
		for i := range g.TeamSides {
			g.TeamSides[i].Stats.Add(models.StatOvertime, otMinutes)
		}
		g.OvertimeStartedAt = nil
	}
	g.ClockRunning = false
	g.ClockStartedAt = nil
}

// IncreaseQuarterMinutes удлиняет четверть на минуту. Работает в любом
// состоянии часов.
func IncreaseQuarterMinutes(g *models.Game) {
	g.QuarterMinutes++
}

// DecreaseQuarterMinutes укорачивает четверть на минуту, не ниже нуля.
func DecreaseQuarterMinutes(g *models.Game) {
	if g.QuarterMinutes > 0 {
		g.QuarterMinutes--
	}
}

// PlayerCheckIn выводит игрока на площадку. При работающих часах у игрока
// начинается отсчёт времени на площадке.
func PlayerCheckIn(p *models.PlayerEntry, clockRunning bool, now time.Time) {
	if p.Stats == nil {
		p.Stats = models.StatLine{}
	}
	p.OnCourt = true
	if clockRunning {
		p.Stats[models.StatStartTime] = float64(now.UnixMilli())
	}
}

// PlayerCheckOut уводит игрока с площадки, складывая недосчитанные минуты.
func PlayerCheckOut(p *models.PlayerEntry, now time.Time) {
	FoldPlayerMinutes(p, now)
	p.OnCourt = false
}

// FoldPlayerMinutes переносит время с startTime в MIN и снимает ключ.
// Игрок без startTime не затрагивается.
func FoldPlayerMinutes(p *models.PlayerEntry, now time.Time) {
	if p.Stats == nil {
		return
	}
	startMs, ok := p.Stats[models.StatStartTime]
	if !ok || startMs <= 0 {
		return
	}
	started := time.UnixMilli(int64(startMs))
	p.Stats.Add(models.StatMinutes, elapsedMinutes(started, now))
	p.Stats.Delete(models.StatStartTime)
}

func elapsedMinutes(from, to time.Time) float64 {
	minutes := to.Sub(from).Minutes()
	if minutes < 0 {
		return 0
	}
	return models.Round2(minutes)
}
