package scoring

import (
	"time"

	"github.com/courtflow/venue-platform/models"
)

// SummarizeSide собирает сводку стороны для отображения: суммы счётных
// статистик по игрокам, командный счёт и проценты бросков. При работающих
// часах минуты игроков на площадке проецируются на момент now, в леджер
// ничего не пишется.
func SummarizeSide(side *models.TeamSide, clockRunning bool, now time.Time) models.TeamSummary {
	sum := models.TeamSummary{
		TeamID:  side.TeamID,
		Name:    side.Name,
		LogoURL: side.LogoURL,
		Players: len(side.Players),
		Points:  int(side.Stats.Get(models.StatScore)),
	}

	var ftm, fta, fgm, fga, tpm, tpa float64
	for i := range side.Players {
		stats := side.Players[i].Stats
		ftm += stats.Get(models.StatFTM)
		fta += stats.Get(models.StatFTA)
		fgm += stats.Get(models.StatFGM)
		fga += stats.Get(models.StatFGA)
		tpm += stats.Get(models.Stat3PM)
		tpa += stats.Get(models.Stat3PA)

		sum.OffRebounds += int(stats.Get(models.StatOREB))
		sum.DefRebounds += int(stats.Get(models.StatDREB))
		sum.Assists += int(stats.Get(models.StatAST))
		sum.Turnovers += int(stats.Get(models.StatTO))
		sum.Fouls += int(stats.Get(models.StatPF))
		sum.Blocks += int(stats.Get(models.StatBLK))
		sum.Steals += int(stats.Get(models.StatSTL))
		sum.PlusMinus += int(stats.Get(models.StatPlusMinus))

		minutes := stats.Get(models.StatMinutes)
		if clockRunning {
			if startMs := stats.Get(models.StatStartTime); startMs > 0 {
				minutes += elapsedMinutes(time.UnixMilli(int64(startMs)), now)
			}
		}
		sum.Minutes += minutes
	}

	sum.Rebounds = sum.OffRebounds + sum.DefRebounds
	sum.Minutes = models.Round2(sum.Minutes)
	sum.FreeThrowPct = percentage(ftm, fta)
	sum.FieldGoalPct = percentage(fgm, fga)
	sum.ThreePointPct = percentage(tpm, tpa)
	return sum
}

func percentage(made, attempts float64) float64 {
	if attempts <= 0 {
		return 0
	}
	return models.Round2(made / attempts * 100)
}
