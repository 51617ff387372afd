package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/venue-platform/models"
	"github.com/courtflow/venue-platform/scoring"
)

func TestSummarizeSide(t *testing.T) {
	game := newGame()

	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionPoint2))
	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionMiss2))
	require.NoError(t, scoring.ApplyAction(game, 0, 1, models.ActionPoint3))
	require.NoError(t, scoring.ApplyAction(game, 0, 1, models.ActionAssist))
	require.NoError(t, scoring.ApplyAction(game, 0, 2, models.ActionDefRebound))

	sum := scoring.SummarizeSide(&game.TeamSides[0], false, time.Now())

	assert.Equal(t, 10, sum.TeamID)
	assert.Equal(t, 3, sum.Players)
	assert.Equal(t, 5, sum.Points)
	assert.Equal(t, 1, sum.Assists)
	assert.Equal(t, 1, sum.DefRebounds)
	assert.Equal(t, 1, sum.Rebounds)
	assert.Equal(t, 50.0, sum.FieldGoalPct)
	assert.Equal(t, 100.0, sum.ThreePointPct)
	assert.Equal(t, 0.0, sum.FreeThrowPct)
}

// При работающих часах минуты игроков на площадке проецируются на момент
// запроса, без записи в леджер.
func TestSummarizeSideLiveMinutes(t *testing.T) {
	game := newGame()
	start := time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)
	scoring.StartClock(game, 1, start)

	sum := scoring.SummarizeSide(&game.TeamSides[0], true, start.Add(6*time.Minute))
	assert.Equal(t, 12.0, sum.Minutes, "two players on court, six minutes each")

	// Леджер не затронут: minutes остаются в startTime до остановки.
	assert.Equal(t, 0.0, game.TeamSides[0].Players[0].Stats.Get(models.StatMinutes))
}
