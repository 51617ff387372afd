package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/venue-platform/models"
	"github.com/courtflow/venue-platform/scoring"
)

// newGame собирает игру с двумя сторонами по три игрока; первые два на
// площадке.
func newGame() *models.Game {
	game := &models.Game{
		Status:         models.GameStatusRunning,
		CurrentQuarter: 1,
	}
	for i, teamID := range [2]int{10, 20} {
		side := models.TeamSide{
			TeamID: teamID,
			Name:   "Team",
			Stats:  models.StatLine{},
		}
		for j := 0; j < 3; j++ {
			side.Players = append(side.Players, models.PlayerEntry{
				PlayerID: teamID*100 + j,
				OnCourt:  j < 2,
				Stats:    models.StatLine{},
			})
		}
		game.TeamSides[i] = side
	}
	return game
}

func TestApplyActionThreePointer(t *testing.T) {
	game := newGame()

	err := scoring.ApplyAction(game, 0, 0, models.ActionPoint3)
	require.NoError(t, err)

	scorer := game.TeamSides[0].Players[0].Stats
	assert.Equal(t, 3.0, scorer.Get(models.StatPTS))
	assert.Equal(t, 1.0, scorer.Get(models.Stat3PM))
	assert.Equal(t, 1.0, scorer.Get(models.Stat3PA))
	assert.Equal(t, 100.0, scorer.Get(models.Stat3PPercent))

	assert.Equal(t, 3.0, game.TeamSides[0].Stats.Get(models.StatScore))
	assert.Equal(t, 3.0, game.TeamSides[0].Stats.Get(models.QuarterKey(1)))

	// Плюс-минус расходится только по игрокам на площадке, с обеих сторон.
	assert.Equal(t, 3.0, game.TeamSides[0].Players[0].Stats.Get(models.StatPlusMinus))
	assert.Equal(t, 3.0, game.TeamSides[0].Players[1].Stats.Get(models.StatPlusMinus))
	assert.Equal(t, 0.0, game.TeamSides[0].Players[2].Stats.Get(models.StatPlusMinus))
	assert.Equal(t, -3.0, game.TeamSides[1].Players[0].Stats.Get(models.StatPlusMinus))
	assert.Equal(t, -3.0, game.TeamSides[1].Players[1].Stats.Get(models.StatPlusMinus))
	assert.Equal(t, 0.0, game.TeamSides[1].Players[2].Stats.Get(models.StatPlusMinus))
}

func TestApplyActionMissedShotCountsAttemptOnly(t *testing.T) {
	game := newGame()

	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionMiss2))

	stats := game.TeamSides[0].Players[0].Stats
	assert.Equal(t, 0.0, stats.Get(models.StatFGM))
	assert.Equal(t, 1.0, stats.Get(models.StatFGA))
	assert.Equal(t, 0.0, stats.Get(models.StatFGPercent))
	assert.Equal(t, 0.0, game.TeamSides[0].Stats.Get(models.StatScore))
}

func TestApplyActionPercentRecompute(t *testing.T) {
	game := newGame()

	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionPoint1))
	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionMiss1))
	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionPoint1))

	stats := game.TeamSides[0].Players[0].Stats
	assert.Equal(t, 2.0, stats.Get(models.StatFTM))
	assert.Equal(t, 3.0, stats.Get(models.StatFTA))
	assert.Equal(t, 66.67, stats.Get(models.StatFTPercent))
}

func TestApplyActionRebounds(t *testing.T) {
	game := newGame()

	require.NoError(t, scoring.ApplyAction(game, 1, 0, models.ActionOffRebound))
	require.NoError(t, scoring.ApplyAction(game, 1, 0, models.ActionDefRebound))

	stats := game.TeamSides[1].Players[0].Stats
	assert.Equal(t, 1.0, stats.Get(models.StatOREB))
	assert.Equal(t, 1.0, stats.Get(models.StatDREB))
	assert.Equal(t, 2.0, stats.Get(models.StatREB))
}

func TestApplyActionUnknown(t *testing.T) {
	game := newGame()

	err := scoring.ApplyAction(game, 0, 0, models.ActionType("dunk"))
	assert.ErrorIs(t, err, scoring.ErrUnknownAction)
	assert.False(t, scoring.KnownAction(models.ActionType("dunk")))
}

// Каждое событие таксономии должно иметь точную инверсию: применение и
// откат возвращают агрегат к исходному состоянию.
func TestInvertActionRestoresState(t *testing.T) {
	actions := []models.ActionType{
		models.ActionPoint1, models.ActionPoint2, models.ActionPoint3,
		models.ActionMiss1, models.ActionMiss2, models.ActionMiss3,
		models.ActionAssist, models.ActionTurnover, models.ActionFoul,
		models.ActionBlock, models.ActionSteal,
		models.ActionOffRebound, models.ActionDefRebound,
	}

	for _, action := range actions {
		t.Run(string(action), func(t *testing.T) {
			game := newGame()

			require.NoError(t, scoring.ApplyAction(game, 0, 1, action))
			require.NoError(t, scoring.InvertAction(game, 0, 1, action))

			for i := range game.TeamSides {
				for key, value := range game.TeamSides[i].Stats {
					assert.Equal(t, 0.0, value, "team stat %s", key)
				}
				for j := range game.TeamSides[i].Players {
					for key, value := range game.TeamSides[i].Players[j].Stats {
						assert.Equal(t, 0.0, value, "player %d stat %s", j, key)
					}
				}
			}
		})
	}
}

func TestPlusMinusZeroSum(t *testing.T) {
	game := newGame()

	require.NoError(t, scoring.ApplyAction(game, 0, 0, models.ActionPoint2))
	require.NoError(t, scoring.ApplyAction(game, 1, 1, models.ActionPoint3))

	var total float64
	for i := range game.TeamSides {
		for j := range game.TeamSides[i].Players {
			total += game.TeamSides[i].Players[j].Stats.Get(models.StatPlusMinus)
		}
	}
	assert.Equal(t, 0.0, total)
}
