package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatLineAddFloorsCountKeys(t *testing.T) {
	line := StatLine{}

	line.Add(StatPTS, 2)
	line.Add(StatPTS, -5)
	assert.Equal(t, 0.0, line.Get(StatPTS), "counting stats must not go negative")

	// Плюс-минус знаковый, пол на него не распространяется.
	line.Add(StatPlusMinus, -3)
	assert.Equal(t, -3.0, line.Get(StatPlusMinus))
}

func TestStatLineGetMissingKey(t *testing.T) {
	line := StatLine{}
	assert.Equal(t, 0.0, line.Get(StatAST))
}

func TestStatLineSetPercentage(t *testing.T) {
	line := StatLine{}

	line.Add(StatFGM, 1)
	line.Add(StatFGA, 3)
	line.SetPercentage(StatFGM, StatFGA, StatFGPercent)
	assert.Equal(t, 33.33, line.Get(StatFGPercent))

	line.Add(StatFGM, -1)
	line.Add(StatFGA, -3)
	line.SetPercentage(StatFGM, StatFGA, StatFGPercent)
	assert.Equal(t, 0.0, line.Get(StatFGPercent), "zero attempts mean zero percent")
}

func TestStatLineClone(t *testing.T) {
	line := StatLine{StatPTS: 10, StatAST: 4}
	clone := line.Clone()

	clone.Add(StatPTS, 5)
	assert.Equal(t, 10.0, line.Get(StatPTS), "clone must be independent")
	assert.Equal(t, 15.0, clone.Get(StatPTS))
}

func TestQuarterKey(t *testing.T) {
	assert.Equal(t, StatKey("Q1"), QuarterKey(1))
	assert.Equal(t, StatKey("Q5"), QuarterKey(5))
}
