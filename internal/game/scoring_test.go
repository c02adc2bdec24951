package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuessScore(t *testing.T) {
	t.Parallel()
	duration := 80 * time.Second
	end := time.UnixMilli(0).Add(duration)

	testCases := []struct {
		desc     string
		now      time.Time
		expected int
	}{
		{"instant guess earns 1.5x", time.UnixMilli(0), 150},
		{"half the round left earns 1.25x", end.Add(-40 * time.Second), 125},
		{"guess at the deadline earns base", end, 100},
		{"past the deadline clamps to base", end.Add(5 * time.Second), 100},
		{"before the round start clamps to 1.5x", time.UnixMilli(0).Add(-time.Minute), 150},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expected, GuessScore(100, end, tC.now, duration))
		})
	}
}

func TestGuessScore_ZeroDuration(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 100, GuessScore(100, time.Now(), time.Now(), 0))
}

func TestDrawerBonus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, DrawerBonus(50, 0))
	assert.Equal(t, 50, DrawerBonus(50, 1))
	assert.Equal(t, 150, DrawerBonus(50, 3))
}

func TestComputeWinners(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		desc     string
		scores   map[string]ScoreEntry
		expected []string
	}{
		{
			desc:     "single winner",
			scores:   map[string]ScoreEntry{"a": {Score: 300}, "b": {Score: 150}},
			expected: []string{"a"},
		},
		{
			desc:     "tie produces multiple winners",
			scores:   map[string]ScoreEntry{"a": {Score: 200}, "b": {Score: 200}, "c": {Score: 50}},
			expected: []string{"a", "b"},
		},
		{
			desc:     "all zero still produces winners",
			scores:   map[string]ScoreEntry{"a": {}, "b": {}},
			expected: []string{"a", "b"},
		},
		{
			desc:     "empty scores produce none",
			scores:   map[string]ScoreEntry{},
			expected: nil,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.ElementsMatch(t, tC.expected, ComputeWinners(tC.scores))
		})
	}
}
