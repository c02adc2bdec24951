package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextDrawer(t *testing.T) {
	t.Parallel()
	order := []string{"p1", "p2", "p3", "p4"}
	all := map[string]bool{"p1": true, "p2": true, "p3": true, "p4": true}

	testCases := []struct {
		desc          string
		currentRound  int
		connected     map[string]bool
		expectedID    string
		expectedRound int
		expectedOK    bool
	}{
		{
			desc:         "first round picks the first in order",
			currentRound: 0, connected: all,
			expectedID: "p1", expectedRound: 1, expectedOK: true,
		},
		{
			desc:         "advances one slot",
			currentRound: 1, connected: all,
			expectedID: "p2", expectedRound: 2, expectedOK: true,
		},
		{
			desc:         "skips disconnected drawers",
			currentRound: 1, connected: map[string]bool{"p1": true, "p4": true},
			expectedID: "p4", expectedRound: 4, expectedOK: true,
		},
		{
			desc:         "exhausted order",
			currentRound: 4, connected: all,
			expectedID: "", expectedRound: 5, expectedOK: false,
		},
		{
			desc:         "everyone after current disconnected",
			currentRound: 2, connected: map[string]bool{"p1": true, "p2": true},
			expectedID: "", expectedRound: 5, expectedOK: false,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			id, round, ok := NextDrawer(order, tC.currentRound, tC.connected)
			assert.Equal(t, tC.expectedID, id)
			assert.Equal(t, tC.expectedRound, round)
			assert.Equal(t, tC.expectedOK, ok)
		})
	}
}

func TestNextDrawer_EmptyOrder(t *testing.T) {
	t.Parallel()
	id, round, ok := NextDrawer(nil, 0, map[string]bool{})
	assert.Equal(t, "", id)
	assert.Equal(t, 1, round)
	assert.False(t, ok)
}
