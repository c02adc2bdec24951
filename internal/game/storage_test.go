package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameState_EncodeDecode_Playing(t *testing.T) {
	t.Parallel()
	g := startedGame(t, []string{"p1", "p2", "p3"})
	beginRound(t, g, 2, "p2", "volcano", []string{"p1", "p2", "p3"})
	assert.True(t, g.RecordCorrectGuess("p1", 130))

	data, err := EncodeGameState(g)
	require.NoError(t, err)

	restored := DecodeGameState(data)
	assert.Equal(t, PhasePlaying, restored.Phase())

	info, ok := restored.Playing()
	require.True(t, ok)
	assert.Equal(t, "p2", info.DrawerID)
	assert.Equal(t, "volcano", info.Word)
	assert.Equal(t, 7, info.WordLength)
	assert.Equal(t, time.UnixMilli(0).Add(80*time.Second), info.RoundEnd)

	assert.Equal(t, g.DrawerOrder, restored.DrawerOrder)
	assert.Equal(t, 2, restored.CurrentRound)
	assert.Equal(t, 3, restored.TotalRounds)
	assert.Contains(t, restored.CorrectGuessers, "p1")
	assert.Contains(t, restored.RoundGuessers, "p3")
	assert.Equal(t, 130, restored.RoundGuesserScores["p1"])
	assert.Equal(t, 130, restored.Scores["p1"].Score)
	assert.Equal(t, "name-p1", restored.Scores["p1"].Name)
	assert.Contains(t, restored.UsedWords, "volcano")
}

func TestGameState_EncodeDecode_RoundEnd(t *testing.T) {
	t.Parallel()
	g := startedGame(t, []string{"p1", "p2"})
	beginRound(t, g, 1, "p1", "kite", []string{"p1", "p2"})
	at := time.UnixMilli(500000)
	g.FinishRound(50, at)

	data, err := EncodeGameState(g)
	require.NoError(t, err)

	restored := DecodeGameState(data)
	info, ok := restored.RoundEnd()
	require.True(t, ok)
	assert.Equal(t, "kite", info.LastWord)
	assert.Equal(t, at, info.NextTransitionAt)
}

func TestGameState_EncodeDecode_GameOver(t *testing.T) {
	t.Parallel()
	g := startedGame(t, []string{"p1", "p2"})
	beginRound(t, g, 1, "p1", "kite", []string{"p1", "p2"})
	g.RecordCorrectGuess("p2", 100)
	g.Finish()

	data, err := EncodeGameState(g)
	require.NoError(t, err)

	restored := DecodeGameState(data)
	info, ok := restored.GameOver()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"p2"}, info.Winners)
}

func TestDecodeGameState_FallsBackToLobby(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		desc string
		data string
	}{
		{"unparseable", `{{{`},
		{"unknown phase", `{"phase":"intermission"}`},
		{"playing without a drawer", `{"phase":"playing","currentWord":"kite","roundStartTime":1,"roundEndTime":2}`},
		{"playing without a word", `{"phase":"playing","currentDrawerId":"p1","roundStartTime":1,"roundEndTime":2}`},
		{"playing without times", `{"phase":"playing","currentDrawerId":"p1","currentWord":"kite"}`},
		{"round-end without a transition time", `{"phase":"round-end","lastWord":"kite"}`},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			g := DecodeGameState([]byte(tC.data))
			assert.Equal(t, PhaseLobby, g.Phase())
			assert.Empty(t, g.DrawerOrder)
		})
	}
}

func TestDecodeGameState_StartingRestoresAsLobby(t *testing.T) {
	t.Parallel()
	g := DecodeGameState([]byte(`{"phase":"starting","drawerOrder":["p1","p2"],"totalRounds":2}`))
	assert.Equal(t, PhaseLobby, g.Phase())
	assert.Equal(t, []string{"p1", "p2"}, g.DrawerOrder)
}
