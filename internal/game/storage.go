package game

import (
	"encoding/json"
	"sort"
	"time"
)

// storedGameState is the flattened storage form of GameState: sets become
// sorted arrays, maps become entry lists, times become unix milliseconds.
type storedGameState struct {
	Phase              string              `json:"phase"`
	Scores             []storedScore       `json:"scores"`
	UsedWords          []string            `json:"usedWords"`
	DrawerOrder        []string            `json:"drawerOrder"`
	CurrentRound       int                 `json:"currentRound"`
	TotalRounds        int                 `json:"totalRounds"`
	EndAfterRound      bool                `json:"endAfterRound"`
	CorrectGuessers    []string            `json:"correctGuessers"`
	RoundGuessers      []string            `json:"roundGuessers"`
	RoundGuesserScores []storedRoundScore  `json:"roundGuesserScores"`

	// playing only
	CurrentDrawerID string `json:"currentDrawerId,omitempty"`
	CurrentWord     string `json:"currentWord,omitempty"`
	WordLength      int    `json:"wordLength,omitempty"`
	RoundStartTime  int64  `json:"roundStartTime,omitempty"`
	RoundEndTime    int64  `json:"roundEndTime,omitempty"`

	// round-end only
	LastWord         string `json:"lastWord,omitempty"`
	NextTransitionAt int64  `json:"nextTransitionAt,omitempty"`

	// game-over only
	Winners []string `json:"winners,omitempty"`
}

type storedScore struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Name     string `json:"name"`
}

type storedRoundScore struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// EncodeGameState serializes a state for the durable store.
func EncodeGameState(g *GameState) ([]byte, error) {
	s := storedGameState{
		Phase:         string(g.phase),
		UsedWords:     sortedKeys(g.UsedWords),
		DrawerOrder:   append([]string(nil), g.DrawerOrder...),
		CurrentRound:  g.CurrentRound,
		TotalRounds:   g.TotalRounds,
		EndAfterRound: g.EndAfterRound,

		CorrectGuessers: sortedKeys(g.CorrectGuessers),
		RoundGuessers:   sortedKeys(g.RoundGuessers),
	}
	for _, id := range sortedScoreKeys(g.Scores) {
		e := g.Scores[id]
		s.Scores = append(s.Scores, storedScore{PlayerID: id, Score: e.Score, Name: e.Name})
	}
	for _, id := range sortedIntKeys(g.RoundGuesserScores) {
		s.RoundGuesserScores = append(s.RoundGuesserScores, storedRoundScore{PlayerID: id, Score: g.RoundGuesserScores[id]})
	}
	if info, ok := g.Playing(); ok {
		s.CurrentDrawerID = info.DrawerID
		s.CurrentWord = info.Word
		s.WordLength = info.WordLength
		s.RoundStartTime = info.RoundStart.UnixMilli()
		s.RoundEndTime = info.RoundEnd.UnixMilli()
	}
	if info, ok := g.RoundEnd(); ok {
		s.LastWord = info.LastWord
		s.NextTransitionAt = info.NextTransitionAt.UnixMilli()
	}
	if info, ok := g.GameOver(); ok {
		s.Winners = append([]string(nil), info.Winners...)
	}
	return json.Marshal(s)
}

// DecodeGameState restores a state from its storage form. Any structural
// violation (unknown phase, playing without drawer/word/times, round-end
// without a transition time, unparseable JSON) falls back to a fresh lobby
// instead of failing.
func DecodeGameState(data []byte) *GameState {
	var s storedGameState
	if err := json.Unmarshal(data, &s); err != nil {
		return NewGameState()
	}

	g := NewGameState()
	g.DrawerOrder = append([]string(nil), s.DrawerOrder...)
	g.CurrentRound = s.CurrentRound
	g.TotalRounds = s.TotalRounds
	g.EndAfterRound = s.EndAfterRound
	for _, w := range s.UsedWords {
		g.UsedWords[w] = struct{}{}
	}
	for _, e := range s.Scores {
		g.Scores[e.PlayerID] = ScoreEntry{Score: e.Score, Name: e.Name}
	}
	for _, id := range s.CorrectGuessers {
		g.CorrectGuessers[id] = struct{}{}
	}
	for _, id := range s.RoundGuessers {
		g.RoundGuessers[id] = struct{}{}
	}
	for _, e := range s.RoundGuesserScores {
		g.RoundGuesserScores[e.PlayerID] = e.Score
	}

	switch Phase(s.Phase) {
	case PhaseLobby, PhaseStarting:
		// starting is transient; a persisted one restores as lobby.
		g.phase = PhaseLobby
	case PhasePlaying:
		if s.CurrentDrawerID == "" || s.CurrentWord == "" || s.RoundStartTime == 0 || s.RoundEndTime == 0 {
			return NewGameState()
		}
		g.phase = PhasePlaying
		g.playing = &PlayingInfo{
			DrawerID:   s.CurrentDrawerID,
			Word:       s.CurrentWord,
			WordLength: s.WordLength,
			RoundStart: time.UnixMilli(s.RoundStartTime),
			RoundEnd:   time.UnixMilli(s.RoundEndTime),
		}
		if g.playing.WordLength == 0 {
			g.playing.WordLength = len([]rune(s.CurrentWord))
		}
	case PhaseRoundEnd:
		if s.NextTransitionAt == 0 {
			return NewGameState()
		}
		g.phase = PhaseRoundEnd
		g.roundEnd = &RoundEndInfo{
			LastWord:         s.LastWord,
			NextTransitionAt: time.UnixMilli(s.NextTransitionAt),
		}
	case PhaseGameOver:
		g.phase = PhaseGameOver
		g.over = &GameOverInfo{Winners: append([]string(nil), s.Winners...)}
	default:
		return NewGameState()
	}
	return g
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedScoreKeys(m map[string]ScoreEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedIntKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
