package game

import "time"

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseStarting Phase = "starting"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "round-end"
	PhaseGameOver Phase = "game-over"
)

type ScoreEntry struct {
	Score int    `json:"score"`
	Name  string `json:"name"`
}

// PlayingInfo exists only while the phase is playing; every field is non-nil
// then and absent otherwise.
type PlayingInfo struct {
	DrawerID   string
	Word       string
	WordLength int
	RoundStart time.Time
	RoundEnd   time.Time
}

// RoundEndInfo records the absolute time the next phase change should fire so
// a restart re-arms the remaining delay instead of the full one.
type RoundEndInfo struct {
	LastWord         string
	NextTransitionAt time.Time
}

type GameOverInfo struct {
	Winners []string
}

// GameState is the discriminated game-phase value. The shared fields survive
// every phase; the per-phase structs are reachable only through the narrowing
// accessors and are nil outside their phase.
type GameState struct {
	phase Phase

	Scores        map[string]ScoreEntry
	UsedWords     map[string]struct{}
	DrawerOrder   []string
	CurrentRound  int // 1-based index into DrawerOrder
	TotalRounds   int
	EndAfterRound bool

	CorrectGuessers    map[string]struct{}
	RoundGuessers      map[string]struct{}
	RoundGuesserScores map[string]int

	playing  *PlayingInfo
	roundEnd *RoundEndInfo
	over     *GameOverInfo
}

func NewGameState() *GameState {
	return &GameState{
		phase:              PhaseLobby,
		Scores:             make(map[string]ScoreEntry),
		UsedWords:          make(map[string]struct{}),
		CorrectGuessers:    make(map[string]struct{}),
		RoundGuessers:      make(map[string]struct{}),
		RoundGuesserScores: make(map[string]int),
	}
}

func (g *GameState) Phase() Phase { return g.phase }

func (g *GameState) Playing() (*PlayingInfo, bool) {
	if g.phase == PhasePlaying {
		return g.playing, true
	}
	return nil, false
}

func (g *GameState) RoundEnd() (*RoundEndInfo, bool) {
	if g.phase == PhaseRoundEnd {
		return g.roundEnd, true
	}
	return nil, false
}

func (g *GameState) GameOver() (*GameOverInfo, bool) {
	if g.phase == PhaseGameOver {
		return g.over, true
	}
	return nil, false
}

func (g *GameState) resetRoundSets() {
	g.CorrectGuessers = make(map[string]struct{})
	g.RoundGuessers = make(map[string]struct{})
	g.RoundGuesserScores = make(map[string]int)
}

// Start moves lobby -> starting with a shuffled drawer order and fresh scores.
func (g *GameState) Start(order []string, names map[string]string) {
	if g.phase != PhaseLobby {
		return
	}
	g.phase = PhaseStarting
	g.DrawerOrder = order
	g.CurrentRound = 0
	g.TotalRounds = len(order)
	g.EndAfterRound = false
	g.UsedWords = make(map[string]struct{})
	g.Scores = make(map[string]ScoreEntry, len(order))
	for _, id := range order {
		g.Scores[id] = ScoreEntry{Name: names[id]}
	}
	g.resetRoundSets()
}

// BeginRound moves starting/round-end -> playing for the given round. Every
// connected non-drawer in eligible becomes a guesser for the round.
func (g *GameState) BeginRound(round int, drawerID, word string, start, end time.Time, eligible []string) {
	if g.phase != PhaseStarting && g.phase != PhaseRoundEnd {
		return
	}
	g.phase = PhasePlaying
	g.roundEnd = nil
	g.CurrentRound = round
	g.UsedWords[word] = struct{}{}
	g.resetRoundSets()
	for _, id := range eligible {
		if id != drawerID {
			g.RoundGuessers[id] = struct{}{}
		}
	}
	g.playing = &PlayingInfo{
		DrawerID:   drawerID,
		Word:       word,
		WordLength: len([]rune(word)),
		RoundStart: start,
		RoundEnd:   end,
	}
}

// AddLateJoiner backfills a player who connected mid-game: scores get a zero
// entry, and during playing the player becomes an eligible guesser without
// touching anyone else's round bookkeeping.
func (g *GameState) AddLateJoiner(p Player) {
	if g.phase == PhaseLobby || g.phase == PhaseGameOver {
		return
	}
	if _, ok := g.Scores[p.ID]; !ok {
		g.Scores[p.ID] = ScoreEntry{Name: p.Name}
	}
	if info, ok := g.Playing(); ok && p.ID != info.DrawerID {
		g.RoundGuessers[p.ID] = struct{}{}
	}
}

// RecordCorrectGuess credits a guesser. Returns false when the guess must not
// score (wrong phase, drawer, not eligible, or already counted).
func (g *GameState) RecordCorrectGuess(playerID string, score int) bool {
	info, ok := g.Playing()
	if !ok || playerID == info.DrawerID {
		return false
	}
	if _, eligible := g.RoundGuessers[playerID]; !eligible {
		return false
	}
	if _, done := g.CorrectGuessers[playerID]; done {
		return false
	}
	g.CorrectGuessers[playerID] = struct{}{}
	g.RoundGuesserScores[playerID] = score
	entry := g.Scores[playerID]
	entry.Score += score
	g.Scores[playerID] = entry
	return true
}

// AllGuessed reports whether every eligible guesser has guessed correctly.
func (g *GameState) AllGuessed() bool {
	if len(g.RoundGuessers) == 0 {
		return false
	}
	for id := range g.RoundGuessers {
		if _, ok := g.CorrectGuessers[id]; !ok {
			return false
		}
	}
	return true
}

// FinishRound moves playing -> round-end, paying the drawer's bonus, and
// returns it. nextTransitionAt must be persisted before any timer is armed.
func (g *GameState) FinishRound(bonusPerGuesser int, nextTransitionAt time.Time) int {
	info, ok := g.Playing()
	if !ok {
		return 0
	}
	bonus := DrawerBonus(bonusPerGuesser, len(g.CorrectGuessers))
	if bonus > 0 {
		entry := g.Scores[info.DrawerID]
		entry.Score += bonus
		g.Scores[info.DrawerID] = entry
	}
	g.phase = PhaseRoundEnd
	g.roundEnd = &RoundEndInfo{LastWord: info.Word, NextTransitionAt: nextTransitionAt}
	g.playing = nil
	return bonus
}

// Finish moves any phase to game-over and freezes the winners.
func (g *GameState) Finish() {
	if g.phase == PhaseGameOver {
		return
	}
	g.phase = PhaseGameOver
	g.playing = nil
	g.roundEnd = nil
	g.over = &GameOverInfo{Winners: ComputeWinners(g.Scores)}
}

// LeaveResult describes the state-machine consequences of a player leaving
// mid-game.
type LeaveResult struct {
	Removed        bool // player was in the drawer order
	ShouldEndRound bool // player was the active drawer
}

// HandleLeave applies the departure bookkeeping of an in-game player: round
// sets shrink, the fixed order shrinks, and the round index is adjusted so it
// keeps pointing at the correct next drawer. The removedIndex <= CurrentRound-1
// comparison is deliberate; see the leave scenario tests before changing it.
func (g *GameState) HandleLeave(playerID string) LeaveResult {
	res := LeaveResult{}
	if g.phase != PhasePlaying && g.phase != PhaseRoundEnd {
		return res
	}

	delete(g.CorrectGuessers, playerID)
	delete(g.RoundGuessers, playerID)

	if info, ok := g.Playing(); ok && info.DrawerID == playerID {
		res.ShouldEndRound = true
	}

	removedIndex := -1
	for i, id := range g.DrawerOrder {
		if id == playerID {
			removedIndex = i
			break
		}
	}
	if removedIndex < 0 {
		return res
	}
	res.Removed = true

	g.DrawerOrder = append(g.DrawerOrder[:removedIndex], g.DrawerOrder[removedIndex+1:]...)
	g.TotalRounds = len(g.DrawerOrder)
	if removedIndex <= g.CurrentRound-1 {
		g.CurrentRound--
		if g.CurrentRound < 1 {
			g.CurrentRound = 1
		}
	}
	if g.CurrentRound >= g.TotalRounds {
		g.EndAfterRound = true
	}
	return res
}
