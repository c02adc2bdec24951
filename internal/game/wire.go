package game

import "encoding/json"

// Client -> room message types.
const (
	MsgJoin         = "join"
	MsgStroke       = "stroke"
	MsgStrokeUpdate = "stroke-update"
	MsgUndoStroke   = "undo-stroke"
	MsgUndoFill     = "undo-fill"
	MsgFill         = "fill"
	MsgClear        = "clear"
	MsgChat         = "chat"
	MsgStartGame    = "start-game"
	MsgResetGame    = "reset-game"
)

// Room -> client message types.
const (
	MsgInit          = "init"
	MsgPlayerJoined  = "player-joined"
	MsgPlayerLeft    = "player-left"
	MsgHostChange    = "host-change"
	MsgStrokeRemoved = "stroke-removed"
	MsgFillRemoved   = "fill-removed"
	MsgSystemMessage = "system-message"
	MsgGameStarted   = "game-started"
	MsgRoundStart    = "round-start"
	MsgRoundEnd      = "round-end"
	MsgGameOver      = "game-over"
	MsgCorrectGuess  = "correct-guess"
	MsgTick          = "tick"
	MsgGameReset     = "game-reset"
	MsgError         = "error"
)

// ClientPacket is the envelope of every inbound frame. Data holds the
// type-specific payload.
type ClientPacket struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type JoinData struct {
	Name string `json:"name"`
}

type StrokeData struct {
	Stroke Stroke `json:"stroke"`
}

type StrokeUpdateData struct {
	StrokeID string `json:"strokeId"`
	Point    Point  `json:"point"`
}

type UndoStrokeData struct {
	StrokeID string `json:"strokeId"`
}

type UndoFillData struct {
	FillID string `json:"fillId"`
}

type FillData struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

type ChatData struct {
	Content string `json:"content"`
}

// ServerPacket is the envelope of every outbound frame.
type ServerPacket struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// GameStateView is the client-safe projection of GameState used in snapshots.
// The current word never appears here; the drawer receives it through its
// round-start packet only.
type GameStateView struct {
	Phase            Phase                 `json:"phase"`
	Scores           map[string]ScoreEntry `json:"scores"`
	DrawerOrder      []string              `json:"drawerOrder,omitempty"`
	CurrentRound     int                   `json:"currentRound,omitempty"`
	TotalRounds      int                   `json:"totalRounds,omitempty"`
	CurrentDrawerID  string                `json:"currentDrawerId,omitempty"`
	WordLength       int                   `json:"wordLength,omitempty"`
	RoundEndTime     int64                 `json:"roundEndTime,omitempty"`
	NextTransitionAt int64                 `json:"nextTransitionAt,omitempty"`
	CorrectGuessers  []string              `json:"correctGuessers,omitempty"`
	Winners          []string              `json:"winners,omitempty"`
}

func viewOf(g *GameState) GameStateView {
	v := GameStateView{
		Phase:           g.Phase(),
		Scores:          g.Scores,
		DrawerOrder:     g.DrawerOrder,
		CurrentRound:    g.CurrentRound,
		TotalRounds:     g.TotalRounds,
		CorrectGuessers: sortedKeys(g.CorrectGuessers),
	}
	if info, ok := g.Playing(); ok {
		v.CurrentDrawerID = info.DrawerID
		v.WordLength = info.WordLength
		v.RoundEndTime = info.RoundEnd.UnixMilli()
	}
	if info, ok := g.RoundEnd(); ok {
		v.NextTransitionAt = info.NextTransitionAt.UnixMilli()
	}
	if info, ok := g.GameOver(); ok {
		v.Winners = info.Winners
	}
	return v
}

type InitSnapshot struct {
	RoomID  string           `json:"roomId"`
	You     Player           `json:"you"`
	HostID  string           `json:"hostId"`
	Players []Player         `json:"players"`
	Strokes []*Stroke        `json:"strokes"`
	Fills   []*FillOperation `json:"fills"`
	Chat    []ChatEntry      `json:"chat"`
	Game    GameStateView    `json:"game"`
	Word    string           `json:"word,omitempty"` // set only when you are the drawer
}

type RoundStartData struct {
	Round        int    `json:"round"`
	TotalRounds  int    `json:"totalRounds"`
	DrawerID     string `json:"drawerId"`
	WordLength   int    `json:"wordLength"`
	RoundEndTime int64  `json:"roundEndTime"`
	Word         string `json:"word,omitempty"` // drawer only
}

type RoundEndData struct {
	Word        string                `json:"word"`
	Reason      string                `json:"reason"`
	RoundScores map[string]int        `json:"roundScores"`
	DrawerBonus int                   `json:"drawerBonus"`
	Scores      map[string]ScoreEntry `json:"scores"`
}

type GameOverData struct {
	FinalScores map[string]ScoreEntry `json:"finalScores"`
	Winners     []string              `json:"winners"`
}

type CorrectGuessData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

func MakePacketInit(s InitSnapshot) ServerPacket {
	return ServerPacket{Type: MsgInit, Data: s}
}

func MakePacketPlayerJoined(p Player) ServerPacket {
	return ServerPacket{Type: MsgPlayerJoined, Data: p}
}

func MakePacketPlayerLeft(p Player) ServerPacket {
	return ServerPacket{Type: MsgPlayerLeft, Data: p}
}

func MakePacketHostChange(hostID string) ServerPacket {
	return ServerPacket{Type: MsgHostChange, Data: map[string]string{"hostId": hostID}}
}

func MakePacketStroke(s *Stroke) ServerPacket {
	return ServerPacket{Type: MsgStroke, Data: s}
}

func MakePacketStrokeUpdate(strokeID string, p Point) ServerPacket {
	return ServerPacket{Type: MsgStrokeUpdate, Data: StrokeUpdateData{StrokeID: strokeID, Point: p}}
}

func MakePacketStrokeRemoved(strokeID string) ServerPacket {
	return ServerPacket{Type: MsgStrokeRemoved, Data: map[string]string{"strokeId": strokeID}}
}

func MakePacketFill(f *FillOperation) ServerPacket {
	return ServerPacket{Type: MsgFill, Data: f}
}

func MakePacketFillRemoved(fillID string) ServerPacket {
	return ServerPacket{Type: MsgFillRemoved, Data: map[string]string{"fillId": fillID}}
}

func MakePacketClear() ServerPacket {
	return ServerPacket{Type: MsgClear}
}

func MakePacketChat(e ChatEntry) ServerPacket {
	return ServerPacket{Type: MsgChat, Data: e}
}

func MakePacketSystemMessage(content string) ServerPacket {
	return ServerPacket{Type: MsgSystemMessage, Data: map[string]string{"content": content}}
}

func MakePacketGameStarted(order []string) ServerPacket {
	return ServerPacket{Type: MsgGameStarted, Data: map[string]any{"drawerOrder": order}}
}

func MakePacketRoundStart(d RoundStartData) ServerPacket {
	return ServerPacket{Type: MsgRoundStart, Data: d}
}

func MakePacketRoundEnd(d RoundEndData) ServerPacket {
	return ServerPacket{Type: MsgRoundEnd, Data: d}
}

func MakePacketGameOver(d GameOverData) ServerPacket {
	return ServerPacket{Type: MsgGameOver, Data: d}
}

func MakePacketCorrectGuess(d CorrectGuessData) ServerPacket {
	return ServerPacket{Type: MsgCorrectGuess, Data: d}
}

func MakePacketTick(remainingSeconds int) ServerPacket {
	return ServerPacket{Type: MsgTick, Data: map[string]int{"timeRemaining": remainingSeconds}}
}

func MakePacketGameReset() ServerPacket {
	return ServerPacket{Type: MsgGameReset}
}

func MakePacketError(message string) ServerPacket {
	return ServerPacket{Type: MsgError, Data: map[string]string{"message": message}}
}
