package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (r *Room) handleAttach(c *clientConn) {
	if r.registry.len() >= r.cfg.MaxPlayers {
		if data, err := json.Marshal(MakePacketError("room full")); err == nil {
			c.socket.Write(data)
		}
		c.close()
		c.socket.Close("room full")
		return
	}
	r.registry.add(c)
	go c.readPump()
	go c.writePump()
}

func (r *Room) handleDetach(c *clientConn) {
	s := r.registry.remove(c)
	if s == nil || s.closed {
		// repeated close events for one socket are expected
		return
	}
	s.closed = true
	c.close()

	if !s.joined() {
		r.maybeEvict()
		return
	}
	p := *s.player
	delete(r.limits, p.ID)
	r.log.Info().Str("player", p.ID).Str("name", p.Name).Msg("player left")

	r.broadcast(MakePacketPlayerLeft(p))
	r.broadcast(MakePacketSystemMessage(p.Name + " left the room"))

	if r.hostID == p.ID {
		r.hostID = ""
		for _, other := range r.registry.sessions {
			if other.joined() {
				r.hostID = other.player.ID
				break
			}
		}
		r.persistHost()
		if next := r.registry.byPlayerID(r.hostID); next != nil {
			r.broadcast(MakePacketHostChange(r.hostID))
			r.broadcast(MakePacketSystemMessage(next.player.Name + " is now the host"))
		}
	}

	phase := r.game.Phase()
	if phase == PhasePlaying || phase == PhaseRoundEnd {
		res := r.game.HandleLeave(p.ID)
		switch {
		case r.registry.joinedCount() < r.cfg.MinPlayers:
			r.finishGame()
		case res.ShouldEndRound:
			r.endRound("drawer-left")
		case phase == PhasePlaying && r.game.AllGuessed():
			r.endRound("all-guessed")
		default:
			r.persistState()
		}
	}

	r.maybeEvict()
}

func (r *Room) maybeEvict() {
	if r.registry.len() == 0 && r.onEmpty != nil {
		r.onEmpty(r.id)
	}
}

func (r *Room) dispatch(env envelope) {
	s := r.registry.byConn(env.from)
	if s == nil {
		return
	}

	switch env.packet.Type {
	case MsgJoin:
		var d JoinData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleJoin(s, d)
		}
	case MsgChat:
		var d ChatData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleChat(s, d)
		}
	case MsgStroke:
		var d StrokeData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleStroke(s, d)
		}
	case MsgStrokeUpdate:
		var d StrokeUpdateData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleStrokeUpdate(s, d)
		}
	case MsgUndoStroke:
		var d UndoStrokeData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleUndoStroke(s, d)
		}
	case MsgFill:
		var d FillData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleFill(s, d)
		}
	case MsgUndoFill:
		var d UndoFillData
		if json.Unmarshal(env.packet.Data, &d) == nil {
			r.handleUndoFill(s, d)
		}
	case MsgClear:
		r.handleClear(s)
	case MsgStartGame:
		r.handleStartGame(s)
	case MsgResetGame:
		r.handleResetGame(s)
	default:
		r.log.Debug().Str("type", env.packet.Type).Msg("unknown message type dropped")
	}
}

func (r *Room) handleJoin(s *session, d JoinData) {
	if s.joined() {
		return
	}
	name, ok := sanitizeName(d.Name, r.cfg.MaxNameLength)
	if !ok {
		r.sendTo(s, MakePacketError("invalid name"))
		return
	}

	p := Player{
		ID:    uuid.NewString(),
		Name:  name,
		Color: paletteColor(r.joinCounter),
	}
	r.joinCounter++
	s.player = &p

	// a restored host id with no live session is vacant; player ids are
	// fresh per join, so a crashed host can never reclaim the stored id
	if r.hostID == "" || r.registry.byPlayerID(r.hostID) == nil {
		r.hostID = p.ID
		r.persistHost()
	}

	if phase := r.game.Phase(); phase != PhaseLobby && phase != PhaseGameOver {
		r.game.AddLateJoiner(p)
		r.persistState()
	}

	snapshot := InitSnapshot{
		RoomID:  r.id,
		You:     p,
		HostID:  r.hostID,
		Players: r.registry.players(),
		Strokes: r.strokes,
		Fills:   r.fills,
		Chat:    r.chat,
		Game:    viewOf(r.game),
	}
	if info, ok := r.game.Playing(); ok && info.DrawerID == p.ID {
		snapshot.Word = info.Word
	}
	r.sendTo(s, MakePacketInit(snapshot))

	r.broadcastExcept(s, MakePacketPlayerJoined(p))
	r.broadcastExcept(s, MakePacketSystemMessage(name+" joined the room"))
	r.log.Info().Str("player", p.ID).Str("name", name).Msg("player joined")
}

func (r *Room) handleChat(s *session, d ChatData) {
	if !s.joined() {
		return
	}
	if !r.allow(s.player.ID, bucketMessage) {
		r.sendTo(s, MakePacketError("slow down"))
		return
	}
	content, ok := sanitizeChat(d.Content, r.cfg.MaxChatLength)
	if !ok {
		return
	}

	if info, playing := r.game.Playing(); playing {
		isDrawer := s.player.ID == info.DrawerID
		_, alreadyCorrect := r.game.CorrectGuessers[s.player.ID]

		if !isDrawer && !alreadyCorrect && strings.EqualFold(strings.TrimSpace(content), info.Word) {
			now := r.now()
			score := GuessScore(r.cfg.BaseGuessScore, info.RoundEnd, now, r.cfg.RoundDuration)
			if r.game.RecordCorrectGuess(s.player.ID, score) {
				r.persistState()
				r.broadcast(MakePacketCorrectGuess(CorrectGuessData{
					PlayerID: s.player.ID,
					Name:     s.player.Name,
					Score:    score,
				}))
				if r.game.AllGuessed() {
					r.endRound("all-guessed")
				}
				return
			}
		}

		// never let the drawer or a finished guesser leak the answer
		if (isDrawer || alreadyCorrect) &&
			strings.Contains(normalizeForMatch(content), normalizeForMatch(info.Word)) {
			return
		}
	}

	entry := ChatEntry{
		PlayerID: s.player.ID,
		Name:     s.player.Name,
		Content:  content,
		SentAt:   r.now().UnixMilli(),
	}
	r.chat = append(r.chat, entry)
	if len(r.chat) > r.cfg.ChatHistoryMax {
		r.chat = r.chat[len(r.chat)-r.cfg.ChatHistoryMax:]
	}
	r.persistChat()
	r.broadcast(MakePacketChat(entry))
}

// canDraw gates canvas mutations: during a round only the drawer may draw,
// between games anyone may.
func (r *Room) canDraw(playerID string) bool {
	switch r.game.Phase() {
	case PhasePlaying:
		info, _ := r.game.Playing()
		return info.DrawerID == playerID
	case PhaseLobby, PhaseGameOver:
		return true
	default:
		return false
	}
}

func (r *Room) handleStroke(s *session, d StrokeData) {
	if !s.joined() || !r.canDraw(s.player.ID) {
		return
	}
	if !r.allow(s.player.ID, bucketMessage) || !r.allow(s.player.ID, bucketStroke) {
		r.sendTo(s, MakePacketError("drawing too fast"))
		return
	}
	stroke := d.Stroke
	if len(stroke.Points) == 0 {
		return
	}
	if stroke.ID == "" {
		stroke.ID = uuid.NewString()
	}
	stroke.PlayerID = s.player.ID
	if stroke.Size <= 0 {
		stroke.Size = 1
	} else if stroke.Size > 100 {
		stroke.Size = 100
	}

	copied := stroke
	r.strokes = append(r.strokes, &copied)
	r.persistStrokes()
	r.broadcastExcept(s, MakePacketStroke(&copied))
}

func (r *Room) handleStrokeUpdate(s *session, d StrokeUpdateData) {
	if !s.joined() || !r.canDraw(s.player.ID) {
		return
	}
	if !r.allow(s.player.ID, bucketStrokeUpdate) {
		// high frequency path: drop silently
		return
	}
	for _, stroke := range r.strokes {
		if stroke.ID == d.StrokeID {
			if stroke.PlayerID != s.player.ID {
				return
			}
			stroke.Points = append(stroke.Points, d.Point)
			r.persistStrokes()
			r.broadcastExcept(s, MakePacketStrokeUpdate(d.StrokeID, d.Point))
			return
		}
	}
}

func (r *Room) handleUndoStroke(s *session, d UndoStrokeData) {
	if !s.joined() {
		return
	}
	for i, stroke := range r.strokes {
		if stroke.ID == d.StrokeID {
			if stroke.PlayerID != s.player.ID {
				return
			}
			r.strokes = append(r.strokes[:i], r.strokes[i+1:]...)
			r.persistStrokes()
			r.broadcast(MakePacketStrokeRemoved(d.StrokeID))
			return
		}
	}
}

func (r *Room) handleFill(s *session, d FillData) {
	if !s.joined() || !r.canDraw(s.player.ID) {
		return
	}
	if !r.allow(s.player.ID, bucketStroke) {
		r.sendTo(s, MakePacketError("drawing too fast"))
		return
	}
	fill := &FillOperation{
		ID:        uuid.NewString(),
		PlayerID:  s.player.ID,
		X:         d.X,
		Y:         d.Y,
		Color:     d.Color,
		Timestamp: r.now().UnixMilli(),
	}
	r.fills = append(r.fills, fill)
	r.persistFills()
	r.broadcastExcept(s, MakePacketFill(fill))
}

func (r *Room) handleUndoFill(s *session, d UndoFillData) {
	if !s.joined() {
		return
	}
	for i, fill := range r.fills {
		if fill.ID == d.FillID {
			if fill.PlayerID != s.player.ID {
				return
			}
			r.fills = append(r.fills[:i], r.fills[i+1:]...)
			r.persistFills()
			r.broadcast(MakePacketFillRemoved(d.FillID))
			return
		}
	}
}

func (r *Room) handleClear(s *session) {
	if !s.joined() || !r.canDraw(s.player.ID) {
		return
	}
	r.strokes = nil
	r.fills = nil
	r.broadcast(MakePacketClear())

	requester := s.conn
	r.strokesQ.Delete(func(err error) {
		if err != nil {
			r.postNotice(requester, "failed to clear canvas")
		}
	})
	r.fillsQ.Delete(func(err error) {
		if err != nil {
			r.postNotice(requester, "failed to clear canvas")
		}
	})
}

func (r *Room) handleStartGame(s *session) {
	if !s.joined() || s.player.ID != r.hostID {
		return
	}
	if r.game.Phase() != PhaseLobby {
		return
	}
	players := r.registry.players()
	if len(players) < r.cfg.MinPlayers {
		r.sendTo(s, MakePacketError(fmt.Sprintf("need at least %d players", r.cfg.MinPlayers)))
		return
	}

	order := make([]string, len(players))
	names := make(map[string]string, len(players))
	for i, p := range players {
		order[i] = p.ID
		names[p.ID] = p.Name
	}
	r.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	r.game.Start(order, names)
	r.broadcast(MakePacketGameStarted(order))
	r.log.Info().Strs("order", order).Msg("game started")

	drawerID, round, ok := NextDrawer(order, 0, r.registry.connectedIDs())
	if !ok {
		r.finishGame()
		return
	}
	r.startRound(round, drawerID)
}

func (r *Room) handleResetGame(s *session) {
	if !s.joined() || s.player.ID != r.hostID {
		return
	}
	if r.game.Phase() != PhaseGameOver {
		return
	}
	r.timers.stopAll()
	r.game = NewGameState()
	r.strokes = nil
	r.fills = nil
	r.persistState()
	r.strokesQ.Delete(nil)
	r.fillsQ.Delete(nil)
	r.broadcast(MakePacketGameReset())
	r.log.Info().Msg("game reset to lobby")
}

// --- round flow ---

func (r *Room) startRound(round int, drawerID string) {
	// new round, new canvas
	r.strokes = nil
	r.fills = nil
	r.broadcast(MakePacketClear())
	r.strokesQ.Delete(nil)
	r.fillsQ.Delete(nil)

	word := r.words.Pick(r.game.UsedWords)
	if word == "" {
		r.log.Error().Msg("word source returned nothing; ending game")
		r.finishGame()
		return
	}

	now := r.now()
	end := now.Add(r.cfg.RoundDuration)

	eligible := make([]string, 0, r.registry.joinedCount())
	for id := range r.registry.connectedIDs() {
		eligible = append(eligible, id)
	}
	r.game.BeginRound(round, drawerID, word, now, end, eligible)
	r.persistState()

	r.armRoundTimers(r.cfg.RoundDuration)

	data := RoundStartData{
		Round:        round,
		TotalRounds:  r.game.TotalRounds,
		DrawerID:     drawerID,
		WordLength:   len([]rune(word)),
		RoundEndTime: end.UnixMilli(),
	}
	for _, s := range r.registry.sessions {
		if !s.joined() {
			continue
		}
		pkt := data
		if s.player.ID == drawerID {
			pkt.Word = word
		}
		r.sendTo(s, MakePacketRoundStart(pkt))
	}
	r.log.Info().Int("round", round).Str("drawer", drawerID).Msg("round started")
}

func (r *Room) armRoundTimers(remaining time.Duration) {
	r.timers.armRoundEnd(remaining, func() { r.postTimer(timerRoundEnd) })
	r.timers.startTick(func() { r.postTimer(timerTickBroadcast) })
}

func (r *Room) endRound(reason string) {
	info, ok := r.game.Playing()
	if !ok {
		return
	}
	r.timers.stopRoundEnd()
	r.timers.stopTick()

	now := r.now()
	gameOverNext := r.nextRoundWouldEndGame()
	delay := r.cfg.RoundEndDelay
	if gameOverNext {
		delay = r.cfg.GameOverDelay
	}
	at := now.Add(delay)

	word := info.Word
	roundScores := r.game.RoundGuesserScores
	bonus := r.game.FinishRound(r.cfg.DrawerBonus, at)

	// the transition target must be durable before the timer exists
	r.persistState()
	if gameOverNext {
		r.timers.armGameOver(delay, func() { r.postTimer(timerGameOver) })
	} else {
		r.timers.armNextRound(delay, func() { r.postTimer(timerNextRound) })
	}

	r.broadcast(MakePacketRoundEnd(RoundEndData{
		Word:        word,
		Reason:      reason,
		RoundScores: roundScores,
		DrawerBonus: bonus,
		Scores:      r.game.Scores,
	}))
	r.log.Info().Str("reason", reason).Str("word", word).Msg("round ended")
}

// nextRoundWouldEndGame reports whether, from the current round, there is no
// further playable round.
func (r *Room) nextRoundWouldEndGame() bool {
	if r.game.EndAfterRound {
		return true
	}
	_, _, ok := NextDrawer(r.game.DrawerOrder, r.game.CurrentRound, r.registry.connectedIDs())
	return !ok
}

// nextTransitionIsGameOver is the restore-time variant of the same decision.
// Rehydration runs before any socket attaches, so it reads only the persisted
// schedule; connectivity is re-checked when the timer fires.
func (r *Room) nextTransitionIsGameOver() bool {
	return r.game.EndAfterRound || r.game.CurrentRound >= len(r.game.DrawerOrder)
}

func (r *Room) advanceAfterRoundEnd() {
	if _, ok := r.game.RoundEnd(); !ok {
		return
	}
	if r.registry.joinedCount() < r.cfg.MinPlayers {
		r.finishGame()
		return
	}
	if r.game.EndAfterRound {
		r.finishGame()
		return
	}
	drawerID, round, ok := NextDrawer(r.game.DrawerOrder, r.game.CurrentRound, r.registry.connectedIDs())
	if !ok {
		r.finishGame()
		return
	}
	r.startRound(round, drawerID)
}

func (r *Room) finishGame() {
	r.timers.stopAll()
	r.game.Finish()
	r.persistState()
	info, _ := r.game.GameOver()
	r.broadcast(MakePacketGameOver(GameOverData{
		FinalScores: r.game.Scores,
		Winners:     info.Winners,
	}))
	r.log.Info().Strs("winners", info.Winners).Msg("game over")
}

func (r *Room) handleTimerEvent(ev timerEvent) {
	switch ev.kind {
	case timerRoundEnd:
		if info, ok := r.game.Playing(); ok && !r.now().Before(info.RoundEnd) {
			r.endRound("time")
		}
	case timerTickBroadcast:
		info, ok := r.game.Playing()
		if !ok {
			return
		}
		remaining := info.RoundEnd.Sub(r.now())
		if remaining <= 0 {
			return
		}
		r.broadcast(MakePacketTick(int(remaining.Round(time.Second) / time.Second)))
	case timerNextRound, timerGameOver:
		r.advanceAfterRoundEnd()
	}
}
