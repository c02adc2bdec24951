package game

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sketchroom/internal/config"
	"sketchroom/internal/store"
)

type envelope struct {
	packet ClientPacket
	from   *clientConn
}

type timerEvent struct {
	kind timerKind
}

type asyncNotice struct {
	conn    *clientConn
	message string
}

// RoomInfo is the public counters exposed by the front door.
type RoomInfo struct {
	Players int   `json:"players"`
	Strokes int   `json:"strokes"`
	Phase   Phase `json:"phase"`
}

// Room is the per-room coordinator. All mutable state below is owned by the
// actor loop in Run; nothing outside the loop may touch it. Other goroutines
// talk to the room exclusively through its channels.
type Room struct {
	id    string
	cfg   config.GameConfig
	log   zerolog.Logger
	now   func() time.Time
	rng   *rand.Rand
	words WordSource

	st       store.RoomStore
	strokesQ *store.Stream
	fillsQ   *store.Stream
	stateQ   *store.Stream
	chatQ    *store.Stream
	hostQ    *store.Stream

	registry    sessionRegistry
	game        *GameState
	strokes     []*Stroke
	fills       []*FillOperation
	chat        []ChatEntry
	hostID      string
	joinCounter int
	limits      map[string]*rateBuckets

	loaded  bool
	loading bool

	timers timerContainer

	inbox       chan envelope
	attach      chan *clientConn
	removals    chan *clientConn
	timerEvents chan timerEvent
	notices     chan asyncNotice
	infoReqs    chan chan RoomInfo

	stopped  chan struct{}
	stopOnce sync.Once
	onEmpty  func(roomID string)

	sendTasks []sendTask
}

type sendTask struct {
	to     *session
	packet ServerPacket
}

func NewRoom(id string, cfg config.GameConfig, st store.RoomStore, words WordSource, log zerolog.Logger, onEmpty func(string)) *Room {
	roomLog := log.With().Str("room", id).Logger()
	r := &Room{
		id:    id,
		cfg:   cfg,
		log:   roomLog,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		words: words,
		st:    st,

		game:   NewGameState(),
		limits: make(map[string]*rateBuckets),

		inbox:       make(chan envelope, 1024),
		attach:      make(chan *clientConn, 64),
		removals:    make(chan *clientConn, 64),
		timerEvents: make(chan timerEvent, 32),
		notices:     make(chan asyncNotice, 32),
		infoReqs:    make(chan chan RoomInfo, 16),

		stopped: make(chan struct{}),
		onEmpty: onEmpty,
	}
	r.strokesQ = store.NewStream(st, id, store.KeyStrokes, cfg.StrokeSaveDebounce, cfg.StoreRetryAttempts, cfg.StoreRetryBackoff, roomLog)
	r.fillsQ = store.NewStream(st, id, store.KeyFills, cfg.StrokeSaveDebounce, cfg.StoreRetryAttempts, cfg.StoreRetryBackoff, roomLog)
	r.stateQ = store.NewStream(st, id, store.KeyGameState, cfg.StrokeSaveDebounce, cfg.StoreRetryAttempts, cfg.StoreRetryBackoff, roomLog)
	r.chatQ = store.NewStream(st, id, store.KeyChatHistory, cfg.StrokeSaveDebounce, cfg.StoreRetryAttempts, cfg.StoreRetryBackoff, roomLog)
	r.hostQ = store.NewStream(st, id, store.KeyHostPlayerID, cfg.StrokeSaveDebounce, cfg.StoreRetryAttempts, cfg.StoreRetryBackoff, roomLog)
	return r
}

// Load performs the one-time cold-start rehydration: persisted strokes,
// fills, chat, host and game state are read back, and for a
// game interrupted mid-round the timers are re-armed from the persisted
// absolute target times. Guarded so a handler firing during rehydration can
// never re-enter it.
func (r *Room) Load(ctx context.Context) {
	if r.loaded || r.loading {
		return
	}
	r.loading = true
	defer func() {
		r.loading = false
		r.loaded = true
	}()

	r.loadJSON(ctx, store.KeyStrokes, &r.strokes)
	r.loadJSON(ctx, store.KeyFills, &r.fills)
	r.loadJSON(ctx, store.KeyChatHistory, &r.chat)

	var host string
	r.loadJSON(ctx, store.KeyHostPlayerID, &host)
	r.hostID = host

	if data, err := r.st.Get(ctx, r.id, store.KeyGameState); err == nil {
		r.game = DecodeGameState(data)
	} else if !errors.Is(err, store.ErrKeyNotFound) {
		r.log.Error().Err(err).Msg("failed to load game state; starting from lobby")
		r.game = NewGameState()
	}

	now := r.now()
	if info, ok := r.game.Playing(); ok {
		remaining := info.RoundEnd.Sub(now)
		if remaining <= 0 {
			r.log.Info().Msg("restored mid-round past its deadline; ending round")
			r.endRound("time")
		} else {
			r.armRoundTimers(remaining)
		}
	} else if info, ok := r.game.RoundEnd(); ok {
		remaining := info.NextTransitionAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		if r.nextTransitionIsGameOver() {
			r.timers.armGameOver(remaining, func() { r.postTimer(timerGameOver) })
		} else {
			r.timers.armNextRound(remaining, func() { r.postTimer(timerNextRound) })
		}
	}
	r.flush()
}

func (r *Room) loadJSON(ctx context.Context, key string, out any) {
	data, err := r.st.Get(ctx, r.id, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			r.log.Error().Err(err).Str("key", key).Msg("failed to load persisted value")
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("corrupt persisted value; ignoring")
	}
}

// Run is the actor loop. Every mutation of room state happens here, one
// event at a time.
func (r *Room) Run() {
	for {
		select {
		case env := <-r.inbox:
			r.dispatch(env)
		case c := <-r.attach:
			r.handleAttach(c)
		case c := <-r.removals:
			r.handleDetach(c)
		case ev := <-r.timerEvents:
			r.handleTimerEvent(ev)
		case n := <-r.notices:
			if s := r.registry.byConn(n.conn); s != nil {
				r.sendTo(s, MakePacketError(n.message))
			}
		case req := <-r.infoReqs:
			req <- RoomInfo{Players: r.registry.joinedCount(), Strokes: len(r.strokes), Phase: r.game.Phase()}
		case <-r.stopped:
			r.shutdown()
			return
		}
		r.flush()
	}
}

// Stop requests shutdown. Idempotent and non-blocking, so it is safe to call
// from the service while the loop is mid-event.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stopped) })
}

func (r *Room) shutdown() {
	r.timers.stopAll()
	for _, s := range r.registry.sessions {
		s.conn.close()
	}
	r.registry.sessions = nil
	// sockets queued while the loop was taking the stopped branch would
	// otherwise hang on a dead room
drain:
	for {
		select {
		case c := <-r.attach:
			c.close()
			c.socket.Close("room closed")
		case <-r.removals:
		default:
			break drain
		}
	}
	r.strokesQ.Close()
	r.fillsQ.Close()
	r.stateQ.Close()
	r.chatQ.Close()
	r.hostQ.Close()
	r.log.Info().Msg("room stopped")
}

// Attach hands a fresh socket to the actor. Pumps start inside the loop so
// no frame can be dispatched before the session is registered.
func (r *Room) Attach(socket NetworkSession) {
	select {
	case <-r.stopped:
		socket.Close("room closed")
		return
	default:
	}
	c := newClientConn(socket, r)
	select {
	case r.attach <- c:
	case <-r.stopped:
		socket.Close("room closed")
	}
}

// Info answers the front door's player/stroke counters.
func (r *Room) Info(ctx context.Context) (RoomInfo, bool) {
	resp := make(chan RoomInfo, 1)
	select {
	case r.infoReqs <- resp:
	case <-r.stopped:
		return RoomInfo{}, false
	case <-ctx.Done():
		return RoomInfo{}, false
	}
	select {
	case info := <-resp:
		return info, true
	case <-r.stopped:
		return RoomInfo{}, false
	case <-ctx.Done():
		return RoomInfo{}, false
	}
}

func (r *Room) requestRemove(c *clientConn) {
	select {
	case r.removals <- c:
	case <-r.stopped:
	}
}

func (r *Room) postTimer(kind timerKind) {
	select {
	case r.timerEvents <- timerEvent{kind: kind}:
	case <-r.stopped:
	}
}

func (r *Room) postNotice(c *clientConn, message string) {
	select {
	case r.notices <- asyncNotice{conn: c, message: message}:
	case <-r.stopped:
	default:
	}
}

// --- outbound ---

func (r *Room) sendTo(s *session, pkt ServerPacket) {
	r.sendTasks = append(r.sendTasks, sendTask{to: s, packet: pkt})
}

func (r *Room) broadcast(pkt ServerPacket) {
	for _, s := range r.registry.sessions {
		if s.joined() {
			r.sendTasks = append(r.sendTasks, sendTask{to: s, packet: pkt})
		}
	}
}

func (r *Room) broadcastExcept(except *session, pkt ServerPacket) {
	for _, s := range r.registry.sessions {
		if s != except && s.joined() {
			r.sendTasks = append(r.sendTasks, sendTask{to: s, packet: pkt})
		}
	}
}

// flush delivers accumulated send tasks. A send failure means the socket is
// closed or hopelessly behind; the connection is scheduled for removal, never
// treated as a broadcast error.
func (r *Room) flush() {
	tasks := r.sendTasks
	r.sendTasks = nil
	for _, t := range tasks {
		data, err := json.Marshal(t.packet)
		if err != nil {
			r.log.Error().Err(err).Str("type", t.packet.Type).Msg("failed to marshal packet")
			continue
		}
		if !t.to.conn.send(data) {
			r.requestRemove(t.to.conn)
		}
	}
}

// --- persistence ---

func (r *Room) persistState() {
	data, err := EncodeGameState(r.game)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode game state")
		return
	}
	r.stateQ.Write(data, nil)
}

func (r *Room) persistStrokes() {
	data, err := json.Marshal(r.strokes)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode strokes")
		return
	}
	r.strokesQ.ScheduleWrite(data)
}

func (r *Room) persistFills() {
	data, err := json.Marshal(r.fills)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode fills")
		return
	}
	r.fillsQ.Write(data, nil)
}

func (r *Room) persistChat() {
	data, err := json.Marshal(r.chat)
	if err != nil {
		return
	}
	r.chatQ.ScheduleWrite(data)
}

func (r *Room) persistHost() {
	data, err := json.Marshal(r.hostID)
	if err != nil {
		return
	}
	r.hostQ.Write(data, nil)
}

// --- rate limiting ---

type bucketKind int

const (
	bucketMessage bucketKind = iota
	bucketStroke
	bucketStrokeUpdate
)

func (r *Room) allow(playerID string, kind bucketKind) bool {
	b := r.limits[playerID]
	if b == nil {
		b = &rateBuckets{}
		r.limits[playerID] = b
	}
	now := r.now()
	var ok bool
	switch kind {
	case bucketMessage:
		b.message, ok = CheckRateLimit(b.message, r.cfg.MessageLimit, r.cfg.RateWindow, now)
	case bucketStroke:
		b.stroke, ok = CheckRateLimit(b.stroke, r.cfg.StrokeLimit, r.cfg.RateWindow, now)
	case bucketStrokeUpdate:
		b.strokeUpdate, ok = CheckRateLimit(b.strokeUpdate, r.cfg.StrokeUpdateLimit, r.cfg.RateWindow, now)
	}
	return ok
}
