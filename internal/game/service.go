package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sketchroom/internal/config"
	"sketchroom/internal/store"
)

// ErrRoomNotFound is returned for rooms that were never created.
var ErrRoomNotFound = errors.New("room not found")

// Service owns the live rooms. Rooms come into being lazily on first
// attach and are evicted once their last socket detaches; a later attach
// rehydrates the same room from the store.
type Service struct {
	cfg   config.GameConfig
	st    store.RoomStore
	words WordSource
	log   zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewService(cfg config.GameConfig, st store.RoomStore, words WordSource, log zerolog.Logger) *Service {
	return &Service{
		cfg:   cfg,
		st:    st,
		words: words,
		log:   log,
		rooms: make(map[string]*Room),
	}
}

// CreateRoom registers a new room id. The creation marker is written
// synchronously so the caller can share the id only once it is durable.
func (s *Service) CreateRoom(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.st.Put(ctx, id, store.KeyCreated, []byte("true")); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	s.log.Info().Str("room", id).Msg("room created")
	return id, nil
}

// Exists reports whether the room id was ever created.
func (s *Service) Exists(ctx context.Context, roomID string) (bool, error) {
	s.mu.RLock()
	_, live := s.rooms[roomID]
	s.mu.RUnlock()
	if live {
		return true, nil
	}
	_, err := s.st.Get(ctx, roomID, store.KeyCreated)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Info returns the room's public counters. A live room answers from its
// loop; a dormant one answers from the store without being woken.
func (s *Service) Info(ctx context.Context, roomID string) (RoomInfo, error) {
	s.mu.RLock()
	r := s.rooms[roomID]
	s.mu.RUnlock()

	if r != nil {
		if info, ok := r.Info(ctx); ok {
			return info, nil
		}
	}

	ok, err := s.Exists(ctx, roomID)
	if err != nil {
		return RoomInfo{}, err
	}
	if !ok {
		return RoomInfo{}, ErrRoomNotFound
	}

	info := RoomInfo{Phase: PhaseLobby}
	if data, err := s.st.Get(ctx, roomID, store.KeyStrokes); err == nil {
		var strokes []*Stroke
		if json.Unmarshal(data, &strokes) == nil {
			info.Strokes = len(strokes)
		}
	}
	if data, err := s.st.Get(ctx, roomID, store.KeyGameState); err == nil {
		info.Phase = DecodeGameState(data).Phase()
	}
	return info, nil
}

// Attach hands a fresh socket to the room, waking it from the store if it
// is not currently live.
func (s *Service) Attach(ctx context.Context, roomID string, socket NetworkSession) error {
	ok, err := s.Exists(ctx, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomNotFound
	}

	s.mu.Lock()
	r := s.rooms[roomID]
	if r == nil {
		r = NewRoom(roomID, s.cfg, s.st, s.words, s.log, s.evict)
		r.Load(ctx)
		s.rooms[roomID] = r
		go r.Run()
	}
	s.mu.Unlock()

	r.Attach(socket)
	return nil
}

// evict is called from inside a room's loop once its last socket is gone.
// The stop happens outside the map lock; Stop is non-blocking so ordering
// with in-flight attaches is resolved by the room's own stopped channel.
func (s *Service) evict(roomID string) {
	s.mu.Lock()
	r := s.rooms[roomID]
	delete(s.rooms, roomID)
	s.mu.Unlock()
	if r != nil {
		r.Stop()
		s.log.Info().Str("room", roomID).Msg("room evicted")
	}
}

// Shutdown stops every live room.
func (s *Service) Shutdown() {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.rooms = make(map[string]*Room)
	s.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
