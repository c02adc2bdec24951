package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type opKind int

const (
	opWrite opKind = iota
	opDelete
)

type streamOp struct {
	kind   opKind
	value  []byte
	result func(error)
}

// Stream serializes all durable writes and deletes for one room key. Every
// operation is applied in submission order regardless of how long the store
// takes, so a delete queued after a write can never be overtaken by it.
//
// Writes scheduled through ScheduleWrite are debounced: rapid successive
// snapshots coalesce into one durable write. Delete cancels any pending
// debounce before it is queued, so a stale snapshot cannot resurrect data
// after a clear.
type Stream struct {
	roomID string
	key    string
	store  RoomStore
	log    zerolog.Logger

	debounceDelay time.Duration
	attempts      int
	backoff       time.Duration

	mu       sync.Mutex
	debounce *time.Timer
	pending  []byte
	closed   bool

	ops chan streamOp
	wg  sync.WaitGroup
}

func NewStream(store RoomStore, roomID, key string, debounce time.Duration, attempts int, backoff time.Duration, log zerolog.Logger) *Stream {
	s := &Stream{
		roomID:        roomID,
		key:           key,
		store:         store,
		log:           log.With().Str("stream", key).Logger(),
		debounceDelay: debounce,
		attempts:      attempts,
		backoff:       backoff,
		ops:           make(chan streamOp, 128),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

func (s *Stream) worker() {
	defer s.wg.Done()
	for op := range s.ops {
		err := s.apply(op)
		if op.result != nil {
			op.result(err)
		} else if err != nil {
			s.log.Error().Err(err).Msg("durable operation failed after retries")
		}
	}
}

func (s *Stream) apply(op streamOp) error {
	return withRetry(s.attempts, s.backoff, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if op.kind == opDelete {
			return s.store.Delete(ctx, s.roomID, s.key)
		}
		return s.store.Put(ctx, s.roomID, s.key, op.value)
	})
}

// ScheduleWrite records value as the latest snapshot and arms the debounce
// timer. Only the last snapshot scheduled before the timer fires is written.
func (s *Stream) ScheduleWrite(value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = value
	if s.debounce == nil {
		s.debounce = time.AfterFunc(s.debounceDelay, s.flushDebounced)
	} else {
		s.debounce.Reset(s.debounceDelay)
	}
}

func (s *Stream) flushDebounced() {
	// The worker goroutine never takes mu, so holding it across the send
	// cannot deadlock; it keeps Close from closing ops mid-send.
	s.mu.Lock()
	defer s.mu.Unlock()
	value := s.pending
	s.pending = nil
	s.debounce = nil
	if s.closed || value == nil {
		return
	}
	s.ops <- streamOp{kind: opWrite, value: value}
}

// Write enqueues an immediate durable write, bypassing the debounce.
func (s *Stream) Write(value []byte, result func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if result != nil {
			result(ErrStreamClosed)
		}
		return
	}
	s.ops <- streamOp{kind: opWrite, value: value, result: result}
}

// Delete cancels any pending debounced write and enqueues a delete. FIFO
// ordering guarantees that writes already queued complete first; the canceled
// debounce guarantees no later stale write follows.
func (s *Stream) Delete(result func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if result != nil {
			result(ErrStreamClosed)
		}
		return
	}
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.pending = nil
	s.ops <- streamOp{kind: opDelete, result: result}
}

// Flush forces any debounced snapshot out immediately.
func (s *Stream) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	value := s.pending
	s.pending = nil
	if s.closed || value == nil {
		return
	}
	s.ops <- streamOp{kind: opWrite, value: value}
}

// Close flushes pending work and stops the worker. The stream accepts no
// operations afterwards. Safe to call once.
func (s *Stream) Close() {
	s.Flush()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.ops)
	s.wg.Wait()
}

func withRetry(attempts int, backoff time.Duration, op func() error) error {
	var err error
	delay := backoff
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
