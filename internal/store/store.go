package store

import (
	"context"
	"errors"
)

// Keys under which a room persists its durable state. All values are JSON.
const (
	KeyStrokes      = "strokes"
	KeyFills        = "fills"
	KeyCreated      = "created"
	KeyChatHistory  = "chatHistory"
	KeyHostPlayerID = "hostPlayerId"
	KeyGameState    = "gameState"
)

var (
	ErrKeyNotFound = errors.New("key not found")

	// UnexpectedStoreError wraps database failures that are neither a missing
	// key nor a context cancellation.
	UnexpectedStoreError = errors.New("unexpected store error")

	// ErrStreamClosed reports an operation handed to a Stream after Close;
	// the value was dropped, not written.
	ErrStreamClosed = errors.New("stream closed")
)

// RoomStore is the durable key-value store a room persists into. Values are
// opaque JSON blobs; the room owns their schema.
type RoomStore interface {
	Get(ctx context.Context, roomID, key string) ([]byte, error)
	Put(ctx context.Context, roomID, key string, value []byte) error
	Delete(ctx context.Context, roomID, key string) error
}
