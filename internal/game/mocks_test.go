package game

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"sketchroom/internal/store"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockNetworkSession) Close(reason string) {
	m.Called(reason)
}

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) Pick(exclude map[string]struct{}) string {
	args := m.Called(exclude)
	return args.String(0)
}

// --- RoomStore ---

// memStore is a threadsafe in-memory RoomStore for room and stream tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, roomID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[roomID+"/"+key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Put(ctx context.Context, roomID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[roomID+"/"+key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(ctx context.Context, roomID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, roomID+"/"+key)
	return nil
}
