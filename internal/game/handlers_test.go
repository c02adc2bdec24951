package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchroom/internal/config"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(config.DefaultGameConfig(), newMemStore(), &MockWordSource{}, zerolog.Nop())
	t.Cleanup(svc.Shutdown)

	r := gin.New()
	NewGameHandler(svc, []string{"http://localhost:3000"}, zerolog.Nop()).RegisterRoutes(r)
	return r, svc
}

func TestCreateRoomHandler(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["roomId"])
}

func TestRoomInfoHandler(t *testing.T) {
	t.Parallel()
	router, svc := newTestRouter(t)

	id, err := svc.CreateRoom(context.Background())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 0, info.Players)
	assert.Equal(t, PhaseLobby, info.Phase)
}

func TestRoomInfoHandler_UnknownRoom(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinRoomHandler_UnknownRoomRejectedBeforeUpgrade(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/nope/ws", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
