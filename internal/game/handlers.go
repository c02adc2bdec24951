package game

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// GameHandler is the HTTP front door for rooms.
type GameHandler struct {
	svc *Service
	log zerolog.Logger

	upgrader websocket.Upgrader
}

func NewGameHandler(svc *Service, allowedOrigins []string, log zerolog.Logger) *GameHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &GameHandler{
		svc: svc,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

func (h *GameHandler) RegisterRoutes(r gin.IRouter) {
	rooms := r.Group("/rooms")
	rooms.POST("", h.CreateRoomHandler)
	rooms.GET("/:roomid", h.RoomInfoHandler)
	rooms.GET("/:roomid/ws", h.JoinRoomHandler)
}

func (h *GameHandler) CreateRoomHandler(ctx *gin.Context) {
	id, err := h.svc.CreateRoom(ctx.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("room creation failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"roomId": id})
}

func (h *GameHandler) RoomInfoHandler(ctx *gin.Context) {
	info, err := h.svc.Info(ctx.Request.Context(), ctx.Param("roomid"))
	if errors.Is(err, ErrRoomNotFound) {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("room info lookup failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, info)
}

func (h *GameHandler) JoinRoomHandler(ctx *gin.Context) {
	roomID := ctx.Param("roomid")

	// reject before the upgrade so unknown rooms get a proper 404
	ok, err := h.svc.Exists(ctx.Request.Context(), roomID)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("room", roomID).Msg("websocket upgrade failed")
		return
	}

	if err := h.svc.Attach(ctx.Request.Context(), roomID, newWSSession(conn)); err != nil {
		h.log.Error().Err(err).Str("room", roomID).Msg("attach failed")
		conn.Close()
	}
}
