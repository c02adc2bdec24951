package game

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// NetworkSession abstracts the socket so the room and its tests never touch
// gorilla directly.
type NetworkSession interface {
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
	Close(reason string)
}

const pingInterval = 30 * time.Second

// clientConn pairs a NetworkSession with its pumps. Outbound frames go
// through outbox so slow sockets never block the room loop; a full outbox
// drops the connection instead.
type clientConn struct {
	socket  NetworkSession
	outbox  chan []byte
	done    chan struct{}
	limiter *rate.Limiter
	room    *Room
}

func newClientConn(socket NetworkSession, room *Room) *clientConn {
	return &clientConn{
		socket: socket,
		outbox: make(chan []byte, 256),
		done:   make(chan struct{}),
		// coarse flood guard ahead of the game-level buckets
		limiter: rate.NewLimiter(rate.Limit(60), 120),
		room:    room,
	}
}

// send queues a frame for the write pump. Returns false when the connection
// is gone or too far behind.
func (c *clientConn) send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.outbox <- data:
		return true
	default:
		return false
	}
}

func (c *clientConn) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// readPump parses inbound frames and forwards them to the room inbox.
// Unparseable frames are dropped. Exits on socket error and requests
// removal exactly once.
func (c *clientConn) readPump() {
	defer c.room.requestRemove(c)

	for {
		data, err := c.socket.Read()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}

		var pkt ClientPacket
		if err := json.Unmarshal(data, &pkt); err != nil || pkt.Type == "" {
			continue
		}

		select {
		case c.room.inbox <- envelope{packet: pkt, from: c}:
		case <-c.done:
			return
		}
	}
}

func (c *clientConn) writePump() {
	keepalive := time.NewTicker(pingInterval)
	defer keepalive.Stop()
	for {
		select {
		case data := <-c.outbox:
			if err := c.socket.Write(data); err != nil {
				c.room.requestRemove(c)
				return
			}
		case <-keepalive.C:
			if err := c.socket.Ping(); err != nil {
				c.room.requestRemove(c)
				return
			}
		case <-c.done:
			c.socket.Close("")
			return
		}
	}
}

// wsSession adapts a gorilla connection to NetworkSession.
type wsSession struct {
	socket *websocket.Conn
}

func newWSSession(conn *websocket.Conn) *wsSession {
	conn.SetReadDeadline(time.Now().Add(time.Minute))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return &wsSession{socket: conn}
}

func (ws *wsSession) Write(data []byte) error {
	return ws.socket.WriteMessage(websocket.TextMessage, data)
}

func (ws *wsSession) Read() ([]byte, error) {
	_, p, err := ws.socket.ReadMessage()
	return p, err
}

func (ws *wsSession) Ping() error {
	return ws.socket.WriteMessage(websocket.PingMessage, nil)
}

func (ws *wsSession) Close(reason string) {
	ws.socket.SetWriteDeadline(time.Now().Add(20 * time.Second))
	ws.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	ws.socket.Close()
}
