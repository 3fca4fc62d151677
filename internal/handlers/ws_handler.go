package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pokedex-api/internal/observability"
	"pokedex-api/internal/realtime"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// wsClient implements realtime.Client by wrapping a websocket connection.
type wsClient struct {
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

// newUpgrader accepts upgrades from allowedOrigin only. Browsers do not apply
// CORS to websocket handshakes, so the Origin header is checked here. "*"
// allows any origin; an empty allowedOrigin keeps gorilla's same-host check.
func newUpgrader(allowedOrigin string) *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	switch allowedOrigin {
	case "":
	case "*":
		u.CheckOrigin = func(*http.Request) bool { return true }
	default:
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// non-browser clients send no Origin
			return origin == "" || strings.EqualFold(strings.TrimRight(origin, "/"), strings.TrimRight(allowedOrigin, "/"))
		}
	}
	return u
}

// EventsHandler upgrades GET /api/events to a websocket and streams cache
// events from hub until the client disconnects.
func EventsHandler(hub *realtime.Hub, allowedOrigin string, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.Discard()
	}
	upgrader := newUpgrader(allowedOrigin)
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}

		client := &wsClient{conn: conn}
		hub.Register(client)

		// Heartbeat: send periodic pings; the reader loop exits on failure
		pingTicker := time.NewTicker(wsPingPeriod)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-pingTicker.C:
					if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait)); err != nil {
						return
					}
				}
			}
		}()
		defer func() {
			close(done)
			pingTicker.Stop()
			hub.Unregister(client)
			client.Close()
		}()

		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
