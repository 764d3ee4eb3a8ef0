package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"marketpulse/internal/usecase"
	"marketpulse/pkg/logger"
)

const (
	streamWriteWait = 10 * time.Second
	streamPingEvery = 30 * time.Second
)

// StreamHandler pushes each new snapshot to connected websocket clients.
// A slow client misses snapshots rather than holding back the refresh
// cycle.
type StreamHandler struct {
	log        *logger.Logger
	aggregator *usecase.Aggregator
	upgrader   websocket.Upgrader
}

// NewStreamHandler creates the websocket fan-out endpoint.
func NewStreamHandler(log *logger.Logger, aggregator *usecase.Aggregator) *StreamHandler {
	return &StreamHandler{
		log:        log,
		aggregator: aggregator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and streams snapshots until the client goes
// away. The current snapshot, if any, is sent immediately on connect.
func (h *StreamHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	snapshots, unsubscribe := h.aggregator.Subscribe()
	defer unsubscribe()

	if snap := h.aggregator.Current(); snap != nil {
		if err := h.write(conn, snap); err != nil {
			return nil
		}
	}

	// Drain client frames so pong handling and close detection work.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return nil
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := h.write(conn, snap); err != nil {
				return nil
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, snap interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(snap); err != nil {
		h.log.Debug("stream client write failed", logger.Error(err))
		return err
	}
	return nil
}
