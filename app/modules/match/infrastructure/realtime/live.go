package matchrealtime

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// LiveHandler upgrades GET /matches/{matchID}/live to a WebSocket that
// receives every event of the match.
type LiveHandler struct {
	hub      *Hub
	logger   *slog.Logger
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// NewLiveHandler accepts connections from allowedOrigins. An empty list only
// admits same-host origins.
func NewLiveHandler(hub *Hub, logger *slog.Logger, tracer trace.Tracer, allowedOrigins []string) *LiveHandler {
	h := &LiveHandler{hub: hub, logger: logger, tracer: tracer}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
				return true
			}
		}
		return false
	}
}

func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LiveHandler.HandleLive")
	matchID, err := httpx.URLParamUUID(r, "matchID")
	if err != nil {
		span.End()
		httpx.WriteMalformedID(w, "match id")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	span.End()
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WarnContext(ctx, "WebSocket upgrade failed", attr.UUID("match_id", matchID), attr.Error(err))
		return
	}

	client := h.hub.Join(matchID)
	go h.writePump(conn, client)
	h.readPump(conn, client)
}

// readPump discards client frames and notices disconnects.
func (h *LiveHandler) readPump(conn *websocket.Conn, c *Client) {
	defer func() {
		h.hub.Leave(c)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket closed unexpectedly", attr.UUID("match_id", c.matchID), attr.Error(err))
			}
			return
		}
	}
}

func (h *LiveHandler) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
