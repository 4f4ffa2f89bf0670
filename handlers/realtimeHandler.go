package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ViBaTo/panel-control-tm/liveview"
	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/middlewares"
	"github.com/ViBaTo/panel-control-tm/repositories"
	"github.com/ViBaTo/panel-control-tm/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// SessionCloseCode is sent when the session behind a stream ends.
const SessionCloseCode = 4001

// RealtimeHandler streams live table views over websockets. Each stream is
// bound to the caller's session and closes when the session ends.
type RealtimeHandler struct {
	deps     liveview.Deps
	resolver session.Resolver
	events   session.EventSource
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewRealtimeHandler(deps liveview.Deps, resolver session.Resolver, events session.EventSource, origins []string, log *logger.Logger) *RealtimeHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &RealtimeHandler{
		deps:     deps,
		resolver: resolver,
		events:   events,
		log:      log.Component("realtime.ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

// Stream upgrades the request and pushes a frame for every new view state.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	table := c.Param("table")
	if err := repositories.CheckTable(table); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	opts := viewOptions(c)
	opts.Realtime = true
	token := middlewares.TokenFrom(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard := session.NewGuard(h.resolver, h.events, h.log)
	go func() {
		if err := guard.Run(ctx, token); err != nil {
			h.log.WithError(err).Warn("session guard stopped")
		}
	}()

	view := liveview.Watch(ctx, h.deps, table, opts)
	defer view.Close()

	go h.readPump(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-guard.Changes():
			if !ok {
				return
			}
			if st.Status == session.Unauthenticated {
				msg := websocket.FormatCloseMessage(SessionCloseCode, "session ended")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
		case st, ok := <-view.Updates():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(st); err != nil {
				h.log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and
// cancels the stream when the client goes away.
func (h *RealtimeHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
