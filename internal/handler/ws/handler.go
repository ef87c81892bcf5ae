// Package ws exposes a widget session over a WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lavashow/chat-widget/backend/internal/handler/view"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatService "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/internal/widget"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Handler upgrades /ws/{sessionID} and drives the session's widget.
type Handler struct {
	chatSvc  *chatService.Service
	renderer *render.Renderer
	upgrader websocket.Upgrader
}

// New creates the WebSocket handler.
func New(chatSvc *chatService.Service, renderer *render.Renderer) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		renderer: renderer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type textData struct {
	Text string `json:"text"`
}

type timeData struct {
	Value string `json:"value"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// conn serialises writes; gorilla allows one concurrent writer.
type conn struct {
	ws        *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *conn) send(typ string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.ws.WriteJSON(outgoingMessage{
		Type:      typ,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		log.Printf("[ws] write %s failed: %v", typ, err)
	}
}

func (c *conn) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (c *conn) sendState(w *widget.Widget) {
	c.send("state", map[string]any{
		"state":       w.State(),
		"timeOptions": w.TimeOptions(),
	})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	wgt, err := h.chatSvc.Widget(sessionID)
	if err != nil {
		http.Error(w, err.Error(), view.Status(err))
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer wsConn.Close()

	log.Printf("[ws] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	var inflight sync.WaitGroup
	defer func() {
		cancel()
		inflight.Wait()
	}()

	c := &conn{ws: wsConn, sessionID: sessionID}

	wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go pingLoop(ctx, wsConn)

	c.sendState(wgt)

	for {
		var msg inboundMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
		wsConn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "toggle":
			if _, err := wgt.Toggle(); err != nil {
				c.sendError(err.Error())
				continue
			}
			c.sendState(wgt)
		case "text":
			var data textData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("invalid text payload")
				continue
			}
			h.submit(ctx, c, wgt, &inflight, func(ctx context.Context) (view.Message, error) {
				reply, err := wgt.Submit(ctx, data.Text)
				return view.NewMessage(h.renderer, reply), err
			})
		case "time":
			var data timeData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("invalid time payload")
				continue
			}
			h.submit(ctx, c, wgt, &inflight, func(ctx context.Context) (view.Message, error) {
				reply, err := wgt.SelectTimeOption(ctx, data.Value)
				return view.NewMessage(h.renderer, reply), err
			})
		default:
			c.sendError("unsupported message type: " + msg.Type)
		}
	}
}

// submit runs fn in the background so that the read loop keeps answering
// toggles (with ErrBusy) while the webhook is pending.
func (h *Handler) submit(ctx context.Context, c *conn, wgt *widget.Widget, inflight *sync.WaitGroup, fn func(context.Context) (view.Message, error)) {
	if wgt.State() == widget.StateSending {
		c.sendError(widget.ErrBusy.Error())
		return
	}

	c.send("typing", map[string]any{"active": true, "text": wgt.Strings().Typing})
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		msg, err := fn(ctx)
		if err != nil {
			c.sendError(err.Error())
			c.sendState(wgt)
			return
		}
		c.send("message", msg)
		c.sendState(wgt)
	}()
}

func pingLoop(ctx context.Context, wsConn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wsConn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
