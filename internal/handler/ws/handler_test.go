package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatservice "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

type replySender struct{}

func (replySender) Send(_ context.Context, req webhook.Request) (*webhook.Reply, error) {
	return &webhook.Reply{Message: "You said: " + req.Message}, nil
}

type received struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func setupServer(t *testing.T) (*httptest.Server, *chatservice.Service) {
	t.Helper()
	chatSvc := chatservice.NewService(replySender{}, persona.NewMemoryStore(persona.Seed()), "en", "tinna")
	renderer, err := render.NewRenderer(render.DefaultTheme())
	if err != nil {
		t.Fatalf("NewRenderer err: %v", err)
	}
	r := chi.NewRouter()
	New(chatSvc, renderer).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) received {
	t.Helper()
	for {
		var msg received
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read err waiting for %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWebSocketExchange(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, err := chatSvc.CreateSession(context.Background(), "en", "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	conn := dial(t, srv, session.ID)

	if first := readUntil(t, conn, "state"); first.Data["state"] != "collapsed" {
		t.Fatalf("unexpected initial state %+v", first)
	}

	conn.WriteJSON(map[string]any{"type": "toggle"})
	if st := readUntil(t, conn, "state"); st.Data["state"] != "expanded" {
		t.Fatalf("expected expanded, got %+v", st)
	}

	conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "Hello"}})
	readUntil(t, conn, "typing")
	msg := readUntil(t, conn, "message")
	if msg.Data["text"] != "You said: Hello" || msg.Data["role"] != "bot" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if html, _ := msg.Data["html"].(string); !strings.Contains(html, "You said: Hello") {
		t.Fatalf("expected rendered html, got %q", html)
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background(), "en", "")
	conn := dial(t, srv, session.ID)

	conn.WriteJSON(map[string]any{"type": "audio"})
	errMsg := readUntil(t, conn, "error")
	if !strings.Contains(errMsg.Data["message"].(string), "unsupported") {
		t.Fatalf("unexpected error %+v", errMsg)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
