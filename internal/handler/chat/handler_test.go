package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lavashow/chat-widget/backend/internal/handler/view"
	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatservice "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

type fakeSender struct {
	reply *webhook.Reply
	err   error
	block chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, _ webhook.Request) (*webhook.Reply, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.reply, f.err
}

func setupRouter(t *testing.T, sender *fakeSender) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	chatSvc := chatservice.NewService(sender, persona.NewMemoryStore(persona.Seed()), "en", "tinna")
	renderer, err := render.NewRenderer(render.DefaultTheme())
	if err != nil {
		t.Fatalf("NewRenderer err: %v", err)
	}
	handler := New(chatSvc, renderer)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler, body string) view.Session {
	t.Helper()
	resp := do(r, http.MethodPost, "/session", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var s view.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func TestCreateSession(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{})
	s := createSession(t, r, `{"language":"is","personaId":"tinna"}`)

	if s.Session.ID == "" || s.Session.Language != "is" {
		t.Fatalf("unexpected session %+v", s.Session)
	}
	if s.State != "collapsed" {
		t.Fatalf("expected collapsed, got %s", s.State)
	}
	if s.Greeting.Text == "" || s.Greeting.HTML == "" {
		t.Fatalf("expected rendered greeting, got %+v", s.Greeting)
	}
	if len(s.Messages) != 0 {
		t.Fatalf("expected empty history, got %d", len(s.Messages))
	}
}

func TestCreateSessionWithoutBody(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{})
	s := createSession(t, r, "")
	if s.Session.Language != "en" || s.Session.PersonaID != "tinna" {
		t.Fatalf("unexpected defaults %+v", s.Session)
	}
}

func TestCreateSessionInvalidPersona(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{})
	resp := do(r, http.MethodPost, "/session", `{"personaId":"non-existent"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{})
	resp := do(r, http.MethodPost, "/session", `{`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendMessage(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{reply: &webhook.Reply{Message: "**Tickets**\n[Book now](https://lavashow.com/book)"}})
	s := createSession(t, r, `{}`)

	resp := do(r, http.MethodPost, "/session/"+s.Session.ID+"/messages", `{"message":"Hello"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var ex view.Exchange
	if err := json.Unmarshal(resp.Body.Bytes(), &ex); err != nil {
		t.Fatalf("decode exchange: %v", err)
	}
	if ex.State != "expanded" {
		t.Fatalf("expected expanded, got %s", ex.State)
	}
	if !strings.Contains(string(ex.Reply.HTML), `href="https://lavashow.com/book"`) {
		t.Fatalf("reply html missing link: %s", ex.Reply.HTML)
	}
	if len(ex.Reply.Blocks) != 1 || len(ex.Reply.Blocks[0]) != 2 {
		t.Fatalf("unexpected blocks %+v", ex.Reply.Blocks)
	}

	get := do(r, http.MethodGet, "/session/"+s.Session.ID, "")
	var full view.Session
	if err := json.Unmarshal(get.Body.Bytes(), &full); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(full.Messages) != 2 || full.Messages[0].Text != "Hello" {
		t.Fatalf("unexpected transcript %+v", full.Messages)
	}
}

func TestSendMessageDeliveryFailureReturnsApology(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{err: webhook.ErrDelivery})
	s := createSession(t, r, `{"language":"is"}`)

	resp := do(r, http.MethodPost, "/session/"+s.Session.ID+"/messages", `{"message":"Halló"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var ex view.Exchange
	json.Unmarshal(resp.Body.Bytes(), &ex)
	if ex.Reply.Text != locale.For("is").Apology || !ex.Reply.Failed {
		t.Fatalf("expected apology, got %+v", ex.Reply)
	}
}

func TestSendMessageErrors(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{reply: &webhook.Reply{Message: "ok"}})
	s := createSession(t, r, `{}`)

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"empty", "/session/" + s.Session.ID + "/messages", `{"message":"   "}`, http.StatusBadRequest},
		{"unknown session", "/session/missing/messages", `{"message":"hi"}`, http.StatusNotFound},
		{"bad json", "/session/" + s.Session.ID + "/messages", `nope`, http.StatusBadRequest},
		{"unknown option", "/session/" + s.Session.ID + "/time-options", `{"value":"09:00"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(r, http.MethodPost, tc.path, tc.body)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestSendMessageWhileBusy(t *testing.T) {
	sender := &fakeSender{reply: &webhook.Reply{Message: "ok"}, block: make(chan struct{})}
	r, chatSvc := setupRouter(t, sender)
	s := createSession(t, r, `{}`)

	wgt, _ := chatSvc.Widget(s.Session.ID)
	done := make(chan struct{})
	go func() {
		wgt.Submit(context.Background(), "first")
		close(done)
	}()
	for wgt.State() != "sending" {
		time.Sleep(time.Millisecond)
	}

	if resp := do(r, http.MethodPost, "/session/"+s.Session.ID+"/messages", `{"message":"second"}`); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if resp := do(r, http.MethodPost, "/session/"+s.Session.ID+"/toggle", ""); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on toggle, got %d", resp.Code)
	}

	close(sender.block)
	<-done
}

func TestToggleAndDelete(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{})
	s := createSession(t, r, `{}`)

	resp := do(r, http.MethodPost, "/session/"+s.Session.ID+"/toggle", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"expanded"`) {
		t.Fatalf("unexpected toggle response %d %s", resp.Code, resp.Body.String())
	}

	if resp := do(r, http.MethodDelete, "/session/"+s.Session.ID, ""); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := do(r, http.MethodGet, "/session/"+s.Session.ID, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestTimeOptionSelection(t *testing.T) {
	sender := &fakeSender{reply: &webhook.Reply{
		Message:         "Pick a time",
		ShowTimeButtons: true,
		TimeOptions:     []webhook.TimeOption{{Time: "17:00", Text: "5 PM"}},
	}}
	r, _ := setupRouter(t, sender)
	s := createSession(t, r, `{}`)

	resp := do(r, http.MethodPost, "/session/"+s.Session.ID+"/messages", `{"message":"book"}`)
	var ex view.Exchange
	json.Unmarshal(resp.Body.Bytes(), &ex)
	if len(ex.TimeOptions) != 1 || ex.TimeOptions[0].Label != "5 PM" {
		t.Fatalf("unexpected options %+v", ex.TimeOptions)
	}

	sender.reply = &webhook.Reply{Message: "See you at 5"}
	resp = do(r, http.MethodPost, "/session/"+s.Session.ID+"/time-options", `{"value":"17:00"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestFormatEndpoint(t *testing.T) {
	r, _ := setupRouter(t, &fakeSender{})
	resp := do(r, http.MethodPost, "/format", `{"text":"- Visit https://maps.google.com/lava"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out view.Formatted
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Links) != 1 || out.Links[0].Category != "maps" {
		t.Fatalf("unexpected links %+v", out.Links)
	}
	if out.PlainText != "• Visit https://maps.google.com/lava" {
		t.Fatalf("unexpected plain text %q", out.PlainText)
	}
}
