// Package view shapes widget state into the JSON sent to browsers.
package view

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/lavashow/chat-widget/backend/internal/format"
	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatService "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/internal/widget"
)

// Message is a chat message plus, for bot messages, its parsed and rendered
// form.
type Message struct {
	chat.Message
	HTML   template.HTML   `json:"html,omitempty"`
	Blocks format.Document `json:"blocks,omitempty"`
}

// Session is the full state of one widget.
type Session struct {
	Session     chat.Session      `json:"session"`
	State       widget.State      `json:"state"`
	Greeting    Message           `json:"greeting"`
	Messages    []Message         `json:"messages"`
	TimeOptions []chat.TimeOption `json:"timeOptions,omitempty"`
}

// Exchange is the answer to a submitted message.
type Exchange struct {
	State       widget.State      `json:"state"`
	Reply       Message           `json:"reply"`
	TimeOptions []chat.TimeOption `json:"timeOptions,omitempty"`
}

// Formatted is the stateless formatter output.
type Formatted struct {
	Blocks    format.Document    `json:"blocks"`
	HTML      template.HTML      `json:"html"`
	Links     []format.LinkMatch `json:"links"`
	PlainText string             `json:"plainText"`
}

// NewMessage renders bot messages. User text is returned as typed.
func NewMessage(r *render.Renderer, m chat.Message) Message {
	v := Message{Message: m}
	if m.Role == chat.RoleBot {
		v.Blocks, v.HTML = r.Message(m.Text)
	}
	return v
}

// NewSession builds the session view from a widget snapshot.
func NewSession(r *render.Renderer, session chat.Session, snap widget.Snapshot) Session {
	out := Session{
		Session:     session,
		State:       snap.State,
		Greeting:    NewMessage(r, chat.Message{SessionID: session.ID, Role: chat.RoleBot, Text: snap.Greeting, CreatedAt: session.CreatedAt}),
		Messages:    make([]Message, 0, len(snap.History)),
		TimeOptions: snap.TimeOptions,
	}
	for _, m := range snap.History {
		out.Messages = append(out.Messages, NewMessage(r, m))
	}
	return out
}

// NewExchange wraps a bot reply with the widget state after it.
func NewExchange(r *render.Renderer, w *widget.Widget, reply chat.Message) Exchange {
	return Exchange{
		State:       w.State(),
		Reply:       NewMessage(r, reply),
		TimeOptions: reply.TimeOptions,
	}
}

// NewFormatted parses and renders text without a session.
func NewFormatted(r *render.Renderer, text string) Formatted {
	doc, html := r.Message(text)
	links := format.Links(doc)
	if links == nil {
		links = []format.LinkMatch{}
	}
	return Formatted{
		Blocks:    doc,
		HTML:      html,
		Links:     links,
		PlainText: format.PlainText(doc),
	}
}

// Status maps service and widget errors to HTTP status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrPersonaNotFound),
		errors.Is(err, widget.ErrEmptyMessage),
		errors.Is(err, widget.ErrUnknownOption):
		return http.StatusBadRequest
	case errors.Is(err, widget.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, widget.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
