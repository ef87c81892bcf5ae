package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

// Responder answers one user message on behalf of the webhook.
type Responder interface {
	Name() string
	Respond(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage, language string) (*webhook.Reply, error)
}

const historyLimit = 10

var bookingKeywords = []string{"book", "ticket", "time", "when", "bóka", "miða", "hvenær"}

// showTimes are offered as quick replies when the user asks about booking.
var showTimes = []webhook.TimeOption{
	{Time: "12:00", Text: "12:00"},
	{Time: "14:00", Text: "14:00"},
	{Time: "16:00", Text: "16:00"},
	{Time: "18:00", Text: "18:00"},
}

// wantsBooking reports whether the message asks about tickets or show times.
func wantsBooking(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// withTimeOptions attaches the show times when message asks about booking.
func withTimeOptions(reply *webhook.Reply, message string) *webhook.Reply {
	if wantsBooking(message) {
		reply.ShowTimeButtons = true
		reply.TimeOptions = append([]webhook.TimeOption(nil), showTimes...)
	}
	return reply
}

func recentHistory(messages []chat.Message) []chat.Message {
	if len(messages) > historyLimit {
		return messages[len(messages)-historyLimit:]
	}
	return messages
}

// Conversations keeps per-session history for the webhook.
type Conversations struct {
	mu       sync.Mutex
	sessions map[string][]chat.Message
	limit    int
}

// NewConversations creates a history store that keeps at most limit messages
// per session.
func NewConversations(limit int) *Conversations {
	if limit <= 0 {
		limit = 2 * historyLimit
	}
	return &Conversations{
		sessions: make(map[string][]chat.Message),
		limit:    limit,
	}
}

// History returns a copy of the session's messages.
func (c *Conversations) History(sessionID string) []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Message(nil), c.sessions[sessionID]...)
}

// Append records a user message and the bot reply.
func (c *Conversations) Append(sessionID, userMessage, reply string) {
	now := time.Now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := append(c.sessions[sessionID],
		chat.Message{ID: uuid.NewString(), SessionID: sessionID, Role: chat.RoleUser, Text: userMessage, CreatedAt: now},
		chat.Message{ID: uuid.NewString(), SessionID: sessionID, Role: chat.RoleBot, Text: reply, CreatedAt: now},
	)
	if len(msgs) > c.limit {
		msgs = append([]chat.Message(nil), msgs[len(msgs)-c.limit:]...)
	}
	c.sessions[sessionID] = msgs
}
