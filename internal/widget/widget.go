// Package widget holds the state machine behind one chat widget: the
// collapsed/expanded toggle, the message history and the single in-flight
// webhook request.
package widget

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

var (
	ErrBusy          = errors.New("a message is already being sent")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrUnknownOption = errors.New("unknown time option")
	ErrClosed        = errors.New("widget is closed")
)

// State is the visible mode of the widget.
type State string

const (
	StateCollapsed State = "collapsed"
	StateExpanded  State = "expanded"
	StateSending   State = "sending"
)

// Sender delivers a message to the chat backend.
type Sender interface {
	Send(ctx context.Context, req webhook.Request) (*webhook.Reply, error)
}

// Option customises a Widget.
type Option func(*Widget)

// WithGreeting replaces the localized greeting.
func WithGreeting(text string) Option {
	return func(w *Widget) {
		if text != "" {
			w.greeting = text
		}
	}
}

// WithClock overrides time.Now, used by tests and the idle sweep.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		if now != nil {
			w.now = now
		}
	}
}

// Snapshot is a copy of the widget's observable state.
type Snapshot struct {
	SessionID   string            `json:"sessionId"`
	Language    string            `json:"language"`
	State       State             `json:"state"`
	Greeting    string            `json:"greeting"`
	History     []chat.Message    `json:"history"`
	TimeOptions []chat.TimeOption `json:"timeOptions,omitempty"`
	LastActive  time.Time         `json:"lastActive"`
}

// Widget is safe for concurrent use.
type Widget struct {
	sessionID string
	language  string
	strings   locale.Strings
	greeting  string
	sender    Sender
	now       func() time.Time

	mu         sync.Mutex
	state      State
	history    []chat.Message
	options    []chat.TimeOption
	cancel     context.CancelFunc
	closed     bool
	lastActive time.Time
}

// New creates a collapsed widget with an empty history.
func New(sessionID, language string, sender Sender, opts ...Option) *Widget {
	strs := locale.For(language)
	w := &Widget{
		sessionID: sessionID,
		language:  strs.Language,
		strings:   strs,
		greeting:  strs.Greeting,
		sender:    sender,
		now:       time.Now,
		state:     StateCollapsed,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lastActive = w.now()
	return w
}

// SessionID returns the conversation id sent with every webhook request.
func (w *Widget) SessionID() string { return w.sessionID }

// Language returns the normalized widget language.
func (w *Widget) Language() string { return w.language }

// Strings returns the fixed texts for the widget language.
func (w *Widget) Strings() locale.Strings { return w.strings }

// Greeting returns the opening bot line. It is shown ahead of the history and
// is not part of it.
func (w *Widget) Greeting() string { return w.greeting }

// State returns the current state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// History returns a copy of the exchanged messages.
func (w *Widget) History() []chat.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneMessages(w.history)
}

// TimeOptions returns the pending quick replies.
func (w *Widget) TimeOptions() []chat.TimeOption {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]chat.TimeOption(nil), w.options...)
}

// LastActive reports when the widget was last used.
func (w *Widget) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Snapshot returns all observable state at once.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		SessionID:   w.sessionID,
		Language:    w.language,
		State:       w.state,
		Greeting:    w.greeting,
		History:     cloneMessages(w.history),
		TimeOptions: append([]chat.TimeOption(nil), w.options...),
		LastActive:  w.lastActive,
	}
}

// Toggle switches between collapsed and expanded.
func (w *Widget) Toggle() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.closed:
		return w.state, ErrClosed
	case w.state == StateSending:
		return w.state, ErrBusy
	case w.state == StateCollapsed:
		w.state = StateExpanded
	default:
		w.state = StateCollapsed
	}
	w.lastActive = w.now()
	return w.state, nil
}

// Submit sends text to the webhook and appends both sides of the exchange to
// the history. A delivery failure is not an error: the bot message is the
// localized apology instead. Only one Submit may be in flight.
func (w *Widget) Submit(ctx context.Context, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)

	w.mu.Lock()
	switch {
	case w.closed:
		w.mu.Unlock()
		return chat.Message{}, ErrClosed
	case w.state == StateSending:
		w.mu.Unlock()
		return chat.Message{}, ErrBusy
	case text == "":
		w.mu.Unlock()
		return chat.Message{}, ErrEmptyMessage
	}

	w.history = append(w.history, w.message(chat.RoleUser, text))
	w.options = nil
	w.state = StateSending
	w.lastActive = w.now()
	reqCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()
	defer cancel()

	reply, err := w.sender.Send(reqCtx, webhook.Request{
		Message:   text,
		Language:  w.language,
		SessionID: w.sessionID,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancel = nil
	if w.closed {
		return chat.Message{}, ErrClosed
	}

	var bot chat.Message
	if err != nil {
		log.Printf("[widget] session=%s delivery failed: %v", w.sessionID, err)
		bot = w.message(chat.RoleBot, w.strings.Apology)
		bot.Failed = true
	} else {
		bot = w.message(chat.RoleBot, reply.Message)
		bot.TimeOptions = convertOptions(reply.Options())
		w.options = bot.TimeOptions
	}

	w.history = append(w.history, bot)
	w.state = StateExpanded
	w.lastActive = w.now()
	return cloneMessage(bot), nil
}

// SelectTimeOption submits the label of a pending time option, matched by its
// time or its label.
func (w *Widget) SelectTimeOption(ctx context.Context, value string) (chat.Message, error) {
	value = strings.TrimSpace(value)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return chat.Message{}, ErrClosed
	}
	if w.state == StateSending {
		w.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	var label string
	for _, opt := range w.options {
		if value != "" && (opt.Time == value || opt.Label == value) {
			label = opt.Label
			break
		}
	}
	w.mu.Unlock()

	if label == "" {
		return chat.Message{}, ErrUnknownOption
	}
	return w.Submit(ctx, label)
}

// Close cancels any in-flight request. A reply that arrives afterwards is
// dropped and every later call returns ErrClosed.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.state == StateSending {
		w.state = StateExpanded
	}
}

// Closed reports whether Close was called.
func (w *Widget) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Widget) message(role chat.Role, text string) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		SessionID: w.sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: w.now(),
	}
}

func convertOptions(in []webhook.TimeOption) []chat.TimeOption {
	if len(in) == 0 {
		return nil
	}
	out := make([]chat.TimeOption, 0, len(in))
	for _, o := range in {
		label := o.Text
		if label == "" {
			label = o.Time
		}
		out = append(out, chat.TimeOption{Time: o.Time, Label: label})
	}
	return out
}

func cloneMessage(m chat.Message) chat.Message {
	m.TimeOptions = append([]chat.TimeOption(nil), m.TimeOptions...)
	return m
}

func cloneMessages(in []chat.Message) []chat.Message {
	out := make([]chat.Message, 0, len(in))
	for _, m := range in {
		out = append(out, cloneMessage(m))
	}
	return out
}
