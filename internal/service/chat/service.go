package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/widget"
)

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
)

type entry struct {
	session chat.Session
	widget  *widget.Widget
}

// Service keeps the live widget sessions in memory. Nothing is persisted.
type Service struct {
	sender          widget.Sender
	personas        persona.Store
	defaultLanguage string
	defaultPersona  string

	mu       sync.RWMutex
	sessions map[string]entry
}

// NewService wires the registry to the webhook sender and persona catalog.
func NewService(sender widget.Sender, personas persona.Store, defaultLanguage, defaultPersona string) *Service {
	return &Service{
		sender:          sender,
		personas:        personas,
		defaultLanguage: locale.For(defaultLanguage).Language,
		defaultPersona:  defaultPersona,
		sessions:        make(map[string]entry),
	}
}

// CreateSession provisions an anonymous widget session. Empty arguments use
// the configured defaults and unsupported languages fall back to English.
func (s *Service) CreateSession(_ context.Context, language, personaID string) (chat.Session, error) {
	if language == "" {
		language = s.defaultLanguage
	}
	language = locale.For(language).Language

	if personaID == "" {
		personaID = s.defaultPersona
	}
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, ErrPersonaNotFound
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: p.ID,
		Language:  language,
		CreatedAt: time.Now().UTC(),
	}
	w := widget.New(session.ID, language, s.sender, widget.WithGreeting(p.Greeting(language)))

	s.mu.Lock()
	s.sessions[session.ID] = entry{session: session, widget: w}
	s.mu.Unlock()

	log.Printf("[chat] session created id=%s persona=%s lang=%s", session.ID, p.ID, language)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return e.session, nil
}

// Widget returns the state machine of a session.
func (s *Service) Widget(sessionID string) (*widget.Widget, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return e.widget, nil
}

// LoadTranscript returns the exchanged messages of a session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return e.widget.History(), nil
}

// CloseSession closes the widget and forgets the session.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	e.widget.Close()
	log.Printf("[chat] session closed id=%s", sessionID)
	return nil
}

// Count reports the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes sessions that have been idle for longer than idle and returns
// how many were removed. Sessions with a request in flight are kept.
func (s *Service) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	var stale []*widget.Widget
	for id, e := range s.sessions {
		if e.widget.State() == widget.StateSending {
			continue
		}
		if e.widget.LastActive().Before(cutoff) {
			stale = append(stale, e.widget)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}
	if len(stale) > 0 {
		log.Printf("[chat] swept %d idle sessions", len(stale))
	}
	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(idle)
		}
	}
}

// CloseAll closes every session, used on shutdown.
func (s *Service) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]entry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.widget.Close()
	}
}

func (s *Service) lookup(sessionID string) (entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return entry{}, ErrSessionNotFound
	}
	return e, nil
}
