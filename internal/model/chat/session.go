package chat

import "time"

// Session captures a transient anonymous widget conversation.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}
