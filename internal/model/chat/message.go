package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// TimeOption is a quick-reply button offered by the webhook.
type TimeOption struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

// Message is a single turn of a widget conversation. It lives only as long as
// the widget session does.
type Message struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"sessionId"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	TimeOptions []TimeOption `json:"timeOptions,omitempty"`
	// Failed marks the localized apology that replaces an undelivered reply.
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
