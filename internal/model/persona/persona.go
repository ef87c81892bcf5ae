package persona

import "github.com/lavashow/chat-widget/backend/internal/locale"

// Persona is the assistant shown in the widget header and voiced by the
// reference webhook.
type Persona struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	Avatar     string            `json:"avatar"`
	PromptHint string            `json:"promptHint,omitempty"`
	Greetings  map[string]string `json:"greetings,omitempty"`
	Facts      []string          `json:"facts,omitempty"`
}

// Greeting returns the opening line for lang. Personas without a dedicated
// greeting use the locale catalog.
func (p Persona) Greeting(lang string) string {
	if g, ok := p.Greetings[locale.Normalize(lang)]; ok && g != "" {
		return g
	}
	return locale.For(lang).Greeting
}

// Seed provides the personas bundled with the widget.
func Seed() []Persona {
	return []Persona{
		{
			ID:         "tinna",
			Name:       "Tinna",
			Title:      "LAVA SHOW",
			Avatar:     "/static/tinna.svg",
			PromptHint: "Friendly guide for the Lava Show. Keep answers short, use **headings**, '-' bullets and [label](url) buttons for bookings and directions.",
			Greetings: map[string]string{
				locale.English:   "Hello! I'm Tinna. Would you like to learn about our unique lava demonstrations, experience packages, or how to get here?",
				locale.Icelandic: "Hæ! Ég er Tinna. Get ég aðstoðað þig?",
			},
			Facts: []string{
				"Lava Show is the only live lava show in the world.",
				"Shows run in Reykjavik (Fiskislóð 73) and in Vík.",
				"Tickets: https://lavashow.com/book",
				"Directions Reykjavik: https://maps.google.com/?q=Lava+Show+Reykjavik",
			},
		},
	}
}
