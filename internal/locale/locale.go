package locale

import "strings"

const (
	English   = "en"
	Icelandic = "is"
)

// Strings holds the fixed user-facing texts of the widget for one language.
type Strings struct {
	Language    string
	Greeting    string
	Apology     string
	Placeholder string
	Send        string
	Typing      string
	Title       string
}

var catalog = map[string]Strings{
	English: {
		Language:    English,
		Greeting:    "Hello! I'm Tinna. Would you like to learn about our unique lava demonstrations, experience packages, or how to get here?",
		Apology:     "I apologize, but I'm having trouble connecting right now. Please try again shortly.",
		Placeholder: "Type your message...",
		Send:        "Send",
		Typing:      "Tinna is typing...",
		Title:       "Chat with Tinna",
	},
	Icelandic: {
		Language:    Icelandic,
		Greeting:    "Hæ! Ég er Tinna. Get ég aðstoðað þig?",
		Apology:     "Ég biðst afsökunar, en ég er að lenda í vandræðum með tengingu núna. Vinsamlegast reyndu aftur eftir smá stund.",
		Placeholder: "Skrifaðu skilaboð...",
		Send:        "Senda",
		Typing:      "Tinna er að skrifa...",
		Title:       "Spjallaðu við Tinnu",
	},
}

// Normalize lower-cases lang and strips a region suffix ("en-US" -> "en").
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		lang = lang[:idx]
	}
	return lang
}

// Supported reports whether lang has a catalog entry.
func Supported(lang string) bool {
	_, ok := catalog[Normalize(lang)]
	return ok
}

// For returns the texts for lang, falling back to English.
func For(lang string) Strings {
	if s, ok := catalog[Normalize(lang)]; ok {
		return s
	}
	return catalog[English]
}

// Languages lists the supported language codes.
func Languages() []string {
	return []string{English, Icelandic}
}
