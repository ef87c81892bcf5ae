package ai

import (
	"context"
	"strings"

	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

type cannedTopic struct {
	keywords []string
	replies  map[string]string
}

var cannedTopics = []cannedTopic{
	{
		keywords: []string{"book", "ticket", "price", "bóka", "miða", "verð"},
		replies: map[string]string{
			locale.English:   "**Tickets**\n- Classic Lava Show, about 45 minutes\nPricing: from 5,900 ISK\n\nPick a time below or [Book tickets](https://lavashow.com/book)",
			locale.Icelandic: "**Miðar**\n- Hefðbundin hraunsýning, um 45 mínútur\nPricing: frá 5.900 ISK\n\nVeldu tíma hér að neðan eða [Bóka miða](https://lavashow.com/book)",
		},
	},
	{
		keywords: []string{"where", "direction", "location", "get there", "hvar", "leið"},
		replies: map[string]string{
			locale.English:   "**Find us**\n- Reykjavik: Fiskislóð 73\n- Vík: Víkurbraut 5\n\n[Directions to Reykjavik](https://maps.google.com/?q=Lava+Show+Reykjavik)",
			locale.Icelandic: "**Hvar erum við**\n- Reykjavík: Fiskislóð 73\n- Vík: Víkurbraut 5\n\n[Leiðarlýsing til Reykjavíkur](https://maps.google.com/?q=Lava+Show+Reykjavik)",
		},
	},
	{
		keywords: []string{"lava", "show", "what", "hraun", "sýning"},
		replies: map[string]string{
			locale.English:   "We melt real lava at 1100°C and pour it into the showroom while you watch from a few metres away.\n\nMore at https://lavashow.com",
			locale.Icelandic: "Við bræðum alvöru hraun við 1100°C og hellum því inn í salinn á meðan þú fylgist með í nokkurra metra fjarlægð.\n\nMeira á https://lavashow.com",
		},
	},
}

var cannedFallback = map[string]string{
	locale.English:   "I can help with show times, tickets and directions. What would you like to know?",
	locale.Icelandic: "Ég get aðstoðað með sýningartíma, miða og leiðarlýsingu. Hvað viltu vita?",
}

// CannedResponder answers from fixed texts written in the widget markup. It
// needs no model and is the default for local development.
type CannedResponder struct{}

// NewCannedResponder returns the canned responder.
func NewCannedResponder() CannedResponder { return CannedResponder{} }

// Name identifies the responder in logs.
func (CannedResponder) Name() string { return "canned" }

// Respond picks the first topic whose keyword appears in userMessage.
func (CannedResponder) Respond(_ context.Context, _ *persona.Persona, _ []chat.Message, userMessage, language string) (*webhook.Reply, error) {
	lang := locale.For(language).Language
	lower := strings.ToLower(userMessage)

	for _, topic := range cannedTopics {
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				return withTimeOptions(&webhook.Reply{Message: topic.replies[lang]}, userMessage), nil
			}
		}
	}
	return withTimeOptions(&webhook.Reply{Message: cannedFallback[lang]}, userMessage), nil
}
