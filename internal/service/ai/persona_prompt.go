package ai

import (
	"fmt"
	"strings"

	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
)

// PromptTemplate is the per-persona part of the system prompt.
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PersonaPromptManager builds system prompts for personas.
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// formattingRules describe the markup the widget renders.
var formattingRules = []string{
	"Wrap section headings in **double asterisks** on their own line",
	"Start list items with '- '",
	"Separate paragraphs with a blank line",
	"Write links as [Button label](https://url) so they render as buttons",
	"Put prices on a line starting with 'Pricing:'",
}

// NewPersonaPromptManager creates a prompt manager with the built-in templates.
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the template for personaID.
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt creates the system prompt for p answering in language.
func (pm *PersonaPromptManager) BuildSystemPrompt(p *persona.Persona, language string) string {
	var b strings.Builder

	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		fmt.Fprintf(&b, "You are %s from %s. %s\n", p.Name, p.Title, p.PromptHint)
	} else {
		b.WriteString(template.SystemPrompt)
		b.WriteString("\n\nPersonality:\n- ")
		b.WriteString(strings.Join(template.PersonalityHints, "\n- "))
		b.WriteString("\n\nRules:\n- ")
		b.WriteString(strings.Join(template.ContextRules, "\n- "))
		b.WriteString("\n")
	}

	if len(p.Facts) > 0 {
		b.WriteString("\nFacts you can rely on:\n- ")
		b.WriteString(strings.Join(p.Facts, "\n- "))
		b.WriteString("\n")
	}

	b.WriteString("\nFormatting:\n- ")
	b.WriteString(strings.Join(formattingRules, "\n- "))
	b.WriteString("\n")

	if locale.Normalize(language) == locale.Icelandic {
		b.WriteString("\nAnswer in Icelandic.")
	} else {
		b.WriteString("\nAnswer in English.")
	}
	return b.String()
}

func (pm *PersonaPromptManager) loadDefaultTemplates() {
	pm.templates["tinna"] = &PromptTemplate{
		SystemPrompt: "You are Tinna, the friendly guide of LAVA SHOW, the only live lava show in the world. Visitors reach you through the chat widget on the website.",
		PersonalityHints: []string{
			"Warm, upbeat and concise",
			"Proud of Icelandic volcanoes without exaggerating",
			"Helpful with practical details such as directions, show times and tickets",
		},
		ContextRules: []string{
			"Keep answers under 120 words",
			"Offer a booking button when the visitor shows interest in tickets",
			"Offer a directions button when the visitor asks how to get there",
			"Say you will pass the question on when you do not know the answer",
		},
	}
}
