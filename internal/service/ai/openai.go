package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

// ErrEmptyCompletion is returned when the model sends no choices.
var ErrEmptyCompletion = errors.New("model returned no choices")

// OpenAIResponder answers with an OpenAI chat completion.
type OpenAIResponder struct {
	client  *openai.Client
	model   string
	prompts *PersonaPromptManager
}

// NewOpenAIResponder creates a responder for apiKey. An empty model uses
// gpt-4o-mini.
func NewOpenAIResponder(apiKey, model string) *OpenAIResponder {
	return newOpenAIResponder(openai.DefaultConfig(apiKey), model)
}

func newOpenAIResponder(cfg openai.ClientConfig, model string) *OpenAIResponder {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIResponder{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		prompts: NewPersonaPromptManager(),
	}
}

// Name identifies the responder in logs.
func (r *OpenAIResponder) Name() string { return "openai" }

// Respond sends the system prompt, recent history and the user message.
func (r *OpenAIResponder) Respond(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage, language string) (*webhook.Reply, error) {
	history = recentHistory(history)
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: r.prompts.BuildSystemPrompt(p, language),
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == chat.RoleBot {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	log.Printf("[ai] openai response persona=%s model=%s length=%d", p.ID, r.model, len(content))
	return withTimeOptions(&webhook.Reply{Message: content}, userMessage), nil
}
