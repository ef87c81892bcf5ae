package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lavashow/chat-widget/backend/internal/config"
	"github.com/lavashow/chat-widget/backend/internal/model/chat"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

// ArkResponder answers through an eino chain: prompt template then the Ark
// chat model.
type ArkResponder struct {
	prompts *PersonaPromptManager
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewArkResponder builds the chain for the configured Ark model.
func NewArkResponder(ctx context.Context, cfg config.AIConfig) (*ArkResponder, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newArkResponder(ctx, chatModel)
}

func newArkResponder(ctx context.Context, chatModel model.ChatModel) (*ArkResponder, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkResponder{
		prompts: NewPersonaPromptManager(),
		chain:   runnable,
	}, nil
}

// Name identifies the responder in logs.
func (r *ArkResponder) Name() string { return "ark" }

// Respond runs the chain for one user message.
func (r *ArkResponder) Respond(ctx context.Context, p *persona.Persona, history []chat.Message, userMessage, language string) (*webhook.Reply, error) {
	input := map[string]any{
		"system":  r.prompts.BuildSystemPrompt(p, language),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}

	response, err := r.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] ark response persona=%s length=%d", p.ID, len(response.Content))
	return withTimeOptions(&webhook.Reply{Message: response.Content}, userMessage), nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	messages = recentHistory(messages)
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.RoleBot:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}
