package ai

import (
	"context"
	"log"

	"github.com/lavashow/chat-widget/backend/internal/config"
)

// NewResponder picks the backend: Ark when its credentials are set, then
// OpenAI, then the canned responder. An Ark setup that fails to build falls
// through to the next option.
func NewResponder(ctx context.Context, cfg config.AIConfig) Responder {
	if cfg.Enabled() {
		r, err := NewArkResponder(ctx, cfg)
		if err == nil {
			return r
		}
		log.Printf("[ai] ark responder unavailable: %v", err)
	}
	if cfg.OpenAIEnabled() {
		return NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	return NewCannedResponder()
}
