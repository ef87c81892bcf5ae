// Package webhookd serves the reference chat webhook used for local
// development of the widget.
package webhookd

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/service/ai"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
	"github.com/lavashow/chat-widget/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Handler answers webhook requests through a Responder.
type Handler struct {
	apiKey        string
	personaID     string
	personas      persona.Store
	responder     ai.Responder
	conversations *ai.Conversations
}

// New creates the webhook handler. An empty apiKey disables the header check.
func New(apiKey, personaID string, personas persona.Store, responder ai.Responder, conversations *ai.Conversations) *Handler {
	if conversations == nil {
		conversations = ai.NewConversations(0)
	}
	return &Handler{
		apiKey:        apiKey,
		personaID:     personaID,
		personas:      personas,
		responder:     responder,
		conversations: conversations,
	}
}

// RegisterRoutes registers POST /chat.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		utils.RespondError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	var req webhook.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	lang := locale.Normalize(req.Language)
	if !locale.Supported(lang) {
		lang = locale.English
	}

	p, ok := persona.Resolve(h.personas, h.personaID)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "no persona configured")
		return
	}

	history := h.conversations.History(req.SessionID)
	reply, err := h.responder.Respond(r.Context(), &p, history, message, lang)
	if err != nil {
		log.Printf("[webhookd] %s responder failed session=%s: %v", h.responder.Name(), req.SessionID, err)
		utils.RespondError(w, http.StatusBadGateway, "responder unavailable")
		return
	}

	if req.SessionID != "" {
		h.conversations.Append(req.SessionID, message, reply.Message)
	}
	log.Printf("[webhookd] replied session=%s lang=%s responder=%s times=%v", req.SessionID, lang, h.responder.Name(), reply.ShowTimeButtons)
	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}
	got := r.Header.Get("x-api-key")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.apiKey)) == 1
}
