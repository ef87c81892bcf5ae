package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/lavashow/chat-widget/backend/internal/handler/view"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatService "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/pkg/utils"
)

// Handler streams one widget exchange via Server-Sent Events.
type Handler struct {
	chatSvc  *chatService.Service
	renderer *render.Renderer
}

// New creates a new stream handler.
func New(chatSvc *chatService.Service, renderer *render.Renderer) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		renderer: renderer,
	}
}

// StreamResponse is one SSE chunk.
type StreamResponse struct {
	Event     string        `json:"event"`
	SessionID string        `json:"sessionId,omitempty"`
	Content   string        `json:"content,omitempty"`
	Message   *view.Message `json:"message,omitempty"`
	State     string        `json:"state,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// HandleStreamRequest submits userMessage to the session's widget and streams
// start, typing, message and end events. Widget errors become an error event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	wgt, err := h.chatSvc.Widget(sessionID)
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return nil
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		Content:   wgt.Greeting(),
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "typing",
		SessionID: sessionID,
		Content:   wgt.Strings().Typing,
	})

	reply, err := wgt.Submit(ctx, userMessage)
	if err != nil {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "error",
			SessionID: sessionID,
			State:     string(wgt.State()),
			Error:     err.Error(),
		})
		log.Printf("[stream] session=%s submit rejected: %v", sessionID, err)
		return nil
	}

	msg := view.NewMessage(h.renderer, reply)
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Message:   &msg,
		State:     string(wgt.State()),
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s failed=%t", sessionID, reply.Failed)
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
