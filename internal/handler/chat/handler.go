package chat

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lavashow/chat-widget/backend/internal/handler/view"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatService "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Handler serves the widget session API.
type Handler struct {
	chatSvc  *chatService.Service
	renderer *render.Renderer
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, renderer *render.Renderer) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		renderer: renderer,
	}
}

// RegisterRoutes registers the session and formatter routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.Post("/toggle", h.handleToggle)
		r.Post("/messages", h.handleSendMessage)
		r.Post("/time-options", h.handleSelectTimeOption)
	})
	r.Post("/format", h.handleFormat)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Language  string `json:"language"`
		PersonaID string `json:"personaId"`
	}
	if err := decodeBody(r, &payload, true); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.Language, payload.PersonaID)
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	h.respondSession(w, r, http.StatusCreated, session.ID)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w, r, http.StatusOK, chi.URLParam(r, "sessionID"))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	wgt, err := h.chatSvc.Widget(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}

	state, err := wgt.Toggle()
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"state": state})
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &payload, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wgt, err := h.chatSvc.Widget(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}

	reply, err := wgt.Submit(r.Context(), payload.Message)
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, view.NewExchange(h.renderer, wgt, reply))
}

func (h *Handler) handleSelectTimeOption(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &payload, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wgt, err := h.chatSvc.Widget(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}

	reply, err := wgt.SelectTimeOption(r.Context(), payload.Value)
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, view.NewExchange(h.renderer, wgt, reply))
}

func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &payload, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	utils.RespondJSON(w, http.StatusOK, view.NewFormatted(h.renderer, payload.Text))
}

func (h *Handler) respondSession(w http.ResponseWriter, r *http.Request, status int, sessionID string) {
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	wgt, err := h.chatSvc.Widget(sessionID)
	if err != nil {
		utils.RespondError(w, view.Status(err), err.Error())
		return
	}
	utils.RespondJSON(w, status, view.NewSession(h.renderer, session, wgt.Snapshot()))
}

// decodeBody reads a JSON body. allowEmpty accepts a missing body.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		log.Printf("[chat] invalid body on %s: %v", r.URL.Path, err)
	}
	return err
}
