// Package page serves the demo page that hosts the floating widget.
package page

import (
	"bytes"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/render"
)

// Handler renders the page and the embedded static assets.
type Handler struct {
	renderer        *render.Renderer
	personas        persona.Store
	defaultLanguage string
	defaultPersona  string
	static          http.Handler
}

// New creates the page handler.
func New(renderer *render.Renderer, personas persona.Store, defaultLanguage, defaultPersona string) *Handler {
	return &Handler{
		renderer:        renderer,
		personas:        personas,
		defaultLanguage: defaultLanguage,
		defaultPersona:  defaultPersona,
		static:          http.StripPrefix("/static/", http.FileServer(http.FS(render.Static()))),
	}
}

// RegisterRoutes registers / and /static/*.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handlePage)
	r.Get("/static/*", h.static.ServeHTTP)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.defaultLanguage
	}
	strs := locale.For(lang)

	p, ok := persona.Resolve(h.personas, h.defaultPersona)
	if !ok {
		http.Error(w, "no persona configured", http.StatusServiceUnavailable)
		return
	}
	_, greeting := h.renderer.Message(p.Greeting(strs.Language))

	var buf bytes.Buffer
	err := h.renderer.Page(&buf, render.PageData{
		Persona:  p,
		Strings:  strs,
		Greeting: greeting,
	})
	if err != nil {
		log.Printf("[page] render failed: %v", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
