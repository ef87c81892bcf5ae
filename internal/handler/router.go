package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lavashow/chat-widget/backend/internal/config"
	"github.com/lavashow/chat-widget/backend/internal/handler/chat"
	"github.com/lavashow/chat-widget/backend/internal/handler/page"
	"github.com/lavashow/chat-widget/backend/internal/handler/persona"
	"github.com/lavashow/chat-widget/backend/internal/handler/stream"
	"github.com/lavashow/chat-widget/backend/internal/handler/ws"
	personaModel "github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/render"
	chatService "github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(server config.ServerConfig, widgetCfg config.WidgetConfig, personas personaModel.Store, chatSvc *chatService.Service, renderer *render.Renderer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	page.New(renderer, personas, widgetCfg.Language, widgetCfg.PersonaID).RegisterRoutes(r)
	ws.New(chatSvc, renderer).RegisterRoutes(r)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	personaHandler := persona.New(personas)
	chatHandler := chat.New(chatSvc, renderer)
	streamHandler := stream.New(chatSvc, renderer)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	return r
}
