package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/lavashow/chat-widget/backend/internal/config"
	"github.com/lavashow/chat-widget/backend/internal/handler/webhookd"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/service/ai"
	"github.com/lavashow/chat-widget/backend/internal/telemetry"
	"github.com/lavashow/chat-widget/backend/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logFile := telemetry.InitLogger(cfg.Log)
	defer logFile.Close()

	responder := ai.NewResponder(ctx, cfg.AI)
	log.Printf("[webhookd] using %s responder", responder.Name())
	if cfg.Webhookd.APIKey == "" {
		log.Println("[webhookd] WEBHOOKD_API_KEY not set, accepting requests without x-api-key")
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	h := webhookd.New(cfg.Webhookd.APIKey, cfg.Widget.PersonaID, personaStore, responder, ai.NewConversations(0))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.Webhookd.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[webhookd] listening on %s", srv.Addr)
	if err := utils.RunServer(ctx, srv); err != nil {
		log.Printf("[webhookd] server error: %v", err)
	}
}
