package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lavashow/chat-widget/backend/internal/config"
	"github.com/lavashow/chat-widget/backend/internal/handler"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
	"github.com/lavashow/chat-widget/backend/internal/render"
	"github.com/lavashow/chat-widget/backend/internal/service/chat"
	"github.com/lavashow/chat-widget/backend/internal/telemetry"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
	"github.com/lavashow/chat-widget/backend/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logFile := telemetry.InitLogger(cfg.Log)
	defer logFile.Close()

	shutdownTelemetry, err := telemetry.Init(ctx, "lava-widget", cfg.Telemetry)
	if err != nil {
		log.Printf("warning: telemetry disabled: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	theme, err := render.LoadTheme(cfg.Widget.ThemeFile)
	if err != nil {
		log.Fatalf("failed to load theme: %v", err)
	}
	renderer, err := render.NewRenderer(theme)
	if err != nil {
		log.Fatalf("failed to build renderer: %v", err)
	}
	log.Printf("theme %q loaded", theme.Name)

	personaStore := persona.NewMemoryStore(persona.Seed())
	client := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.APIKey, cfg.Webhook.Timeout)
	if cfg.Webhook.APIKey == "" {
		log.Println("warning: WEBHOOK_API_KEY not set, requests are sent without x-api-key")
	}
	log.Printf("webhook endpoint %s (timeout %s)", client.URL(), cfg.Webhook.Timeout)

	chatService := chat.NewService(client, personaStore, cfg.Widget.Language, cfg.Widget.PersonaID)
	defer chatService.CloseAll()
	go chatService.RunSweeper(ctx, sweepInterval(cfg.Widget.SessionTTL), cfg.Widget.SessionTTL)

	router := handler.NewRouter(cfg.Server, cfg.Widget, personaStore, chatService, renderer)

	startServer(ctx, cfg.Server, router)
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Lava Show widget backend listening on %s", addr)
	if err := utils.RunServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}
