package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/lavashow/chat-widget/backend/internal/locale"
)

// DefaultWebhookURL is the hosted Lava Show chat endpoint.
const DefaultWebhookURL = "https://lavashow-chat-2024.vercel.app/chat"

// Config aggregates all service settings.
type Config struct {
	Server    ServerConfig
	Webhook   WebhookConfig
	Widget    WidgetConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	AI        AIConfig
	Webhookd  WebhookdConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	webhook, err := loadWebhookConfig()
	if err != nil {
		return nil, err
	}

	widget, err := loadWidgetConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	telemetry, err := loadTelemetryConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Webhook:   webhook,
		Widget:    widget,
		Log:       logCfg,
		Telemetry: telemetry,
		AI:        ai,
		Webhookd:  loadWebhookdConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	addr, err := parseAddr("PORT", "8080")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Addr:           addr,
		AllowedOrigins: parseListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

// WebhookConfig describes the remote chat endpoint.
type WebhookConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func loadWebhookConfig() (WebhookConfig, error) {
	rawURL := firstEnv("WEBHOOK_URL", "REACT_APP_WEBHOOK_URL")
	if rawURL == "" {
		rawURL = DefaultWebhookURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return WebhookConfig{}, fmt.Errorf("invalid WEBHOOK_URL value %q", rawURL)
	}

	timeout, err := parseOptionalIntEnv("WEBHOOK_TIMEOUT")
	if err != nil {
		return WebhookConfig{}, err
	}
	timeoutSeconds := 15
	if timeout != nil {
		if *timeout <= 0 {
			return WebhookConfig{}, fmt.Errorf("invalid WEBHOOK_TIMEOUT value %d: must be positive", *timeout)
		}
		timeoutSeconds = *timeout
	}

	return WebhookConfig{
		URL:     rawURL,
		APIKey:  firstEnv("WEBHOOK_API_KEY", "REACT_APP_API_KEY"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// WidgetConfig controls widget defaults.
type WidgetConfig struct {
	Language   string
	PersonaID  string
	SessionTTL time.Duration
	ThemeFile  string
}

func loadWidgetConfig() (WidgetConfig, error) {
	lang := locale.Normalize(getEnvOrDefault("WIDGET_LANGUAGE", locale.English))
	if !locale.Supported(lang) {
		return WidgetConfig{}, fmt.Errorf("invalid WIDGET_LANGUAGE value %q: supported %v", lang, locale.Languages())
	}

	ttl, err := parseOptionalIntEnv("SESSION_TTL")
	if err != nil {
		return WidgetConfig{}, err
	}
	ttlMinutes := 60
	if ttl != nil {
		if *ttl < 1 {
			ttlMinutes = 1
		} else {
			ttlMinutes = *ttl
		}
	}

	return WidgetConfig{
		Language:   lang,
		PersonaID:  getEnvOrDefault("WIDGET_PERSONA", "tinna"),
		SessionTTL: time.Duration(ttlMinutes) * time.Minute,
		ThemeFile:  strings.TrimSpace(os.Getenv("THEME_FILE")),
	}, nil
}

// LogConfig describes the optional rotating log file.
type LogConfig struct {
	File      string
	MaxSizeMB int
}

func loadLogConfig() (LogConfig, error) {
	maxSize, err := parseOptionalIntEnv("LOG_MAX_SIZE_MB")
	if err != nil {
		return LogConfig{}, err
	}
	size := 10
	if maxSize != nil && *maxSize > 0 {
		size = *maxSize
	}

	return LogConfig{
		File:      strings.TrimSpace(os.Getenv("LOG_FILE")),
		MaxSizeMB: size,
	}, nil
}

// TelemetryConfig toggles the OpenTelemetry file exporters.
type TelemetryConfig struct {
	Enabled bool
	Dir     string
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	enabled, err := parseBoolEnv("TELEMETRY_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, err
	}
	return TelemetryConfig{
		Enabled: enabled,
		Dir:     getEnvOrDefault("TELEMETRY_DIR", "logs"),
	}, nil
}

// AIConfig describes the model backends of the reference webhook.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int

	OpenAIAPIKey string
	OpenAIModel  string
}

// Enabled reports whether the Ark credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// OpenAIEnabled reports whether an OpenAI key is present.
func (c AIConfig) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// NewChatModel creates an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or ARK_ACCESS_KEY and ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("Model")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		OpenAIAPIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
	}, nil
}

// WebhookdConfig describes the reference webhook server.
type WebhookdConfig struct {
	Addr   string
	APIKey string
}

func loadWebhookdConfig() WebhookdConfig {
	addr := getEnvOrDefault("WEBHOOKD_ADDR", ":8090")
	return WebhookdConfig{
		Addr:   addr,
		APIKey: strings.TrimSpace(os.Getenv("WEBHOOKD_API_KEY")),
	}
}

func parseAddr(key, defaultPort string) (string, error) {
	port := strings.TrimSpace(os.Getenv(key))
	if port == "" {
		port = defaultPort
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid %s value: %q", key, port)
	}

	return ":" + port, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
