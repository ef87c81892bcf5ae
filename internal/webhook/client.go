// Package webhook delivers widget messages to the remote chat endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/lavashow/chat-widget/backend/internal/telemetry"
)

// ErrDelivery is the single failure category of the webhook: transport errors,
// non-2xx statuses and unreadable replies all wrap it.
var ErrDelivery = errors.New("webhook delivery failed")

const maxReplyBytes = 1 << 20

// Request is the JSON body posted to the webhook.
type Request struct {
	Message   string `json:"message"`
	Language  string `json:"language"`
	SessionID string `json:"sessionId"`
}

// TimeOption is a quick-reply suggestion sent back by the webhook.
type TimeOption struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// Reply is the JSON body returned by the webhook.
type Reply struct {
	Message         string       `json:"message"`
	ShowTimeButtons bool         `json:"showTimeButtons,omitempty"`
	TimeOptions     []TimeOption `json:"timeOptions,omitempty"`
}

// Options returns the time options that should be offered, or nil when the
// webhook did not ask for buttons.
func (r *Reply) Options() []TimeOption {
	if r == nil || !r.ShowTimeButtons {
		return nil
	}
	return r.TimeOptions
}

// Client posts messages to a single webhook URL.
type Client struct {
	url    string
	apiKey string
	http   *http.Client

	deliveries metric.Int64Counter
	failures   metric.Int64Counter
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a client for url. An empty apiKey omits the x-api-key header.
func NewClient(url, apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		url:    url,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	meter := telemetry.Meter()
	var err error
	c.deliveries, err = meter.Int64Counter("widget.webhook.deliveries",
		metric.WithDescription("Webhook requests sent by the chat widget"))
	if err != nil {
		log.Printf("[webhook] failed to create deliveries counter: %v", err)
	}
	c.failures, err = meter.Int64Counter("widget.webhook.failures",
		metric.WithDescription("Webhook requests that ended in a delivery failure"))
	if err != nil {
		log.Printf("[webhook] failed to create failures counter: %v", err)
	}
	return c
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	return c.url
}

// Send posts req and decodes the reply. Every error wraps ErrDelivery.
func (c *Client) Send(ctx context.Context, req Request) (*Reply, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "webhook.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("widget.session_id", req.SessionID),
		attribute.String("widget.language", req.Language),
	)

	c.count(ctx, c.deliveries)
	reply, err := c.send(ctx, req)
	if err != nil {
		c.count(ctx, c.failures)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return reply, nil
}

func (c *Client) send(ctx context.Context, req Request) (*Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrDelivery, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrDelivery, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %w", ErrDelivery, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %s body=%s", ErrDelivery, resp.Status, short(string(raw)))
	}

	var payload struct {
		Message         *string      `json:"message"`
		ShowTimeButtons bool         `json:"showTimeButtons"`
		TimeOptions     []TimeOption `json:"timeOptions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode reply: %w", ErrDelivery, err)
	}
	if payload.Message == nil {
		return nil, fmt.Errorf("%w: reply has no message field", ErrDelivery)
	}

	log.Printf("[webhook] session=%s status=%d bytes=%d took=%s", req.SessionID, resp.StatusCode, len(raw), time.Since(start))

	return &Reply{
		Message:         *payload.Message,
		ShowTimeButtons: payload.ShowTimeButtons,
		TimeOptions:     payload.TimeOptions,
	}, nil
}

func (c *Client) count(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
