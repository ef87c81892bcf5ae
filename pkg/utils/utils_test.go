package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusConflict, "busy")

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if got := strings.TrimSpace(resp.Body.String()); got != `{"error":"busy"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestSendSSEChunk(t *testing.T) {
	resp := httptest.NewRecorder()
	SetupSSEHeaders(resp)
	SendSSEChunk(resp, resp, map[string]string{"event": "typing"})

	if resp.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
	if resp.Body.String() != "data: {\"event\":\"typing\"}\n\n" {
		t.Fatalf("unexpected chunk %q", resp.Body.String())
	}
	if !resp.Flushed {
		t.Fatal("expected flush")
	}
}
