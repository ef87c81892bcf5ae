package persona

import (
	"testing"

	"github.com/lavashow/chat-widget/backend/internal/locale"
)

func TestGreetingPerLanguage(t *testing.T) {
	p := Seed()[0]
	if got := p.Greeting("is"); got != "Hæ! Ég er Tinna. Get ég aðstoðað þig?" {
		t.Fatalf("unexpected icelandic greeting %q", got)
	}
	if got := p.Greeting("fr"); got != locale.For("en").Greeting {
		t.Fatalf("expected catalog fallback, got %q", got)
	}
}

func TestResolveFallsBackToFirst(t *testing.T) {
	store := NewMemoryStore(Seed())
	p, ok := Resolve(store, "missing")
	if !ok || p.ID != "tinna" {
		t.Fatalf("expected tinna fallback, got %+v ok=%v", p, ok)
	}

	if _, ok := Resolve(NewMemoryStore(nil), ""); ok {
		t.Fatal("expected empty store to fail")
	}
}
