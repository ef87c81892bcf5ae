package format

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Category
	}{
		{name: "google maps", url: "https://maps.google.com/x", want: CategoryMaps},
		{name: "location path wins as maps", url: "https://lavashow.com/location/vik", want: CategoryMaps},
		{name: "ticket", url: "https://lavashow.com/tickets", want: CategoryTickets},
		{name: "booking", url: "https://example.com/book", want: CategoryTickets},
		{name: "reykjavik", url: "https://lavashow.com/reykjavik", want: CategoryLocation},
		{name: "hella", url: "https://lavashow.com/hella", want: CategoryLocation},
		{name: "maps beats tickets", url: "https://maps.example.com/book", want: CategoryMaps},
		{name: "case sensitive", url: "https://lavashow.com/Reykjavik", want: CategoryGeneric},
		{name: "generic", url: "https://lavashow.com/about", want: CategoryGeneric},
		{name: "empty", url: "", want: CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.url, got, tt.want)
			}
		})
	}
}

func TestNewClassifierCopiesRules(t *testing.T) {
	keywords := []string{"vik"}
	c := NewClassifier(Rule{Category: CategoryLocation, Keywords: keywords})
	keywords[0] = "other"

	if got := c.Classify("https://lavashow.com/vik"); got != CategoryLocation {
		t.Fatalf("expected location, got %s", got)
	}
}

func TestClassifierIgnoresEmptyKeyword(t *testing.T) {
	c := NewClassifier(Rule{Category: CategoryTickets, Keywords: []string{""}})
	if got := c.Classify("https://lavashow.com"); got != CategoryGeneric {
		t.Fatalf("expected generic, got %s", got)
	}
}

func TestFormatterUsesCustomClassifier(t *testing.T) {
	f := NewFormatter(NewClassifier(Rule{Category: CategoryTickets, Keywords: []string{"shop"}}))
	links := Links(f.Parse("[Shop](https://lavashow.com/shop)"))
	if len(links) != 1 || links[0].Category != CategoryTickets {
		t.Fatalf("unexpected links %#v", links)
	}
}
