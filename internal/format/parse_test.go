package format

import (
	"reflect"
	"testing"
)

func TestParseEmptyInput(t *testing.T) {
	if doc := Parse(""); !doc.Empty() {
		t.Fatalf("expected empty document, got %#v", doc)
	}
}

func TestParsePlainLinesKeepOrder(t *testing.T) {
	doc := Parse("first line\nsecond line\nthird line")

	blocks := doc.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	want := []string{"first line", "second line", "third line"}
	for i, b := range blocks {
		if b.Kind != BlockText {
			t.Fatalf("block %d: expected text, got %s", i, b.Kind)
		}
		if len(b.Inlines) != 1 || b.Inlines[0].Text != want[i] {
			t.Fatalf("block %d: unexpected inlines %#v", i, b.Inlines)
		}
	}
}

func TestParseParagraphs(t *testing.T) {
	doc := Parse("one\ntwo\n\nthree")
	if len(doc) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(doc))
	}
	if len(doc[0]) != 2 || len(doc[1]) != 1 {
		t.Fatalf("unexpected paragraph sizes: %d, %d", len(doc[0]), len(doc[1]))
	}
}

func TestParseNormalizesCRLF(t *testing.T) {
	doc := Parse("one\r\n\r\ntwo")
	if len(doc) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(doc))
	}
}

func TestParseHeading(t *testing.T) {
	doc := Parse("**Heading**")
	b := doc[0][0]
	if b.Kind != BlockHeading {
		t.Fatalf("expected heading, got %s", b.Kind)
	}
	if len(b.Inlines) != 1 || b.Inlines[0].Text != "Heading" {
		t.Fatalf("expected markers stripped, got %#v", b.Inlines)
	}
}

func TestParseUnclosedHeadingMarker(t *testing.T) {
	b := Parse("Lava **Show tickets")[0][0]
	if b.Kind != BlockHeading {
		t.Fatalf("expected heading for unclosed marker, got %s", b.Kind)
	}
	if got := b.Inlines[0].Text; got != "Lava Show tickets" {
		t.Fatalf("unexpected heading text %q", got)
	}
}

func TestParseHeadingWinsOverBullet(t *testing.T) {
	b := Parse("- **Premium** package")[0][0]
	if b.Kind != BlockHeading {
		t.Fatalf("expected heading, got %s", b.Kind)
	}
}

func TestParseBullet(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "- item one", want: "item one"},
		{input: "   -item two", want: "item two"},
		{input: "-  spaced  ", want: "spaced"},
	}

	for _, tc := range cases {
		b := Parse(tc.input)[0][0]
		if b.Kind != BlockBullet {
			t.Fatalf("Parse(%q) kind = %s, want bullet", tc.input, b.Kind)
		}
		if len(b.Inlines) != 1 || b.Inlines[0].Text != tc.want {
			t.Fatalf("Parse(%q) inlines = %#v, want %q", tc.input, b.Inlines, tc.want)
		}
	}
}

func TestParseEmptyLineIsBreak(t *testing.T) {
	doc := Parse("top\n   \nbottom")
	kinds := []BlockKind{}
	for _, b := range doc.Blocks() {
		kinds = append(kinds, b.Kind)
	}
	want := []BlockKind{BlockText, BlockBreak, BlockText}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
}

func TestParsePricingLineIsMuted(t *testing.T) {
	doc := Parse("Pricing: 5.990 ISK\nOpen daily")
	blocks := doc.Blocks()
	if !blocks[0].Muted {
		t.Fatal("expected pricing line to be muted")
	}
	if blocks[1].Muted {
		t.Fatal("expected regular line not to be muted")
	}
}

func TestParseButtonLink(t *testing.T) {
	b := Parse("Get yours: [Book now](https://example.com/book) today")[0][0]

	want := []Inline{
		{Kind: InlineText, Text: "Get yours: "},
		{Kind: InlineButton, Text: "Book now", URL: "https://example.com/book", Category: CategoryTickets},
		{Kind: InlineText, Text: " today"},
	}
	if !reflect.DeepEqual(b.Inlines, want) {
		t.Fatalf("inlines = %#v, want %#v", b.Inlines, want)
	}
}

func TestParseButtonLinkAllowsSpaceBeforeURL(t *testing.T) {
	links := Links(Parse("[Directions] (https://maps.google.com/?q=hella)"))
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].DisplayText != "Directions" || links[0].Category != CategoryMaps {
		t.Fatalf("unexpected link %#v", links[0])
	}
}

func TestParseBareURL(t *testing.T) {
	b := Parse("Find us at https://maps.google.com/x")[0][0]
	if len(b.Inlines) != 2 {
		t.Fatalf("expected 2 inlines, got %#v", b.Inlines)
	}
	link := b.Inlines[1]
	if link.Kind != InlineURL || link.URL != "https://maps.google.com/x" || link.Category != CategoryMaps {
		t.Fatalf("unexpected link inline %#v", link)
	}
}

func TestParseMixedLinks(t *testing.T) {
	text := "[Tickets](https://lavashow.com/tickets) or see https://lavashow.com/about"
	links := Links(Parse(text))

	want := []LinkMatch{
		{DisplayText: "Tickets", URL: "https://lavashow.com/tickets", Category: CategoryTickets},
		{DisplayText: "https://lavashow.com/about", URL: "https://lavashow.com/about", Category: CategoryGeneric},
	}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("links = %#v, want %#v", links, want)
	}
}

func TestParseButtonURLIsNotLinkifiedTwice(t *testing.T) {
	links := Links(Parse("[Visit](https://lavashow.com)"))
	if len(links) != 1 {
		t.Fatalf("expected exactly one link, got %#v", links)
	}
}

func TestParseNestedBracketsFirstMatchWins(t *testing.T) {
	links := Links(Parse("[a [b](https://x.test/u)"))
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %#v", links)
	}
	if links[0].DisplayText != "a [b" {
		t.Fatalf("unexpected label %q", links[0].DisplayText)
	}
}

func TestParseMalformedLinkStaysText(t *testing.T) {
	b := Parse("[broken](no closing")[0][0]
	if len(b.Inlines) != 1 || b.Inlines[0].Kind != InlineText {
		t.Fatalf("expected a single text inline, got %#v", b.Inlines)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	text := "**Packages**\n- [Book](https://lavashow.com/book)\n\nVisit https://maps.google.com/lava"
	first := Parse(text)
	second := Parse(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical documents for identical input")
	}
}

func TestLinksReclassifyIdentically(t *testing.T) {
	text := "[Book now](https://example.com/book)\nhttps://maps.google.com/x\n[Hella](https://lavashow.com/hella)\nhttps://lavashow.com"
	for _, link := range Links(Parse(text)) {
		if got := Classify(link.URL); got != link.Category {
			t.Fatalf("Classify(%q) = %s, want %s", link.URL, got, link.Category)
		}

		again := Links(Parse("[" + link.DisplayText + "](" + link.URL + ")"))
		if len(again) != 1 || again[0].Category != link.Category {
			t.Fatalf("re-formatting %q changed classification: %#v", link.URL, again)
		}
	}
}

func TestPlainText(t *testing.T) {
	text := "**Hours**\n- [Book](https://lavashow.com/book)\n\nSee you"
	got := PlainText(Parse(text))
	want := "Hours\n• Book (https://lavashow.com/book)\n\nSee you"
	if got != want {
		t.Fatalf("PlainText = %q, want %q", got, want)
	}
}
