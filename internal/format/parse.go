// Package format turns bot replies into a document of typed nodes.
//
// The accepted dialect is small: blank-line separated paragraphs, "**" headings,
// "-" bullets, "[label](url)" button links and bare http(s) URLs. Parsing never
// fails; unknown syntax is kept as text.
package format

import (
	"regexp"
	"strings"
)

var (
	// [Book now](https://...) with optional whitespace between "]" and "(".
	// Matching is lazy and left to right, so the first complete match wins and
	// brackets never nest.
	buttonLinkPattern = regexp.MustCompile(`\[(.*?)\]\s*\((.*?)\)`)

	rawURLPattern = regexp.MustCompile(`https?://[^\s]+`)
)

const (
	headingMarker = "**"
	bulletMarker  = "-"
	pricingMarker = "Pricing:"
)

// Formatter parses text with a fixed classifier. The zero value is not usable;
// construct it with NewFormatter.
type Formatter struct {
	classifier Classifier
}

// NewFormatter creates a formatter that classifies links with c.
func NewFormatter(c Classifier) Formatter {
	return Formatter{classifier: c}
}

// Parse formats text with the default classifier.
func Parse(text string) Document {
	return NewFormatter(DefaultClassifier()).Parse(text)
}

// Classifier returns the classifier used for links.
func (f Formatter) Classifier() Classifier {
	return f.classifier
}

// Parse splits text into paragraphs and lines and classifies every line.
func (f Formatter) Parse(text string) Document {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	paragraphs := strings.Split(text, "\n\n")
	doc := make(Document, 0, len(paragraphs))
	for _, raw := range paragraphs {
		lines := strings.Split(raw, "\n")
		p := make(Paragraph, 0, len(lines))
		for _, line := range lines {
			p = append(p, f.parseLine(line))
		}
		doc = append(doc, p)
	}
	return doc
}

func (f Formatter) parseLine(line string) Block {
	// An unclosed marker still turns the whole line into a heading.
	if strings.Contains(line, headingMarker) {
		return Block{
			Kind:    BlockHeading,
			Inlines: f.Inlines(strings.ReplaceAll(line, headingMarker, "")),
		}
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, bulletMarker) {
		return Block{
			Kind:    BlockBullet,
			Inlines: f.Inlines(strings.TrimSpace(strings.TrimPrefix(trimmed, bulletMarker))),
		}
	}

	if trimmed != "" {
		return Block{
			Kind:    BlockText,
			Inlines: f.Inlines(line),
			Muted:   strings.Contains(line, pricingMarker),
		}
	}

	return Block{Kind: BlockBreak}
}

// Inlines scans a single line for button links first and then linkifies bare
// URLs in the text around them.
func (f Formatter) Inlines(line string) []Inline {
	matches := buttonLinkPattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return f.urls(line)
	}

	out := make([]Inline, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, f.urls(line[last:m[0]])...)
		}
		label, url := line[m[2]:m[3]], line[m[4]:m[5]]
		out = append(out, Inline{
			Kind:     InlineButton,
			Text:     label,
			URL:      url,
			Category: f.classifier.Classify(url),
		})
		last = m[1]
	}
	if last < len(line) {
		out = append(out, f.urls(line[last:])...)
	}
	return out
}

func (f Formatter) urls(text string) []Inline {
	if text == "" {
		return nil
	}

	matches := rawURLPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Inline{{Kind: InlineText, Text: text}}
	}

	out := make([]Inline, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, Inline{Kind: InlineText, Text: text[last:m[0]]})
		}
		url := text[m[0]:m[1]]
		out = append(out, Inline{
			Kind:     InlineURL,
			Text:     url,
			URL:      url,
			Category: f.classifier.Classify(url),
		})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Inline{Kind: InlineText, Text: text[last:]})
	}
	return out
}
