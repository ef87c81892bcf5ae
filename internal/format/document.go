package format

import "strings"

// BlockKind identifies how a single line of a reply is presented.
type BlockKind string

const (
	BlockHeading BlockKind = "heading"
	BlockBullet  BlockKind = "bullet"
	BlockText    BlockKind = "text"
	BlockBreak   BlockKind = "break"
)

// InlineKind identifies a run of content inside a block.
type InlineKind string

const (
	InlineText   InlineKind = "text"
	InlineButton InlineKind = "button"
	InlineURL    InlineKind = "url"
)

// Inline is a run of text or a link. Links carry the category picked by the
// classifier; plain text leaves URL and Category empty.
type Inline struct {
	Kind     InlineKind `json:"kind"`
	Text     string     `json:"text"`
	URL      string     `json:"url,omitempty"`
	Category Category   `json:"category,omitempty"`
}

// IsLink reports whether the inline is a button or a bare URL link.
func (i Inline) IsLink() bool {
	return i.Kind == InlineButton || i.Kind == InlineURL
}

// Block is one rendered line.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Inlines []Inline  `json:"inlines,omitempty"`
	// Muted marks pricing lines that are shown in a subdued colour.
	Muted bool `json:"muted,omitempty"`
}

// Paragraph is an independent vertical group of blocks.
type Paragraph []Block

// Document is the parsed form of a whole message, in input order.
type Document []Paragraph

// LinkMatch is a link found in a document.
type LinkMatch struct {
	DisplayText string   `json:"displayText"`
	URL         string   `json:"url"`
	Category    Category `json:"category"`
}

// Empty reports whether the document renders nothing.
func (d Document) Empty() bool {
	return len(d) == 0
}

// Blocks flattens the document into its blocks, paragraph by paragraph.
func (d Document) Blocks() []Block {
	var out []Block
	for _, p := range d {
		out = append(out, p...)
	}
	return out
}

// Links returns every link of the document in order of appearance.
func Links(doc Document) []LinkMatch {
	var out []LinkMatch
	for _, p := range doc {
		for _, b := range p {
			for _, in := range b.Inlines {
				if !in.IsLink() {
					continue
				}
				out = append(out, LinkMatch{DisplayText: in.Text, URL: in.URL, Category: in.Category})
			}
		}
	}
	return out
}

// PlainText renders the document without markup. Paragraphs are separated by a
// blank line, bullets get a "• " prefix and button links become "label (url)".
func PlainText(doc Document) string {
	var sb strings.Builder
	for pi, p := range doc {
		if pi > 0 {
			sb.WriteString("\n\n")
		}
		for bi, b := range p {
			if bi > 0 {
				sb.WriteByte('\n')
			}
			if b.Kind == BlockBullet {
				sb.WriteString("• ")
			}
			for _, in := range b.Inlines {
				switch in.Kind {
				case InlineButton:
					sb.WriteString(in.Text)
					sb.WriteString(" (")
					sb.WriteString(in.URL)
					sb.WriteString(")")
				default:
					sb.WriteString(in.Text)
				}
			}
		}
	}
	return sb.String()
}
