// Package render turns parsed widget messages into HTML using a Theme.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"

	"github.com/lavashow/chat-widget/backend/internal/format"
	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/model/persona"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static exposes the widget script and images.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type inlineView struct {
	Link     bool
	Text     string
	URL      string
	Icon     string
	Category string
	Style    template.CSS
}

type blockView struct {
	Kind    string
	Style   template.CSS
	Inlines []inlineView
}

type paragraphView struct {
	Blocks []blockView
	Style  template.CSS
}

// PageData feeds the demo page.
type PageData struct {
	Persona  persona.Persona
	Strings  locale.Strings
	Greeting template.HTML
	APIBase  string
}

type pageView struct {
	PageData
	Theme Theme
}

// Renderer renders documents and the demo page for one theme.
type Renderer struct {
	theme     Theme
	formatter format.Formatter
	tmpl      *template.Template
}

// NewRenderer parses the embedded templates for theme.
func NewRenderer(theme Theme) (*Renderer, error) {
	tmpl, err := template.New("render").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		theme:     theme,
		formatter: format.NewFormatter(theme.Classifier()),
		tmpl:      tmpl,
	}, nil
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() Theme {
	return r.theme
}

// Formatter returns the formatter bound to the theme's link keywords.
func (r *Renderer) Formatter() format.Formatter {
	return r.formatter
}

// Message parses text and renders it in one step.
func (r *Renderer) Message(text string) (format.Document, template.HTML) {
	doc := r.formatter.Parse(text)
	return doc, r.Document(doc)
}

// Document renders doc. All text is escaped and links open in a new tab.
func (r *Renderer) Document(doc format.Document) template.HTML {
	if doc.Empty() {
		return ""
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "document", r.view(doc)); err != nil {
		log.Printf("[render] document template failed: %v", err)
		return ""
	}
	return template.HTML(buf.String())
}

// Page writes the demo page with the floating widget.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if err := r.tmpl.ExecuteTemplate(w, "page", pageView{PageData: data, Theme: r.theme}); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func (r *Renderer) view(doc format.Document) []paragraphView {
	out := make([]paragraphView, 0, len(doc))
	for pi, p := range doc {
		pv := paragraphView{Blocks: make([]blockView, 0, len(p))}
		if pi < len(doc)-1 {
			pv.Style = "margin-bottom:16px"
		}
		for bi, b := range p {
			bv := blockView{Kind: string(b.Kind), Inlines: r.inlines(b.Inlines)}
			switch b.Kind {
			case format.BlockHeading:
				bv.Style = r.theme.headingStyle()
			case format.BlockBullet:
				bv.Style = r.theme.bulletStyle()
			case format.BlockText:
				bv.Style = r.theme.textStyle(bi == 0, b.Muted)
			}
			pv.Blocks = append(pv.Blocks, bv)
		}
		out = append(out, pv)
	}
	return out
}

func (r *Renderer) inlines(in []format.Inline) []inlineView {
	out := make([]inlineView, 0, len(in))
	for _, i := range in {
		v := inlineView{Text: i.Text}
		switch i.Kind {
		case format.InlineButton:
			v.Link = true
			v.URL = i.URL
			v.Category = string(i.Category)
			v.Icon = r.theme.LinkStyle(i.Category).Icon
			v.Style = r.theme.buttonStyle(i.Category)
		case format.InlineURL:
			v.Link = true
			v.URL = i.URL
			v.Category = string(i.Category)
			v.Style = r.theme.urlStyle()
		}
		out = append(out, v)
	}
	return out
}
