package render

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lavashow/chat-widget/backend/internal/format"
)

// ErrInvalidTheme reports a theme file with unusable values.
var ErrInvalidTheme = errors.New("invalid theme")

var (
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	fontPattern  = regexp.MustCompile(`^[A-Za-z0-9 ,'\-]+$`)
	sizePattern  = regexp.MustCompile(`^[0-9]+(?:px|em|rem)$`)
)

// LinkStyle is the look of one link category.
type LinkStyle struct {
	Background  string
	Icon        string
	PaddingLeft string
}

// Theme is the style record the renderer resolves every block and link
// against. All fields are values, so a copy can never alter the theme it came
// from.
type Theme struct {
	Name        string
	Primary     string
	Accent      string
	Font        string
	TextColor   string
	MutedColor  string
	LinkColor   string
	UserBubble  string
	BotBubble   string
	Maps        LinkStyle
	Tickets     LinkStyle
	Location    LinkStyle
	Generic     LinkStyle
	keywordMaps []string
	keywordTix  []string
	keywordLoc  []string
}

// DefaultTheme returns the Lava Show palette.
func DefaultTheme() Theme {
	return Theme{
		Name:       "lava",
		Primary:    "#FF4B12",
		Accent:     "#FF4C1D",
		Font:       "'Helvetica Neue', Arial, sans-serif",
		TextColor:  "#333333",
		MutedColor: "#666",
		LinkColor:  "#333333",
		UserBubble: "#FF4B12",
		BotBubble:  "#f8f8f8",
		Maps:       LinkStyle{Background: "#f2f2f2", Icon: "📍", PaddingLeft: "28px"},
		Tickets:    LinkStyle{Background: "#FFE8E3"},
		Location:   LinkStyle{Background: "#FFF0EB"},
		Generic:    LinkStyle{Background: "#f2f2f2"},
	}
}

// LinkStyle returns the style for category c.
func (t Theme) LinkStyle(c format.Category) LinkStyle {
	switch c {
	case format.CategoryMaps:
		return t.Maps
	case format.CategoryTickets:
		return t.Tickets
	case format.CategoryLocation:
		return t.Location
	default:
		return t.Generic
	}
}

// Classifier returns the link classifier for this theme. Themes without
// keyword overrides use the default rules.
func (t Theme) Classifier() format.Classifier {
	def := format.DefaultClassifier().Rules()
	pick := func(override []string, fallback format.Rule) format.Rule {
		if len(override) == 0 {
			return fallback
		}
		return format.Rule{Category: fallback.Category, Keywords: override}
	}
	return format.NewClassifier(
		pick(t.keywordMaps, def[0]),
		pick(t.keywordTix, def[1]),
		pick(t.keywordLoc, def[2]),
	)
}

func (t Theme) headingStyle() template.CSS {
	return template.CSS(fmt.Sprintf("font-weight:600;color:%s;margin:10px 0;font-size:15px", t.Accent))
}

func (t Theme) bulletStyle() template.CSS {
	return "margin:8px 0;padding-left:20px;position:relative"
}

func (t Theme) textStyle(first, muted bool) template.CSS {
	margin := "8px 0"
	if first {
		margin = "0"
	}
	color := "inherit"
	if muted {
		color = t.MutedColor
	}
	return template.CSS(fmt.Sprintf("margin:%s;color:%s", margin, color))
}

func (t Theme) buttonStyle(c format.Category) template.CSS {
	ls := t.LinkStyle(c)
	var sb strings.Builder
	fmt.Fprintf(&sb, "color:%s;text-decoration:none;background-color:%s;padding:6px 12px;", t.LinkColor, ls.Background)
	sb.WriteString("border-radius:4px;display:inline-block;margin-top:8px;font-size:14px;font-weight:500;border:1px solid #e0e0e0")
	if ls.PaddingLeft != "" {
		fmt.Fprintf(&sb, ";padding-left:%s;position:relative", ls.PaddingLeft)
	}
	return template.CSS(sb.String())
}

func (t Theme) urlStyle() template.CSS {
	return template.CSS(fmt.Sprintf("color:%s;text-decoration:underline;font-weight:500", t.Accent))
}

type themeFile struct {
	Name       string              `toml:"name"`
	Primary    string              `toml:"primary"`
	Accent     string              `toml:"accent"`
	Font       string              `toml:"font"`
	TextColor  string              `toml:"text_color"`
	MutedColor string              `toml:"muted_color"`
	LinkColor  string              `toml:"link_color"`
	UserBubble string              `toml:"user_bubble"`
	BotBubble  string              `toml:"bot_bubble"`
	Links      map[string]linkFile `toml:"links"`
	Keywords   map[string][]string `toml:"keywords"`
}

type linkFile struct {
	Background  string `toml:"background"`
	Icon        string `toml:"icon"`
	PaddingLeft string `toml:"padding_left"`
}

// LoadTheme overlays the TOML file at path on DefaultTheme. An empty path
// returns the default theme.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme %s: %w", path, err)
	}
	return ParseTheme(string(data))
}

// ParseTheme overlays TOML source on DefaultTheme.
func ParseTheme(src string) (Theme, error) {
	theme := DefaultTheme()

	var file themeFile
	meta, err := toml.Decode(src, &file)
	if err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Theme{}, fmt.Errorf("%w: unknown key %s", ErrInvalidTheme, undecoded[0])
	}

	if file.Name != "" {
		theme.Name = file.Name
	}
	colors := []struct {
		key string
		src string
		dst *string
	}{
		{"primary", file.Primary, &theme.Primary},
		{"accent", file.Accent, &theme.Accent},
		{"text_color", file.TextColor, &theme.TextColor},
		{"muted_color", file.MutedColor, &theme.MutedColor},
		{"link_color", file.LinkColor, &theme.LinkColor},
		{"user_bubble", file.UserBubble, &theme.UserBubble},
		{"bot_bubble", file.BotBubble, &theme.BotBubble},
	}
	for _, c := range colors {
		if c.src == "" {
			continue
		}
		if !colorPattern.MatchString(c.src) {
			return Theme{}, fmt.Errorf("%w: %s must be a hex colour, got %q", ErrInvalidTheme, c.key, c.src)
		}
		*c.dst = c.src
	}
	if file.Font != "" {
		if !fontPattern.MatchString(file.Font) {
			return Theme{}, fmt.Errorf("%w: font %q", ErrInvalidTheme, file.Font)
		}
		theme.Font = file.Font
	}

	for name, lf := range file.Links {
		var dst *LinkStyle
		switch format.Category(name) {
		case format.CategoryMaps:
			dst = &theme.Maps
		case format.CategoryTickets:
			dst = &theme.Tickets
		case format.CategoryLocation:
			dst = &theme.Location
		case format.CategoryGeneric:
			dst = &theme.Generic
		default:
			return Theme{}, fmt.Errorf("%w: unknown link category %q", ErrInvalidTheme, name)
		}
		if lf.Background != "" {
			if !colorPattern.MatchString(lf.Background) {
				return Theme{}, fmt.Errorf("%w: links.%s.background %q", ErrInvalidTheme, name, lf.Background)
			}
			dst.Background = lf.Background
		}
		if lf.PaddingLeft != "" {
			if !sizePattern.MatchString(lf.PaddingLeft) {
				return Theme{}, fmt.Errorf("%w: links.%s.padding_left %q", ErrInvalidTheme, name, lf.PaddingLeft)
			}
			dst.PaddingLeft = lf.PaddingLeft
		}
		if lf.Icon != "" {
			dst.Icon = lf.Icon
		}
	}

	for name, words := range file.Keywords {
		words = append([]string(nil), words...)
		switch format.Category(name) {
		case format.CategoryMaps:
			theme.keywordMaps = words
		case format.CategoryTickets:
			theme.keywordTix = words
		case format.CategoryLocation:
			theme.keywordLoc = words
		default:
			return Theme{}, fmt.Errorf("%w: keywords for %q are not supported", ErrInvalidTheme, name)
		}
	}

	return theme, nil
}

// Stylesheet returns the page-level CSS for the floating widget.
func (t Theme) Stylesheet() template.CSS {
	var sb strings.Builder
	fmt.Fprintf(&sb, ".lava-widget{position:fixed;bottom:20px;right:20px;width:260px;background-color:%s;border-radius:40px;box-shadow:0 8px 32px rgba(0,0,0,0.2);font-family:%s;overflow:hidden;transition:all 0.3s ease}\n", t.Primary, t.Font)
	sb.WriteString(".lava-widget[data-state=expanded],.lava-widget[data-state=sending]{width:400px;border-radius:12px}\n")
	sb.WriteString(".lava-header{padding:16px 20px;display:flex;align-items:center;gap:12px;cursor:pointer;color:#fff}\n")
	sb.WriteString(".lava-header img{width:32px;height:32px;border-radius:50%;object-fit:cover}\n")
	sb.WriteString(".lava-body{display:none}\n")
	sb.WriteString(".lava-widget[data-state=expanded] .lava-body,.lava-widget[data-state=sending] .lava-body{display:block}\n")
	sb.WriteString(".lava-log{height:400px;background:#fff;overflow-y:auto;padding:16px}\n")
	fmt.Fprintf(&sb, ".lava-bubble{max-width:70%%;padding:12px 16px;border-radius:16px;font-size:14px;line-height:1.5;margin-bottom:12px;background-color:%s;color:%s}\n", t.BotBubble, t.TextColor)
	fmt.Fprintf(&sb, ".lava-bubble-user{margin-left:auto;background-color:%s;color:#fff}\n", t.UserBubble)
	sb.WriteString(".lava-typing{display:none;color:#93918f;font-size:13px;padding:0 16px 8px}\n")
	sb.WriteString(".lava-widget[data-state=sending] .lava-typing{display:block}\n")
	sb.WriteString(".lava-input{display:flex;gap:8px;padding:12px 16px;background:#fff;border-top:1px solid rgba(0,0,0,0.1)}\n")
	sb.WriteString(".lava-input input{flex:1;padding:10px 16px;border-radius:20px;border:1px solid #ddd;outline:none;font-size:14px}\n")
	fmt.Fprintf(&sb, ".lava-input button,.lava-time{background-color:%s;color:#fff;border:none;padding:10px 24px;border-radius:20px;cursor:pointer;font-weight:600}\n", t.Primary)
	fmt.Fprintf(&sb, ".lava-link:hover{background-color:#e9e9e9;color:%s}\n", t.Accent)
	return template.CSS(sb.String())
}
