package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lavashow/chat-widget/backend/internal/format"
	"github.com/lavashow/chat-widget/backend/internal/handler/view"
	"github.com/lavashow/chat-widget/backend/internal/render"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputHTML = "html"
)

func newFormatCmd() *cobra.Command {
	var (
		output    string
		themeFile string
	)

	cmd := &cobra.Command{
		Use:   "format [file|-]",
		Short: "Parse bot message markup and print the result",
		Long: `Parse a bot message written in the widget markup (**headings**, '-' bullets,
[label](url) buttons, bare URLs) and print it as plain text, JSON or HTML.

Without an argument, or with '-', the message is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if themeFile == "" {
				themeFile = os.Getenv("THEME_FILE")
			}
			theme, err := render.LoadTheme(themeFile)
			if err != nil {
				return err
			}
			renderer, err := render.NewRenderer(theme)
			if err != nil {
				return err
			}
			return writeFormatted(cmd.OutOrStdout(), renderer, src, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or html")
	cmd.Flags().StringVar(&themeFile, "theme", "", "theme TOML file (default $THEME_FILE)")
	return cmd
}

func readSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeFormatted(w io.Writer, renderer *render.Renderer, text, output string) error {
	switch output {
	case outputText:
		_, err := fmt.Fprintln(w, format.PlainText(renderer.Formatter().Parse(text)))
		return err
	case outputHTML:
		_, html := renderer.Message(text)
		_, err := fmt.Fprintln(w, html)
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view.NewFormatted(renderer, text))
	default:
		return fmt.Errorf("unknown output %q: use text, json or html", output)
	}
}
