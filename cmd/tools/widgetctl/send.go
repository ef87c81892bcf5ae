package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lavashow/chat-widget/backend/internal/config"
	"github.com/lavashow/chat-widget/backend/internal/format"
	"github.com/lavashow/chat-widget/backend/internal/locale"
	"github.com/lavashow/chat-widget/backend/internal/webhook"
)

type sendOptions struct {
	url       string
	apiKey    string
	language  string
	sessionID string
	timeout   time.Duration
}

func newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to the chat webhook and print the reply",
		Long: `Send one message to the chat webhook, exactly as the widget would, and print
the formatted reply followed by any offered show times.

When the webhook cannot be reached or answers with an error, the localized
apology the widget would show is printed and the command exits with status 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if opts.url == "" {
				opts.url = cfg.Webhook.URL
			}
			if opts.apiKey == "" {
				opts.apiKey = cfg.Webhook.APIKey
			}
			if opts.timeout <= 0 {
				opts.timeout = cfg.Webhook.Timeout
			}
			return runSend(cmd.Context(), cmd.OutOrStdout(), opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "webhook URL (default $WEBHOOK_URL)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "x-api-key header (default $WEBHOOK_API_KEY)")
	cmd.Flags().StringVarP(&opts.language, "lang", "l", locale.English, "message language: en or is")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "session id (default a new uuid)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (default $WEBHOOK_TIMEOUT)")
	return cmd
}

func runSend(ctx context.Context, out io.Writer, opts sendOptions, message string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("message is empty")
	}
	if opts.sessionID == "" {
		opts.sessionID = uuid.NewString()
	}
	lang := locale.For(opts.language).Language

	client := webhook.NewClient(opts.url, opts.apiKey, opts.timeout)
	reply, err := client.Send(ctx, webhook.Request{
		Message:   message,
		Language:  lang,
		SessionID: opts.sessionID,
	})
	if err != nil {
		fmt.Fprintln(out, locale.For(lang).Apology)
		return err
	}

	fmt.Fprintln(out, format.PlainText(format.Parse(reply.Message)))
	if options := reply.Options(); len(options) > 0 {
		fmt.Fprintln(out)
		for _, opt := range options {
			fmt.Fprintf(out, "[%s] %s\n", opt.Time, opt.Text)
		}
	}
	return nil
}
