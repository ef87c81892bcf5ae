package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "widgetctl",
		Short: "Inspect Lava Show chat widget messages",
		Long: `widgetctl renders bot messages the way the chat widget does and sends
test messages to the configured webhook.

Configuration is read from the environment (and .env), the same variables the
widget backend uses: WEBHOOK_URL, WEBHOOK_API_KEY, WEBHOOK_TIMEOUT, THEME_FILE.`,
		SilenceUsage: true,
	}

	root.AddCommand(newFormatCmd())
	root.AddCommand(newSendCmd())
	return root
}
