package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// newReplCmd runs the same chat loop as "serve" for local interactive
// testing against a live database and provider. The loop adds no timeout of
// its own; each message is still bounded by the orchestrator's configured
// message timeout.
func newReplCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Run the chat loop locally without the loop's own per-message timeout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runChatLoop(ctx, *cfgPath, false, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
