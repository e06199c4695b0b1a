package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kochurovskyi/sqlbot/internal/orchestrator"
)

// newServeCmd wires the full dependency graph and runs the chat loop with
// each message bounded by the configured per-message timeout. The chat
// transport itself (reading stdin, writing stdout) stands in for whatever
// external frontend is actually in front of the orchestrator; that
// transport is an external collaborator, not something this module owns.
func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat loop with per-message timeouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runChatLoop(ctx, *cfgPath, true, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChatLoop wires the app and drives a single-thread, line-oriented
// request/response loop until EOF or ctx cancellation. withTimeout makes
// the loop bound each turn by the configured message timeout; repl sets it
// false. The orchestrator applies the same configured timeout inside
// Process either way.
func runChatLoop(ctx context.Context, cfgPath string, withTimeout bool, in io.Reader, out io.Writer) error {
	a, err := buildApp(ctx, cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	threadID := uuid.NewString()
	fmt.Fprintf(out, "sqlbot ready (thread %s). Ctrl-D to exit.\n", threadID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		reqCtx := ctx
		var cancel context.CancelFunc
		if withTimeout && a.messageTimeout > 0 {
			reqCtx, cancel = context.WithTimeout(ctx, a.messageTimeout)
		}

		err := streamReply(reqCtx, a.orch, threadID, line, out)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			a.logger.Error("process message", "error", err)
			fmt.Fprintf(out, "error: %v\n", err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
	}
	return scanner.Err()
}

// streamReply drives the orchestrator's chunk-sequence entry point and
// prints each chunk it receives, overwriting the previous one on the same
// line: a "thinking…" placeholder first, then the final answer.
func streamReply(ctx context.Context, orch *orchestrator.Orchestrator, threadID, line string, out io.Writer) error {
	chunks := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- orch.Stream(ctx, threadID, line, chunks)
	}()

	first := true
	for chunk := range chunks {
		if !first {
			fmt.Fprint(out, "\r")
		}
		fmt.Fprint(out, chunk)
		first = false
	}
	fmt.Fprintln(out)
	return <-errCh
}
