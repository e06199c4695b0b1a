// Command sqlbot wires the configured provider, agents, and orchestrator
// into a runnable process: "serve" and "repl" run the chat loop, and
// "validate-sql" exercises the SQL Validator standalone.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "sqlbot",
		Short: "A multi-agent chatbot over a read-only SQL table",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a sqlbot.toml config file")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newReplCmd(&cfgPath))
	root.AddCommand(newValidateSQLCmd(&cfgPath))
	return root
}
