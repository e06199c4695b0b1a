package main

import (
	"fmt"

	"github.com/kochurovskyi/sqlbot/internal/config"
	"github.com/kochurovskyi/sqlbot/internal/validator"
	"github.com/spf13/cobra"
)

// newValidateSQLCmd runs the SQL Validator standalone against a statement
// argument, useful for a CI check of generated queries without standing up
// the rest of the process.
func newValidateSQLCmd(cfgPath *string) *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "validate-sql <statement>",
		Short: "Validate a SQL statement against the read-only contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tableName
			if table == "" {
				table = config.Load(*cfgPath).Table.Name
			}

			result := validator.Validate(args[0], table)
			if !result.Ok {
				fmt.Fprintf(cmd.OutOrStdout(), "rejected: %s\n", result.Reason)
				return fmt.Errorf("statement rejected: %s", result.Reason)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&tableName, "table", "", "table name to require (defaults to the config file's table.name)")
	return cmd
}
