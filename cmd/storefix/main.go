// Command storefix is the operator CLI. It talks to the database directly
// through the same services the HTTP API uses, so a transition made from the
// terminal follows the same rules and leaves the same audit trail.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "storefix",
		Short:         "Operate the storefix backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		migrateCommand(),
		jobsCommand(),
		invoicesCommand(),
		submissionsCommand(),
		outboxCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
