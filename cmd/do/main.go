package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stepbookstep/server/cmd/do/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Development tools for the StepBookStep server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
