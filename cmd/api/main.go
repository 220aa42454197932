package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "prescripto",
		Short:        "Prescripto appointment API",
		SilenceUsage: true,
	}

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		remindersCmd(),
		cleanupCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
