package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "console",
		Short:         "Search and indexing operations of an Infinispan server",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(queryStatsCmd())
	rootCmd.AddCommand(metamodelCmd())
	rootCmd.AddCommand(purgeCmd())
	rootCmd.AddCommand(reindexCmd())
	rootCmd.AddCommand(updateSchemaCmd())
	rootCmd.AddCommand(clearStatsCmd())
	rootCmd.AddCommand(serveCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errOperationFailed) {
			BackupLogger.Errorf("Failed to run %s", err)
		}
		os.Exit(1)
	}
}
