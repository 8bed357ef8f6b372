package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kungming2/translator-BOT-reborn/internal/interfaces/cli/migrate"
	"github.com/kungming2/translator-BOT-reborn/internal/interfaces/cli/run"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ziwen",
		Short: "Ziwen - translation community bot",
		Long:  `Ziwen watches a translation-request community: it parses request titles, tracks request state, applies comment commands and notifies language subscribers.`,
	}

	rootCmd.AddCommand(
		run.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
