package main

import (
	"os"

	"github.com/spf13/cobra"

	"subconverter/internal/interfaces/cli/server"
	"subconverter/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "orris",
		Short:   "orris - proxy-subscription conversion service",
		Long:    `orris fetches proxy subscriptions, parses their node encodings, and converts them into Clash, Surge, and other client config dialects.`,
		Version: version.Current,
	}

	// Enable -v as short flag for --version
	rootCmd.Flags().BoolP("version", "v", false, "version for orris")

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
