package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/catalog/cmd/do/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Operational tools for the catalog",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.TokensCmd())
	rootCmd.AddCommand(cmd.BuildCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
