package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/catalog/internal/app"
)

func TokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage access tokens",
	}

	var retention time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired and revoked access tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				removed, err := a.AuthService.PruneTokens(retention)
				if err != nil {
					return err
				}
				cmd.Printf("removed %d tokens\n", removed)
				return nil
			})
		},
	}
	prune.Flags().DurationVar(&retention, "retention", 24*time.Hour, "keep dead tokens this long")

	cmd.AddCommand(prune)
	return cmd
}
