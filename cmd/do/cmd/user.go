package cmd

import (
	"github.com/spf13/cobra"
	"github.com/templui/catalog/internal/app"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userAdminCmd("promote", "Grant administrator access", true))
	cmd.AddCommand(userAdminCmd("demote", "Revoke administrator access", false))
	return cmd
}

func userCreateCmd() *cobra.Command {
	var name, email, password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				user, err := a.UserService.Create(name, email, password, admin)
				if err != nil {
					return err
				}
				cmd.Printf("created user %s (%s) admin=%t\n", user.Email, user.ID, user.IsAdmin)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password (min 12 characters)")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant administrator access")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func userAdminCmd(use, short string, isAdmin bool) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				user, err := a.UserService.SetAdmin(email, isAdmin)
				if err != nil {
					return err
				}
				cmd.Printf("user %s admin=%t\n", user.Email, user.IsAdmin)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
