package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and print its token",
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a token",
	Long: `Log in and print a bearer token.

Export it for later commands:

  export KANBAN_TOKEN=$(kanbanctl login --email me@example.com --password secret)`,
	RunE: runLogin,
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the current user",
	RunE:  runMe,
}

func init() {
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("password", "", "Password")

	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password")
}

func runRegister(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	resp, err := api.Register(cmd.Context(), session(), name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	resp, err := api.Login(cmd.Context(), session(), email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
	return nil
}

func runMe(cmd *cobra.Command, args []string) error {
	s, err := authedSession()
	if err != nil {
		return err
	}
	user, err := api.Me(cmd.Context(), s)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", user.ID, user.Name, user.Email)
	return nil
}
