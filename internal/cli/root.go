// Package cli implements kanbanctl, a command line client for the kanban API.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/kanban-api/internal/client"
)

const defaultURL = "http://localhost:8080"

var (
	rootCmd  *cobra.Command
	settings *viper.Viper
)

var api = client.New(nil)

func init() {
	rootCmd = &cobra.Command{
		Use:   "kanbanctl",
		Short: "kanbanctl - command line client for the kanban API",
		Long: `kanbanctl talks to a kanban API server.

The server URL and bearer token come from --url and --token, or from the
KANBAN_URL and KANBAN_TOKEN environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("url", defaultURL, "API base URL (KANBAN_URL)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (KANBAN_TOKEN)")

	settings = viper.New()
	settings.SetEnvPrefix("KANBAN")
	settings.SetDefault("url", defaultURL)
	_ = settings.BindEnv("url")
	_ = settings.BindEnv("token")
	_ = settings.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = settings.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(tasksCmd)
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// session builds the explicit session for one command run.
func session() client.Session {
	return client.Session{
		BaseURL: settings.GetString("url"),
		Token:   settings.GetString("token"),
	}
}

// authedSession is session but fails early when no token is configured.
func authedSession() (client.Session, error) {
	s := session()
	if s.Token == "" {
		return s, fmt.Errorf("not logged in: pass --token or set KANBAN_TOKEN")
	}
	return s, nil
}

func parseID(arg, label string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s ID %q", label, arg)
	}
	return id, nil
}
