// Package commands defines the ekagra CLI command tree.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekagra-app/ekagra/internal/client"
	"github.com/ekagra-app/ekagra/internal/config"
)

var (
	version = "dev"

	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "ekagra",
	Short: "Tasks and pomodoro timers from the terminal",
	Long: `ekagra combines task management with pomodoro-style focus timers.
Log in to sync sessions with an ekagra server, or use it without an
account: guest sessions are kept only on this device.`,
}

// SetVersion sets the version information.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default from credentials, else http://localhost:8970)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

// resolveServer picks the server URL: flag, then credentials, then the
// local default.
func resolveServer(creds *config.Credentials) string {
	if serverURL != "" {
		return serverURL
	}
	if creds.ServerURL != "" {
		return creds.ServerURL
	}
	return fmt.Sprintf("http://localhost:%d", config.DefaultPort)
}

// sessionBackend selects the session store by identity presence: remote
// when logged in, the local guest file otherwise.
func sessionBackend() (client.SessionService, *config.Credentials, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, nil, err
	}
	if creds.Token != "" {
		return client.NewRemote(resolveServer(creds), creds.Token), creds, nil
	}
	return client.NewGuest(config.GuestTimersPath()), creds, nil
}

// remoteBackend requires a logged-in client.
func remoteBackend() (*client.Remote, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("not logged in; run 'ekagra login' first")
	}
	return client.NewRemote(resolveServer(creds), creds.Token), nil
}
