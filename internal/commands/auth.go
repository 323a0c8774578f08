package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekagra-app/ekagra/internal/client"
	"github.com/ekagra-app/ekagra/internal/config"
)

var registerName string

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}
		server := resolveServer(creds)

		api := client.NewRemote(server, "")
		token, err := api.Register(context.Background(), args[0], args[1], registerName)
		if err != nil {
			return err
		}

		if err := config.SaveCredentials(&config.Credentials{
			ServerURL: server,
			Token:     token,
			Email:     args[0],
		}); err != nil {
			return err
		}
		fmt.Printf("Registered and logged in as %s\n", args[0])
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in to an ekagra server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}
		server := resolveServer(creds)

		api := client.NewRemote(server, "")
		token, err := api.Login(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}

		if err := config.SaveCredentials(&config.Credentials{
			ServerURL: server,
			Token:     token,
			Email:     args[0],
		}); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached login and return to guest mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearCredentials(); err != nil {
			return err
		}
		fmt.Println("Logged out. Sessions now stay on this device.")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
}
