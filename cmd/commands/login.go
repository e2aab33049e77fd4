package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the claim wallet and check the session",
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := loggedInClient(ctx, cfg)
	if err != nil {
		return err
	}
	address, _ := client.Primary().Address()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\nSession cookies: %s\nVerify circuit: %s\n",
		address, strings.Join(client.Session().Keys(), ", "), client.Authenticator().BreakerState())
	return nil
}
