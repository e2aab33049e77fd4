package commands

// Root command: loads configuration and sets up logging for every subcommand.

import (
	"github.com/spf13/cobra"

	"me-linker/internal/config"
	"me-linker/internal/infra/log"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "me-linker",
	Short: "Link wallets to a mefoundation.com claim wallet and collect airdrop eligibility",
	Long: `me-linker signs in to mefoundation.com with a Solana claim wallet, links SOL, EVM
and BTC wallets to it through a rotating proxy pool, and saves the secrets of the
wallets reported as eligible.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		return log.Setup(log.Options{Dir: cfg.Log.Dir, Debug: cfg.Log.Debug})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(pointsCmd)
}
