package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"me-linker/internal/infra/log"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show the total points of all linked wallets",
	RunE:  runPoints,
}

func runPoints(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := loggedInClient(ctx, cfg)
	if err != nil {
		return err
	}
	points, err := client.FetchTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch points: %w", err)
	}
	log.LogDebug("Points fetched", zap.Float64("points", points))
	fmt.Fprintf(cmd.OutOrStdout(), "Total points by linked wallets %g\n", points)
	return nil
}
