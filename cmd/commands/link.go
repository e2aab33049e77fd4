package commands

// Link command: reads one wallet list, links every wallet to the claim wallet
// and writes the secrets of eligible wallets to the result file.

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"me-linker/internal/features/linker"
	"me-linker/internal/features/report"
	"me-linker/internal/infra/fs"
	"me-linker/internal/infra/log"
	"me-linker/internal/wallets"
)

var (
	linkType     string
	linkNoReport bool
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link a wallet list to the claim wallet",
	Long: `Link every wallet from <accounts_dir>/<type>.txt to the claim wallet and save the
secrets of eligible wallets to the result file (overwritten on every run).`,
	RunE: runLink,
}

func init() {
	kinds := make([]string, 0, len(wallets.FileKinds))
	for _, k := range wallets.FileKinds {
		kinds = append(kinds, string(k))
	}
	linkCmd.Flags().StringVarP(&linkType, "type", "t", "", "Wallet list: "+strings.Join(kinds, ", "))
	linkCmd.Flags().BoolVar(&linkNoReport, "no-report", false, "Skip the chart and Telegram report")
	_ = linkCmd.MarkFlagRequired("type")
}

func runLink(cmd *cobra.Command, args []string) error {
	kind, err := wallets.ParseFileKind(linkType)
	if err != nil {
		return err
	}

	list, err := fs.ReadWallets(cfg.AccountsDir, kind)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("file with wallets is empty: %s", fs.WalletFile(cfg.AccountsDir, kind))
	}
	log.LogInfo(fmt.Sprintf("Total wallets: %d", len(list)), zap.String("type", string(kind)))

	ctx, cancel := signalContext()
	defer cancel()

	client, err := loggedInClient(ctx, cfg)
	if err != nil {
		return err
	}

	chunks := linker.Chunk(list, cfg.MaxThreads, cfg.Link.SingleChunkThreshold)
	perThread := 0
	if len(chunks) > 0 {
		perThread = len(chunks[0])
	}

	progress := make(chan linker.Progress, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printProgress(cmd.ErrOrStderr(), progress, cfg.MaxThreads, perThread)
	}()

	startedAt := time.Now()
	res, runErr := linker.Run(ctx, client, list, linker.Options{
		Threads:              cfg.MaxThreads,
		MaxAttempts:          cfg.Link.MaxAttempts,
		SingleChunkThreshold: cfg.Link.SingleChunkThreshold,
		Progress:             progress,
	})
	close(progress)
	wg.Wait()

	// partial results are saved on interrupt as well
	if err := linker.SaveEligible(cfg.ResultFile, res); err != nil {
		return err
	}
	log.LogSuccess(fmt.Sprintf("Saved %d eligible wallets", len(res.Eligible)), zap.String("file", cfg.ResultFile))

	if !linkNoReport {
		summary := report.NewSummary(string(kind), len(list), res, startedAt, cfg.ResultFile)
		notifier := report.NotifierFromConfig(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if _, err := report.Publish(summary, report.Options{Dir: cfg.ReportDir, Notifier: notifier}); err != nil {
			log.LogWarn("Failed to publish report", zap.Error(err))
		}
	}

	if runErr != nil {
		if errors.Is(runErr, ctx.Err()) {
			log.LogWarn("Link run interrupted")
		}
		return runErr
	}
	return nil
}

func printProgress(w io.Writer, events <-chan linker.Progress, threads, perThread int) {
	last := linker.Progress{}
	for p := range events {
		last = p
		fmt.Fprintf(w, "\rTotal eligible wallets: %d, Checked wallets: %d, Skipped: %d/%d, Threads: %d, Accounts per thread: %d",
			p.Eligible, p.Checked, p.Skipped, p.Total, threads, perThread)
	}
	if last.Total > 0 {
		fmt.Fprintln(w)
	}
}
