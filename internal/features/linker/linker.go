package linker

// Batch linking of wallets to the claim wallet.
// The wallet list is cut into contiguous chunks, one goroutine per chunk,
// wallets inside a chunk are processed in order. Each wallet gets a fixed
// number of attempts; errors and answers without an eligibility status both
// use one up.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"me-linker/internal/clients_api/mefoundation"
	"me-linker/internal/infra/fs"
	"me-linker/internal/infra/log"
	"me-linker/internal/infra/retry"
	"me-linker/internal/wallets"
)

const (
	DefaultMaxAttempts          = 5
	DefaultSingleChunkThreshold = 200
)

var errUndefinedEligibility = errors.New("eligibility missing from response")

// WalletLinker links one wallet. *mefoundation.Client implements it.
type WalletLinker interface {
	LinkWallet(ctx context.Context, w wallets.Wallet) (mefoundation.Eligibility, error)
}

// Progress is a snapshot of the batch counters.
type Progress struct {
	Eligible int
	Checked  int
	Skipped  int
	Total    int
}

// Options tunes a batch run.
type Options struct {
	Threads              int
	MaxAttempts          int // per wallet, default 5
	SingleChunkThreshold int // lists up to this size run as one chunk, default 200
	// Progress receives a snapshot after every recorded wallet. Run never closes it.
	Progress chan<- Progress
}

// Result lists wallets by outcome. Checked includes Eligible; Skipped wallets
// ran out of attempts and appear in neither.
type Result struct {
	Eligible []wallets.Wallet
	Checked  []wallets.Wallet
	Skipped  []wallets.Wallet
}

// Chunk splits items into contiguous, order-preserving chunks. Lists no longer
// than threshold stay in a single chunk; longer ones are cut into chunks of
// ceil(len/threads) so at most threads chunks exist.
func Chunk[T any](items []T, threads, threshold int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if threads < 1 {
		threads = 1
	}
	if len(items) <= threshold {
		return [][]T{items}
	}
	size := (len(items) + threads - 1) / threads
	chunks := make([][]T, 0, threads)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

type batch struct {
	mu       sync.Mutex
	result   Result
	total    int
	progress chan<- Progress
}

func (b *batch) record(ctx context.Context, w wallets.Wallet, status mefoundation.Eligibility, skipped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case skipped:
		b.result.Skipped = append(b.result.Skipped, w)
	case status == mefoundation.Eligible:
		b.result.Eligible = append(b.result.Eligible, w)
		b.result.Checked = append(b.result.Checked, w)
	default:
		b.result.Checked = append(b.result.Checked, w)
	}
	if b.progress == nil {
		return
	}
	p := Progress{
		Eligible: len(b.result.Eligible),
		Checked:  len(b.result.Checked),
		Skipped:  len(b.result.Skipped),
		Total:    b.total,
	}
	// sent under the lock so subscribers see counters in order
	select {
	case b.progress <- p:
	case <-ctx.Done():
	}
}

// Run links every wallet through l. The error is non-nil only when ctx ends
// before the batch finishes; the partial result is still returned.
func Run(ctx context.Context, l WalletLinker, list []wallets.Wallet, opts Options) (Result, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.SingleChunkThreshold <= 0 {
		opts.SingleChunkThreshold = DefaultSingleChunkThreshold
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}

	chunks := Chunk(list, opts.Threads, opts.SingleChunkThreshold)
	log.LogInfo("Linking wallets",
		zap.Int("wallets", len(list)),
		zap.Int("chunks", len(chunks)),
		zap.Int("threads", opts.Threads))

	b := &batch{total: len(list), progress: opts.Progress}
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			for _, w := range chunk {
				if err := gctx.Err(); err != nil {
					return err
				}
				linkOne(gctx, l, w, opts.MaxAttempts, b, i)
			}
			return nil
		})
	}
	err := g.Wait()

	b.mu.Lock()
	res := b.result
	b.mu.Unlock()
	log.LogSuccess(fmt.Sprintf("Batch finished: %d eligible, %d checked, %d skipped of %d",
		len(res.Eligible), len(res.Checked), len(res.Skipped), len(list)))
	return res, err
}

func linkOne(ctx context.Context, l WalletLinker, w wallets.Wallet, maxAttempts int, b *batch, chunk int) {
	address, _ := w.Address()
	var status mefoundation.Eligibility
	err := retry.Do(ctx, retry.Options{MaxAttempts: maxAttempts}, func(attempt int) error {
		s, err := l.LinkWallet(ctx, w)
		if err != nil {
			log.LogDebug("Link attempt failed",
				zap.String("wallet", address),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		if !s.Defined() {
			return errUndefinedEligibility
		}
		status = s
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.LogWarn("Wallet skipped after failed attempts",
			zap.String("wallet", address),
			zap.String("chain", string(w.Chain())),
			zap.Int("chunk", chunk),
			zap.Error(err))
		b.record(ctx, w, mefoundation.Unknown, true)
		return
	}

	if status == mefoundation.Eligible {
		log.LogSuccess("Eligible wallet linked", zap.String("wallet", address), zap.String("chain", string(w.Chain())))
	} else {
		log.LogDebug("Wallet not eligible", zap.String("wallet", address))
	}
	b.record(ctx, w, status, false)
}

// Secrets returns the exported secrets of ws in order.
func Secrets(ws []wallets.Wallet) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.ExportSecret())
	}
	return out
}

// SaveEligible overwrites path with the secrets of the eligible wallets, one per line.
func SaveEligible(path string, res Result) error {
	if err := fs.WriteLines(path, Secrets(res.Eligible)); err != nil {
		return fmt.Errorf("failed to save eligible wallets: %w", err)
	}
	return nil
}
