package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"me-linker/internal/clients_api/mefoundation"
	"me-linker/internal/config"
	"me-linker/internal/infra/fs"
	"me-linker/internal/infra/log"
	"me-linker/internal/infra/retry"
	"me-linker/internal/wallets"
)

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// primaryWallet loads the claim wallet. Without a configured secret a fresh
// keypair is generated for this run only.
func primaryWallet(c *config.Config) (wallets.Wallet, error) {
	if c.MainSolanaWallet == "" {
		w, err := wallets.NewRandomSOLWallet()
		if err != nil {
			return nil, err
		}
		address, _ := w.Address()
		log.LogWarn("main_solana_wallet is empty, using a generated wallet", zap.String("wallet", address))
		return w, nil
	}
	w, err := wallets.New(wallets.SOL, c.MainSolanaWallet)
	if err != nil {
		return nil, fmt.Errorf("main_solana_wallet: %w", err)
	}
	return w, nil
}

func newClient(c *config.Config) (*mefoundation.Client, error) {
	proxies, err := fs.ReadProxies(c.ProxyFile)
	if err != nil {
		return nil, err
	}
	if len(proxies) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", mefoundation.ErrNoProxyAvailable, c.ProxyFile)
	}
	primary, err := primaryWallet(c)
	if err != nil {
		return nil, err
	}
	log.LogInfo("Loaded proxies", zap.Int("count", len(proxies)))

	return mefoundation.NewClient(primary, mefoundation.Options{
		Proxies:   proxies,
		RateLimit: c.RateLimit,
		Timeout:   c.RequestTimeout,
		AuthRetry: retry.Options{
			MaxAttempts: c.Auth.MaxAttempts,
			BaseDelay:   c.Auth.BaseDelay,
			MaxDelay:    c.Auth.MaxDelay,
		},
	})
}

// loggedInClient builds a client and establishes its session.
func loggedInClient(ctx context.Context, c *config.Config) (*mefoundation.Client, error) {
	client, err := newClient(c)
	if err != nil {
		return nil, err
	}
	log.LogInfo("Signing in to mefoundation")
	if err := client.Authenticator().EstablishSession(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
