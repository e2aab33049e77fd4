package wallets

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SOLWallet signs with Ed25519; address and signatures are base58.
type SOLWallet struct {
	key solana.PrivateKey
}

// NewSOLWallet parses a base58 encoded 64 byte secret key.
func NewSOLWallet(b58 string) (*SOLWallet, error) {
	key, err := solana.PrivateKeyFromBase58(b58)
	if err != nil {
		return nil, fmt.Errorf("%w: sol: %v", ErrInvalidSecret, err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("%w: sol: expected 64 byte secret key, got %d", ErrInvalidSecret, len(key))
	}
	return &SOLWallet{key: key}, nil
}

// NewRandomSOLWallet is used when no primary wallet is configured.
func NewRandomSOLWallet() (*SOLWallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate sol key: %w", err)
	}
	return &SOLWallet{key: key}, nil
}

func (w *SOLWallet) Chain() Chain { return SOL }

func (w *SOLWallet) Address() (string, error) { return w.key.PublicKey().String(), nil }

// SignMessage returns the detached signature over the UTF-8 bytes of message.
func (w *SOLWallet) SignMessage(message string) (string, error) {
	sig, err := w.key.Sign([]byte(message))
	if err != nil {
		return "", fmt.Errorf("sol sign: %w", err)
	}
	return sig.String(), nil
}

func (w *SOLWallet) ExportSecret() string { return w.key.String() }
