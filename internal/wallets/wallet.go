// Package wallets puts the three supported chains behind one signing interface.
//
// Secrets never leave a Wallet except through ExportSecret, which is only used
// to write the result file of eligible wallets.
package wallets

import (
	"errors"
	"fmt"
	"strings"
)

// Chain identifies the signing backend of a wallet.
type Chain string

const (
	EVM Chain = "EVM"
	BTC Chain = "BTC"
	SOL Chain = "SOL"
)

// Lower is the chain id as the service spells it ("evm", "btc", "sol").
func (c Chain) Lower() string { return strings.ToLower(string(c)) }

var (
	ErrUnsupportedChain = errors.New("unsupported wallet type")
	ErrInvalidSecret    = errors.New("invalid wallet secret")
)

// Wallet is the capability set shared by every chain.
type Wallet interface {
	Chain() Chain
	Address() (string, error)
	SignMessage(message string) (string, error)
	ExportSecret() string
}

// New builds a wallet of the given chain from its serialized secret:
// hex for EVM and BTC, base58 for SOL.
func New(chain Chain, secret string) (Wallet, error) {
	secret = strings.TrimSpace(secret)
	switch chain {
	case EVM:
		return NewEVMWallet(secret)
	case BTC:
		return NewBTCWallet(secret)
	case SOL:
		return NewSOLWallet(secret)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain)
	}
}

// FileKind is the kind of a wallet list file under the accounts directory.
type FileKind string

const (
	KindSOL    FileKind = "sol"
	KindEVM    FileKind = "evm"
	KindBTCHex FileKind = "btc_hex"
	KindBTCWIF FileKind = "btc_wif"
)

// FileKinds lists the supported wallet list files in menu order.
var FileKinds = []FileKind{KindSOL, KindEVM, KindBTCHex, KindBTCWIF}

// ParseFileKind validates a kind given on the command line.
func ParseFileKind(s string) (FileKind, error) {
	k := FileKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FileKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, s)
}

// FromLine parses one line of a wallet list file of the given kind.
func FromLine(kind FileKind, line string) (Wallet, error) {
	line = strings.TrimSpace(line)
	switch kind {
	case KindSOL:
		return New(SOL, line)
	case KindEVM:
		return New(EVM, line)
	case KindBTCHex:
		return New(BTC, line)
	case KindBTCWIF:
		hexKey, err := WIFToHex(line)
		if err != nil {
			return nil, err
		}
		return New(BTC, hexKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, kind)
	}
}
