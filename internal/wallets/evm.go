package wallets

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// EVMWallet signs with secp256k1 using the personal_sign (EIP-191) scheme.
type EVMWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewEVMWallet accepts a hex private key with or without the 0x prefix.
func NewEVMWallet(hexKey string) (*EVMWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: evm: %v", ErrInvalidSecret, err)
	}
	return &EVMWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (w *EVMWallet) Chain() Chain { return EVM }

// Address returns the EIP-55 checksummed address.
func (w *EVMWallet) Address() (string, error) { return w.address.Hex(), nil }

// SignMessage returns a 65 byte r||s||v signature, v in {27, 28}, hex encoded.
func (w *EVMWallet) SignMessage(message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		return "", fmt.Errorf("evm sign: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

func (w *EVMWallet) ExportSecret() string {
	return hexutil.Encode(crypto.FromECDSA(w.key))
}
