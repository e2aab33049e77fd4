package wallets

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const btcMessageMagic = "Bitcoin Signed Message:\n"

// BIP-137 header offset for native segwit (P2WPKH) signatures: 39..42 instead of 31..34.
const p2wpkhHeaderShift = 8

// BTCWallet holds a raw hex private key and derives a native segwit address from it.
type BTCWallet struct {
	secret string // as given, exported unchanged
	priv   *btcec.PrivateKey

	once    sync.Once
	address string
	addrErr error
}

// NewBTCWallet parses a 32 byte hex private key, with or without 0x.
func NewBTCWallet(hexKey string) (*BTCWallet, error) {
	secret := strings.TrimSpace(hexKey)
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(secret, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("%w: btc: %v", ErrInvalidSecret, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: btc: expected 32 byte key, got %d", ErrInvalidSecret, len(raw))
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return &BTCWallet{secret: secret, priv: priv}, nil
}

func (w *BTCWallet) Chain() Chain { return BTC }

// Address derives the bech32 P2WPKH mainnet address once and caches it.
func (w *BTCWallet) Address() (string, error) {
	w.once.Do(func() {
		pub := w.priv.PubKey().SerializeCompressed()
		addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub), &chaincfg.MainNetParams)
		if err != nil {
			w.addrErr = fmt.Errorf("btc address: %w", err)
			return
		}
		w.address = addr.EncodeAddress()
	})
	return w.address, w.addrErr
}

// SignMessage produces a base64 compact signature over the Bitcoin signed-message
// digest, with a header byte that binds it to the segwit address.
func (w *BTCWallet) SignMessage(message string) (string, error) {
	if _, err := w.Address(); err != nil {
		return "", err
	}
	sig := ecdsa.SignCompact(w.priv, btcMessageHash(message), true)
	sig[0] += p2wpkhHeaderShift
	return base64.StdEncoding.EncodeToString(sig), nil
}

func (w *BTCWallet) ExportSecret() string { return w.secret }

func btcMessageHash(message string) []byte {
	var buf bytes.Buffer
	_ = wire.WriteVarString(&buf, 0, btcMessageMagic)
	_ = wire.WriteVarString(&buf, 0, message)
	return chainhash.DoubleHashB(buf.Bytes())
}

// WIFToHex converts a WIF encoded key to the raw hex form BTCWallet expects.
func WIFToHex(wif string) (string, error) {
	decoded, err := btcutil.DecodeWIF(strings.TrimSpace(wif))
	if err != nil {
		return "", fmt.Errorf("%w: wif: %v", ErrInvalidSecret, err)
	}
	return hex.EncodeToString(decoded.PrivKey.Serialize()), nil
}
