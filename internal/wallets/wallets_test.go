package wallets

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	evmKey     = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	evmAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

	// private key 1: generator point, BIP-173 test vector address
	btcKeyOne     = "0000000000000000000000000000000000000000000000000000000000000001"
	btcKeyOneAddr = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	btcKeyOneWIF  = "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"
)

func TestEVMWallet(t *testing.T) {
	w, err := New(EVM, evmKey)
	require.NoError(t, err)
	assert.Equal(t, EVM, w.Chain())

	addr, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, evmAddress, addr)
	assert.Equal(t, evmKey, w.ExportSecret())

	t.Run("AcceptsKeyWithoutPrefix", func(t *testing.T) {
		w2, err := New(EVM, strings.TrimPrefix(evmKey, "0x"))
		require.NoError(t, err)
		a2, _ := w2.Address()
		assert.Equal(t, evmAddress, a2)
	})

	t.Run("SignatureRecoversAddress", func(t *testing.T) {
		sigHex, err := w.SignMessage("hello")
		require.NoError(t, err)
		sig, err := hexutil.Decode(sigHex)
		require.NoError(t, err)
		require.Len(t, sig, 65)
		assert.Contains(t, []byte{27, 28}, sig[64])

		sig[64] -= 27
		pub, err := crypto.SigToPub(accounts.TextHash([]byte("hello")), sig)
		require.NoError(t, err)
		assert.Equal(t, evmAddress, crypto.PubkeyToAddress(*pub).Hex())
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := New(EVM, "not-a-key")
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})
}

func TestSOLWallet(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := New(SOL, key.String())
	require.NoError(t, err)
	assert.Equal(t, SOL, w.Chain())
	assert.Equal(t, key.String(), w.ExportSecret())

	addr, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().String(), addr)

	sigB58, err := w.SignMessage("link me")
	require.NoError(t, err)
	sig, err := solana.SignatureFromBase58(sigB58)
	require.NoError(t, err)
	pub := key.PublicKey()
	assert.True(t, ed25519.Verify(ed25519.PublicKey(pub[:]), []byte("link me"), sig[:]))

	_, err = New(SOL, "abc")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestBTCWallet(t *testing.T) {
	w, err := New(BTC, btcKeyOne)
	require.NoError(t, err)
	assert.Equal(t, BTC, w.Chain())
	assert.Equal(t, btcKeyOne, w.ExportSecret())

	addr, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, btcKeyOneAddr, addr)

	again, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	t.Run("SignatureRecoversSegwitKey", func(t *testing.T) {
		sigB64, err := w.SignMessage("claim")
		require.NoError(t, err)
		sig, err := base64.StdEncoding.DecodeString(sigB64)
		require.NoError(t, err)
		require.Len(t, sig, 65)
		assert.GreaterOrEqual(t, int(sig[0]), 39)
		assert.LessOrEqual(t, int(sig[0]), 42)

		sig[0] -= p2wpkhHeaderShift
		pub, compressed, err := ecdsa.RecoverCompact(sig, btcMessageHash("claim"))
		require.NoError(t, err)
		assert.True(t, compressed)

		recovered, err := btcutil.NewAddressWitnessPubKeyHash(
			btcutil.Hash160(pub.SerializeCompressed()), &chaincfg.MainNetParams)
		require.NoError(t, err)
		assert.Equal(t, btcKeyOneAddr, recovered.EncodeAddress())
	})

	t.Run("ExportKeepsInputForm", func(t *testing.T) {
		given := "0x" + strings.ToUpper(btcKeyOne)
		w, err := New(BTC, "  "+given+"\n")
		require.NoError(t, err)
		assert.Equal(t, given, w.ExportSecret())
		addr, err := w.Address()
		require.NoError(t, err)
		assert.Equal(t, btcKeyOneAddr, addr)
	})

	t.Run("RejectsShortKey", func(t *testing.T) {
		_, err := New(BTC, "abcd")
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})
}

func TestWIFToHex(t *testing.T) {
	hexKey, err := WIFToHex(btcKeyOneWIF)
	require.NoError(t, err)
	assert.Equal(t, btcKeyOne, hexKey)

	w, err := FromLine(KindBTCWIF, "  "+btcKeyOneWIF+"\r")
	require.NoError(t, err)
	addr, _ := w.Address()
	assert.Equal(t, btcKeyOneAddr, addr)
	assert.Equal(t, btcKeyOne, w.ExportSecret())

	_, err = WIFToHex("garbage")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestUnsupportedChain(t *testing.T) {
	_, err := New(Chain("DOGE"), "00")
	assert.ErrorIs(t, err, ErrUnsupportedChain)

	_, err = ParseFileKind("doge")
	assert.ErrorIs(t, err, ErrUnsupportedChain)

	k, err := ParseFileKind(" BTC_HEX ")
	require.NoError(t, err)
	assert.Equal(t, KindBTCHex, k)
}

func TestChainLower(t *testing.T) {
	assert.Equal(t, "sol", SOL.Lower())
	assert.Equal(t, "evm", EVM.Lower())
	assert.Equal(t, "btc", BTC.Lower())
}
