package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxThreads)
	assert.Equal(t, "data/proxy.txt", cfg.ProxyFile)
	assert.Equal(t, "data/accounts", cfg.AccountsDir)
	assert.Equal(t, "successes.txt", cfg.ResultFile)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.Auth.MaxAttempts)
	assert.Equal(t, 5, cfg.Link.MaxAttempts)
	assert.Equal(t, 200, cfg.Link.SingleChunkThreshold)
	assert.Empty(t, cfg.MainSolanaWallet)
}

func TestLoadTOML(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, filepath.Join("data", "config.toml"), `
main_solana_wallet = "secret"
max_threads = 12
request_timeout = "10s"

[auth]
max_attempts = 3
base_delay = "250ms"

[telegram]
bot_token = "token"
chat_id = "-100123"
`)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.MainSolanaWallet)
	assert.Equal(t, 12, cfg.MaxThreads)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.Auth.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Auth.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Auth.MaxDelay)
	assert.Equal(t, "token", cfg.Telegram.BotToken)
	assert.Equal(t, "-100123", cfg.Telegram.ChatID)
}

func TestLoadPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, filepath.Join("data", "config.toml"), "max_threads = 3\nproxy_file = \"from-file.txt\"\n")

	t.Run("EnvOverridesFile", func(t *testing.T) {
		t.Setenv("ME_MAX_THREADS", "7")
		cfg, err := Load(newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.MaxThreads)
		assert.Equal(t, "from-file.txt", cfg.ProxyFile)
	})

	t.Run("UnprefixedAlias", func(t *testing.T) {
		t.Setenv("MAIN_SOLANA_WALLET", "alias")
		t.Setenv("TELEGRAM_CHAT_ID", "55")
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "alias", cfg.MainSolanaWallet)
		assert.Equal(t, "55", cfg.Telegram.ChatID)
	})

	t.Run("FlagOverridesEnv", func(t *testing.T) {
		t.Setenv("ME_MAX_THREADS", "7")
		cfg, err := Load(newFlags(t, "--max-threads=9", "--proxy-file=cli.txt", "--debug"))
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.MaxThreads)
		assert.Equal(t, "cli.txt", cfg.ProxyFile)
		assert.True(t, cfg.Log.Debug)
	})

	t.Run("UnsetFlagKeepsFileValue", func(t *testing.T) {
		cfg, err := Load(newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxThreads)
	})
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "custom.yaml"), "max_threads: 4\nlink:\n  max_attempts: 2\n")

	cfg, err := Load(newFlags(t, "--config", filepath.Join(dir, "custom.yaml")))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxThreads)
	assert.Equal(t, 2, cfg.Link.MaxAttempts)

	_, err = Load(newFlags(t, "--config", filepath.Join(dir, "missing.toml")))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".env", "ME_RESULT_FILE=from-dotenv.txt\n")
	t.Cleanup(func() { os.Unsetenv("ME_RESULT_FILE") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.txt", cfg.ResultFile)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("ZeroThreads", func(t *testing.T) {
		_, err := Load(newFlags(t, "--max-threads=0"))
		assert.ErrorContains(t, err, "max_threads")
	})

	t.Run("ZeroChunkThreshold", func(t *testing.T) {
		t.Setenv("ME_LINK_SINGLE_CHUNK_THRESHOLD", "0")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "link.single_chunk_threshold")
	})

	t.Run("NegativeRateLimit", func(t *testing.T) {
		_, err := Load(newFlags(t, "--rate-limit=-1"))
		assert.ErrorContains(t, err, "rate_limit")
	})
}
