package config

// Layered configuration:
// 1. defaults
// 2. data/config.toml or config.toml (yaml also accepted), or the file given by --config
// 3. .env file
// 4. environment (ME_* and the unprefixed aliases below)
// 5. command line flags

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	MainSolanaWallet string         `mapstructure:"main_solana_wallet"` // base58 secret of the claim wallet, random when empty
	MaxThreads       int            `mapstructure:"max_threads"`
	ProxyFile        string         `mapstructure:"proxy_file"`
	AccountsDir      string         `mapstructure:"accounts_dir"`
	ResultFile       string         `mapstructure:"result_file"`
	ReportDir        string         `mapstructure:"report_dir"`
	RateLimit        float64        `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RequestTimeout   time.Duration  `mapstructure:"request_timeout"`
	Auth             AuthConfig     `mapstructure:"auth"`
	Link             LinkConfig     `mapstructure:"link"`
	Telegram         TelegramConfig `mapstructure:"telegram"`
	Log              LogConfig      `mapstructure:"log"`
}

// AuthConfig bounds session establishment. MaxAttempts 0 retries until interrupted.
type AuthConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

type LinkConfig struct {
	MaxAttempts          int `mapstructure:"max_attempts"`
	SingleChunkThreshold int `mapstructure:"single_chunk_threshold"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Debug bool   `mapstructure:"debug"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"max-threads":  "max_threads",
	"proxy-file":   "proxy_file",
	"accounts-dir": "accounts_dir",
	"result-file":  "result_file",
	"rate-limit":   "rate_limit",
	"debug":        "log.debug",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default data/config.toml)")
	fs.Int("max-threads", 5, "Number of concurrent link workers (env: ME_MAX_THREADS)")
	fs.String("proxy-file", "data/proxy.txt", "Proxy list, one URL per line (env: ME_PROXY_FILE)")
	fs.String("accounts-dir", "data/accounts", "Directory with sol.txt, evm.txt, btc_hex.txt, btc_wif.txt (env: ME_ACCOUNTS_DIR)")
	fs.String("result-file", "successes.txt", "Output file for eligible wallet secrets (env: ME_RESULT_FILE)")
	fs.Float64("rate-limit", 0, "Requests per second across all proxies, 0 = unlimited (env: ME_RATE_LIMIT)")
	fs.Bool("debug", false, "Write debug entries to the log file (env: ME_LOG_DEBUG)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("main_solana_wallet", "")
	v.SetDefault("max_threads", 5)
	v.SetDefault("proxy_file", "data/proxy.txt")
	v.SetDefault("accounts_dir", "data/accounts")
	v.SetDefault("result_file", "successes.txt")
	v.SetDefault("report_dir", "data_out")
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("request_timeout", 30*time.Second)

	v.SetDefault("auth.max_attempts", 0)
	v.SetDefault("auth.base_delay", time.Second)
	v.SetDefault("auth.max_delay", 30*time.Second)

	v.SetDefault("link.max_attempts", 5)
	v.SetDefault("link.single_chunk_threshold", 200)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")

	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.debug", false)
}

func setupEnvAliases(v *viper.Viper) {
	v.SetEnvPrefix("ME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the names used by existing .env files
	_ = v.BindEnv("main_solana_wallet", "ME_MAIN_SOLANA_WALLET", "MAIN_SOLANA_WALLET")
	_ = v.BindEnv("max_threads", "ME_MAX_THREADS", "MAX_THREADS")
	_ = v.BindEnv("telegram.bot_token", "ME_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "ME_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
}

// Load reads the configuration. fs may be nil when no flags are registered.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	configFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("data")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	setupEnvAliases(v)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.MaxThreads < 1 {
		return fmt.Errorf("max_threads must be at least 1, got %d", cfg.MaxThreads)
	}
	if cfg.Auth.MaxAttempts < 0 {
		return fmt.Errorf("auth.max_attempts must not be negative")
	}
	if cfg.Link.MaxAttempts < 1 {
		return fmt.Errorf("link.max_attempts must be at least 1, got %d", cfg.Link.MaxAttempts)
	}
	if cfg.Link.SingleChunkThreshold < 1 {
		return fmt.Errorf("link.single_chunk_threshold must be at least 1, got %d", cfg.Link.SingleChunkThreshold)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}
