// Package config provides configuration loading and management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/yourorg/swapkit-go/internal/types"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string `envconfig:"PORT" default:"8080"`

	// Use stagenet node endpoints and plugin contracts
	Stagenet bool `envconfig:"STAGENET" default:"false"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// OpenTelemetry endpoint for observability
	OtelEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"swapkit-go"`

	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`

	// Plugin used when a swap names no provider; empty means first registered
	DefaultPlugin string `envconfig:"DEFAULT_PLUGIN"`

	// Per-chain RPC endpoints, e.g. "ETH:https://rpc.ankr.com/eth,AVAX:https://..."
	RPCURLs map[string]string `envconfig:"RPC_URLS"`

	// API keys for external services, keyed by service name
	APIKeys map[string]string `envconfig:"API_KEYS"`

	Node      NodeConfig      `envconfig:"NODE"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Export    ExportConfig    `envconfig:"EXPORT"`
	Keystore  KeystoreConfig  `envconfig:"KEYSTORE"`

	// Addresses connected as watch-only wallets at start, "CHAIN:address,..."
	WatchAddresses map[string]string `envconfig:"WATCH_ADDRESSES"`
}

// NodeConfig holds THORNode/MAYANode client settings
type NodeConfig struct {
	ThorNodeURL       string        `envconfig:"THORNODE_URL"`
	MayaNodeURL       string        `envconfig:"MAYANODE_URL"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	RetryMax          int           `envconfig:"RETRY_MAX" default:"3"`
	RequestsPerSecond float64       `envconfig:"RPS" default:"10"`
	Burst             int           `envconfig:"BURST" default:"20"`
	FailureThreshold  int           `envconfig:"FAILURE_THRESHOLD" default:"5"`
	CircuitResetDelay time.Duration `envconfig:"CIRCUIT_RESET_DELAY" default:"1m"`
}

// RateLimitConfig holds inbound HTTP throttling settings
type RateLimitConfig struct {
	Enabled           bool    `envconfig:"ENABLED" default:"false"`
	RequestsPerSecond float64 `envconfig:"RPS" default:"10"`
	Burst             int     `envconfig:"BURST" default:"20"`
}

// ExportConfig holds executed-transaction webhook settings
type ExportConfig struct {
	Enabled       bool          `envconfig:"ENABLED" default:"false"`
	WebhookURL    string        `envconfig:"WEBHOOK_URL"`
	WebhookAPIKey string        `envconfig:"WEBHOOK_API_KEY"`
	SigningKey    string        `envconfig:"SIGNING_KEY"`
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"100"`
	Interval      time.Duration `envconfig:"INTERVAL" default:"1m"`
}

// KeystoreConfig holds the key connected as an EVM keystore wallet at start
type KeystoreConfig struct {
	PrivateKey string   `envconfig:"PRIVATE_KEY"`
	Chains     []string `envconfig:"CHAINS" default:"ETH"`
}

// Load creates a new Config from environment variables and validates it
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails on settings that would only surface at first use
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if _, err := parseChainMap("RPC_URLS", c.RPCURLs); err != nil {
		return err
	}
	if _, err := parseChainMap("WATCH_ADDRESSES", c.WatchAddresses); err != nil {
		return err
	}
	if c.Keystore.PrivateKey != "" {
		if _, err := parseChains("KEYSTORE_CHAINS", c.Keystore.Chains); err != nil {
			return err
		}
	}
	if c.Export.Enabled && c.Export.WebhookURL == "" {
		return fmt.Errorf("EXPORT_WEBHOOK_URL is required when export is enabled")
	}
	if c.Node.RequestsPerSecond <= 0 || c.Node.Burst <= 0 {
		return fmt.Errorf("node rate limit must be positive")
	}
	return nil
}

// ChainRPCURLs returns RPC_URLS keyed by chain
func (c Config) ChainRPCURLs() map[types.Chain]string {
	m, _ := parseChainMap("RPC_URLS", c.RPCURLs)
	return m
}

// ChainWatchAddresses returns WATCH_ADDRESSES keyed by chain
func (c Config) ChainWatchAddresses() map[types.Chain]string {
	m, _ := parseChainMap("WATCH_ADDRESSES", c.WatchAddresses)
	return m
}

// KeystoreChains returns KEYSTORE_CHAINS as chains
func (c Config) KeystoreChains() []types.Chain {
	chains, _ := parseChains("KEYSTORE_CHAINS", c.Keystore.Chains)
	return chains
}

func parseChainMap(name string, raw map[string]string) (map[types.Chain]string, error) {
	out := make(map[types.Chain]string, len(raw))
	for k, v := range raw {
		chain, ok := types.ParseChain(strings.TrimSpace(k))
		if !ok {
			return nil, fmt.Errorf("%s: unknown chain %q", name, k)
		}
		out[chain] = strings.TrimSpace(v)
	}
	return out, nil
}

func parseChains(name string, raw []string) ([]types.Chain, error) {
	out := make([]types.Chain, 0, len(raw))
	for _, s := range raw {
		chain, ok := types.ParseChain(strings.TrimSpace(s))
		if !ok {
			return nil, fmt.Errorf("%s: unknown chain %q", name, s)
		}
		out = append(out, chain)
	}
	return out, nil
}
