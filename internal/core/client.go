// Package core composes wallet connectors and swap plugins into one client.
// It dispatches approvals to wallets and swaps to plugins.
package core

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/explorer"
	"github.com/yourorg/swapkit-go/internal/metrics"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/otel"
	"github.com/yourorg/swapkit-go/internal/plugin"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Options configures a Client
type Options struct {
	// Wallet backends, bound under their method names
	Connectors []wallet.Connector

	// Plugin factories, invoked once in order
	Plugins []plugin.Factory

	// Plugin used when a swap names no provider. Empty selects the first
	// registered plugin.
	DefaultPlugin plugin.Name

	Stagenet bool
	Config   wallet.ConnectConfig
	APIs     wallet.APIs
	RPCURLs  map[types.Chain]string

	Metrics *metrics.Metrics

	// Called after every transaction the client broadcasts
	OnTx func(TxEvent)
}

// TxEvent describes a transaction broadcast through the client
type TxEvent struct {
	Kind        string // "swap" or "approve"
	Chain       types.Chain
	TxHash      string
	ExplorerURL string
	Plugin      plugin.Name
}

// Client is the composed SwapKit client
type Client struct {
	wallets    *wallet.Registry
	plugins    *plugin.Registry
	connectors map[string]wallet.ConnectFunc
	metrics    *metrics.Metrics
	onTx       func(TxEvent)
}

// New builds the wallet registry, then the plugin registry, then binds every
// connector
func New(opts Options) (*Client, error) {
	c := &Client{
		wallets:    wallet.NewRegistry(),
		connectors: make(map[string]wallet.ConnectFunc, len(opts.Connectors)),
		metrics:    opts.Metrics,
		onTx:       opts.OnTx,
	}

	plugins, err := plugin.NewRegistry(plugin.Deps{
		Wallets:  c.wallets,
		Stagenet: opts.Stagenet,
	}, opts.DefaultPlugin, opts.Plugins...)
	if err != nil {
		return nil, err
	}
	c.plugins = plugins

	cfg := opts.Config
	cfg.Stagenet = cfg.Stagenet || opts.Stagenet
	connectCtx := wallet.ConnectContext{
		AddChain: c.addChain,
		Config:   cfg,
		APIs:     opts.APIs,
		RPCURLs:  opts.RPCURLs,
	}

	for i, connector := range opts.Connectors {
		if connector.MethodName == "" || connector.Connect == nil {
			return nil, apperr.Newf(apperr.KeyConnectorRegistrationInvalid, "connector %d has no method name or connect function", i)
		}
		if _, exists := c.connectors[connector.MethodName]; exists {
			return nil, apperr.Newf(apperr.KeyConnectorRegistrationInvalid, "connect method %q registered twice", connector.MethodName)
		}
		fn := connector.Connect(connectCtx)
		if fn == nil {
			return nil, apperr.Newf(apperr.KeyConnectorRegistrationInvalid, "connect method %q returned no function", connector.MethodName)
		}
		c.connectors[connector.MethodName] = fn
	}

	logrus.WithFields(logrus.Fields{
		"plugins":        plugins.Names(),
		"default_plugin": plugins.Default(),
		"connectors":     len(c.connectors),
		"stagenet":       opts.Stagenet,
	}).Info("SwapKit client initialized")

	return c, nil
}

func (c *Client) addChain(w wallet.ChainWallet) error {
	if err := c.wallets.AddChain(w); err != nil {
		return err
	}
	c.metrics.SetConnectedWallets(c.wallets.Len())
	return nil
}

// Connect runs the connect method registered under method
func (c *Client) Connect(ctx context.Context, method string, params wallet.ConnectParams) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveDispatch("connect", method, err, start) }()

	fn, ok := c.connectors[method]
	if !ok {
		return apperr.Newf(apperr.KeyWalletMethodNotSupported, "unknown connect method %q", method)
	}

	ctx, span := otel.Tracer().Start(ctx, "core.Connect", trace.WithAttributes(
		attribute.String("method", method),
	))
	defer span.End()

	if err := fn(ctx, params); err != nil {
		otel.RecordError(ctx, err)
		logrus.WithError(err).WithField("method", method).Warn("Wallet connect failed")
		if _, tagged := apperr.KeyOf(err); tagged {
			return err
		}
		return apperr.Wrap(apperr.KeyWalletConnectFailed, err)
	}
	return nil
}

// ConnectMethods returns the registered connect method names
func (c *Client) ConnectMethods() []string {
	methods := make([]string, 0, len(c.connectors))
	for m := range c.connectors {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// GetWallet returns the wallet connected for chain
func (c *Client) GetWallet(chain types.Chain) (*wallet.ChainWallet, bool) {
	return c.wallets.Get(chain)
}

// GetAddress returns the address connected for chain or an empty string
func (c *Client) GetAddress(chain types.Chain) string {
	return c.wallets.Address(chain)
}

// GetBalance returns the cached balance for chain or an empty slice
func (c *Client) GetBalance(chain types.Chain) []model.AssetValue {
	return c.wallets.Balance(chain)
}

// ConnectedChains returns the chains with a connected wallet
func (c *Client) ConnectedChains() []types.Chain {
	return c.wallets.Chains()
}

// GetWalletWithBalance refreshes and returns the wallet connected for chain
func (c *Client) GetWalletWithBalance(ctx context.Context, chain types.Chain, scamFilter bool) (*wallet.ChainWallet, error) {
	ctx, span := otel.Tracer().Start(ctx, "core.GetWalletWithBalance", trace.WithAttributes(
		attribute.String("chain", string(chain)),
	))
	defer span.End()

	w, err := c.wallets.WithBalance(ctx, chain, scamFilter)
	if err != nil {
		otel.RecordError(ctx, err)
	}
	return w, err
}

// GetWalletsWithBalance refreshes every connected wallet concurrently
func (c *Client) GetWalletsWithBalance(ctx context.Context, scamFilter bool) (map[types.Chain]*wallet.ChainWallet, error) {
	chains := c.wallets.Chains()
	results := make([]*wallet.ChainWallet, len(chains))

	g, gctx := errgroup.WithContext(ctx)
	for i, chain := range chains {
		i, chain := i, chain
		g.Go(func() error {
			w, err := c.GetWalletWithBalance(gctx, chain, scamFilter)
			if err != nil {
				return err
			}
			results[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[types.Chain]*wallet.ChainWallet, len(chains))
	for i, chain := range chains {
		out[chain] = results[i]
	}
	return out, nil
}

// GetExplorerTxURL returns the explorer page of a transaction
func (c *Client) GetExplorerTxURL(chain types.Chain, txHash string) (string, error) {
	return explorer.TxURL(chain, txHash)
}

// GetExplorerAddressURL returns the explorer page of an address
func (c *Client) GetExplorerAddressURL(chain types.Chain, address string) (string, error) {
	return explorer.AddressURL(chain, address)
}

// ValidateAddress checks address with the wallet connected for chain.
// supported is false when no wallet or no validator is available.
func (c *Client) ValidateAddress(chain types.Chain, address string) (valid, supported bool) {
	w, ok := c.wallets.Get(chain)
	if !ok {
		return false, false
	}
	v, ok := w.Toolbox.(wallet.AddressValidator)
	if !ok {
		return false, false
	}
	return v.ValidateAddress(address), true
}

// Plugin returns the plugin registered under name. Callers reach
// plugin-specific methods through a type assertion.
func (c *Client) Plugin(name plugin.Name) (plugin.Plugin, error) {
	return c.plugins.Get(name)
}

// Plugins returns registered plugin names in registration order
func (c *Client) Plugins() []plugin.Name {
	return c.plugins.Names()
}

// DefaultPlugin returns the plugin used when a swap names no provider
func (c *Client) DefaultPlugin() plugin.Name {
	return c.plugins.Default()
}

func (c *Client) emitTx(ev TxEvent) {
	if c.onTx == nil || ev.TxHash == "" {
		return
	}
	if url, err := explorer.TxURL(ev.Chain, ev.TxHash); err == nil {
		ev.ExplorerURL = url
	}
	c.onTx(ev)
}
