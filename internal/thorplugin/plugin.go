// Package thorplugin executes swaps through THORChain and Maya Protocol
// inbound vaults.
package thorplugin

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/plugin"
	"github.com/yourorg/swapkit-go/internal/thornode"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

const (
	NameThorchain plugin.Name = "thorchain"
	NameMayachain plugin.Name = "mayachain"

	depositExpiry = 15 * time.Minute
)

// InboundSource lists the inbound vaults of a network
type InboundSource interface {
	InboundAddresses(ctx context.Context) ([]thornode.InboundAddress, error)
}

// Plugin swaps by depositing into the network's inbound vaults
type Plugin struct {
	name    plugin.Name
	wallets *wallet.Registry
	node    InboundSource
	now     func() time.Time
}

type settings struct {
	node     InboundSource
	nodeURL  string
	nodeOpts []thornode.Option
	now      func() time.Time
}

// Option configures a plugin factory
type Option func(*settings)

// WithNode uses src for inbound lookups instead of a node client
func WithNode(src InboundSource) Option {
	return func(s *settings) {
		s.node = src
	}
}

// WithNodeURL overrides the public node endpoint
func WithNodeURL(url string) Option {
	return func(s *settings) {
		s.nodeURL = url
	}
}

// WithNodeOptions passes options to the node client
func WithNodeOptions(opts ...thornode.Option) Option {
	return func(s *settings) {
		s.nodeOpts = append(s.nodeOpts, opts...)
	}
}

// Thorchain returns the factory of the THORChain plugin
func Thorchain(opts ...Option) plugin.Factory {
	return factory(NameThorchain, thornode.NetworkThorchain, opts)
}

// Mayachain returns the factory of the Maya Protocol plugin
func Mayachain(opts ...Option) plugin.Factory {
	return factory(NameMayachain, thornode.NetworkMayachain, opts)
}

func factory(name plugin.Name, network thornode.Network, opts []Option) plugin.Factory {
	return func(deps plugin.Deps) (plugin.Name, plugin.Plugin) {
		s := settings{now: time.Now}
		for _, opt := range opts {
			opt(&s)
		}
		if s.node == nil {
			url := s.nodeURL
			if url == "" {
				url = thornode.BaseURL(network, deps.Stagenet)
			}
			s.node = thornode.NewClient(url, network, s.nodeOpts...)
		}
		return name, &Plugin{
			name:    name,
			wallets: deps.Wallets,
			node:    s.node,
			now:     s.now,
		}
	}
}

// Name returns the registry name of the plugin
func (p *Plugin) Name() plugin.Name {
	return p.name
}

// Swap executes route. Routes without EVM transaction details, or selling
// a non-EVM asset, become a deposit to the sell chain's inbound vault.
func (p *Plugin) Swap(ctx context.Context, params plugin.SwapParams) (string, error) {
	route := params.Route
	if route == nil || route.SellAsset == "" {
		return "", apperr.New(apperr.KeySwapAssetNotRecognized)
	}
	av, err := route.SellAssetValue()
	if err != nil {
		return "", apperr.Wrap(apperr.KeySwapAssetNotRecognized, err)
	}

	inbound, err := p.InboundDataByChain(ctx, av.Chain)
	if err != nil {
		return "", err
	}

	details := route.EVMTransactionDetails
	if !(av.Chain.IsEVM() && details != nil) {
		return p.Deposit(ctx, DepositParams{
			AssetValue: av,
			Recipient:  inbound.Address,
			Router:     inbound.Router,
			Memo:       route.Memo,
			FeeOption:  params.FeeOption,
		})
	}

	w, ok := p.wallets.Get(av.Chain)
	if !ok {
		return "", apperr.New(apperr.KeyWalletConnectionNotFound)
	}
	caller, ok := w.Toolbox.(wallet.ContractCaller)
	if !ok {
		return "", apperr.Newf(apperr.KeyWalletMethodNotSupported, "%s wallet cannot call contracts", av.Chain)
	}

	from := route.SourceAddress
	if from == "" {
		from = w.Address
	}

	logrus.WithFields(logrus.Fields{
		"plugin":   p.name,
		"chain":    av.Chain,
		"contract": details.ContractAddress,
		"method":   details.ContractMethod,
	}).Info("Executing routed contract call")

	return caller.Call(ctx, wallet.ContractCallParams{
		ContractAddress: details.ContractAddress,
		ABI:             RouterABI,
		FuncName:        details.ContractMethod,
		FuncParams:      details.ContractParams,
		From:            from,
		Value:           gasValue(av),
		FeeOption:       params.FeeOption,
	})
}

// GetSpender returns the router contract that must be approved on chain
func (p *Plugin) GetSpender(ctx context.Context, chain types.Chain) (string, error) {
	inbound, err := p.InboundDataByChain(ctx, chain)
	if err != nil {
		return "", err
	}
	return inbound.Router, nil
}

// ApprovalTarget returns the router contract for the chain of av
func (p *Plugin) ApprovalTarget(ctx context.Context, av model.AssetValue) (string, error) {
	return p.GetSpender(ctx, av.Chain)
}

// InboundDataByChain returns the inbound vault of chain. The native chains
// have no vault and yield an empty record.
func (p *Plugin) InboundDataByChain(ctx context.Context, chain types.Chain) (thornode.InboundAddress, error) {
	if isNative(chain) {
		return thornode.InboundAddress{Chain: chain, GasRate: "0"}, nil
	}

	inbound, err := p.node.InboundAddresses(ctx)
	if err != nil {
		return thornode.InboundAddress{}, err
	}
	for _, in := range inbound {
		if in.Chain != chain {
			continue
		}
		if in.Halted {
			return thornode.InboundAddress{}, apperr.Newf(apperr.KeyChainHalted, "chain %s is halted", chain)
		}
		return in, nil
	}
	return thornode.InboundAddress{}, apperr.Newf(apperr.KeyInboundDataNotFound, "no inbound address for %s", chain)
}

func isNative(chain types.Chain) bool {
	return chain == types.ChainTHORChain || chain == types.ChainMaya
}
