// Package watchonly connects read-only wallets from plain addresses
package watchonly

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/validation"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

// MethodName is the connect method registered by the watch-only connector
const MethodName = "connectWatchOnly"

// Connector returns the watch-only wallet connector. Addresses come from
// ConnectParams.Addresses; ConnectParams.Chains, when set, selects a
// subset of them.
func Connector() wallet.Connector {
	return wallet.Connector{
		MethodName: MethodName,
		Connect: func(cc wallet.ConnectContext) wallet.ConnectFunc {
			return func(ctx context.Context, params wallet.ConnectParams) error {
				return connect(cc, params)
			}
		},
	}
}

func connect(cc wallet.ConnectContext, params wallet.ConnectParams) error {
	chains := params.Chains
	if len(chains) == 0 {
		for chain := range params.Addresses {
			chains = append(chains, chain)
		}
		sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	}
	if len(chains) == 0 {
		return apperr.Newf(apperr.KeyWalletConnectFailed, "no addresses to watch")
	}

	for _, chain := range chains {
		address := params.Addresses[chain]
		if address == "" {
			return apperr.Newf(apperr.KeyWalletConnectFailed, "no address given for %s", chain)
		}
		if !validation.ValidateAddress(chain, address) {
			return apperr.Newf(apperr.KeyWalletConnectFailed, "invalid %s address %q", chain, address)
		}
	}

	for _, chain := range chains {
		if err := cc.AddChain(wallet.ChainWallet{
			Chain:      chain,
			Address:    params.Addresses[chain],
			WalletType: wallet.TypeWatchOnly,
			Toolbox:    &Toolbox{chain: chain, balances: cc.APIs.Balances},
		}); err != nil {
			return err
		}
	}

	logrus.WithField("chains", chains).Info("Watch-only wallets connected")
	return nil
}

// Toolbox reads balances of a watched address and refuses to sign
type Toolbox struct {
	chain    types.Chain
	balances wallet.BalanceSource
}

// GetBalance returns the balance reported by the configured source, or
// nothing when no source is configured
func (t *Toolbox) GetBalance(ctx context.Context, address string, scamFilter bool) ([]model.AssetValue, error) {
	if t.balances == nil {
		return nil, nil
	}
	balance, err := t.balances.Balance(ctx, t.chain, address)
	if err != nil {
		return nil, err
	}
	if scamFilter {
		balance = validation.FilterPotentialScams(balance)
	}
	return balance, nil
}

// Transfer always fails; watch-only wallets hold no keys
func (t *Toolbox) Transfer(ctx context.Context, params wallet.TransferParams) (string, error) {
	return "", apperr.Newf(apperr.KeyWalletMethodNotSupported, "%s wallet is watch-only", t.chain)
}

// ValidateAddress reports whether address is valid for the watched chain
func (t *Toolbox) ValidateAddress(address string) bool {
	return validation.ValidateAddress(t.chain, address)
}
