package wallet

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
)

// Registry owns the connected wallet of every chain. Writes for a chain
// replace the previous entry; different chains never interfere.
type Registry struct {
	wallets map[types.Chain]*ChainWallet
	mu      sync.RWMutex
}

// NewRegistry creates an empty wallet registry
func NewRegistry() *Registry {
	return &Registry{
		wallets: make(map[types.Chain]*ChainWallet),
	}
}

// AddChain inserts or replaces the wallet for w.Chain
func (r *Registry) AddChain(w ChainWallet) error {
	if !w.Chain.Valid() {
		return apperr.Newf(apperr.KeyWalletConnectFailed, "unsupported chain %q", w.Chain)
	}
	if w.Toolbox == nil {
		return apperr.Newf(apperr.KeyWalletConnectFailed, "wallet for %s has no toolbox", w.Chain)
	}

	r.mu.Lock()
	_, replaced := r.wallets[w.Chain]
	r.wallets[w.Chain] = w.clone()
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"chain":    w.Chain,
		"address":  w.Address,
		"type":     w.WalletType,
		"replaced": replaced,
	}).Info("Wallet connected")
	return nil
}

// Get returns a copy of the wallet connected for chain
func (r *Registry) Get(chain types.Chain) (*ChainWallet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[chain]
	if !ok {
		return nil, false
	}
	return w.clone(), true
}

// Address returns the address connected for chain or an empty string
func (r *Registry) Address(chain types.Chain) string {
	if w, ok := r.Get(chain); ok {
		return w.Address
	}
	return ""
}

// Balance returns the cached balance for chain or an empty slice
func (r *Registry) Balance(chain types.Chain) []model.AssetValue {
	if w, ok := r.Get(chain); ok && w.Balance != nil {
		return w.Balance
	}
	return []model.AssetValue{}
}

// WithBalance fetches the live balance of the wallet connected for chain,
// caches it and returns the updated wallet. An empty result is replaced by a
// single zero entry of the chain's gas asset.
func (r *Registry) WithBalance(ctx context.Context, chain types.Chain, scamFilter bool) (*ChainWallet, error) {
	r.mu.RLock()
	current, ok := r.wallets[chain]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.New(apperr.KeyWalletConnectionNotFound)
	}

	balance, err := current.Toolbox.GetBalance(ctx, current.Address, scamFilter)
	if err != nil {
		logrus.WithError(err).WithField("chain", chain).Warn("Balance fetch failed")
		return nil, apperr.Wrap(apperr.KeyWalletConnectionNotFound, err)
	}
	if len(balance) == 0 {
		balance = []model.AssetValue{model.GasAsset(chain)}
	}

	updated := *current
	updated.Balance = balance

	r.mu.Lock()
	// A wallet connected during the fetch wins over the stale entry
	if r.wallets[chain] == current {
		r.wallets[chain] = updated.clone()
	}
	r.mu.Unlock()

	return updated.clone(), nil
}

// clone copies w with its own balance slice; a nil balance stays nil
func (w *ChainWallet) clone() *ChainWallet {
	cp := *w
	if w.Balance != nil {
		cp.Balance = append(make([]model.AssetValue, 0, len(w.Balance)), w.Balance...)
	}
	return &cp
}

// Chains returns the connected chains in sorted order
func (r *Registry) Chains() []types.Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make([]types.Chain, 0, len(r.wallets))
	for c := range r.wallets {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}

// Len returns the number of connected wallets
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}
