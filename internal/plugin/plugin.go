// Package plugin defines swap-execution plugins and the registry that holds them
package plugin

import (
	"context"

	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

// Name identifies a registered plugin, e.g. "thorchain"
type Name string

// Provider selects a plugin explicitly and carries plugin-specific config
type Provider struct {
	Name   Name              `json:"name"`
	Config map[string]string `json:"config,omitempty"`
}

// SwapParams is the input of a swap
type SwapParams struct {
	Route     *model.QuoteRoute `json:"route"`
	Provider  *Provider         `json:"provider,omitempty"`
	FeeOption wallet.FeeOption  `json:"feeOption,omitempty"`
	Recipient string            `json:"recipient,omitempty"`
}

// ProviderName returns the explicitly requested plugin or an empty name
func (p SwapParams) ProviderName() Name {
	if p.Provider == nil {
		return ""
	}
	return p.Provider.Name
}

// Plugin executes swaps and returns the settlement transaction hash
type Plugin interface {
	Swap(ctx context.Context, params SwapParams) (string, error)
}

// SpenderResolver is implemented by plugins that know the contract to approve
type SpenderResolver interface {
	GetSpender(ctx context.Context, chain types.Chain) (string, error)
}

// Deps is what a plugin factory receives. Wallets is the live registry and
// may still be empty when the factory runs.
type Deps struct {
	Wallets  *wallet.Registry
	Stagenet bool
}

// Factory builds a plugin instance
type Factory func(deps Deps) (Name, Plugin)
