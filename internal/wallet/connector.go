package wallet

import (
	"context"

	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
)

// ConnectParams carries the caller input of a connect method
type ConnectParams struct {
	Chains    []types.Chain
	Secret    string                 // private key or phrase for key-holding backends
	Addresses map[types.Chain]string // explicit addresses for watch-only backends
}

// ConnectConfig is the shared configuration handed to every connector
type ConnectConfig struct {
	APIKeys  map[string]string
	Stagenet bool
}

// BalanceSource looks up balances of addresses the client holds no keys for
type BalanceSource interface {
	Balance(ctx context.Context, chain types.Chain, address string) ([]model.AssetValue, error)
}

// APIs groups the external clients shared with connectors
type APIs struct {
	Balances BalanceSource
}

// ConnectContext is what a connector is bound with at client construction
type ConnectContext struct {
	AddChain func(ChainWallet) error
	Config   ConnectConfig
	APIs     APIs
	RPCURLs  map[types.Chain]string
}

// ConnectFunc connects the requested chains and registers a wallet for each
type ConnectFunc func(ctx context.Context, params ConnectParams) error

// Connector is a wallet backend registered under a method name such as
// "connectKeystore"
type Connector struct {
	MethodName string
	Connect    func(ConnectContext) ConnectFunc
}
