package keystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
)

// BalanceSource reads native balances of arbitrary EVM addresses over
// RPC. Backends are dialed lazily and reused.
type BalanceSource struct {
	urls map[types.Chain]string
	dial Dialer

	mu       sync.Mutex
	backends map[types.Chain]Backend
}

// NewBalanceSource creates a balance source over the given RPC URLs. A nil
// dial uses DialRPC.
func NewBalanceSource(urls map[types.Chain]string, dial Dialer) *BalanceSource {
	if dial == nil {
		dial = DialRPC
	}
	return &BalanceSource{
		urls:     urls,
		dial:     dial,
		backends: make(map[types.Chain]Backend),
	}
}

// Balance returns the gas asset balance of address on chain. Chains
// without an RPC URL report an empty balance.
func (s *BalanceSource) Balance(ctx context.Context, chain types.Chain, address string) ([]model.AssetValue, error) {
	if !chain.IsEVM() || s.urls[chain] == "" {
		return nil, nil
	}
	if !common.IsHexAddress(address) {
		return nil, apperr.Newf(apperr.KeyTransactionInvalidSenderAddress, "invalid %s address %q", chain, address)
	}

	backend, err := s.backend(ctx, chain)
	if err != nil {
		return nil, err
	}
	bal, err := backend.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("get %s balance: %w", chain, err)
	}
	gas, err := model.FromBaseUnits(chain.String()+"."+chain.GasSymbol(), bal, chain.Decimals())
	if err != nil {
		return nil, err
	}
	return []model.AssetValue{gas}, nil
}

func (s *BalanceSource) backend(ctx context.Context, chain types.Chain) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.backends[chain]; ok {
		return b, nil
	}
	b, err := s.dial(ctx, chain, s.urls[chain])
	if err != nil {
		return nil, err
	}
	s.backends[chain] = b
	return b, nil
}
