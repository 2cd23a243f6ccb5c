package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
	"github.com/yourorg/swapkit-go/internal/wallet/wallettest"
)

func TestRegistry_UnconnectedChains(t *testing.T) {
	r := wallet.NewRegistry()

	for _, chain := range types.AllChains() {
		w, ok := r.Get(chain)
		assert.False(t, ok)
		assert.Nil(t, w)
		assert.Equal(t, "", r.Address(chain))
		assert.Empty(t, r.Balance(chain))
	}
}

func TestRegistry_AddChainReplaces(t *testing.T) {
	r := wallet.NewRegistry()
	first := &wallettest.Toolbox{}
	second := &wallettest.Toolbox{}

	require.NoError(t, r.AddChain(wallet.ChainWallet{
		Chain:      types.ChainEthereum,
		Address:    "0xfirst",
		Balance:    []model.AssetValue{model.GasAsset(types.ChainEthereum)},
		WalletType: wallet.TypeKeystore,
		Toolbox:    first,
	}))
	require.NoError(t, r.AddChain(wallet.ChainWallet{
		Chain:      types.ChainEthereum,
		Address:    "0xsecond",
		WalletType: wallet.TypeWatchOnly,
		Toolbox:    second,
	}))

	w, ok := r.Get(types.ChainEthereum)
	require.True(t, ok)
	assert.Equal(t, "0xsecond", w.Address)
	assert.Equal(t, wallet.TypeWatchOnly, w.WalletType)
	assert.Nil(t, w.Balance, "no field merge from the replaced wallet")
	assert.Same(t, second, w.Toolbox)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AddChainRejectsInvalid(t *testing.T) {
	r := wallet.NewRegistry()

	err := r.AddChain(wallet.ChainWallet{Chain: types.Chain("XYZ"), Toolbox: &wallettest.Toolbox{}})
	assert.True(t, apperr.HasKey(err, apperr.KeyWalletConnectFailed))

	err = r.AddChain(wallet.ChainWallet{Chain: types.ChainBitcoin})
	assert.True(t, apperr.HasKey(err, apperr.KeyWalletConnectFailed))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_WithBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("empty fetch yields gas asset default", func(t *testing.T) {
		r := wallet.NewRegistry()
		require.NoError(t, r.AddChain(wallet.ChainWallet{
			Chain:   types.ChainBitcoin,
			Address: "bc1qaddress",
			Toolbox: &wallettest.Toolbox{Balance: nil},
		}))

		w, err := r.WithBalance(ctx, types.ChainBitcoin, false)
		require.NoError(t, err)
		require.Len(t, w.Balance, 1)
		assert.True(t, w.Balance[0].IsGasAsset())
		assert.True(t, w.Balance[0].IsZero())
		assert.Equal(t, types.ChainBitcoin, w.Balance[0].Chain)
		assert.Len(t, r.Balance(types.ChainBitcoin), 1)
	})

	t.Run("fetched balance replaces cache", func(t *testing.T) {
		r := wallet.NewRegistry()
		eth, err := model.ParseAssetValue("ETH.ETH", "2")
		require.NoError(t, err)
		require.NoError(t, r.AddChain(wallet.ChainWallet{
			Chain:   types.ChainEthereum,
			Address: "0xabc",
			Toolbox: &wallettest.Toolbox{Balance: []model.AssetValue{eth}},
		}))

		w, err := r.WithBalance(ctx, types.ChainEthereum, true)
		require.NoError(t, err)
		assert.Equal(t, []model.AssetValue{eth}, w.Balance)
		assert.Equal(t, []model.AssetValue{eth}, r.Balance(types.ChainEthereum))
	})

	t.Run("missing wallet", func(t *testing.T) {
		r := wallet.NewRegistry()
		_, err := r.WithBalance(ctx, types.ChainEthereum, false)
		assert.True(t, apperr.HasKey(err, apperr.KeyWalletConnectionNotFound))
	})

	t.Run("fetch error wrapped with cause", func(t *testing.T) {
		r := wallet.NewRegistry()
		cause := errors.New("rpc unavailable")
		require.NoError(t, r.AddChain(wallet.ChainWallet{
			Chain:   types.ChainLitecoin,
			Address: "ltc1qaddress",
			Toolbox: &wallettest.Toolbox{BalanceErr: cause},
		}))

		_, err := r.WithBalance(ctx, types.ChainLitecoin, false)
		assert.True(t, apperr.HasKey(err, apperr.KeyWalletConnectionNotFound))
		assert.ErrorIs(t, err, cause)
	})
}

func TestRegistry_BalanceIsNotShared(t *testing.T) {
	ctx := context.Background()
	eth, err := model.ParseAssetValue("ETH.ETH", "2")
	require.NoError(t, err)
	other := model.GasAsset(types.ChainAvalanche)

	r := wallet.NewRegistry()
	require.NoError(t, r.AddChain(wallet.ChainWallet{
		Chain:   types.ChainEthereum,
		Address: "0xabc",
		Toolbox: &wallettest.Toolbox{Balance: []model.AssetValue{eth}},
	}))
	_, err = r.WithBalance(ctx, types.ChainEthereum, false)
	require.NoError(t, err)

	r.Balance(types.ChainEthereum)[0] = other
	w, ok := r.Get(types.ChainEthereum)
	require.True(t, ok)
	w.Balance[0] = other

	assert.Equal(t, []model.AssetValue{eth}, r.Balance(types.ChainEthereum))

	added := []model.AssetValue{eth}
	require.NoError(t, r.AddChain(wallet.ChainWallet{
		Chain:   types.ChainBitcoin,
		Address: "bc1qaddress",
		Balance: added,
		Toolbox: &wallettest.Toolbox{},
	}))
	added[0] = other
	assert.Equal(t, []model.AssetValue{eth}, r.Balance(types.ChainBitcoin))
}

func TestRegistry_ConcurrentAddChain(t *testing.T) {
	r := wallet.NewRegistry()
	chains := types.AllChains()

	var wg sync.WaitGroup
	for _, chain := range chains {
		wg.Add(1)
		go func(chain types.Chain) {
			defer wg.Done()
			assert.NoError(t, r.AddChain(wallet.ChainWallet{
				Chain:   chain,
				Address: fmt.Sprintf("addr-%s", chain),
				Toolbox: &wallettest.Toolbox{},
			}))
		}(chain)
	}
	wg.Wait()

	assert.Equal(t, chains, r.Chains())
	for _, chain := range chains {
		assert.Equal(t, fmt.Sprintf("addr-%s", chain), r.Address(chain))
	}
}
