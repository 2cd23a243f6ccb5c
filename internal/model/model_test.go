package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/types"
)

func TestParseAssetValue(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		amount     string
		chain      types.Chain
		ticker     string
		address    string
		base       string
		gas        bool
		synth      bool
	}{
		{"native eth", "ETH.ETH", "1.5", types.ChainEthereum, "ETH", "", "1500000000000000000", true, false},
		{"erc20 token", "ETH.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "10", types.ChainEthereum, "USDC", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "10000000", false, false},
		{"wbtc token", "ETH.WBTC-0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", "0.5", types.ChainEthereum, "WBTC", "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", "50000000", false, false},
		{"bsc usdc keeps 18", "BSC.USDC-0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", "1", types.ChainBinanceSmartChain, "USDC", "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", "1000000000000000000", false, false},
		{"bitcoin", "btc.btc", "0.00000001", types.ChainBitcoin, "BTC", "", "1", true, false},
		{"synthetic", "BTC/BTC", "2", types.ChainTHORChain, "BTC", "", "200000000", false, true},
		{"synthetic with chain prefix", "THOR.ETH/ETH", "1", types.ChainTHORChain, "ETH", "", "100000000", false, true},
		{"truncates excess precision", "BTC.BTC", "0.123456789", types.ChainBitcoin, "BTC", "", "12345678", true, false},
		{"empty amount is zero", "MAYA.CACAO", "", types.ChainMaya, "CACAO", "", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			av, err := ParseAssetValue(tt.identifier, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.chain, av.Chain)
			assert.Equal(t, tt.ticker, av.Ticker)
			assert.Equal(t, tt.address, av.Address)
			assert.Equal(t, tt.base, av.BaseValue().String())
			assert.Equal(t, tt.gas, av.IsGasAsset())
			assert.Equal(t, tt.synth, av.IsSynthetic())
		})
	}
}

func TestParseAssetValue_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		amount     string
	}{
		{"empty identifier", "", "1"},
		{"no separator", "ETH", "1"},
		{"unknown chain", "XYZ.XYZ", "1"},
		{"negative amount", "ETH.ETH", "-1"},
		{"garbage amount", "ETH.ETH", "one"},
		{"unknown synthetic chain", "XYZ/XYZ", "1"},
		{"unlisted evm token", "ETH.PEPE-0x6982508145454Ce325dDbE47a25d4ec3d2311933", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssetValue(tt.identifier, tt.amount)
			require.Error(t, err)
			assert.True(t, apperr.HasKey(err, apperr.KeyAssetValueInvalid))
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	av, err := FromBaseUnits("AVAX.USDT-0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", big.NewInt(2500000), 6)
	require.NoError(t, err)
	assert.Equal(t, "2.5", av.Value().String())
	assert.Equal(t, "AVAX.USDT-0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", av.Identifier())

	_, err = FromBaseUnits("ETH.ETH", big.NewInt(-1), 18)
	assert.True(t, apperr.HasKey(err, apperr.KeyAssetValueInvalid))
}

func TestBaseValue_ReturnsCopy(t *testing.T) {
	av, err := NewAssetValue("ETH.ETH", "1", 18)
	require.NoError(t, err)

	v := av.BaseValue()
	v.SetInt64(0)
	assert.False(t, av.IsZero(), "mutating the returned value must not affect the asset")
}

func TestGasAsset(t *testing.T) {
	for _, chain := range types.AllChains() {
		av := GasAsset(chain)
		assert.True(t, av.IsZero(), chain)
		assert.True(t, av.IsGasAsset(), chain)
		assert.Equal(t, chain.Decimals(), av.Decimals, chain)
	}

	arb := GasAsset(types.ChainArbitrum)
	assert.Equal(t, "0 ARB.ETH", arb.String())
}

func TestQuoteRoute_SellAssetValue(t *testing.T) {
	route := QuoteRoute{SellAsset: "LTC.LTC", SellAmount: "0.5"}
	av, err := route.SellAssetValue()
	require.NoError(t, err)
	assert.Equal(t, types.ChainLitecoin, av.Chain)
	assert.Equal(t, "50000000", av.BaseValue().String())

	route = QuoteRoute{SellAsset: "ETH.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", SellAmount: "25"}
	av, err = route.SellAssetValue()
	require.NoError(t, err)
	assert.Equal(t, int32(6), av.Decimals)
	assert.Equal(t, "25000000", av.BaseValue().String())

	route = QuoteRoute{SellAsset: "ETH.PEPE-0x6982508145454Ce325dDbE47a25d4ec3d2311933", SellAmount: "3", SellAssetDecimals: 9}
	av, err = route.SellAssetValue()
	require.NoError(t, err)
	assert.Equal(t, "3000000000", av.BaseValue().String())

	route.SellAssetDecimals = 0
	_, err = route.SellAssetValue()
	assert.True(t, apperr.HasKey(err, apperr.KeyAssetValueInvalid))
}

func TestTokenDecimals(t *testing.T) {
	d, ok := TokenDecimals(types.ChainEthereum, "0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48")
	assert.True(t, ok)
	assert.Equal(t, int32(6), d)

	_, ok = TokenDecimals(types.ChainArbitrum, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	assert.False(t, ok, "address is per chain")
}

func TestParseAssetValue_NonEVMTokenUsesChainDecimals(t *testing.T) {
	av, err := ParseAssetValue("BNB.BUSD-BD1", "1")
	require.NoError(t, err)
	assert.Equal(t, types.ChainBinance.Decimals(), av.Decimals)
}

func TestQuoteRoute_SellChain(t *testing.T) {
	tests := []struct {
		sell string
		want types.Chain
	}{
		{"BTC.BTC", types.ChainBitcoin},
		{"BTC/BTC", types.ChainTHORChain},
		{"THOR.ETH/ETH", types.ChainTHORChain},
		{"ETH.PEPE-0x6982508145454Ce325dDbE47a25d4ec3d2311933", types.ChainEthereum},
	}
	for _, tt := range tests {
		t.Run(tt.sell, func(t *testing.T) {
			chain, err := QuoteRoute{SellAsset: tt.sell}.SellChain()
			require.NoError(t, err)
			assert.Equal(t, tt.want, chain)
		})
	}

	_, err := QuoteRoute{SellAsset: "XYZ.XYZ"}.SellChain()
	assert.True(t, apperr.HasKey(err, apperr.KeyAssetValueInvalid))
}
