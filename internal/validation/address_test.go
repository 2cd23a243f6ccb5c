package validation

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
	"github.com/gcash/bchutil"
	ltcchaincfg "github.com/ltcsuite/ltcd/chaincfg"
	"github.com/ltcsuite/ltcd/ltcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/swapkit-go/internal/types"
)

var hash160 = []byte{
	0x62, 0xe9, 0x07, 0xb1, 0x5c, 0xbf, 0x27, 0xd5, 0x42, 0x53,
	0x99, 0xeb, 0xf6, 0xf0, 0xfb, 0x50, 0xeb, 0xb8, 0x8f, 0x18,
}

func encodeBech32(t *testing.T, hrp string) string {
	t.Helper()
	conv, err := bech32.ConvertBits(hash160, 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode(hrp, conv)
	require.NoError(t, err)
	return addr
}

func TestValidateAddress(t *testing.T) {
	btcP2PKH, err := btcutil.NewAddressPubKeyHash(hash160, &chaincfg.MainNetParams)
	require.NoError(t, err)
	btcTestnet, err := btcutil.NewAddressWitnessPubKeyHash(hash160, &chaincfg.TestNet3Params)
	require.NoError(t, err)
	doge, err := btcutil.NewAddressPubKeyHash(hash160, &DogeMainNetParams)
	require.NoError(t, err)
	dash, err := btcutil.NewAddressPubKeyHash(hash160, &DashMainNetParams)
	require.NoError(t, err)
	ltc, err := ltcutil.NewAddressWitnessPubKeyHash(hash160, &ltcchaincfg.MainNetParams)
	require.NoError(t, err)
	bch, err := bchutil.NewAddressPubKeyHash(hash160, &bchchaincfg.MainNetParams)
	require.NoError(t, err)

	tests := []struct {
		name    string
		chain   types.Chain
		address string
		want    bool
	}{
		{"eth hex address", types.ChainEthereum, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"arb hex address", types.ChainArbitrum, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"eth short", types.ChainEthereum, "0x742d35", false},
		{"btc legacy", types.ChainBitcoin, btcP2PKH.EncodeAddress(), true},
		{"btc segwit", types.ChainBitcoin, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", true},
		{"btc testnet rejected", types.ChainBitcoin, btcTestnet.EncodeAddress(), false},
		{"btc garbage", types.ChainBitcoin, "not-an-address", false},
		{"doge", types.ChainDogecoin, doge.EncodeAddress(), true},
		{"doge rejects btc", types.ChainDogecoin, btcP2PKH.EncodeAddress(), false},
		{"dash", types.ChainDash, dash.EncodeAddress(), true},
		{"ltc", types.ChainLitecoin, ltc.EncodeAddress(), true},
		{"ltc rejects btc segwit", types.ChainLitecoin, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", false},
		{"bch cashaddr", types.ChainBitcoinCash, bch.EncodeAddress(), true},
		{"cosmos", types.ChainCosmos, encodeBech32(t, "cosmos"), true},
		{"thor", types.ChainTHORChain, encodeBech32(t, "thor"), true},
		{"maya", types.ChainMaya, encodeBech32(t, "maya"), true},
		{"kujira", types.ChainKujira, encodeBech32(t, "kujira"), true},
		{"bnb", types.ChainBinance, encodeBech32(t, "bnb"), true},
		{"thor rejects cosmos prefix", types.ChainTHORChain, encodeBech32(t, "cosmos"), false},
		{"empty", types.ChainEthereum, "", false},
		{"unknown chain", types.Chain("XYZ"), "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAddress(tt.chain, tt.address))
		})
	}
}

func TestIsTaprootAddress(t *testing.T) {
	assert.True(t, IsTaprootAddress(types.ChainBitcoin, "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0"))
	assert.False(t, IsTaprootAddress(types.ChainBitcoin, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"))
	assert.False(t, IsTaprootAddress(types.ChainLitecoin, "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0"))
	assert.True(t, ValidateAddress(types.ChainBitcoin, "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0"))
}
