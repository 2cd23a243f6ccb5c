package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
)

// mustAsset builds an Ethereum asset; decimals do not affect filtering
func mustAsset(t *testing.T, identifier, amount string) model.AssetValue {
	t.Helper()
	av, err := model.NewAssetValue(identifier, amount, 18)
	require.NoError(t, err)
	return av
}

func TestFilterPotentialScams(t *testing.T) {
	tests := []struct {
		name    string
		balance []model.AssetValue
		want    []string // expected tickers
	}{
		{
			name: "legitimate tokens kept",
			balance: []model.AssetValue{
				mustAsset(t, "ETH.ETH", "1"),
				mustAsset(t, "ETH.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "10"),
			},
			want: []string{"ETH", "USDC"},
		},
		{
			name: "lure tokens dropped",
			balance: []model.AssetValue{
				mustAsset(t, "ETH.ETH", "1"),
				mustAsset(t, "ETH.CLAIM.REWARDS.COM-0x1111111111111111111111111111111111111111", "1000"),
				mustAsset(t, "ETH.VISITAIRDROP-0x2222222222222222222222222222222222222222", "1000"),
				mustAsset(t, "ETH.WBTC-0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", "0.1"),
			},
			want: []string{"ETH", "WBTC"},
		},
		{
			name: "lure after the ticker dash dropped",
			balance: []model.AssetValue{
				mustAsset(t, "ETH.FREE-CLAIM.COM-0x6666666666666666666666666666666666666666", "1000"),
				mustAsset(t, "ETH/ETH", "1"),
			},
			want: []string{"ETH"},
		},
		{
			name: "gas asset always kept",
			balance: []model.AssetValue{
				model.GasAsset(types.ChainAvalanche),
			},
			want: []string{"AVAX"},
		},
		{
			name:    "empty input",
			balance: []model.AssetValue{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterPotentialScams(tt.balance)
			tickers := make([]string, 0, len(filtered))
			for _, av := range filtered {
				tickers = append(tickers, av.Ticker)
			}
			assert.Equal(t, tt.want, tickers)
		})
	}
}

func TestFilterPotentialScamsWithOptions_CustomSettings(t *testing.T) {
	opts := ScamFilterOptions{
		Patterns:         []string{"moon"},
		MaxTickerLength:  5,
		DropZeroBalances: true,
	}

	balance := []model.AssetValue{
		model.GasAsset(types.ChainEthereum),                                                    // zero but gas
		mustAsset(t, "ETH.USDT-0xdAC17F958D2ee523a2206206994597C13D831ec7", "0"),               // zero balance
		mustAsset(t, "ETH.MOONX-0x3333333333333333333333333333333333333333", "5"),              // pattern
		mustAsset(t, "ETH.LONGTICKER-0x4444444444444444444444444444444444444444", "5"),         // too long
		mustAsset(t, "ETH.DAI-0x6B175474E89094C44Da98b954EedeAC495271d0F", "5"),                // kept
		mustAsset(t, "ETH.REWARD-0x5555555555555555555555555555555555555555", "5"),             // too long, not matched by custom patterns
	}

	filtered := FilterPotentialScamsWithOptions(balance, opts)
	require.Len(t, filtered, 2)
	assert.Equal(t, "ETH", filtered[0].Ticker)
	assert.Equal(t, "DAI", filtered[1].Ticker)
}
