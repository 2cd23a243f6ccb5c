// Package explorer maps chains to block explorer URLs
package explorer

import (
	"strings"

	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/types"
)

var baseURLs = map[types.Chain]string{
	types.ChainArbitrum:          "https://arbiscan.io",
	types.ChainAvalanche:         "https://snowtrace.io",
	types.ChainBinance:           "https://explorer.bnbchain.org",
	types.ChainBinanceSmartChain: "https://bscscan.com",
	types.ChainBitcoin:           "https://www.blockchain.com/btc",
	types.ChainBitcoinCash:       "https://www.blockchain.com/bch",
	types.ChainCosmos:            "https://cosmos.bigdipper.live",
	types.ChainDash:              "https://blockchair.com/dash",
	types.ChainDogecoin:          "https://blockchair.com/dogecoin",
	types.ChainEthereum:          "https://etherscan.io",
	types.ChainKujira:            "https://finder.kujira.network/kaiyo-1",
	types.ChainLitecoin:          "https://ltc.bitaps.com",
	types.ChainMaya:              "https://www.mayascan.org",
	types.ChainOptimism:          "https://optimistic.etherscan.io",
	types.ChainPolygon:           "https://polygonscan.com",
	types.ChainTHORChain:         "https://runescan.io",
}

// BaseURL returns the explorer root for chain
func BaseURL(chain types.Chain) (string, error) {
	base, ok := baseURLs[chain]
	if !ok {
		return "", unsupported(chain)
	}
	return base, nil
}

// TxURL returns the explorer page of a transaction
func TxURL(chain types.Chain, txHash string) (string, error) {
	base, err := BaseURL(chain)
	if err != nil {
		return "", err
	}

	switch {
	case chain == types.ChainLitecoin:
		return base + "/" + txHash, nil
	case chain == types.ChainDogecoin, chain == types.ChainDash:
		return base + "/transaction/" + txHash, nil
	case chain == types.ChainCosmos:
		return base + "/transactions/" + txHash, nil
	case chain.IsEVM():
		if !strings.HasPrefix(txHash, "0x") {
			txHash = "0x" + txHash
		}
		return base + "/tx/" + txHash, nil
	default:
		return base + "/tx/" + txHash, nil
	}
}

// AddressURL returns the explorer page of an address
func AddressURL(chain types.Chain, address string) (string, error) {
	base, err := BaseURL(chain)
	if err != nil {
		return "", err
	}

	switch chain {
	case types.ChainLitecoin:
		return base + "/" + address, nil
	case types.ChainCosmos:
		return base + "/account/" + address, nil
	default:
		return base + "/address/" + address, nil
	}
}

func unsupported(chain types.Chain) error {
	return apperr.Newf(apperr.KeyExplorerUnsupportedChain, "Unsupported chain: %s", chain)
}
