package model

import (
	"strings"

	"github.com/yourorg/swapkit-go/internal/types"
)

// knownTokens holds the declared decimals of widely used EVM tokens, keyed by
// chain and lower-case contract address
var knownTokens = map[types.Chain]map[string]int32{
	types.ChainEthereum: {
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": 6,  // USDC
		"0xdac17f958d2ee523a2206206994597c13d831ec7": 6,  // USDT
		"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": 8,  // WBTC
		"0x6b175474e89094c44da98b954eedeac495271d0f": 18, // DAI
	},
	types.ChainAvalanche: {
		"0xb97ef9ef8734c71904d8002f8b6bc66dd9c48a6e": 6, // USDC
		"0x9702230a8ea53601f5cd2dc00fdbc13d4df4a8c7": 6, // USDT
	},
	types.ChainBinanceSmartChain: {
		"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d": 18, // USDC
		"0x55d398326f99059ff775485246999027b3197955": 18, // USDT
	},
	types.ChainArbitrum: {
		"0xaf88d065e77c8cc2239327c5edb3a432268e5831": 6, // USDC
	},
}

// TokenDecimals returns the declared decimals of a known token contract
func TokenDecimals(chain types.Chain, address string) (int32, bool) {
	d, ok := knownTokens[chain][strings.ToLower(address)]
	return d, ok
}
