// Package types contains shared type definitions used across multiple packages
package types

import (
	"sort"
	"strings"
)

// Chain identifies a blockchain network supported by the client
type Chain string

// Supported blockchain networks. Values match the chain identifiers used by
// THORNode and MAYANode inbound address listings.
const (
	ChainArbitrum          Chain = "ARB"
	ChainAvalanche         Chain = "AVAX"
	ChainBinance           Chain = "BNB"
	ChainBinanceSmartChain Chain = "BSC"
	ChainBitcoin           Chain = "BTC"
	ChainBitcoinCash       Chain = "BCH"
	ChainCosmos            Chain = "GAIA"
	ChainDash              Chain = "DASH"
	ChainDogecoin          Chain = "DOGE"
	ChainEthereum          Chain = "ETH"
	ChainKujira            Chain = "KUJI"
	ChainLitecoin          Chain = "LTC"
	ChainMaya              Chain = "MAYA"
	ChainOptimism          Chain = "OP"
	ChainPolygon           Chain = "MATIC"
	ChainTHORChain         Chain = "THOR"
)

// ChainInfo holds static metadata for a chain
type ChainInfo struct {
	Name       string
	GasSymbol  string // Symbol of the native asset paying for gas
	Decimals   int32  // Decimals of the native asset
	EVM        bool
	EVMChainID int64 // Zero for non-EVM chains
	Bech32HRP  string
}

var chainInfo = map[Chain]ChainInfo{
	ChainArbitrum:          {Name: "Arbitrum", GasSymbol: "ETH", Decimals: 18, EVM: true, EVMChainID: 42161},
	ChainAvalanche:         {Name: "Avalanche", GasSymbol: "AVAX", Decimals: 18, EVM: true, EVMChainID: 43114},
	ChainBinance:           {Name: "BNB Beacon Chain", GasSymbol: "BNB", Decimals: 8, Bech32HRP: "bnb"},
	ChainBinanceSmartChain: {Name: "BNB Smart Chain", GasSymbol: "BNB", Decimals: 18, EVM: true, EVMChainID: 56},
	ChainBitcoin:           {Name: "Bitcoin", GasSymbol: "BTC", Decimals: 8},
	ChainBitcoinCash:       {Name: "Bitcoin Cash", GasSymbol: "BCH", Decimals: 8},
	ChainCosmos:            {Name: "Cosmos", GasSymbol: "ATOM", Decimals: 6, Bech32HRP: "cosmos"},
	ChainDash:              {Name: "Dash", GasSymbol: "DASH", Decimals: 8},
	ChainDogecoin:          {Name: "Dogecoin", GasSymbol: "DOGE", Decimals: 8},
	ChainEthereum:          {Name: "Ethereum", GasSymbol: "ETH", Decimals: 18, EVM: true, EVMChainID: 1},
	ChainKujira:            {Name: "Kujira", GasSymbol: "KUJI", Decimals: 6, Bech32HRP: "kujira"},
	ChainLitecoin:          {Name: "Litecoin", GasSymbol: "LTC", Decimals: 8},
	ChainMaya:              {Name: "Maya", GasSymbol: "CACAO", Decimals: 10, Bech32HRP: "maya"},
	ChainOptimism:          {Name: "Optimism", GasSymbol: "ETH", Decimals: 18, EVM: true, EVMChainID: 10},
	ChainPolygon:           {Name: "Polygon", GasSymbol: "MATIC", Decimals: 18, EVM: true, EVMChainID: 137},
	ChainTHORChain:         {Name: "THORChain", GasSymbol: "RUNE", Decimals: 8, Bech32HRP: "thor"},
}

// Info returns the static metadata for c and whether c is a known chain
func (c Chain) Info() (ChainInfo, bool) {
	info, ok := chainInfo[c]
	return info, ok
}

// Valid reports whether c is one of the supported chains
func (c Chain) Valid() bool {
	_, ok := chainInfo[c]
	return ok
}

// IsEVM reports whether c runs the Ethereum virtual machine
func (c Chain) IsEVM() bool {
	return chainInfo[c].EVM
}

// GasSymbol returns the symbol of the chain's native gas asset
func (c Chain) GasSymbol() string {
	return chainInfo[c].GasSymbol
}

// Decimals returns the decimals of the chain's native asset
func (c Chain) Decimals() int32 {
	return chainInfo[c].Decimals
}

func (c Chain) String() string {
	return string(c)
}

// AllChains returns every supported chain in stable order
func AllChains() []Chain {
	chains := make([]Chain, 0, len(chainInfo))
	for c := range chainInfo {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}

// IsApprovalChain reports whether token approvals are checked for c.
// Only Ethereum, Avalanche and BNB Smart Chain are listed; other EVM chains
// are treated like non-EVM chains and never require an allowance.
func IsApprovalChain(c Chain) bool {
	switch c {
	case ChainEthereum, ChainAvalanche, ChainBinanceSmartChain:
		return true
	default:
		return false
	}
}

// ParseChain converts a chain identifier, case-insensitively, into a Chain
func ParseChain(s string) (Chain, bool) {
	for c := range chainInfo {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}
