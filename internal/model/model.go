// Package model defines the core data structures exchanged between wallets,
// plugins and the client.
package model

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/types"
)

// AssetValue pairs a chain-qualified asset with an amount held in base units.
// The zero value is not usable; build one with ParseAssetValue, NewAssetValue,
// FromBaseUnits or GasAsset.
type AssetValue struct {
	// Chain the asset lives on. Synthetic assets live on THORChain.
	Chain types.Chain

	// Symbol as written in the identifier, e.g. "USDC-0XA0B8..." or "BTC/BTC"
	Symbol string

	// Ticker without contract suffix, e.g. "USDC"
	Ticker string

	// Address is the token contract, empty for native assets
	Address string

	// Decimals declared for the asset
	Decimals int32

	synthetic bool
	value     *big.Int
}

// ParseAssetValue parses an identifier such as "ETH.USDC-0xA0b8...", "BTC.BTC"
// or the synthetic form "BTC/BTC" and a human-readable amount. Native assets
// use the chain's decimals and synthetics 8. EVM contract tokens use the known
// token table; an unlisted contract token is rejected, use NewAssetValue with
// the token's declared decimals instead.
func ParseAssetValue(identifier, amount string) (AssetValue, error) {
	av, err := parseIdentifier(identifier)
	if err != nil {
		return AssetValue{}, err
	}
	if av.Address != "" && av.Chain.IsEVM() {
		decimals, ok := TokenDecimals(av.Chain, av.Address)
		if !ok {
			return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "decimals of token %s are unknown", av.Identifier())
		}
		av.Decimals = decimals
	}
	return av.withAmount(amount, av.Decimals)
}

// NewAssetValue parses identifier and amount using explicit decimals
func NewAssetValue(identifier, amount string, decimals int32) (AssetValue, error) {
	av, err := parseIdentifier(identifier)
	if err != nil {
		return AssetValue{}, err
	}
	return av.withAmount(amount, decimals)
}

// FromBaseUnits builds an AssetValue from an amount already in base units
func FromBaseUnits(identifier string, base *big.Int, decimals int32) (AssetValue, error) {
	av, err := parseIdentifier(identifier)
	if err != nil {
		return AssetValue{}, err
	}
	if base == nil {
		base = new(big.Int)
	}
	if base.Sign() < 0 {
		return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "negative amount %s", base)
	}
	av.Decimals = decimals
	av.value = new(big.Int).Set(base)
	return av, nil
}

// GasAsset returns a zero amount of the native gas asset of chain
func GasAsset(chain types.Chain) AssetValue {
	return AssetValue{
		Chain:    chain,
		Symbol:   chain.GasSymbol(),
		Ticker:   chain.GasSymbol(),
		Decimals: chain.Decimals(),
		value:    new(big.Int),
	}
}

func parseIdentifier(identifier string) (AssetValue, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "empty asset identifier")
	}

	// Synthetic assets: "BTC/BTC" or "THOR.BTC/BTC"
	if slash := strings.Index(identifier, "/"); slash >= 0 {
		synth := identifier
		if dot := strings.Index(identifier, "."); dot >= 0 && dot < slash {
			synth = identifier[dot+1:]
			slash = strings.Index(synth, "/")
		}
		chainPart, symbolPart := synth[:slash], synth[slash+1:]
		if _, ok := types.ParseChain(chainPart); !ok || symbolPart == "" {
			return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "unrecognized synthetic asset %q", identifier)
		}
		ticker, _ := splitSymbol(symbolPart)
		return AssetValue{
			Chain:     types.ChainTHORChain,
			Symbol:    strings.ToUpper(chainPart) + "/" + strings.ToUpper(symbolPart),
			Ticker:    strings.ToUpper(ticker),
			Decimals:  8,
			synthetic: true,
		}, nil
	}

	parts := strings.SplitN(identifier, ".", 2)
	if len(parts) != 2 || parts[1] == "" {
		return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "malformed asset identifier %q", identifier)
	}
	chain, ok := types.ParseChain(parts[0])
	if !ok {
		return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "unknown chain in %q", identifier)
	}

	ticker, address := splitSymbol(parts[1])
	symbol := strings.ToUpper(ticker)
	if address != "" {
		symbol += "-" + address
	}
	return AssetValue{
		Chain:    chain,
		Symbol:   symbol,
		Ticker:   strings.ToUpper(ticker),
		Address:  strings.ToLower(address),
		Decimals: chain.Decimals(),
	}, nil
}

// splitSymbol separates "USDC-0xA0b8..." into ticker and contract address
func splitSymbol(symbol string) (string, string) {
	if i := strings.Index(symbol, "-"); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	return symbol, ""
}

func (a AssetValue) withAmount(amount string, decimals int32) (AssetValue, error) {
	if amount == "" {
		amount = "0"
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return AssetValue{}, apperr.Wrap(apperr.KeyAssetValueInvalid, fmt.Errorf("amount %q: %w", amount, err))
	}
	if d.IsNegative() {
		return AssetValue{}, apperr.Newf(apperr.KeyAssetValueInvalid, "negative amount %s", amount)
	}
	a.Decimals = decimals
	a.value = d.Shift(decimals).Truncate(0).BigInt()
	return a, nil
}

// BaseValue returns a copy of the amount in base units
func (a AssetValue) BaseValue() *big.Int {
	if a.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.value)
}

// Value returns the human-readable amount
func (a AssetValue) Value() decimal.Decimal {
	return decimal.NewFromBigInt(a.BaseValue(), -a.Decimals)
}

// IsZero reports whether the amount is zero
func (a AssetValue) IsZero() bool {
	return a.value == nil || a.value.Sign() == 0
}

// IsSynthetic reports whether the asset is a THORChain synthetic
func (a AssetValue) IsSynthetic() bool {
	return a.synthetic
}

// IsGasAsset reports whether the asset is the native gas asset of its chain
func (a AssetValue) IsGasAsset() bool {
	if a.synthetic || a.Address != "" {
		return false
	}
	return strings.EqualFold(a.Symbol, a.Chain.GasSymbol())
}

// Identifier returns the canonical "CHAIN.SYMBOL" form
func (a AssetValue) Identifier() string {
	if a.synthetic {
		return a.Symbol
	}
	return string(a.Chain) + "." + a.Symbol
}

// String returns the amount followed by the identifier
func (a AssetValue) String() string {
	return a.Value().String() + " " + a.Identifier()
}
