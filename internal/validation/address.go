// Package validation provides address validation and balance filtering.
package validation

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
	"github.com/gcash/bchutil"
	ltcchaincfg "github.com/ltcsuite/ltcd/chaincfg"
	"github.com/ltcsuite/ltcd/ltcutil"
	"github.com/yourorg/swapkit-go/internal/types"
)

// DogeMainNetParams defines the Dogecoin mainnet address prefixes
var DogeMainNetParams = chaincfg.Params{
	Name:             "doge-mainnet",
	Net:              0xc0c0c0c0,
	PubKeyHashAddrID: 0x1E, // D prefix
	ScriptHashAddrID: 0x16, // 9 or A prefix
}

// DashMainNetParams defines the Dash mainnet address prefixes
var DashMainNetParams = chaincfg.Params{
	Name:             "dash-mainnet",
	Net:              0xbd6b0cbf,
	PubKeyHashAddrID: 0x4C, // X prefix
	ScriptHashAddrID: 0x10, // 7 prefix
}

// ValidateAddress reports whether address is a well-formed mainnet address
// for chain. Unknown chains are never valid.
func ValidateAddress(chain types.Chain, address string) bool {
	if address == "" {
		return false
	}

	if chain.IsEVM() {
		return common.IsHexAddress(address)
	}

	switch chain {
	case types.ChainBitcoin:
		return validBtcutil(address, &chaincfg.MainNetParams)
	case types.ChainDogecoin:
		return validBtcutil(address, &DogeMainNetParams)
	case types.ChainDash:
		return validBtcutil(address, &DashMainNetParams)
	case types.ChainLitecoin:
		addr, err := ltcutil.DecodeAddress(address, &ltcchaincfg.MainNetParams)
		return err == nil && addr.IsForNet(&ltcchaincfg.MainNetParams)
	case types.ChainBitcoinCash:
		addr, err := bchutil.DecodeAddress(address, &bchchaincfg.MainNetParams)
		return err == nil && addr.IsForNet(&bchchaincfg.MainNetParams)
	}

	if info, ok := chain.Info(); ok && info.Bech32HRP != "" {
		return validBech32(address, info.Bech32HRP)
	}
	return false
}

// IsTaprootAddress reports whether address is a Bitcoin pay-to-taproot address
func IsTaprootAddress(chain types.Chain, address string) bool {
	if chain != types.ChainBitcoin {
		return false
	}
	addr, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(address), "bc1p")
	}
	_, ok := addr.(*btcutil.AddressTaproot)
	return ok
}

func validBtcutil(address string, params *chaincfg.Params) bool {
	addr, err := btcutil.DecodeAddress(address, params)
	return err == nil && addr.IsForNet(params)
}

// validBech32 checks the checksum, prefix and payload length of a Cosmos-style
// account address. Payloads are 20 bytes for accounts and 32 for modules.
func validBech32(address, hrp string) bool {
	prefix, data, err := bech32.Decode(address)
	if err != nil || prefix != hrp {
		return false
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return false
	}
	return len(payload) == 20 || len(payload) == 32
}
