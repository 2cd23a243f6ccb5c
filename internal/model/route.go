package model

import "github.com/yourorg/swapkit-go/internal/types"

// QuoteRoute is an externally computed swap plan as returned by a quoting
// service. Amounts are human-readable decimal strings.
type QuoteRoute struct {
	SellAsset          string `json:"sellAsset"`
	SellAmount         string `json:"sellAmount"`
	SellAssetDecimals  int32  `json:"sellAssetDecimals,omitempty"`
	BuyAsset           string `json:"buyAsset"`
	ExpectedBuyAmount  string `json:"expectedBuyAmount"`
	SourceAddress      string `json:"sourceAddress"`
	DestinationAddress string `json:"destinationAddress"`
	Memo               string `json:"memo,omitempty"`

	// Set when the swap executes as an EVM contract call
	EVMTransactionDetails *EVMTransactionDetails `json:"evmTransactionDetails,omitempty"`
}

// EVMTransactionDetails carries the calldata description of an EVM swap leg
type EVMTransactionDetails struct {
	ContractAddress string        `json:"contractAddress"`
	ContractMethod  string        `json:"contractMethod"`
	ContractParams  []interface{} `json:"contractParams"`
	ApprovalToken   string        `json:"approvalToken,omitempty"`
	ApprovalSpender string        `json:"approvalSpender,omitempty"`
}

// SellAssetValue parses the sell leg into an AssetValue. SellAssetDecimals,
// when set, overrides the decimals ParseAssetValue would pick.
func (r QuoteRoute) SellAssetValue() (AssetValue, error) {
	if r.SellAssetDecimals > 0 {
		return NewAssetValue(r.SellAsset, r.SellAmount, r.SellAssetDecimals)
	}
	return ParseAssetValue(r.SellAsset, r.SellAmount)
}

// SellChain returns the chain the sell asset is sent from; synthetics settle
// on THORChain. It parses the identifier like SellAssetValue but needs no
// decimals.
func (r QuoteRoute) SellChain() (types.Chain, error) {
	av, err := parseIdentifier(r.SellAsset)
	if err != nil {
		return "", err
	}
	return av.Chain, nil
}
