// Package wallet defines connected chain wallets, the capabilities a wallet
// backend may expose, and the registry that owns them.
package wallet

import (
	"context"
	"math/big"

	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
)

// Type names the backend a wallet was connected through
type Type string

const (
	TypeKeystore  Type = "KEYSTORE"
	TypeWatchOnly Type = "WATCH_ONLY"
)

// FeeOption selects a fee tier for a transaction
type FeeOption string

const (
	FeeAverage FeeOption = "average"
	FeeFast    FeeOption = "fast"
	FeeFastest FeeOption = "fastest"
)

// ChainWallet is the connected-wallet record for one chain
type ChainWallet struct {
	Chain      types.Chain
	Address    string
	Balance    []model.AssetValue // nil until fetched
	WalletType Type
	Toolbox    Toolbox
}

// TransferParams describes a plain value transfer
type TransferParams struct {
	AssetValue model.AssetValue
	From       string
	Recipient  string
	Memo       string
	FeeOption  FeeOption
}

// ApproveParams describes a token allowance for a spender
type ApproveParams struct {
	Amount         *big.Int
	AssetAddress   string
	From           string
	SpenderAddress string
}

// ContractCallParams describes a call to a contract method
type ContractCallParams struct {
	ContractAddress string
	ABI             string
	FuncName        string
	FuncParams      []interface{}
	From            string
	Value           *big.Int
	FeeOption       FeeOption
}

// DepositParams describes a native-chain deposit message on THORChain or Maya
type DepositParams struct {
	AssetValue model.AssetValue
	From       string
	Memo       string
	FeeOption  FeeOption
}

// Toolbox is the mandatory capability set of a chain wallet
type Toolbox interface {
	GetBalance(ctx context.Context, address string, scamFilter bool) ([]model.AssetValue, error)
	Transfer(ctx context.Context, params TransferParams) (string, error)
}

// Approver grants token allowances
type Approver interface {
	Approve(ctx context.Context, params ApproveParams) (string, error)
}

// ApprovalChecker checks whether an allowance covers an amount
type ApprovalChecker interface {
	IsApproved(ctx context.Context, params ApproveParams) (bool, error)
}

// AddressValidator validates addresses for the wallet's chain
type AddressValidator interface {
	ValidateAddress(address string) bool
}

// ContractCaller executes contract methods
type ContractCaller interface {
	Call(ctx context.Context, params ContractCallParams) (string, error)
}

// Depositor sends native deposit messages
type Depositor interface {
	Deposit(ctx context.Context, params DepositParams) (string, error)
}
