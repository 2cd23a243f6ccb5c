package keystore

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/validation"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

// Toolbox signs and sends EVM transactions with a local key
type Toolbox struct {
	chain   types.Chain
	chainID *big.Int
	key     *ecdsa.PrivateKey
	address common.Address
	backend Backend
	tokens  []string
}

// feeMultipliers scale the suggested gas price, in percent
var feeMultipliers = map[wallet.FeeOption]int64{
	wallet.FeeAverage: 100,
	wallet.FeeFast:    150,
	wallet.FeeFastest: 200,
}

// Address returns the account the toolbox signs for
func (t *Toolbox) Address() common.Address {
	return t.address
}

// GetBalance returns the gas asset balance of address followed by any
// configured token balances
func (t *Toolbox) GetBalance(ctx context.Context, address string, scamFilter bool) ([]model.AssetValue, error) {
	if !common.IsHexAddress(address) {
		return nil, apperr.Newf(apperr.KeyTransactionInvalidSenderAddress, "invalid %s address %q", t.chain, address)
	}
	owner := common.HexToAddress(address)

	native, err := t.backend.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s balance: %w", t.chain, err)
	}
	gas, err := model.FromBaseUnits(t.chain.String()+"."+t.chain.GasSymbol(), native, t.chain.Decimals())
	if err != nil {
		return nil, err
	}
	balance := []model.AssetValue{gas}

	for _, identifier := range t.tokens {
		token, err := t.tokenBalance(ctx, identifier, owner)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"chain": t.chain,
				"token": identifier,
			}).Warn("Skipping token balance")
			continue
		}
		if !token.IsZero() {
			balance = append(balance, token)
		}
	}

	if scamFilter {
		balance = validation.FilterPotentialScams(balance)
	}
	return balance, nil
}

func (t *Toolbox) tokenBalance(ctx context.Context, identifier string, owner common.Address) (model.AssetValue, error) {
	av, err := model.NewAssetValue(identifier, "0", t.chain.Decimals())
	if err != nil {
		return model.AssetValue{}, err
	}
	if av.Address == "" {
		return model.AssetValue{}, fmt.Errorf("token %s has no contract address", identifier)
	}
	contract := common.HexToAddress(av.Address)

	decimals, err := t.tokenDecimals(ctx, contract)
	if err != nil {
		return model.AssetValue{}, err
	}

	out, err := t.call(ctx, contract, erc20, "balanceOf", owner)
	if err != nil {
		return model.AssetValue{}, err
	}
	amount, ok := out[0].(*big.Int)
	if !ok {
		return model.AssetValue{}, fmt.Errorf("unexpected balanceOf result %T", out[0])
	}
	return model.FromBaseUnits(identifier, amount, decimals)
}

// tokenDecimals reads the decimals the token contract declares
func (t *Toolbox) tokenDecimals(ctx context.Context, contract common.Address) (int32, error) {
	out, err := t.call(ctx, contract, erc20, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals result %T", out[0])
	}
	return int32(d), nil
}

// Transfer sends the gas asset, with the memo as calldata, or an ERC20
// transfer of a token
func (t *Toolbox) Transfer(ctx context.Context, params wallet.TransferParams) (string, error) {
	if err := t.checkFrom(params.From); err != nil {
		return "", err
	}
	if !common.IsHexAddress(params.Recipient) {
		return "", fmt.Errorf("invalid recipient %q", params.Recipient)
	}
	recipient := common.HexToAddress(params.Recipient)
	av := params.AssetValue

	if av.IsGasAsset() {
		var data []byte
		if params.Memo != "" {
			data = []byte(params.Memo)
		}
		return t.send(ctx, recipient, av.BaseValue(), data, params.FeeOption)
	}

	if av.Address == "" {
		return "", apperr.Newf(apperr.KeyAssetValueInvalid, "%s has no contract address", av.Identifier())
	}
	data, err := erc20.Pack("transfer", recipient, av.BaseValue())
	if err != nil {
		return "", err
	}
	return t.send(ctx, common.HexToAddress(av.Address), nil, data, params.FeeOption)
}

// Approve grants params.SpenderAddress an allowance on the token. A nil
// amount approves the maximum.
func (t *Toolbox) Approve(ctx context.Context, params wallet.ApproveParams) (string, error) {
	if err := t.checkFrom(params.From); err != nil {
		return "", err
	}
	amount := params.Amount
	if amount == nil {
		amount = MaxAllowance
	}
	data, err := erc20.Pack("approve", common.HexToAddress(params.SpenderAddress), amount)
	if err != nil {
		return "", err
	}
	return t.send(ctx, common.HexToAddress(params.AssetAddress), nil, data, wallet.FeeAverage)
}

// IsApproved reports whether the current allowance covers params.Amount.
// A nil amount asks for any non-zero allowance.
func (t *Toolbox) IsApproved(ctx context.Context, params wallet.ApproveParams) (bool, error) {
	owner := t.address
	if params.From != "" {
		owner = common.HexToAddress(params.From)
	}
	out, err := t.call(ctx, common.HexToAddress(params.AssetAddress), erc20, "allowance",
		owner, common.HexToAddress(params.SpenderAddress))
	if err != nil {
		return false, err
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return false, fmt.Errorf("unexpected allowance result %T", out[0])
	}
	if params.Amount == nil {
		return allowance.Sign() > 0, nil
	}
	return allowance.Cmp(params.Amount) >= 0, nil
}

// Call sends a transaction invoking params.FuncName on the contract
func (t *Toolbox) Call(ctx context.Context, params wallet.ContractCallParams) (string, error) {
	if err := t.checkFrom(params.From); err != nil {
		return "", err
	}
	if !common.IsHexAddress(params.ContractAddress) {
		return "", fmt.Errorf("invalid contract address %q", params.ContractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(params.ABI))
	if err != nil {
		return "", fmt.Errorf("parse abi: %w", err)
	}
	data, err := packCall(parsed, params.FuncName, params.FuncParams)
	if err != nil {
		return "", err
	}
	return t.send(ctx, common.HexToAddress(params.ContractAddress), params.Value, data, params.FeeOption)
}

// ValidateAddress reports whether address is a hex EVM address
func (t *Toolbox) ValidateAddress(address string) bool {
	return validation.ValidateAddress(t.chain, address)
}

func (t *Toolbox) checkFrom(from string) error {
	if from == "" || strings.EqualFold(from, t.address.Hex()) {
		return nil
	}
	return apperr.Newf(apperr.KeyTransactionInvalidSenderAddress, "keystore holds %s, not %s", t.address.Hex(), from)
}

// call runs a read-only contract method and unpacks its outputs
func (t *Toolbox) call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	raw, err := t.backend.CallContract(ctx, ethereum.CallMsg{From: t.address, To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	out, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out, nil
}

// send signs a legacy transaction and submits it
func (t *Toolbox) send(ctx context.Context, to common.Address, value *big.Int, data []byte, fee wallet.FeeOption) (string, error) {
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := t.backend.PendingNonceAt(ctx, t.address)
	if err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	multiplier, ok := feeMultipliers[fee]
	if !ok {
		multiplier = feeMultipliers[wallet.FeeAverage]
	}
	gasPrice = new(big.Int).Div(new(big.Int).Mul(gasPrice, big.NewInt(multiplier)), big.NewInt(100))

	gasLimit, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     t.address,
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
	})
	if err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(t.chainID), t.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"chain":   t.chain,
		"to":      to.Hex(),
		"nonce":   nonce,
		"tx_hash": signed.Hash().Hex(),
	}).Info("Transaction sent")
	return signed.Hash().Hex(), nil
}
