package thorplugin

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/model"
	"github.com/yourorg/swapkit-go/internal/validation"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

// RouterABI is the vault router method used for EVM deposits
const RouterABI = `[{"inputs":[{"internalType":"address payable","name":"vault","type":"address"},{"internalType":"address","name":"asset","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"string","name":"memo","type":"string"},{"internalType":"uint256","name":"expiration","type":"uint256"}],"name":"depositWithExpiry","outputs":[],"stateMutability":"payable","type":"function"}]`

// DepositParams describes a deposit into an inbound vault
type DepositParams struct {
	AssetValue model.AssetValue
	// Recipient is the inbound vault. Empty on the native chains means a
	// deposit message instead of a transfer.
	Recipient string
	// Router overrides the inbound router on EVM chains
	Router    string
	Memo      string
	FeeOption wallet.FeeOption
	// Expiration is a unix timestamp; zero means 15 minutes from now
	Expiration int64
}

// Deposit sends params.AssetValue from the connected wallet of its chain
func (p *Plugin) Deposit(ctx context.Context, params DepositParams) (string, error) {
	chain := params.AssetValue.Chain
	w, ok := p.wallets.Get(chain)

	var from string
	if ok {
		from = w.Address
	}
	if !validSender(w, from) {
		return "", apperr.Newf(apperr.KeyTransactionInvalidSenderAddress, "invalid %s sender %q", chain, from)
	}
	if !ok {
		return "", apperr.New(apperr.KeyWalletConnectionNotFound)
	}

	log := logrus.WithFields(logrus.Fields{
		"plugin": p.name,
		"chain":  chain,
		"asset":  params.AssetValue.Identifier(),
		"amount": params.AssetValue.Value().String(),
	})

	txHash, err := p.deposit(ctx, w, from, params)
	if err != nil {
		err = classifyDepositError(err)
		log.WithError(err).Warn("Deposit failed")
		return "", err
	}
	log.WithField("tx_hash", txHash).Info("Deposit sent")
	return txHash, nil
}

func (p *Plugin) deposit(ctx context.Context, w *wallet.ChainWallet, from string, params DepositParams) (string, error) {
	av := params.AssetValue

	switch {
	case isNative(av.Chain):
		if params.Recipient == "" {
			depositor, ok := w.Toolbox.(wallet.Depositor)
			if !ok {
				return "", apperr.Newf(apperr.KeyWalletMethodNotSupported, "%s wallet cannot send deposits", av.Chain)
			}
			return depositor.Deposit(ctx, wallet.DepositParams{
				AssetValue: av,
				From:       from,
				Memo:       params.Memo,
				FeeOption:  params.FeeOption,
			})
		}
		return w.Toolbox.Transfer(ctx, transferParams(from, params))

	case av.Chain.IsEVM():
		caller, ok := w.Toolbox.(wallet.ContractCaller)
		if !ok {
			return "", apperr.Newf(apperr.KeyWalletMethodNotSupported, "%s wallet cannot call contracts", av.Chain)
		}
		router := params.Router
		if router == "" {
			inbound, err := p.InboundDataByChain(ctx, av.Chain)
			if err != nil {
				return "", err
			}
			router = inbound.Router
		}
		expiration := params.Expiration
		if expiration == 0 {
			expiration = p.now().Add(depositExpiry).Unix()
		}
		return caller.Call(ctx, wallet.ContractCallParams{
			ContractAddress: router,
			ABI:             RouterABI,
			FuncName:        "depositWithExpiry",
			FuncParams: []interface{}{
				common.HexToAddress(params.Recipient),
				tokenAddress(av),
				av.BaseValue(),
				params.Memo,
				big.NewInt(expiration),
			},
			From:      from,
			Value:     gasValue(av),
			FeeOption: params.FeeOption,
		})

	default:
		return w.Toolbox.Transfer(ctx, transferParams(from, params))
	}
}

func transferParams(from string, params DepositParams) wallet.TransferParams {
	return wallet.TransferParams{
		AssetValue: params.AssetValue,
		From:       from,
		Recipient:  params.Recipient,
		Memo:       params.Memo,
		FeeOption:  params.FeeOption,
	}
}

// validSender rejects empty and taproot senders and anything the wallet's
// own validator refuses
func validSender(w *wallet.ChainWallet, address string) bool {
	if address == "" || w == nil {
		return false
	}
	if validation.IsTaprootAddress(w.Chain, address) {
		return false
	}
	if v, ok := w.Toolbox.(wallet.AddressValidator); ok {
		return v.ValidateAddress(address)
	}
	return true
}

// tokenAddress is the router's asset argument; the zero address means the
// gas asset
func tokenAddress(av model.AssetValue) common.Address {
	if av.IsGasAsset() || av.Address == "" {
		return common.Address{}
	}
	return common.HexToAddress(av.Address)
}

func gasValue(av model.AssetValue) *big.Int {
	if av.IsGasAsset() {
		return av.BaseValue()
	}
	return nil
}

// classifyDepositError tags wallet failures by their message. Errors that
// already carry a key are returned unchanged.
func classifyDepositError(err error) error {
	if _, ok := apperr.KeyOf(err); ok {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return apperr.Wrap(apperr.KeyTransactionDepositInsufficient, err)
	case strings.Contains(msg, "gas"):
		return apperr.Wrap(apperr.KeyTransactionDepositGasError, err)
	case strings.Contains(msg, "server"):
		return apperr.Wrap(apperr.KeyTransactionDepositServerError, err)
	case strings.Contains(msg, "user rejected"):
		return apperr.Wrap(apperr.KeyTransactionUserRejected, err)
	default:
		return apperr.Wrap(apperr.KeyTransactionDepositError, err)
	}
}
