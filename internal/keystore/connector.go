// Package keystore connects EVM wallets backed by a raw private key
package keystore

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/types"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

// MethodName is the connect method registered by the keystore connector
const MethodName = "connectKeystore"

// Backend is the subset of an Ethereum JSON-RPC client the toolbox uses.
// *ethclient.Client satisfies it.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Dialer opens a backend for chain at url
type Dialer func(ctx context.Context, chain types.Chain, url string) (Backend, error)

// DialRPC dials url with ethclient
func DialRPC(ctx context.Context, chain types.Chain, url string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s rpc: %w", chain, err)
	}
	return client, nil
}

type settings struct {
	dial   Dialer
	tokens map[types.Chain][]string
}

// Option configures the keystore connector
type Option func(*settings)

// WithDialer replaces the RPC dialer
func WithDialer(d Dialer) Option {
	return func(s *settings) {
		s.dial = d
	}
}

// WithTokens lists ERC20 asset identifiers whose balances are reported
// next to the gas asset of chain
func WithTokens(chain types.Chain, identifiers ...string) Option {
	return func(s *settings) {
		if s.tokens == nil {
			s.tokens = make(map[types.Chain][]string)
		}
		s.tokens[chain] = append(s.tokens[chain], identifiers...)
	}
}

// Connector returns the keystore wallet connector. The connect secret is
// a hex-encoded secp256k1 private key; every requested chain must be an
// EVM chain with a configured RPC URL.
func Connector(opts ...Option) wallet.Connector {
	s := settings{dial: DialRPC}
	for _, opt := range opts {
		opt(&s)
	}

	return wallet.Connector{
		MethodName: MethodName,
		Connect: func(cc wallet.ConnectContext) wallet.ConnectFunc {
			return func(ctx context.Context, params wallet.ConnectParams) error {
				return connect(ctx, cc, s, params)
			}
		},
	}
}

func connect(ctx context.Context, cc wallet.ConnectContext, s settings, params wallet.ConnectParams) error {
	key, err := parseKey(params.Secret)
	if err != nil {
		return err
	}
	if len(params.Chains) == 0 {
		return apperr.Newf(apperr.KeyWalletConnectFailed, "no chains requested")
	}

	for _, chain := range params.Chains {
		if !chain.IsEVM() {
			return apperr.Newf(apperr.KeyWalletConnectFailed, "keystore does not support chain %s", chain)
		}
		if cc.RPCURLs[chain] == "" {
			return apperr.Newf(apperr.KeyWalletConnectFailed, "no rpc url configured for %s", chain)
		}
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	for _, chain := range params.Chains {
		backend, err := s.dial(ctx, chain, cc.RPCURLs[chain])
		if err != nil {
			return apperr.Wrap(apperr.KeyWalletConnectFailed, err)
		}

		info, _ := chain.Info()
		tb := &Toolbox{
			chain:   chain,
			chainID: big.NewInt(info.EVMChainID),
			key:     key,
			address: address,
			backend: backend,
			tokens:  s.tokens[chain],
		}
		if err := cc.AddChain(wallet.ChainWallet{
			Chain:      chain,
			Address:    address.Hex(),
			WalletType: wallet.TypeKeystore,
			Toolbox:    tb,
		}); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"address": address.Hex(),
		"chains":  params.Chains,
	}).Info("Keystore connected")
	return nil
}

func parseKey(secret string) (*ecdsa.PrivateKey, error) {
	secret = strings.TrimPrefix(strings.TrimSpace(secret), "0x")
	if secret == "" {
		return nil, apperr.Newf(apperr.KeyWalletConnectFailed, "missing private key")
	}
	key, err := crypto.HexToECDSA(secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KeyWalletConnectFailed, fmt.Errorf("parse private key: %w", err))
	}
	return key, nil
}
