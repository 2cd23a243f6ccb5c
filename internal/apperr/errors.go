// Package apperr defines the tagged error type returned by every public
// operation of the client. Callers match on Key, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Key is the machine-readable identifier of an error kind
type Key string

const (
	KeyWalletConnectionNotFound          Key = "wallet_connection_not_found"
	KeyPluginNotFound                    Key = "plugin_not_found"
	KeySwapInvalidParams                 Key = "swap_invalid_params"
	KeyApproveAssetAddressOrFromNotFound Key = "approve_asset_address_or_from_not_found"
	KeyInboundDataNotFound               Key = "inbound_data_not_found"
	KeyChainHalted                       Key = "chain_halted"
	KeySwapAssetNotRecognized            Key = "swap_asset_not_recognized"

	KeyTransactionInvalidSenderAddress  Key = "transaction_invalid_sender_address"
	KeyTransactionDepositError          Key = "transaction_deposit_error"
	KeyTransactionDepositInsufficient   Key = "transaction_deposit_insufficient_funds_error"
	KeyTransactionDepositGasError       Key = "transaction_deposit_gas_error"
	KeyTransactionDepositServerError    Key = "transaction_deposit_server_error"
	KeyTransactionUserRejected          Key = "transaction_user_rejected"
	KeyWalletMethodNotSupported         Key = "wallet_method_not_supported"
	KeyWalletConnectFailed              Key = "wallet_connect_failed"
	KeyPluginRegistrationInvalid        Key = "plugin_registration_invalid"
	KeyConnectorRegistrationInvalid     Key = "connector_registration_invalid"
	KeyExplorerUnsupportedChain         Key = "explorer_unsupported_chain"
	KeyAssetValueInvalid                Key = "asset_value_invalid"
	KeyNodeRequestFailed                Key = "node_request_failed"
)

var messages = map[Key]string{
	KeyWalletConnectionNotFound:          "wallet connection not found",
	KeyPluginNotFound:                    "could not find the requested plugin",
	KeySwapInvalidParams:                 "invalid swap params",
	KeyApproveAssetAddressOrFromNotFound: "asset address or from address not found",
	KeyInboundDataNotFound:               "inbound data not found",
	KeyChainHalted:                       "chain is halted",
	KeySwapAssetNotRecognized:            "swap asset not recognized",
	KeyTransactionInvalidSenderAddress:   "invalid sender address",
	KeyTransactionDepositError:           "deposit failed",
	KeyTransactionDepositInsufficient:    "insufficient funds for deposit",
	KeyTransactionDepositGasError:        "deposit gas error",
	KeyTransactionDepositServerError:     "deposit server error",
	KeyTransactionUserRejected:           "transaction rejected by user",
	KeyWalletMethodNotSupported:          "wallet method not supported",
	KeyWalletConnectFailed:               "wallet connect failed",
	KeyPluginRegistrationInvalid:         "invalid plugin registration",
	KeyConnectorRegistrationInvalid:      "invalid connector registration",
	KeyExplorerUnsupportedChain:          "unsupported chain",
	KeyAssetValueInvalid:                 "invalid asset value",
	KeyNodeRequestFailed:                 "node request failed",
}

// Error is a tagged error carrying a Key and an optional cause
type Error struct {
	Key     Key
	Message string
	Cause   error
}

// New creates an error of the given kind
func New(key Key) *Error {
	return &Error{Key: key}
}

// Newf creates an error of the given kind with a formatted message
func Newf(key Key, format string, args ...interface{}) *Error {
	return &Error{Key: key, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind preserving cause
func Wrap(key Key, cause error) *Error {
	return &Error{Key: key, Cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		if m, ok := messages[e.Key]; ok {
			msg = m
		} else {
			msg = string(e.Key)
		}
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same key
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Key == e.Key
}

// KeyOf returns the key of the outermost *Error in err's chain
func KeyOf(err error) (Key, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Key, true
	}
	return "", false
}

// HasKey reports whether any *Error in err's chain carries key
func HasKey(err error, key Key) bool {
	return errors.Is(err, New(key))
}
