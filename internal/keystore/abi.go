package keystore

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ERC20ABI covers the token methods the toolbox calls
const ERC20ABI = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var erc20 = mustParseABI(ERC20ABI)

// MaxAllowance is the allowance granted when no amount is given
var MaxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// packCall encodes a call of funcName, converting loosely typed params
// such as JSON strings and numbers to the method's argument types
func packCall(contractABI abi.ABI, funcName string, params []interface{}) ([]byte, error) {
	method, ok := contractABI.Methods[funcName]
	if !ok {
		return nil, fmt.Errorf("method %q not found in abi", funcName)
	}
	if len(params) != len(method.Inputs) {
		return nil, fmt.Errorf("method %s takes %d arguments, got %d", funcName, len(method.Inputs), len(params))
	}

	args := make([]interface{}, len(params))
	for i, input := range method.Inputs {
		v, err := convertArg(input.Type, params[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, input.Name, err)
		}
		args[i] = v
	}
	return contractABI.Pack(funcName, args...)
}

func convertArg(t abi.Type, v interface{}) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("invalid address %q", a)
			}
			return common.HexToAddress(a), nil
		}

	case abi.UintTy, abi.IntTy:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		rt := t.GetType()
		if rt.Kind() == reflect.Ptr {
			return n, nil
		}
		rv := reflect.New(rt).Elem()
		if t.T == abi.UintTy {
			rv.SetUint(n.Uint64())
		} else {
			rv.SetInt(n.Int64())
		}
		return rv.Interface(), nil

	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}

	case abi.BytesTy:
		return toBytes(v)

	case abi.FixedBytesTy:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit bytes%d", len(b), t.Size)
		}
		rv := reflect.New(t.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv.Interface(), nil

	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

func toBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return new(big.Int).Set(n), nil
	case string:
		out, ok := new(big.Int).SetString(n, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", n)
		}
		return out, nil
	case json.Number:
		return toBigInt(n.String())
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("non-integer value %v", n)
		}
		return big.NewInt(int64(n)), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

func toBytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return hexutil.Decode(b)
	}
	return nil, fmt.Errorf("cannot use %T as bytes", v)
}
