package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"default message", New(KeyPluginNotFound), "could not find the requested plugin"},
		{"custom message", Newf(KeyExplorerUnsupportedChain, "Unsupported chain: %s", "XYZ"), "Unsupported chain: XYZ"},
		{"with cause", Wrap(KeyWalletConnectionNotFound, errors.New("rpc down")), "wallet connection not found: rpc down"},
		{"unknown key", New(Key("custom_key")), "custom_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesByKey(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(KeyChainHalted, cause))

	assert.True(t, errors.Is(err, New(KeyChainHalted)))
	assert.False(t, errors.Is(err, New(KeyPluginNotFound)))
	assert.True(t, errors.Is(err, cause), "cause must stay inspectable")
	assert.True(t, HasKey(err, KeyChainHalted))

	key, ok := KeyOf(err)
	require.True(t, ok)
	assert.Equal(t, KeyChainHalted, key)
}

func TestKeyOf_PlainError(t *testing.T) {
	_, ok := KeyOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, HasKey(nil, KeyChainHalted))
}
