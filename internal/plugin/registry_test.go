package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/wallet"
)

type stubPlugin struct {
	tx string
}

func (s *stubPlugin) Swap(ctx context.Context, params SwapParams) (string, error) {
	return s.tx, nil
}

func stubFactory(name Name, tx string) Factory {
	return func(deps Deps) (Name, Plugin) {
		return name, &stubPlugin{tx: tx}
	}
}

func TestNewRegistry_DefaultSelection(t *testing.T) {
	deps := Deps{Wallets: wallet.NewRegistry()}

	tests := []struct {
		name        string
		defaultName Name
		factories   []Factory
		want        Name
	}{
		{"first registered wins", "", []Factory{stubFactory("thorchain", "a"), stubFactory("mayachain", "b")}, "thorchain"},
		{"explicit default", "mayachain", []Factory{stubFactory("thorchain", "a"), stubFactory("mayachain", "b")}, "mayachain"},
		{"no plugins", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(deps, tt.defaultName, tt.factories...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Default())
		})
	}
}

func TestNewRegistry_InvalidRegistrations(t *testing.T) {
	deps := Deps{Wallets: wallet.NewRegistry()}

	tests := []struct {
		name        string
		defaultName Name
		factories   []Factory
	}{
		{"nil factory", "", []Factory{nil}},
		{"empty name", "", []Factory{stubFactory("", "a")}},
		{"nil plugin", "", []Factory{func(Deps) (Name, Plugin) { return "broken", nil }}},
		{"duplicate name", "", []Factory{stubFactory("thorchain", "a"), stubFactory("thorchain", "b")}},
		{"unknown default", "chainflip", []Factory{stubFactory("thorchain", "a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(deps, tt.defaultName, tt.factories...)
			assert.True(t, apperr.HasKey(err, apperr.KeyPluginRegistrationInvalid), err)
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	var seen Deps
	capture := func(deps Deps) (Name, Plugin) {
		seen = deps
		return "thorchain", &stubPlugin{tx: "thor-tx"}
	}
	wallets := wallet.NewRegistry()
	r, err := NewRegistry(Deps{Wallets: wallets, Stagenet: true}, "", capture, stubFactory("mayachain", "maya-tx"))
	require.NoError(t, err)
	assert.Same(t, wallets, seen.Wallets)
	assert.True(t, seen.Stagenet)
	assert.Equal(t, []Name{"thorchain", "mayachain"}, r.Names())

	name, p, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Name("thorchain"), name)
	tx, _ := p.Swap(context.Background(), SwapParams{})
	assert.Equal(t, "thor-tx", tx)

	name, _, err = r.Resolve("mayachain")
	require.NoError(t, err)
	assert.Equal(t, Name("mayachain"), name)

	_, _, err = r.Resolve("nonexistent")
	assert.True(t, apperr.HasKey(err, apperr.KeyPluginNotFound))

	empty, err := NewRegistry(Deps{}, "")
	require.NoError(t, err)
	_, _, err = empty.Resolve("")
	assert.True(t, apperr.HasKey(err, apperr.KeyPluginNotFound))
}
