package settings

import (
	"errors"
	"testing"

	"argus-settings/internal/common/config"
	apperrors "argus-settings/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*Settings, *config.Env) error { return nil }

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		module  Module
		wantErr bool
	}{
		{name: "root", module: Module{Path: "a.root", Apply: noop}},
		{name: "with base", module: Module{Path: "a.child", Base: "a.root", Apply: noop}},
		{name: "single segment path", module: Module{Path: "root", Apply: noop}, wantErr: true},
		{name: "empty path", module: Module{Apply: noop}, wantErr: true},
		{name: "bad base", module: Module{Path: "a.b", Base: "not valid", Apply: noop}, wantErr: true},
		{name: "own base", module: Module{Path: "a.b", Base: "a.b", Apply: noop}, wantErr: true},
		{name: "no apply", module: Module{Path: "a.b"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.module)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrModuleInvalid))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Module{Path: "a.b", Apply: noop}))
	err := reg.Register(Module{Path: "a.b", Apply: noop})
	assert.True(t, errors.Is(err, apperrors.ErrModuleInvalid))
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry().MustRegister(Module{Path: "bad"})
	})
}

func TestRegistry_Chain(t *testing.T) {
	reg := NewRegistry().MustRegister(
		Module{Path: "x.leaf", Base: "x.mid", Apply: noop},
		Module{Path: "x.root", Apply: noop},
		Module{Path: "x.mid", Base: "x.root", Apply: noop},
	)

	chain, err := reg.Chain("x.leaf")
	require.NoError(t, err)
	paths := make([]string, len(chain))
	for i, m := range chain {
		paths[i] = m.Path
	}
	assert.Equal(t, []string{"x.root", "x.mid", "x.leaf"}, paths)
	assert.Equal(t, []string{"x.leaf", "x.mid", "x.root"}, reg.Paths())
}

func TestRegistry_ChainErrors(t *testing.T) {
	reg := NewRegistry().MustRegister(
		Module{Path: "x.orphan", Base: "x.gone", Apply: noop},
		Module{Path: "x.a", Base: "x.b", Apply: noop},
		Module{Path: "x.b", Base: "x.a", Apply: noop},
	)

	_, err := reg.Chain("x.unknown")
	assert.True(t, errors.Is(err, apperrors.ErrModuleNotFound))

	_, err = reg.Chain("x.orphan")
	require.True(t, errors.Is(err, apperrors.ErrModuleNotFound))
	stdErr, _ := apperrors.AsStandardError(err)
	assert.Equal(t, "module: x.gone, required by: x.orphan", stdErr.Details)

	_, err = reg.Chain("x.a")
	assert.True(t, errors.Is(err, apperrors.ErrModuleLoadFailed))
	assert.Contains(t, err.Error(), "loops")
}

func TestBuiltin_Paths(t *testing.T) {
	assert.Equal(t, []string{
		BasePath,
		DevPath,
		DockerDevPath,
		ProdPath,
		TestPath,
		DockerDevOverlayPath,
	}, Builtin().Paths())
}
