package apperrors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(KindUsage, "parse arguments", "no arguments given")
	assert.Equal(t, "parse arguments: no arguments given", err.Error())

	wrapped := Wrap(errors.New("exit status 2"), KindControlPlane, "launch", "launch failed")
	assert.Equal(t, "launch: launch failed: exit status 2", wrapped.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"usage", Usage(ErrMissingArgument, "no arguments"), KindUsage},
		{"config", ConfigNotFound("x.yaml", fs.ErrNotExist), KindConfigNotFound},
		{"host path", HostPathNotFound("./code", nil), KindHostPathNotFound},
		{"control plane", ControlPlane(errors.New("boom"), "info", "info failed"), KindControlPlane},
		{"wrapped by fmt", fmt.Errorf("provision: %w", HostPathNotFound("./code", nil)), KindHostPathNotFound},
		{"plain error", errors.New("anything"), KindControlPlane},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestUsage_SentinelsMatch(t *testing.T) {
	err := Usage(ErrBadMountSpec, "--mount requires host:guest, got %q", "nocolon")
	require.ErrorIs(t, err, ErrBadMountSpec)
	assert.NotErrorIs(t, err, ErrUnknownFlag)
	assert.Contains(t, err.Error(), `"nocolon"`)
}

func TestConfigNotFound_KeepsCause(t *testing.T) {
	err := ConfigNotFound("missing.yaml", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestShowsUsage(t *testing.T) {
	assert.True(t, ShowsUsage(Usage(ErrUnknownFlag, "--bogus")))
	assert.True(t, ShowsUsage(ConfigNotFound("a.yaml", nil)))
	assert.True(t, ShowsUsage(HostPathNotFound("./code", nil)))
	assert.False(t, ShowsUsage(ControlPlane(errors.New("x"), "launch", "failed")))
	assert.False(t, ShowsUsage(errors.New("untyped")))
}
