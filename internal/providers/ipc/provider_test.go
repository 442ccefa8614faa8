package ipc

import (
	"context"
	"errors"
	"testing"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/config"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticOverrides []settings.Override

func (s staticOverrides) Overrides(context.Context) ([]settings.Override, error) {
	return s, nil
}

type failingOverrides struct{}

func (failingOverrides) Overrides(context.Context) ([]settings.Override, error) {
	return nil, errors.New("database locked")
}

func TestDispatcherRouting(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("Ping", func(ctx context.Context, msg host.Message) (any, error) {
		return "pong", nil
	})

	got, err := d.SendRequestForResult(context.Background(), host.Message{Type: "Ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", got)

	_, err = d.SendRequestForResult(context.Background(), host.Message{Type: "Nope"})
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestActiveExperimentsStringFormat(t *testing.T) {
	h := ActiveExperiments([]string{"b", "a"}, nil, config.PayloadString)

	got, err := h(context.Background(), host.Message{Type: host.MessageGetActive})
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, got)
}

func TestActiveExperimentsAppliesOverrides(t *testing.T) {
	overrides := staticOverrides{
		{Name: "a", Enabled: false},
		{Name: "c", Enabled: true},
	}
	h := ActiveExperiments([]string{"a", "b"}, overrides, config.PayloadStructured)

	got, err := h(context.Background(), host.Message{Type: host.MessageGetActive})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestActiveExperimentsEmpty(t *testing.T) {
	h := ActiveExperiments(nil, staticOverrides{}, config.PayloadString)

	got, err := h(context.Background(), host.Message{})
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestActiveExperimentsOverrideError(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register(host.MessageGetActive, ActiveExperiments(nil, failingOverrides{}, config.PayloadString))

	_, err := d.SendRequestForResult(context.Background(), host.Message{Type: host.MessageGetActive})
	assert.Error(t, err)
}
