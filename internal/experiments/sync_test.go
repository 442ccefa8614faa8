package experiments

import (
	"context"
	"errors"
	"testing"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnabledExperimentsPayloads(t *testing.T) {
	for _, payload := range []any{`["a","b"]`, []any{"a", "b"}} {
		s := NewOverrideSync(testutil.NewMockMessenger(t, payload), testutil.NewMockOverrides(t), nil, nil)

		got, err := s.EnabledExperiments(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got.Names())
	}
}

func TestEnabledExperimentsQueryError(t *testing.T) {
	m := new(testutil.MockMessenger)
	m.On("SendRequestForResult", mock.Anything, host.Message{Type: host.MessageGetActive}).Return(nil, errors.New("no listener"))
	s := NewOverrideSync(m, testutil.NewMockOverrides(t), nil, nil)

	_, err := s.EnabledExperiments(context.Background())
	assert.ErrorIs(t, err, ErrQuery)
	m.AssertExpectations(t)
}

func TestToggleOverrideIgnoresHostFailure(t *testing.T) {
	o := new(testutil.MockOverrides)
	o.On("SetOverride", mock.Anything, "exp1", true).Return(errors.New("denied")).Once()
	metrics := monitoring.NewMetrics()
	s := NewOverrideSync(testutil.NewMockMessenger(t, `[]`), o, metrics, nil)

	assert.NotPanics(t, func() { s.ToggleOverride(context.Background(), "exp1", true) })

	o.AssertExpectations(t)
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.OverrideToggles.WithLabelValues("enabled")))
}

func TestClearOverridesContinuesPastFailures(t *testing.T) {
	o := new(testutil.MockOverrides)
	o.On("ClearOverride", mock.Anything, "a").Return(nil).Once()
	o.On("ClearOverride", mock.Anything, "b").Return(errors.New("busy")).Once()
	o.On("ClearOverride", mock.Anything, "c").Return(nil).Once()
	s := NewOverrideSync(testutil.NewMockMessenger(t, `[]`), o, nil, nil)

	n := s.ClearOverrides(context.Background(), []Descriptor{{Name: "a"}, {Name: "b"}, {Name: "c"}})

	assert.Equal(t, 2, n)
	o.AssertExpectations(t)
}
