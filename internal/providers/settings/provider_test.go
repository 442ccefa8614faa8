package settings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	pool, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "settings.db")})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	p := NewProvider(pool, nil)
	p.now = func() time.Time { return time.UnixMilli(1462464000000) }
	return p
}

func TestSetAndListOverrides(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.SetOverride(ctx, "zeta", true))
	require.NoError(t, p.SetOverride(ctx, "alpha", false))

	got, err := p.Overrides(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Name)
	assert.False(t, got[0].Enabled)
	assert.Equal(t, "zeta", got[1].Name)
	assert.True(t, got[1].Enabled)
	assert.Equal(t, time.UnixMilli(1462464000000), got[1].UpdatedAt)
}

func TestSetOverrideUpserts(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.SetOverride(ctx, "exp1", true))
	require.NoError(t, p.SetOverride(ctx, "exp1", false))

	got, err := p.Overrides(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Enabled)
}

func TestClearOverride(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.SetOverride(ctx, "exp1", true))
	require.NoError(t, p.ClearOverride(ctx, "exp1"))
	require.NoError(t, p.ClearOverride(ctx, "never-set"))

	got, err := p.Overrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmptyName(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	assert.ErrorIs(t, p.SetOverride(ctx, "", true), ErrEmptyName)
	assert.ErrorIs(t, p.ClearOverride(ctx, ""), ErrEmptyName)
}
