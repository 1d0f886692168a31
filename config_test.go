package bincode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, NoLimit, cfg.Limit)
	require.False(t, cfg.RejectTrailing)
}

func TestConfigChaining(t *testing.T) {
	cfg := DefaultConfig().
		WithLimit(100).
		WithRejectTrailing(true)

	require.Equal(t, uint64(100), cfg.Limit)
	require.True(t, cfg.RejectTrailing)

	require.Equal(t, NoLimit, cfg.WithNoLimit().Limit)
	// value receiver: the original is unchanged
	require.Equal(t, uint64(100), cfg.Limit)
}

func TestBudget(t *testing.T) {
	b := newBudget(10)
	require.NoError(t, b.charge(4))
	require.NoError(t, b.charge(6))
	require.Equal(t, uint64(0), b.remaining())

	err := b.charge(1)
	requireKind[SizeLimit](t, err)
	require.Equal(t, uint64(10), b.used, "failed charge must not count")

	unlimited := newBudget(NoLimit)
	require.NoError(t, unlimited.charge(1<<62))
	require.NoError(t, unlimited.charge(1<<62))
}
