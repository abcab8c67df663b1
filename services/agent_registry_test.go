package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slam-backend/models"
)

func TestAgentRegistry_Lifecycle(t *testing.T) {
	r := NewAgentRegistry()

	_, err := r.Register("")
	assert.Error(t, err)

	info, err := r.Register("agv-2")
	require.NoError(t, err)
	assert.Equal(t, "agv-2", info.ID)
	_, err = r.Register("agv-1")
	require.NoError(t, err)
	_, err = r.Register("agv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "agv-1", all[0].ID)
	assert.Equal(t, "agv-2", all[1].ID)

	require.NoError(t, r.Remove("agv-2"))
	assert.Error(t, r.Remove("agv-2"))
	assert.Equal(t, 1, r.Count())
}

func TestAgentRegistry_SharedIDKeepsEntryUntilLastConnection(t *testing.T) {
	r := NewAgentRegistry()
	_, err := r.Register("agv-1")
	require.NoError(t, err)
	info, err := r.Register("agv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Connections)

	require.NoError(t, r.Remove("agv-1"))
	assert.Equal(t, 1, r.Count())
	require.NoError(t, r.Touch("agv-1", models.RawPosition{X: 1}))

	require.NoError(t, r.Remove("agv-1"))
	assert.Zero(t, r.Count())
	assert.Error(t, r.Touch("agv-1", models.RawPosition{X: 2}))
}

func TestAgentRegistry_Touch(t *testing.T) {
	r := NewAgentRegistry()
	assert.Error(t, r.Touch("ghost", models.RawPosition{}))

	_, err := r.Register("agv-1")
	require.NoError(t, err)
	require.NoError(t, r.Touch("agv-1", models.RawPosition{X: 1, Y: 2}))
	require.NoError(t, r.Touch("agv-1", models.RawPosition{X: 3, Y: 4}))

	info, err := r.Get("agv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Samples)
	require.NotNil(t, info.LastPosition)
	assert.Equal(t, models.RawPosition{X: 3, Y: 4}, *info.LastPosition)

	// copies do not alias registry state
	info.LastPosition.X = 99
	again, err := r.Get("agv-1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, again.LastPosition.X)
}

func TestAgentRegistry_Liveness(t *testing.T) {
	r := NewAgentRegistry()
	_, err := r.Register("quiet")
	require.NoError(t, err)

	assert.True(t, r.IsAlive("quiet", time.Hour))
	assert.False(t, r.IsAlive("missing", time.Hour))

	time.Sleep(10 * time.Millisecond)
	_, err = r.Register("fresh")
	require.NoError(t, err)

	removed := r.CleanupOffline(5 * time.Millisecond)
	assert.Equal(t, []string{"quiet"}, removed)
	assert.Equal(t, 1, r.Count())
	assert.False(t, r.IsAlive("quiet", time.Hour))
}
