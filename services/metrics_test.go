package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slam-backend/models"
)

func TestComputeMetrics_DefaultBoundary(t *testing.T) {
	m := ComputeMetrics(models.DefaultBoundary, nil, models.SimulationState{})

	assert.InDelta(t, 30, m.WidthMeters, 1e-9)
	assert.InDelta(t, 20, m.HeightMeters, 1e-9)
	assert.InDelta(t, 600, m.AreaSquareMeters, 1e-9)
	assert.Zero(t, m.PathLengthMeters)
	assert.False(t, m.Connected)
	assert.Nil(t, m.Agent)
}

func TestComputeMetrics_RevealedPath(t *testing.T) {
	revealed := []models.Waypoint{{X: 0, Y: 0}, {X: 30, Y: 40}, {X: 30, Y: 80}}
	sim := models.SimulationState{RevealedPoints: revealed, TotalPoints: 10, IsRunning: true}

	m := ComputeMetrics(models.DefaultBoundary, nil, sim)
	assert.InDelta(t, 0.3, m.PathLengthMeters, 1e-9)
	assert.InDelta(t, 90*models.MetersPerPixel, m.ArcLengthMeters, 1e-9)
	assert.Equal(t, 3, m.RevealedPoints)
	assert.Equal(t, 10, m.TotalPoints)
}

func TestComputeMetrics_AgentOffset(t *testing.T) {
	agent := &models.AgentPosition{X: 440, Y: 280, Z: 1.25}
	m := ComputeMetrics(models.DefaultBoundary, agent, models.SimulationState{})

	assert.True(t, m.Connected)
	require.NotNil(t, m.Agent)
	assert.InDelta(t, 2, m.Agent.XOffset, 1e-9)
	assert.InDelta(t, 1, m.Agent.YOffset, 1e-9)
	assert.InDelta(t, 1.25, m.Agent.Altitude, 1e-9)
}

func TestAgentOffsetInvertsProjection(t *testing.T) {
	b := models.Boundary{X: 37, Y: 12, Width: 333, Height: 211}
	raw := models.RawPosition{X: -3.2, Y: 4.4, Z: 0.7}

	off := AgentOffsetFromCenter(b, ToCanvas(b, raw))
	assert.InDelta(t, raw.X, off.XOffset, 1e-9)
	assert.InDelta(t, raw.Y, off.YOffset, 1e-9)
	assert.InDelta(t, raw.Z, off.Altitude, 1e-9)
}

func TestArcLength(t *testing.T) {
	assert.Zero(t, ArcLength(nil))
	assert.Zero(t, ArcLength([]models.Waypoint{{X: 5, Y: 5}}))
	assert.InDelta(t, 10, ArcLength([]models.Waypoint{{X: 0, Y: 0}, {X: 6, Y: 8}}), 1e-9)
}
