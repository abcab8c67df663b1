package services

import (
	"gonum.org/v1/gonum/floats"

	"slam-backend/models"
)

// ComputeMetrics - display values derived from boundary, agent and revealed path
func ComputeMetrics(b models.Boundary, agent *models.AgentPosition, sim models.SimulationState) models.SlamMetrics {
	widthM := b.Width * models.MetersPerPixel
	heightM := b.Height * models.MetersPerPixel

	m := models.SlamMetrics{
		WidthMeters:      widthM,
		HeightMeters:     heightM,
		AreaSquareMeters: widthM * heightM,
		PathLengthMeters: float64(len(sim.RevealedPoints)) * models.PathLengthPerDot,
		ArcLengthMeters:  ArcLength(sim.RevealedPoints) * models.MetersPerPixel,
		RevealedPoints:   len(sim.RevealedPoints),
		TotalPoints:      sim.TotalPoints,
		Connected:        agent != nil,
	}

	if agent != nil {
		offset := AgentOffsetFromCenter(b, *agent)
		m.Agent = &offset
	}
	return m
}

// AgentOffsetFromCenter - agent offset from the boundary center in meters, y up
func AgentOffsetFromCenter(b models.Boundary, agent models.AgentPosition) models.AgentOffset {
	c := b.Center()
	return models.AgentOffset{
		XOffset:  (agent.X - c.X) * models.MetersPerPixel,
		YOffset:  (c.Y - agent.Y) * models.MetersPerPixel,
		Altitude: agent.Z,
	}
}

// ArcLength - polyline length in pixels
func ArcLength(points []models.Waypoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		a := []float64{points[i-1].X, points[i-1].Y}
		b := []float64{points[i].X, points[i].Y}
		total += floats.Distance(a, b, 2)
	}
	return total
}
