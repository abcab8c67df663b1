package algorithms

import (
	"math"

	"slam-backend/models"
)

// Distance - Euclidean distance between two points
func Distance(a, b models.Waypoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp - point at parameter t on segment a→b
func Lerp(a, b models.Waypoint, t float64) models.Waypoint {
	return models.Waypoint{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Clamp - v limited to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// SampleSegment - points along a→b every `step` pixels.
//
// The number of samples is floor(length/step). When includeStart is set the
// segment start is emitted too (samples 0..n), otherwise samples 1..n.
// minSamples raises n for short edges; a zero-length segment with n == 0
// collapses to its start point.
func SampleSegment(a, b models.Waypoint, step float64, includeStart bool, minSamples int) []models.Waypoint {
	n := int(math.Floor(Distance(a, b) / step))
	if n < minSamples {
		n = minSamples
	}
	if n == 0 {
		if includeStart {
			return []models.Waypoint{a}
		}
		return nil
	}

	first := 1
	if includeStart {
		first = 0
	}

	points := make([]models.Waypoint, 0, n+1-first)
	for i := first; i <= n; i++ {
		points = append(points, Lerp(a, b, float64(i)/float64(n)))
	}
	return points
}

// NearestIndex - index of the candidate closest to p (first wins on ties)
func NearestIndex(p models.Waypoint, candidates []models.Waypoint) int {
	best := 0
	minDist := math.Inf(1)
	for i, c := range candidates {
		if d := Distance(p, c); d < minDist {
			minDist = d
			best = i
		}
	}
	return best
}

// NearestCorner - boundary corner closest to p, in tl/tr/br/bl order
func NearestCorner(b models.Boundary, p models.Waypoint) models.Corner {
	points := make([]models.Waypoint, len(models.Corners))
	for i, c := range models.Corners {
		points[i] = b.CornerPoint(c)
	}
	return models.Corners[NearestIndex(p, points)]
}
