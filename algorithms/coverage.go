package algorithms

import (
	"errors"
	"fmt"
	"math"

	"slam-backend/models"
)

// Generator parameters (canvas pixels)
const (
	spiralMargin       = 15.0
	spiralLayerSpacing = 25.0
	spiralStep         = 8.0
	spiralCenterGap    = 10.0

	zigzagRowSpacing = 30.0
	zigzagStep       = 15.0

	perimeterMargin = 15.0
	perimeterStep   = 10.0

	lawnmowerColSpacing = 25.0
	lawnmowerStep       = 15.0

	gridSpacing = 30.0
)

var (
	ErrUnknownAlgorithm = errors.New("unknown path algorithm")
	ErrUnknownCorner    = errors.New("unknown start corner")
)

// Generator - coverage path over a boundary.
// agent is nil when no live position is available.
type Generator func(b models.Boundary, start models.Corner, agent *models.AgentPosition) []models.Waypoint

var generators = map[models.PathAlgorithm]Generator{
	models.AlgorithmSpiral:    Spiral,
	models.AlgorithmZigzag:    Zigzag,
	models.AlgorithmPerimeter: Perimeter,
	models.AlgorithmLawnmower: Lawnmower,
	models.AlgorithmGrid:      Grid,
}

// Lookup - generator registered for alg
func Lookup(alg models.PathAlgorithm) (Generator, error) {
	gen, ok := generators[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	return gen, nil
}

// ValidateConfig - checks algorithm and start corner
func ValidateConfig(cfg models.PathConfig) error {
	if _, err := Lookup(cfg.Algorithm); err != nil {
		return err
	}
	if !cfg.StartCorner.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCorner, cfg.StartCorner)
	}
	return nil
}

// Generate - runs the generator selected by cfg
func Generate(cfg models.PathConfig, b models.Boundary, agent *models.AgentPosition) ([]models.Waypoint, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	gen, _ := Lookup(cfg.Algorithm)
	return gen(b, cfg.StartCorner, agent), nil
}

// EffectiveStartCorner - corner that actually seeds the traversal.
//
// Without an agent this is the nominal corner. With an agent, spiral picks the
// nearest boundary corner, perimeter the nearest inset corner, and the sweep
// patterns pick the corner of the agent's quadrant relative to the boundary
// center (the comparison is applied literally, even for agents outside).
func EffectiveStartCorner(alg models.PathAlgorithm, b models.Boundary, start models.Corner, agent *models.AgentPosition) models.Corner {
	if agent == nil {
		return start
	}
	p := agent.Point()
	switch alg {
	case models.AlgorithmSpiral:
		return NearestCorner(b, p)
	case models.AlgorithmPerimeter:
		return NearestCorner(b.Inset(perimeterMargin), p)
	default:
		return quadrantCorner(b, p)
	}
}

func quadrantCorner(b models.Boundary, p models.Waypoint) models.Corner {
	c := b.Center()
	top := p.Y < c.Y
	left := p.X < c.X
	switch {
	case top && left:
		return models.CornerTopLeft
	case top:
		return models.CornerTopRight
	case left:
		return models.CornerBottomLeft
	default:
		return models.CornerBottomRight
	}
}

// ========================================
// Spiral
// ========================================

type heading int

const (
	headRight heading = iota
	headDown
	headLeft
	headUp
)

// clockwise edge order for each start corner
var spiralTurns = map[models.Corner][4]heading{
	models.CornerTopLeft:     {headRight, headDown, headLeft, headUp},
	models.CornerTopRight:    {headDown, headLeft, headUp, headRight},
	models.CornerBottomRight: {headLeft, headUp, headRight, headDown},
	models.CornerBottomLeft:  {headUp, headRight, headDown, headLeft},
}

func (h heading) target(layer models.Boundary, from models.Waypoint) models.Waypoint {
	switch h {
	case headRight:
		return models.Waypoint{X: layer.Right(), Y: from.Y}
	case headDown:
		return models.Waypoint{X: from.X, Y: layer.Bottom()}
	case headLeft:
		return models.Waypoint{X: layer.X, Y: from.Y}
	default:
		return models.Waypoint{X: from.X, Y: layer.Y}
	}
}

// Spiral - rectangular inward spiral ending at the boundary center
func Spiral(b models.Boundary, start models.Corner, agent *models.AgentPosition) []models.Waypoint {
	corner := EffectiveStartCorner(models.AlgorithmSpiral, b, start, agent)
	turns := spiralTurns[corner]

	var points []models.Waypoint
	maxMargin := math.Min(b.Width, b.Height)/2 - spiralCenterGap
	for margin := spiralMargin; margin < maxMargin; margin += spiralLayerSpacing {
		layer := b.Inset(margin)
		cur := layer.CornerPoint(corner)
		points = append(points, cur)

		for _, h := range turns {
			target := h.target(layer, cur)
			for _, p := range SampleSegment(cur, target, spiralStep, false, 1) {
				if b.Contains(p) {
					points = append(points, p)
				}
			}
			cur = target
		}
	}

	return append(points, b.Center())
}

// ========================================
// Zigzag (rows) / Lawnmower (columns)
// ========================================

// axisSamples - from, from±step, ... up to and including `to`
func axisSamples(from, to, step float64) []float64 {
	n := int(math.Floor(math.Abs(to-from) / step))
	dir := 1.0
	if to < from {
		dir = -1.0
	}
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, from+dir*float64(i)*step)
	}
	return out
}

// Zigzag - horizontal boustrophedon, row spacing 30px
func Zigzag(b models.Boundary, start models.Corner, agent *models.AgentPosition) []models.Waypoint {
	var points []models.Waypoint
	if agent != nil {
		points = append(points, agent.Point())
	}
	corner := EffectiveStartCorner(models.AlgorithmZigzag, b, start, agent)
	goingDown := corner.IsTop()
	startLeft := corner.IsLeft()

	rows := int(math.Floor(b.Height / zigzagRowSpacing))
	for i := 0; i <= rows; i++ {
		y := b.Y + float64(i)*zigzagRowSpacing
		if !goingDown {
			y = b.Bottom() - float64(i)*zigzagRowSpacing
		}
		if y > b.Bottom() || y < b.Y {
			continue
		}

		leftToRight := (i%2 == 0) == startLeft
		from, to := b.X, b.Right()
		if !leftToRight {
			from, to = to, from
		}
		for _, x := range axisSamples(from, to, zigzagStep) {
			points = append(points, models.Waypoint{X: x, Y: y})
		}
	}
	return points
}

// Lawnmower - vertical boustrophedon, column spacing 25px
func Lawnmower(b models.Boundary, start models.Corner, agent *models.AgentPosition) []models.Waypoint {
	var points []models.Waypoint
	if agent != nil {
		points = append(points, agent.Point())
	}
	corner := EffectiveStartCorner(models.AlgorithmLawnmower, b, start, agent)
	startTop := corner.IsTop()
	startLeft := corner.IsLeft()

	cols := int(math.Floor(b.Width / lawnmowerColSpacing))
	for i := 0; i <= cols; i++ {
		x := b.X + float64(i)*lawnmowerColSpacing
		if !startLeft {
			x = b.Right() - float64(i)*lawnmowerColSpacing
		}
		if x > b.Right() || x < b.X {
			continue
		}

		topToBottom := (i%2 == 0) == startTop
		from, to := b.Y, b.Bottom()
		if !topToBottom {
			from, to = to, from
		}
		for _, y := range axisSamples(from, to, lawnmowerStep) {
			points = append(points, models.Waypoint{X: x, Y: y})
		}
	}
	return points
}

// ========================================
// Perimeter
// ========================================

// Perimeter - walks the inset rectangle once, starting at the effective corner
func Perimeter(b models.Boundary, start models.Corner, agent *models.AgentPosition) []models.Waypoint {
	inset := b.Inset(perimeterMargin)
	corners := make([]models.Waypoint, len(models.Corners))
	for i, c := range models.Corners {
		corners[i] = inset.CornerPoint(c)
	}

	var points []models.Waypoint
	if agent != nil {
		points = append(points, agent.Point())
	}

	startIdx := cornerIndex(EffectiveStartCorner(models.AlgorithmPerimeter, b, start, agent))
	for i := range corners {
		from := corners[(startIdx+i)%len(corners)]
		to := corners[(startIdx+i+1)%len(corners)]
		points = append(points, SampleSegment(from, to, perimeterStep, true, 0)...)
	}
	return points
}

func cornerIndex(c models.Corner) int {
	for i, cc := range models.Corners {
		if cc == c {
			return i
		}
	}
	return 0
}

// ========================================
// Grid coverage
// ========================================

// Grid - every 30px lattice point, row by row
func Grid(b models.Boundary, start models.Corner, agent *models.AgentPosition) []models.Waypoint {
	var points []models.Waypoint
	if agent != nil {
		points = append(points, agent.Point())
	}
	corner := EffectiveStartCorner(models.AlgorithmGrid, b, start, agent)

	xFrom, xTo := b.X, b.Right()
	if !corner.IsLeft() {
		xFrom, xTo = xTo, xFrom
	}
	yFrom, yTo := b.Y, b.Bottom()
	if !corner.IsTop() {
		yFrom, yTo = yTo, yFrom
	}

	xs := axisSamples(xFrom, xTo, gridSpacing)
	for _, y := range axisSamples(yFrom, yTo, gridSpacing) {
		for _, x := range xs {
			p := models.Waypoint{X: x, Y: y}
			if b.Contains(p) {
				points = append(points, p)
			}
		}
	}
	return points
}
