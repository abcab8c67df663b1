package models

// ========================================
// Canvas scale and boundary limits
// ========================================
const (
	MetersPerPixel   = 0.05 // 20 px == 1 m
	MinBoundarySide  = 100.0
	PathLengthPerDot = 0.1 // display heuristic: revealed points * 0.1 m
)

// DefaultBoundary - boundary used on start-up and after reset
var DefaultBoundary = Boundary{X: 100, Y: 100, Width: 600, Height: 400}

// ========================================
// Corner tags
// ========================================

// Corner - one of the four boundary corners (drag handle / path start)
type Corner string

const (
	CornerTopLeft     Corner = "tl"
	CornerTopRight    Corner = "tr"
	CornerBottomRight Corner = "br"
	CornerBottomLeft  Corner = "bl"
)

// Corners - enumeration order, also used for nearest-corner tie breaking
var Corners = []Corner{CornerTopLeft, CornerTopRight, CornerBottomRight, CornerBottomLeft}

// Valid - true for the four known tags
func (c Corner) Valid() bool {
	switch c {
	case CornerTopLeft, CornerTopRight, CornerBottomRight, CornerBottomLeft:
		return true
	}
	return false
}

// IsTop - tl / tr
func (c Corner) IsTop() bool { return c == CornerTopLeft || c == CornerTopRight }

// IsLeft - tl / bl
func (c Corner) IsLeft() bool { return c == CornerTopLeft || c == CornerBottomLeft }

// ========================================
// Path algorithms
// ========================================

// PathAlgorithm - closed set of coverage strategies
type PathAlgorithm string

const (
	AlgorithmSpiral    PathAlgorithm = "spiral"
	AlgorithmZigzag    PathAlgorithm = "zigzag"
	AlgorithmPerimeter PathAlgorithm = "perimeter"
	AlgorithmLawnmower PathAlgorithm = "lawnmower"
	AlgorithmGrid      PathAlgorithm = "grid"
)

// PathAlgorithms - every supported algorithm
var PathAlgorithms = []PathAlgorithm{
	AlgorithmSpiral,
	AlgorithmZigzag,
	AlgorithmPerimeter,
	AlgorithmLawnmower,
	AlgorithmGrid,
}

// ========================================
// Geometry
// ========================================

// Waypoint - a single point in canvas pixels
type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Boundary - axis aligned rectangle in canvas pixels
type Boundary struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center - exact center of the rectangle
func (b Boundary) Center() Waypoint {
	return Waypoint{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Right - x of the right edge
func (b Boundary) Right() float64 { return b.X + b.Width }

// Bottom - y of the bottom edge
func (b Boundary) Bottom() float64 { return b.Y + b.Height }

// CornerPoint - pixel location of a corner
func (b Boundary) CornerPoint(c Corner) Waypoint {
	switch c {
	case CornerTopRight:
		return Waypoint{X: b.Right(), Y: b.Y}
	case CornerBottomRight:
		return Waypoint{X: b.Right(), Y: b.Bottom()}
	case CornerBottomLeft:
		return Waypoint{X: b.X, Y: b.Bottom()}
	default:
		return Waypoint{X: b.X, Y: b.Y}
	}
}

// Contains - inclusive containment test
func (b Boundary) Contains(p Waypoint) bool {
	return p.X >= b.X && p.X <= b.Right() && p.Y >= b.Y && p.Y <= b.Bottom()
}

// Inset - rectangle shrunk by margin on every side
func (b Boundary) Inset(margin float64) Boundary {
	return Boundary{
		X:      b.X + margin,
		Y:      b.Y + margin,
		Width:  b.Width - 2*margin,
		Height: b.Height - 2*margin,
	}
}

// ========================================
// Agent position
// ========================================

// RawPosition - agent position in meters, agent-local frame (odometry)
type RawPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AgentPosition - agent position projected onto the canvas (z stays in meters)
type AgentPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point - canvas location of the agent
func (a AgentPosition) Point() Waypoint {
	return Waypoint{X: a.X, Y: a.Y}
}

// ========================================
// Path configuration / simulation
// ========================================

// PathConfig - algorithm and nominal start corner selection
type PathConfig struct {
	Algorithm   PathAlgorithm `json:"algorithm"`
	StartCorner Corner        `json:"start_corner"`
}

// DefaultPathConfig - initial selection
var DefaultPathConfig = PathConfig{Algorithm: AlgorithmSpiral, StartCorner: CornerTopLeft}

// SimulationState - revealed prefix of the current path
type SimulationState struct {
	RunID          string     `json:"run_id,omitempty"`
	RevealedPoints []Waypoint `json:"revealed_points"`
	TotalPoints    int        `json:"total_points"`
	IsRunning      bool       `json:"is_running"`
}

// ========================================
// Derived metrics
// ========================================

// AgentOffset - agent offset from the boundary center, meters (y up)
type AgentOffset struct {
	XOffset  float64 `json:"x_offset"`
	YOffset  float64 `json:"y_offset"`
	Altitude float64 `json:"altitude"`
}

// SlamMetrics - numeric read-outs for the console
type SlamMetrics struct {
	WidthMeters      float64      `json:"width_m"`
	HeightMeters     float64      `json:"height_m"`
	AreaSquareMeters float64      `json:"area_m2"`
	PathLengthMeters float64      `json:"path_length_m"`
	ArcLengthMeters  float64      `json:"arc_length_m"`
	RevealedPoints   int          `json:"revealed_points"`
	TotalPoints      int          `json:"total_points"`
	Connected        bool         `json:"connected"`
	Agent            *AgentOffset `json:"agent,omitempty"`
}
