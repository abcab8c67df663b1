package models

// ========================================
// Message type constants
// ========================================
const (
	// Agent → Server
	MessageTypeTelemetry = "telemetry" // topic sample (odometry, imu, ...)
	MessageTypeStatus    = "status"    // agent status report

	// Server → Web
	MessageTypeBoundaryUpdate  = "boundary_update"  // boundary changed
	MessageTypeAgentPosition   = "agent_position"   // projected agent position (or null)
	MessageTypePathGenerated   = "path_generated"   // full waypoint sequence
	MessageTypePathProgress    = "path_progress"    // one more revealed waypoint
	MessageTypeSimulationState = "simulation_state" // running / idle transitions
	MessageTypeSystemInfo      = "system_info"      // connection info

	// Web → Server
	MessageTypeDragBegin = "drag_begin"
	MessageTypeDragMove  = "drag_move"
	MessageTypeDragEnd   = "drag_end"

	// Web → Server → Agent (relayed verbatim)
	MessageTypeCmdVel        = "cmd_vel"
	MessageTypeEmergencyStop = "emergency_stop"
)

// ========================================
// Common WebSocket message envelope
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic,omitempty"` // telemetry topic name
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// ========================================
// Payloads
// ========================================

// DragBeginData - drag_begin payload
type DragBeginData struct {
	Corner Corner `json:"corner"`
}

// DragMoveData - drag_move payload (canvas pixels)
type DragMoveData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AgentPositionData - agent_position payload
type AgentPositionData struct {
	Connected bool           `json:"connected"`
	Position  *AgentPosition `json:"position"`
}

// PathGeneratedData - path_generated payload
type PathGeneratedData struct {
	Config   PathConfig `json:"config"`
	Boundary Boundary   `json:"boundary"`
	Points   []Waypoint `json:"points"`
}

// PathProgressData - path_progress payload
type PathProgressData struct {
	RunID    string   `json:"run_id"`
	Index    int      `json:"index"`
	Point    Waypoint `json:"point"`
	Revealed int      `json:"revealed"`
	Total    int      `json:"total"`
}

// SimulationStateData - simulation_state payload
type SimulationStateData struct {
	RunID     string `json:"run_id"`
	IsRunning bool   `json:"is_running"`
	Revealed  int    `json:"revealed"`
	Total     int    `json:"total"`
}

// EmergencyStopCommand - emergency_stop payload
type EmergencyStopCommand struct {
	Active bool   `json:"active"`
	Reason string `json:"reason,omitempty"`
}

// SystemInfo - system_info payload
type SystemInfo struct {
	ConnectedClients map[string]int `json:"connected_clients"`
	AgentsConnected  int            `json:"agents_connected"`
	ServerTime       string         `json:"server_time"`
}
