package models

import (
	"time"
)

// Console event types
const (
	EventBoundaryChanged     = "boundary_changed"
	EventPathGenerated       = "path_generated"
	EventSimulationStarted   = "simulation_started"
	EventSimulationCompleted = "simulation_completed"
	EventSimulationReset     = "simulation_reset"
	EventAgentConnected      = "agent_connected"
	EventAgentDisconnected   = "agent_disconnected"
	EventConfigSaved         = "config_saved"
	EventEmergencyStop       = "emergency_stop"
	EventCommand             = "command"
)

// ConsoleLog - operator console event log
type ConsoleLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	EventType string    `gorm:"index;size:64" json:"event_type"`
	AgentID   string    `gorm:"index;size:64" json:"agent_id"`

	// Boundary at the time of the event
	BoundaryX      float64 `json:"boundary_x"`
	BoundaryY      float64 `json:"boundary_y"`
	BoundaryWidth  float64 `json:"boundary_width"`
	BoundaryHeight float64 `json:"boundary_height"`

	// Path information
	Algorithm   string `gorm:"size:32" json:"algorithm"`
	StartCorner string `gorm:"size:8" json:"start_corner"`
	PathPoints  int    `json:"path_points"`
	RunID       string `gorm:"size:64" json:"run_id"`

	// Agent position (canvas pixels) if known
	AgentX *float64 `json:"agent_x"`
	AgentY *float64 `json:"agent_y"`

	// Raw payload (commands etc.)
	DataJSON string `json:"data_json"`
}
