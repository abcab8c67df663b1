package models

import "time"

// AgentInfo - connected agent (robot) bookkeeping
type AgentInfo struct {
	ID           string       `json:"id"`
	RegisteredAt time.Time    `json:"registered_at"`
	LastUpdate   time.Time    `json:"last_update"`
	LastPosition *RawPosition `json:"last_position,omitempty"` // last odometry sample
	Samples      int64        `json:"samples"`
	Connections  int          `json:"connections"` // open connections using this id
}

// TelemetrySample - a single sample on a named topic
type TelemetrySample struct {
	Topic    string      `json:"topic"`
	AgentID  string      `json:"agent_id"`
	Position RawPosition `json:"position"`
	Received time.Time   `json:"received"`
}
