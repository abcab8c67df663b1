package models

import "time"

// SavedConfig - persisted {boundary, algorithm, startCorner}
type SavedConfig struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:128" json:"name"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Algorithm   string    `gorm:"size:32" json:"algorithm"`
	StartCorner string    `gorm:"size:8" json:"start_corner"`
	CreatedAt   time.Time `json:"created_at"`
}

// Boundary - stored rectangle
func (c SavedConfig) Boundary() Boundary {
	return Boundary{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// PathConfig - stored selection
func (c SavedConfig) PathConfig() PathConfig {
	return PathConfig{Algorithm: PathAlgorithm(c.Algorithm), StartCorner: Corner(c.StartCorner)}
}
