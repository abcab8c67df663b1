package services

import (
	"log"
	"sync"
	"time"

	"slam-backend/models"
)

// ToCanvas - projects a raw agent position (meters) onto the canvas.
// The agent frame origin sits on the boundary center and its y axis points up.
func ToCanvas(b models.Boundary, raw models.RawPosition) models.AgentPosition {
	c := b.Center()
	return models.AgentPosition{
		X: c.X + raw.X/models.MetersPerPixel,
		Y: c.Y - raw.Y/models.MetersPerPixel,
		Z: raw.Z,
	}
}

// PositionBridge - keeps the latest raw agent sample and projects it on demand.
//
// Only the raw sample is cached; the canvas position is derived against the
// boundary passed in by the caller, so a boundary change is reflected on the
// next read.
type PositionBridge struct {
	mu         sync.RWMutex
	raw        *models.RawPosition
	lastSample time.Time
	onUpdate   func(models.RawPosition)
}

// NewPositionBridge - bridge with no sample (disconnected)
func NewPositionBridge() *PositionBridge {
	return &PositionBridge{}
}

// OnUpdate - callback after each accepted sample
func (pb *PositionBridge) OnUpdate(fn func(models.RawPosition)) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.onUpdate = fn
}

// Update - stores a new raw sample
func (pb *PositionBridge) Update(raw models.RawPosition) {
	pb.mu.Lock()
	r := raw
	pb.raw = &r
	pb.lastSample = time.Now()
	fn := pb.onUpdate
	pb.mu.Unlock()

	if fn != nil {
		fn(raw)
	}
}

// Disconnect - drops the sample; the agent position becomes absent
func (pb *PositionBridge) Disconnect() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.raw != nil {
		log.Println("[Bridge] agent position feed disconnected")
	}
	pb.raw = nil
}

// Connected - true once a sample arrived and the feed was not dropped
func (pb *PositionBridge) Connected() bool {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.raw != nil
}

// Raw - latest raw sample
func (pb *PositionBridge) Raw() (models.RawPosition, bool) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	if pb.raw == nil {
		return models.RawPosition{}, false
	}
	return *pb.raw, true
}

// Position - agent position on the canvas for boundary b, nil when absent
func (pb *PositionBridge) Position(b models.Boundary) *models.AgentPosition {
	raw, ok := pb.Raw()
	if !ok {
		return nil
	}
	p := ToCanvas(b, raw)
	return &p
}

// Stale - no sample for longer than timeout
func (pb *PositionBridge) Stale(timeout time.Duration) bool {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.raw != nil && time.Since(pb.lastSample) > timeout
}
