package services

import (
	"log"
	"math"
	"sync"

	"slam-backend/models"
)

// BoundaryEditor - drag-to-resize rectangle with one active corner handle
type BoundaryEditor struct {
	mu         sync.RWMutex
	boundary   models.Boundary
	activeDrag *models.Corner // nil when no drag is active
}

// NewBoundaryEditor - editor seeded with the default rectangle
func NewBoundaryEditor() *BoundaryEditor {
	return &BoundaryEditor{boundary: models.DefaultBoundary}
}

// Boundary - current rectangle
func (e *BoundaryEditor) Boundary() models.Boundary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.boundary
}

// ActiveDrag - corner being dragged, if any
func (e *BoundaryEditor) ActiveDrag() (models.Corner, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.activeDrag == nil {
		return "", false
	}
	return *e.activeDrag, true
}

// BeginDrag - starts dragging corner.
//
// Returns false (no-op) when the corner tag is unknown or a drag for a
// different corner is already active.
func (e *BoundaryEditor) BeginDrag(corner models.Corner) bool {
	if !corner.Valid() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeDrag != nil && *e.activeDrag != corner {
		return false
	}
	c := corner
	e.activeDrag = &c
	return true
}

// DragTo - moves the active corner to the pointer, opposite corner fixed.
// Returns the resulting rectangle and whether a drag was active.
func (e *BoundaryEditor) DragTo(pointerX, pointerY float64) (models.Boundary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeDrag == nil {
		return e.boundary, false
	}
	e.boundary = dragCorner(e.boundary, *e.activeDrag, pointerX, pointerY)
	return e.boundary, true
}

// EndDrag - clears the active drag (idempotent)
func (e *BoundaryEditor) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeDrag = nil
}

// Reset - default rectangle, no drag
func (e *BoundaryEditor) Reset() models.Boundary {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.boundary = models.DefaultBoundary
	e.activeDrag = nil
	return e.boundary
}

// Set - replaces the rectangle (loaded configs); the result is clamped
func (e *BoundaryEditor) Set(b models.Boundary) models.Boundary {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.boundary = clampBoundary(b)
	log.Printf("[Boundary] set to (%.1f, %.1f) %.1fx%.1f", e.boundary.X, e.boundary.Y, e.boundary.Width, e.boundary.Height)
	return e.boundary
}

// dragCorner - tentative rectangle for a drag step, then clamped
func dragCorner(prev models.Boundary, corner models.Corner, x, y float64) models.Boundary {
	next := prev

	switch corner {
	case models.CornerTopLeft:
		next.Width = prev.Width + (prev.X - x)
		next.Height = prev.Height + (prev.Y - y)
		next.X = x
		next.Y = y
	case models.CornerTopRight:
		next.Width = x - prev.X
		next.Height = prev.Height + (prev.Y - y)
		next.Y = y
	case models.CornerBottomLeft:
		next.Width = prev.Width + (prev.X - x)
		next.Height = y - prev.Y
		next.X = x
	case models.CornerBottomRight:
		next.Width = x - prev.X
		next.Height = y - prev.Y
	}

	return clampBoundary(next)
}

// clampBoundary - enforces min size and non-negative origin.
// NaN coordinates (bad pointer input) keep the previous-safe minimums.
func clampBoundary(b models.Boundary) models.Boundary {
	b.Width = math.Max(nanTo(b.Width, models.MinBoundarySide), models.MinBoundarySide)
	b.Height = math.Max(nanTo(b.Height, models.MinBoundarySide), models.MinBoundarySide)
	b.X = math.Max(nanTo(b.X, 0), 0)
	b.Y = math.Max(nanTo(b.Y, 0), 0)
	return b
}

func nanTo(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
