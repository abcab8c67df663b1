package services

import (
	"log"
	"math"
	"sync"
	"time"

	"slam-backend/models"
)

const (
	// VirtualAgentID - agent id used by the built-in test agent
	VirtualAgentID = "virtual-agent"

	virtualAgentSpeed   = 1.5 // m/s
	virtualAgentTick    = 100 * time.Millisecond
	virtualAgentArrival = 0.05 // m
)

// FromCanvas - inverse of ToCanvas: canvas point → agent frame meters
func FromCanvas(b models.Boundary, p models.Waypoint, z float64) models.RawPosition {
	c := b.Center()
	return models.RawPosition{
		X: (p.X - c.X) * models.MetersPerPixel,
		Y: (c.Y - p.Y) * models.MetersPerPixel,
		Z: z,
	}
}

// VirtualAgent - simulated robot driving a route and publishing odometry
type VirtualAgent struct {
	IsRunning bool

	bus           *TelemetryBus
	topic         string
	broadcastFunc func(models.WebSocketMessage)

	position models.RawPosition
	heading  float64
	route    []models.RawPosition
	next     int
	speed    float64

	stopChan chan struct{}
	done     chan struct{}
	mu       sync.RWMutex
}

// NewVirtualAgent - agent publishing on topic of bus
func NewVirtualAgent(bus *TelemetryBus, topic string, broadcastFunc func(models.WebSocketMessage)) *VirtualAgent {
	return &VirtualAgent{
		bus:           bus,
		topic:         topic,
		broadcastFunc: broadcastFunc,
	}
}

// Start - drives route from its first point; restarts a running agent
func (a *VirtualAgent) Start(route []models.RawPosition) {
	a.Stop()
	if len(route) == 0 {
		return
	}

	a.mu.Lock()
	a.route = route
	a.position = route[0]
	a.next = 1
	a.speed = 0
	a.IsRunning = true
	a.stopChan = make(chan struct{})
	a.done = make(chan struct{})
	stop, done := a.stopChan, a.done
	a.mu.Unlock()

	log.Printf("🤖 virtual agent started (%d waypoints)", len(route))
	a.publish()
	go a.run(stop, done)
}

// Stop - halts the agent (idempotent)
func (a *VirtualAgent) Stop() {
	a.mu.Lock()
	if !a.IsRunning {
		a.mu.Unlock()
		return
	}
	a.IsRunning = false
	stop, done := a.stopChan, a.done
	a.mu.Unlock()

	close(stop)
	<-done
	log.Println("🛑 virtual agent stopped")
}

// Running - true while driving
func (a *VirtualAgent) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.IsRunning
}

func (a *VirtualAgent) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(virtualAgentTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if arrived := a.update(virtualAgentTick.Seconds()); arrived {
				a.mu.Lock()
				a.IsRunning = false
				a.mu.Unlock()
				log.Println("🏁 virtual agent reached the end of its route")
				a.publish()
				return
			}
			a.publish()
		}
	}
}

// update - moves toward the next waypoint for dt seconds; true once the route is done
func (a *VirtualAgent) update(dt float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	step := virtualAgentSpeed * dt
	for step > 0 && a.next < len(a.route) {
		target := a.route[a.next]
		dx := target.X - a.position.X
		dy := target.Y - a.position.Y
		distance := math.Hypot(dx, dy)

		if distance <= step || distance < virtualAgentArrival {
			a.position.X, a.position.Y, a.position.Z = target.X, target.Y, target.Z
			step -= distance
			a.next++
			continue
		}

		a.heading = math.Atan2(dy, dx)
		a.position.X += dx / distance * step
		a.position.Y += dy / distance * step
		step = 0
	}

	if a.next >= len(a.route) {
		a.speed = 0
		return true
	}
	a.speed = virtualAgentSpeed
	return false
}

// publish - odometry sample on the bus and a status message for consoles
func (a *VirtualAgent) publish() {
	a.mu.RLock()
	pos := a.position
	status := a.statusLocked()
	a.mu.RUnlock()

	now := time.Now()
	a.bus.Publish(models.TelemetrySample{
		Topic:    a.topic,
		AgentID:  VirtualAgentID,
		Position: pos,
		Received: now,
	})

	if a.broadcastFunc != nil {
		a.broadcastFunc(models.WebSocketMessage{
			Type:      models.MessageTypeStatus,
			Data:      status,
			Timestamp: now.UnixMilli(),
		})
	}
}

// GetStatus - current state
func (a *VirtualAgent) GetStatus() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.statusLocked()
}

func (a *VirtualAgent) statusLocked() map[string]interface{} {
	return map[string]interface{}{
		"agent_id":  VirtualAgentID,
		"running":   a.IsRunning,
		"position":  a.position,
		"heading":   a.heading,
		"speed":     a.speed,
		"waypoint":  a.next,
		"waypoints": len(a.route),
	}
}
