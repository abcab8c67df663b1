package services

import (
	"context"
	"log"
	"sync"
	"time"

	"slam-backend/algorithms"
	"slam-backend/models"
)

// SlamService - coverage planning console state.
//
// Owns the boundary editor, the agent position bridge and the path simulator,
// and pushes every change to console clients through broadcastFunc.
type SlamService struct {
	mu       sync.RWMutex
	config   models.PathConfig
	lastPath []models.Waypoint

	editor    *BoundaryEditor
	bridge    *PositionBridge
	simulator *PathSimulator
	agents    *AgentRegistry

	broadcastFunc func(models.WebSocketMessage)
	events        *LogBuffer
}

// NewSlamService - service with default boundary and selection
func NewSlamService(tick time.Duration, broadcastFunc func(models.WebSocketMessage)) *SlamService {
	s := &SlamService{
		config:        models.DefaultPathConfig,
		editor:        NewBoundaryEditor(),
		bridge:        NewPositionBridge(),
		simulator:     NewPathSimulator(tick),
		agents:        NewAgentRegistry(),
		broadcastFunc: broadcastFunc,
	}

	s.simulator.SetCallbacks(s.onSimulationProgress, s.onSimulationFinish)
	s.bridge.OnUpdate(func(models.RawPosition) {
		s.broadcastAgentPosition()
	})
	return s
}

// SetEventLog - attaches the persistent event log (nil disables it)
func (s *SlamService) SetEventLog(lb *LogBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = lb
}

// Agents - connected agent registry
func (s *SlamService) Agents() *AgentRegistry {
	return s.agents
}

// ========================================
// Boundary
// ========================================

// Boundary - current rectangle
func (s *SlamService) Boundary() models.Boundary {
	return s.editor.Boundary()
}

// ActiveDrag - corner being dragged
func (s *SlamService) ActiveDrag() (models.Corner, bool) {
	return s.editor.ActiveDrag()
}

// BeginDrag - see BoundaryEditor.BeginDrag
func (s *SlamService) BeginDrag(corner models.Corner) bool {
	return s.editor.BeginDrag(corner)
}

// DragTo - drags the active corner; broadcasts the new boundary and agent position
func (s *SlamService) DragTo(x, y float64) (models.Boundary, bool) {
	b, changed := s.editor.DragTo(x, y)
	if changed {
		s.broadcastBoundary(b)
	}
	return b, changed
}

// EndDrag - ends the active drag and records the final boundary
func (s *SlamService) EndDrag() {
	_, active := s.editor.ActiveDrag()
	s.editor.EndDrag()
	if active {
		s.record(NewConsoleEvent(models.EventBoundaryChanged, s.editor.Boundary(), s.PathConfig()))
	}
}

// ResetBoundary - default rectangle
func (s *SlamService) ResetBoundary() models.Boundary {
	b := s.editor.Reset()
	s.broadcastBoundary(b)
	s.record(NewConsoleEvent(models.EventBoundaryChanged, b, s.PathConfig()))
	return b
}

// ========================================
// Path selection / generation
// ========================================

// PathConfig - current algorithm and start corner
func (s *SlamService) PathConfig() models.PathConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetPathConfig - validates and stores cfg; any active simulation is cancelled
func (s *SlamService) SetPathConfig(cfg models.PathConfig) error {
	if err := algorithms.ValidateConfig(cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	if s.simulator.State().RunID != "" {
		s.ResetSimulation()
	}
	log.Printf("[Slam] path config: %s from %s", cfg.Algorithm, cfg.StartCorner)
	return nil
}

// AgentPosition - agent position against the current boundary, nil when absent
func (s *SlamService) AgentPosition() *models.AgentPosition {
	return s.bridge.Position(s.editor.Boundary())
}

// EffectiveStartCorner - corner the current selection actually starts from
func (s *SlamService) EffectiveStartCorner() models.Corner {
	cfg := s.PathConfig()
	return algorithms.EffectiveStartCorner(cfg.Algorithm, s.editor.Boundary(), cfg.StartCorner, s.AgentPosition())
}

// GeneratePath - runs the selected generator and resets the simulation
func (s *SlamService) GeneratePath() ([]models.Waypoint, error) {
	cfg := s.PathConfig()
	b := s.editor.Boundary()
	agent := s.bridge.Position(b)

	path, err := algorithms.Generate(cfg, b, agent)
	if err != nil {
		return nil, err
	}

	s.simulator.Reset()

	s.mu.Lock()
	s.lastPath = path
	s.mu.Unlock()

	log.Printf("[Slam] %s path generated: %d points (agent: %v)", cfg.Algorithm, len(path), agent != nil)
	s.broadcast(models.MessageTypePathGenerated, models.PathGeneratedData{
		Config:   cfg,
		Boundary: b,
		Points:   path,
	})

	entry := WithAgent(NewConsoleEvent(models.EventPathGenerated, b, cfg), agent)
	entry.PathPoints = len(path)
	s.record(entry)
	return path, nil
}

// LastPath - most recently generated path
func (s *SlamService) LastPath() []models.Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPath
}

// ========================================
// Simulation
// ========================================

// Simulate - generates a fresh path and starts revealing it
func (s *SlamService) Simulate() (*SimulationRun, []models.Waypoint, error) {
	path, err := s.GeneratePath()
	if err != nil {
		return nil, nil, err
	}

	run := s.simulator.Start(path)
	s.broadcastSimulationState(s.simulator.State())

	entry := NewConsoleEvent(models.EventSimulationStarted, s.editor.Boundary(), s.PathConfig())
	entry.PathPoints = len(path)
	entry.RunID = run.ID
	s.record(entry)
	return run, path, nil
}

// ResetSimulation - cancels the run and clears revealed points
func (s *SlamService) ResetSimulation() {
	prev := s.simulator.State()
	s.simulator.Reset()
	state := s.simulator.State()
	s.broadcastSimulationState(state)

	if prev.RunID != "" {
		entry := NewConsoleEvent(models.EventSimulationReset, s.editor.Boundary(), s.PathConfig())
		entry.RunID = prev.RunID
		entry.PathPoints = len(prev.RevealedPoints)
		s.record(entry)
	}
}

// SimulationState - revealed prefix and running flag
func (s *SlamService) SimulationState() models.SimulationState {
	return s.simulator.State()
}

// StepSimulation - advances the active run by one tick
func (s *SlamService) StepSimulation() bool {
	return s.simulator.Step()
}

func (s *SlamService) onSimulationProgress(state models.SimulationState, index int, point models.Waypoint) {
	s.broadcast(models.MessageTypePathProgress, models.PathProgressData{
		RunID:    state.RunID,
		Index:    index,
		Point:    point,
		Revealed: len(state.RevealedPoints),
		Total:    state.TotalPoints,
	})
}

func (s *SlamService) onSimulationFinish(state models.SimulationState) {
	s.broadcastSimulationState(state)

	entry := NewConsoleEvent(models.EventSimulationCompleted, s.editor.Boundary(), s.PathConfig())
	entry.RunID = state.RunID
	entry.PathPoints = len(state.RevealedPoints)
	s.record(entry)
}

// ========================================
// Metrics / snapshots
// ========================================

// Metrics - derived display values
func (s *SlamService) Metrics() models.SlamMetrics {
	b := s.editor.Boundary()
	return ComputeMetrics(b, s.bridge.Position(b), s.simulator.State())
}

// Snapshot - current boundary and selection as an unsaved record
func (s *SlamService) Snapshot() models.SavedConfig {
	b := s.editor.Boundary()
	cfg := s.PathConfig()
	return models.SavedConfig{
		X:           b.X,
		Y:           b.Y,
		Width:       b.Width,
		Height:      b.Height,
		Algorithm:   string(cfg.Algorithm),
		StartCorner: string(cfg.StartCorner),
	}
}

// Apply - loads a saved boundary/selection
func (s *SlamService) Apply(rec models.SavedConfig) error {
	if err := s.SetPathConfig(rec.PathConfig()); err != nil {
		return err
	}
	s.editor.EndDrag()
	b := s.editor.Set(rec.Boundary())
	s.broadcastBoundary(b)
	return nil
}

// ========================================
// Agent feed
// ========================================

// ConsumeTelemetry - feeds the position bridge and agent liveness from topic until ctx is done
func (s *SlamService) ConsumeTelemetry(ctx context.Context, bus *TelemetryBus, topic string) {
	ch, unsubscribe := bus.Subscribe(topic, 64)
	defer unsubscribe()

	log.Printf("[Slam] listening for agent position on %s", topic)
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-ch:
			if !ok {
				return
			}
			// samples from unregistered sources still move the agent
			_ = s.agents.Touch(sample.AgentID, sample.Position)
			s.bridge.Update(sample.Position)
		}
	}
}

// AgentConnected - registers an agent connection
func (s *SlamService) AgentConnected(agentID string) error {
	if _, err := s.agents.Register(agentID); err != nil {
		return err
	}
	entry := NewConsoleEvent(models.EventAgentConnected, s.editor.Boundary(), s.PathConfig())
	entry.AgentID = agentID
	s.record(entry)
	return nil
}

// AgentDisconnected - removes the agent; the last one drops the position feed
func (s *SlamService) AgentDisconnected(agentID string) {
	if err := s.agents.Remove(agentID); err != nil {
		log.Printf("[Slam] %v", err)
	}

	entry := NewConsoleEvent(models.EventAgentDisconnected, s.editor.Boundary(), s.PathConfig())
	entry.AgentID = agentID
	s.record(entry)

	if s.agents.Count() == 0 {
		s.disconnectFeed()
	}
}

// WatchAgents - drops silent agents and a stale position feed until ctx is done
func (s *SlamService) WatchAgents(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.agents.CleanupOffline(timeout) {
				entry := NewConsoleEvent(models.EventAgentDisconnected, s.editor.Boundary(), s.PathConfig())
				entry.AgentID = id
				s.record(entry)
			}
			if s.bridge.Stale(timeout) {
				s.disconnectFeed()
			}
		}
	}
}

// FeedConnected - agent position available
func (s *SlamService) FeedConnected() bool {
	return s.bridge.Connected()
}

func (s *SlamService) disconnectFeed() {
	if !s.bridge.Connected() {
		return
	}
	s.bridge.Disconnect()
	s.broadcastAgentPosition()
}

// RecordEvent - appends an arbitrary entry to the event log
func (s *SlamService) RecordEvent(entry models.ConsoleLog) {
	s.record(entry)
}

// ========================================
// Broadcast helpers
// ========================================

func (s *SlamService) record(entry models.ConsoleLog) {
	s.mu.RLock()
	events := s.events
	s.mu.RUnlock()

	if events != nil {
		events.Add(entry)
	}
}

func (s *SlamService) broadcast(msgType string, data interface{}) {
	if s.broadcastFunc == nil {
		return
	}
	s.broadcastFunc(models.WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *SlamService) broadcastBoundary(b models.Boundary) {
	s.broadcast(models.MessageTypeBoundaryUpdate, b)
	// the projected agent position depends on the boundary center
	if s.bridge.Connected() {
		s.broadcastAgentPosition()
	}
}

func (s *SlamService) broadcastAgentPosition() {
	pos := s.AgentPosition()
	s.broadcast(models.MessageTypeAgentPosition, models.AgentPositionData{
		Connected: pos != nil,
		Position:  pos,
	})
}

func (s *SlamService) broadcastSimulationState(state models.SimulationState) {
	s.broadcast(models.MessageTypeSimulationState, models.SimulationStateData{
		RunID:     state.RunID,
		IsRunning: state.IsRunning,
		Revealed:  len(state.RevealedPoints),
		Total:     state.TotalPoints,
	})
}
