package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"slam-backend/models"
)

// DefaultSimulationTick - reveal interval per waypoint
const DefaultSimulationTick = 20 * time.Millisecond

// Advance - one simulation tick.
//
// While running, reveals the next waypoint of path; once the whole path is
// revealed the following tick stops the simulation. The revealed points are
// always a capacity-capped prefix of path, so appending to them never writes
// into path.
func Advance(path []models.Waypoint, state models.SimulationState) models.SimulationState {
	if !state.IsRunning {
		return state
	}

	next := state
	n := len(state.RevealedPoints)
	if n < len(path) {
		next.RevealedPoints = path[: n+1 : n+1]
		return next
	}

	next.IsRunning = false
	return next
}

// SimulationRun - handle of one started simulation
type SimulationRun struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel - stops the ticker of this run
func (r *SimulationRun) Cancel() {
	r.cancel()
}

// Done - closed when the ticker goroutine exits
func (r *SimulationRun) Done() <-chan struct{} {
	return r.done
}

// PathSimulator - incremental reveal of a generated path
type PathSimulator struct {
	// emitMu: callbacks of a run complete before the Start/Reset replacing it returns
	emitMu sync.Mutex

	mu       sync.Mutex
	interval time.Duration
	path     []models.Waypoint
	state    models.SimulationState
	run      *SimulationRun

	onProgress func(state models.SimulationState, index int, point models.Waypoint)
	onFinish   func(state models.SimulationState)
}

// NewPathSimulator - simulator ticking every interval (<= 0 uses the default)
func NewPathSimulator(interval time.Duration) *PathSimulator {
	if interval <= 0 {
		interval = DefaultSimulationTick
	}
	return &PathSimulator{
		interval: interval,
		state:    models.SimulationState{RevealedPoints: []models.Waypoint{}},
	}
}

// SetCallbacks - progress callback per revealed point, finish callback on completion
func (s *PathSimulator) SetCallbacks(
	onProgress func(models.SimulationState, int, models.Waypoint),
	onFinish func(models.SimulationState),
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = onProgress
	s.onFinish = onFinish
}

// Start - discards any previous run and starts revealing path
func (s *PathSimulator) Start(path []models.Waypoint) *SimulationRun {
	ctx, cancel := context.WithCancel(context.Background())
	run := &SimulationRun{
		ID:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.run != nil {
		s.run.Cancel()
	}
	s.run = run
	s.path = path
	s.state = models.SimulationState{
		RunID:          run.ID,
		RevealedPoints: path[:0:0],
		TotalPoints:    len(path),
		IsRunning:      true,
	}
	s.mu.Unlock()

	log.Printf("[Simulator] run %s started (%d points, tick %v)", run.ID, len(path), s.interval)
	go s.loop(ctx, run)
	return run
}

// Reset - cancels any run and clears the revealed points
func (s *PathSimulator) Reset() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		s.run.Cancel()
		log.Printf("[Simulator] run %s reset", s.run.ID)
	}
	s.run = nil
	s.path = nil
	s.state = models.SimulationState{RevealedPoints: []models.Waypoint{}}
}

// State - copy of the current simulation state
func (s *PathSimulator) State() models.SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running - true while a run is active
func (s *PathSimulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsRunning
}

// Step - advances the active run by one tick outside the timer.
// Returns false when there is no active run.
func (s *PathSimulator) Step() bool {
	s.mu.Lock()
	run := s.run
	s.mu.Unlock()

	if run == nil {
		return false
	}
	s.step(run)
	return true
}

func (s *PathSimulator) loop(ctx context.Context, run *SimulationRun) {
	defer close(run.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if finished := s.step(run); finished {
				return
			}
		}
	}
}

// step - applies Advance if run is still the active run.
// Returns true when run is finished or superseded.
// Callbacks must not call Start or Reset.
func (s *PathSimulator) step(run *SimulationRun) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.run != run {
		s.mu.Unlock()
		return true
	}

	prev := len(s.state.RevealedPoints)
	s.state = Advance(s.path, s.state)
	state := s.state
	onProgress, onFinish := s.onProgress, s.onFinish

	finished := !state.IsRunning
	if finished {
		s.run = nil
		run.Cancel()
	}
	s.mu.Unlock()

	if n := len(state.RevealedPoints); n > prev && onProgress != nil {
		onProgress(state, n-1, state.RevealedPoints[n-1])
	}
	if finished {
		log.Printf("[Simulator] run %s completed (%d points)", run.ID, len(state.RevealedPoints))
		if onFinish != nil {
			onFinish(state)
		}
	}
	return finished
}
