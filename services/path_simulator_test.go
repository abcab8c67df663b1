package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slam-backend/models"
)

func testPath(n int) []models.Waypoint {
	path := make([]models.Waypoint, n)
	for i := range path {
		path[i] = models.Waypoint{X: float64(i), Y: float64(2 * i)}
	}
	return path
}

func TestAdvance_RunsToCompletion(t *testing.T) {
	path := testPath(5)
	state := models.SimulationState{RevealedPoints: path[:0:0], TotalPoints: len(path), IsRunning: true}

	for i := 1; i <= len(path); i++ {
		state = Advance(path, state)
		require.True(t, state.IsRunning)
		require.Len(t, state.RevealedPoints, i)
	}

	state = Advance(path, state)
	assert.False(t, state.IsRunning)
	if diff := cmp.Diff(path, state.RevealedPoints); diff != "" {
		t.Errorf("revealed points mismatch (-want +got):\n%s", diff)
	}

	// idle state is a fixed point
	assert.Equal(t, state, Advance(path, state))
}

func TestAdvance_RevealedDoesNotAliasPath(t *testing.T) {
	path := testPath(3)
	state := models.SimulationState{IsRunning: true, TotalPoints: 3}
	state = Advance(path, state)

	appended := append(state.RevealedPoints, models.Waypoint{X: -1, Y: -1})
	require.Len(t, appended, 2)
	assert.Equal(t, models.Waypoint{X: 1, Y: 2}, path[1])
}

func TestAdvance_EmptyPath(t *testing.T) {
	state := Advance(nil, models.SimulationState{IsRunning: true})
	assert.False(t, state.IsRunning)
	assert.Empty(t, state.RevealedPoints)
}

// slowSimulator - ticker interval long enough that only Step drives the run
func slowSimulator() *PathSimulator {
	return NewPathSimulator(time.Hour)
}

func TestPathSimulator_StepToCompletion(t *testing.T) {
	sim := slowSimulator()

	var mu sync.Mutex
	var indices []int
	var finished []models.SimulationState
	sim.SetCallbacks(
		func(_ models.SimulationState, index int, _ models.Waypoint) {
			mu.Lock()
			indices = append(indices, index)
			mu.Unlock()
		},
		func(state models.SimulationState) {
			mu.Lock()
			finished = append(finished, state)
			mu.Unlock()
		},
	)

	path := testPath(4)
	run := sim.Start(path)
	require.True(t, sim.Running())

	for i := 0; i < len(path)+1; i++ {
		require.True(t, sim.Step())
	}

	state := sim.State()
	assert.False(t, state.IsRunning)
	assert.Equal(t, run.ID, state.RunID)
	assert.Equal(t, path, state.RevealedPoints)
	assert.False(t, sim.Step(), "finished run must not step again")

	select {
	case <-run.Done():
	case <-time.After(time.Second):
		t.Fatal("ticker goroutine did not exit")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3}, indices)
	require.Len(t, finished, 1)
	assert.Len(t, finished[0].RevealedPoints, 4)
}

func TestPathSimulator_ResetMidRun(t *testing.T) {
	sim := slowSimulator()
	path := testPath(10)
	run := sim.Start(path)

	sim.Step()
	sim.Step()
	require.Len(t, sim.State().RevealedPoints, 2)

	sim.Reset()
	state := sim.State()
	assert.False(t, state.IsRunning)
	assert.Empty(t, state.RevealedPoints)
	assert.Zero(t, state.TotalPoints)
	assert.False(t, sim.Step())

	select {
	case <-run.Done():
	case <-time.After(time.Second):
		t.Fatal("reset did not stop the ticker goroutine")
	}
}

func TestPathSimulator_ResetWaitsForInFlightProgress(t *testing.T) {
	sim := slowSimulator()

	var mu sync.Mutex
	var order []string
	entered := make(chan struct{})
	release := make(chan struct{})
	sim.SetCallbacks(func(models.SimulationState, int, models.Waypoint) {
		close(entered)
		<-release
		mu.Lock()
		order = append(order, "progress")
		mu.Unlock()
	}, nil)

	sim.Start(testPath(3))
	go sim.Step()
	<-entered

	resetDone := make(chan struct{})
	go func() {
		sim.Reset()
		mu.Lock()
		order = append(order, "reset")
		mu.Unlock()
		close(resetDone)
	}()

	assert.Never(t, func() bool {
		select {
		case <-resetDone:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	select {
	case <-resetDone:
	case <-time.After(time.Second):
		t.Fatal("reset blocked after progress returned")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"progress", "reset"}, order)
	assert.False(t, sim.Step())
}

func TestPathSimulator_StartSupersedesRun(t *testing.T) {
	sim := slowSimulator()
	first := sim.Start(testPath(10))
	sim.Step()

	second := sim.Start(testPath(3))
	require.NotEqual(t, first.ID, second.ID)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded run still ticking")
	}

	// a late tick of the old run is ignored
	assert.True(t, sim.step(first))
	state := sim.State()
	assert.Equal(t, second.ID, state.RunID)
	assert.Empty(t, state.RevealedPoints)
	assert.Equal(t, 3, state.TotalPoints)
}

func TestPathSimulator_TickerRevealsPath(t *testing.T) {
	sim := NewPathSimulator(time.Millisecond)
	path := testPath(25)
	run := sim.Start(path)

	require.Eventually(t, func() bool {
		return !sim.Running()
	}, 2*time.Second, 5*time.Millisecond)

	state := sim.State()
	assert.Equal(t, run.ID, state.RunID)
	assert.Len(t, state.RevealedPoints, len(path))
	<-run.Done()
}

func TestPathSimulator_StartEmptyPath(t *testing.T) {
	sim := slowSimulator()
	sim.Start(nil)
	require.True(t, sim.Step())

	state := sim.State()
	assert.False(t, state.IsRunning)
	assert.Zero(t, state.TotalPoints)
}
