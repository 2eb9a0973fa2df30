package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/navsim/internal/world"
)

// TickManager drives every registered controller from one goroutine.
//
// A frame runs posted functions, then systems, then Update of every
// controller, then LateUpdate of every controller, all in registration
// order. Fixed steps run FixedUpdate on their own ticker.
//
// Register, Unregister and SetPaused must be called from the tick goroutine
// (from a controller or a posted function) or before Start. Post, Pause and
// Resume are safe from any goroutine.
type TickManager struct {
	frameInterval time.Duration
	fixedInterval time.Duration

	controllers []Controller
	byID        map[uint32]int // objectID -> index in controllers
	paused      map[uint32]bool
	systems     []System
	removed     int // nil slots waiting for compaction

	now         time.Duration
	frames      uint64
	globalPause atomic.Bool

	postMu sync.Mutex
	posted []func()

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTickManager creates a manager with the given frame and fixed-step intervals.
func NewTickManager(frameInterval, fixedInterval time.Duration) *TickManager {
	return &TickManager{
		frameInterval: frameInterval,
		fixedInterval: fixedInterval,
		byID:          make(map[uint32]int),
		paused:        make(map[uint32]bool),
		stopCh:        make(chan struct{}),
	}
}

// Register adds a controller. Controllers implementing Starter are started.
func (m *TickManager) Register(c Controller) error {
	id := c.ObjectID()
	if _, ok := m.byID[id]; ok {
		return fmt.Errorf("registering controller %d: already registered", id)
	}
	m.byID[id] = len(m.controllers)
	m.controllers = append(m.controllers, c)

	if s, ok := c.(Starter); ok {
		s.Start()
	}

	slog.Debug("controller registered", "objectID", id)
	return nil
}

// Unregister removes a controller, stopping it if it implements Starter.
// Safe to call from inside a controller callback.
func (m *TickManager) Unregister(objectID uint32) {
	i, ok := m.byID[objectID]
	if !ok {
		return
	}
	c := m.controllers[i]
	m.controllers[i] = nil
	m.removed++
	delete(m.byID, objectID)
	delete(m.paused, objectID)

	if s, ok := c.(Starter); ok {
		s.Stop()
	}

	slog.Debug("controller unregistered", "objectID", objectID)
}

// AddSystem appends a system advanced before controllers every frame.
func (m *TickManager) AddSystem(s System) {
	m.systems = append(m.systems, s)
}

// Get returns the controller registered under objectID.
func (m *TickManager) Get(objectID uint32) (Controller, error) {
	i, ok := m.byID[objectID]
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return m.controllers[i], nil
}

// Count returns number of registered controllers.
func (m *TickManager) Count() int {
	return len(m.byID)
}

// Now returns simulated time: the sum of frame deltas run so far.
func (m *TickManager) Now() time.Duration {
	return m.now
}

// Frames returns the number of frames run so far.
func (m *TickManager) Frames() uint64 {
	return m.frames
}

// Pause stops all dispatch until Resume. Posted functions still run.
func (m *TickManager) Pause() {
	m.globalPause.Store(true)
}

// Resume undoes Pause.
func (m *TickManager) Resume() {
	m.globalPause.Store(false)
}

// Paused reports whether the manager is paused.
func (m *TickManager) Paused() bool {
	return m.globalPause.Load()
}

// SetPaused pauses or resumes a single controller.
func (m *TickManager) SetPaused(objectID uint32, paused bool) {
	if _, ok := m.byID[objectID]; !ok {
		return
	}
	if paused {
		m.paused[objectID] = true
	} else {
		delete(m.paused, objectID)
	}
}

// Post schedules fn to run on the tick goroutine at the start of the next frame.
func (m *TickManager) Post(fn func()) {
	m.postMu.Lock()
	m.posted = append(m.posted, fn)
	m.postMu.Unlock()
}

// Start runs the frame and fixed-step loops (blocks until context is canceled or Stop).
func (m *TickManager) Start(ctx context.Context) error {
	frame := time.NewTicker(m.frameInterval)
	defer frame.Stop()
	fixed := time.NewTicker(m.fixedInterval)
	defer fixed.Stop()

	slog.Info("tick manager started",
		"frame", m.frameInterval,
		"fixed", m.fixedInterval,
		"controllers", m.Count())

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping", "frames", m.frames)
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped", "frames", m.frames)
			return nil

		case <-frame.C:
			m.TickFrame(m.frameInterval)

		case <-fixed.C:
			m.TickFixed(m.fixedInterval)
		}
	}
}

// Stop stops the tick loop.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickFrame runs one frame: posted functions, systems, Update, LateUpdate.
func (m *TickManager) TickFrame(dt time.Duration) {
	m.runPosted()
	if m.Paused() {
		return
	}

	m.now += dt
	m.frames++

	for _, s := range m.systems {
		s.Update(dt)
	}

	dispatched := m.dispatch(func(c Controller) { c.Update(dt) })
	m.dispatch(func(c Controller) { c.LateUpdate(dt) })
	m.compact()

	if dispatched > 0 && world.IsDebugEnabled() {
		slog.Debug("frame completed",
			"frame", m.frames,
			"controllers", dispatched,
			"now", m.now)
	}
}

// TickFixed runs FixedUpdate of every active controller.
func (m *TickManager) TickFixed(dt time.Duration) {
	if m.Paused() {
		return
	}
	m.dispatch(func(c Controller) { c.FixedUpdate(dt) })
	m.compact()
}

// dispatch calls fn for every controller present when the phase began and
// still registered when its turn comes. Controllers registered during the
// phase join the next phase.
func (m *TickManager) dispatch(fn func(Controller)) int {
	n := len(m.controllers)
	count := 0
	for i := range n {
		c := m.controllers[i]
		if c == nil || m.paused[c.ObjectID()] {
			continue
		}
		fn(c)
		count++
	}
	return count
}

func (m *TickManager) compact() {
	if m.removed == 0 {
		return
	}
	kept := m.controllers[:0]
	for _, c := range m.controllers {
		if c == nil {
			continue
		}
		m.byID[c.ObjectID()] = len(kept)
		kept = append(kept, c)
	}
	clear(m.controllers[len(kept):])
	m.controllers = kept
	m.removed = 0
}

func (m *TickManager) runPosted() {
	m.postMu.Lock()
	posted := m.posted
	m.posted = nil
	m.postMu.Unlock()

	for _, fn := range posted {
		fn()
	}
}
