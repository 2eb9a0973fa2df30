package fsm

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateState is returned by AddState for a key already in use.
	ErrDuplicateState = errors.New("state already registered")

	// ErrUnknownState is returned by SetState for a key never added.
	ErrUnknownState = errors.New("unknown state")

	// ErrTransitionDenied is returned by SetState when the transition table
	// of the current state does not list the target.
	ErrTransitionDenied = errors.New("transition not allowed")

	// ErrReentrantTransition is returned by SetState called from a state's Exit.
	ErrReentrantTransition = errors.New("state change requested during exit")
)

// Machine holds states keyed by K and at most one active state.
// A Machine is not safe for concurrent use.
type Machine[K comparable] struct {
	name    string
	states  map[K]State
	allowed map[K]map[K]struct{}
	hooks   []func(from, to K)

	current K
	active  bool
	exiting bool
}

// New creates an empty machine. name is used in error messages.
func New[K comparable](name string) *Machine[K] {
	return &Machine[K]{
		name:    name,
		states:  make(map[K]State),
		allowed: make(map[K]map[K]struct{}),
	}
}

// Name returns the machine name.
func (m *Machine[K]) Name() string {
	return m.name
}

// AddState registers s under key.
func (m *Machine[K]) AddState(key K, s State) error {
	if _, ok := m.states[key]; ok {
		return fmt.Errorf("adding state %v to %s: %w", key, m.name, ErrDuplicateState)
	}
	m.states[key] = s
	return nil
}

// MustAdd is AddState that panics on error.
func (m *Machine[K]) MustAdd(key K, s State) {
	if err := m.AddState(key, s); err != nil {
		panic(err)
	}
}

// Has reports whether key was added.
func (m *Machine[K]) Has(key K) bool {
	_, ok := m.states[key]
	return ok
}

// Allow adds from -> to entries to the transition table. Once a state has
// entries, SetState from it only accepts the listed targets and itself.
// States without entries may transition anywhere.
func (m *Machine[K]) Allow(from K, to ...K) {
	set, ok := m.allowed[from]
	if !ok {
		set = make(map[K]struct{}, len(to))
		m.allowed[from] = set
	}
	for _, k := range to {
		set[k] = struct{}{}
	}
}

// OnTransition registers fn, called after the old state exits and before
// the new state enters. from equals the zero K for the first transition.
func (m *Machine[K]) OnTransition(fn func(from, to K)) {
	m.hooks = append(m.hooks, fn)
}

// SetState exits the active state, then enters the state under key.
// Setting the active key again runs the full Exit/Enter cycle.
// The target is validated before anything exits.
func (m *Machine[K]) SetState(key K) error {
	if m.exiting {
		return fmt.Errorf("setting state %v of %s: %w", key, m.name, ErrReentrantTransition)
	}

	next, ok := m.states[key]
	if !ok {
		return fmt.Errorf("setting state %v of %s: %w", key, m.name, ErrUnknownState)
	}

	var from K
	if m.active {
		from = m.current
		if set, ok := m.allowed[from]; ok && len(set) > 0 && key != from {
			if _, ok := set[key]; !ok {
				return fmt.Errorf("setting state %v -> %v of %s: %w", from, key, m.name, ErrTransitionDenied)
			}
		}
		m.exitCurrent()
	}

	m.current = key
	m.active = true
	for _, fn := range m.hooks {
		fn(from, key)
	}
	next.Enter()
	return nil
}

// MustSetState is SetState that panics on error.
// Wiring mistakes in state code are programming errors.
func (m *Machine[K]) MustSetState(key K) {
	if err := m.SetState(key); err != nil {
		panic(err)
	}
}

// Stop exits the active state and leaves the machine without one.
func (m *Machine[K]) Stop() {
	if !m.active || m.exiting {
		return
	}
	m.exitCurrent()
	var zero K
	m.current = zero
	m.active = false
}

func (m *Machine[K]) exitCurrent() {
	m.exiting = true
	defer func() { m.exiting = false }()
	m.states[m.current].Exit()
}

// Current returns the active key.
func (m *Machine[K]) Current() (K, bool) {
	return m.current, m.active
}

// Is reports whether key is the active state.
func (m *Machine[K]) Is(key K) bool {
	return m.active && m.current == key
}

// Update runs Execute of the active state.
func (m *Machine[K]) Update() {
	if !m.active {
		return
	}
	m.states[m.current].Execute()
}

// FixedUpdate runs FixedExecute of the active state.
func (m *Machine[K]) FixedUpdate() {
	if !m.active {
		return
	}
	m.states[m.current].FixedExecute()
}
