package ai

import "time"

// Controller receives the three per-frame callbacks of the tick manager.
type Controller interface {
	// ObjectID identifies the controller for Unregister and SetPaused
	ObjectID() uint32

	// Update runs once per frame
	Update(dt time.Duration)

	// FixedUpdate runs once per fixed step
	FixedUpdate(dt time.Duration)

	// LateUpdate runs once per frame after every Update
	LateUpdate(dt time.Duration)
}

// Starter is implemented by controllers that need setup on Register and
// teardown on Unregister.
type Starter interface {
	Start()
	Stop()
}

// System is advanced at the start of every frame, before controllers.
type System interface {
	Update(dt time.Duration)
}

// Clock returns simulated time since the tick manager started.
type Clock interface {
	Now() time.Duration
}
