package ai

import (
	"time"

	"github.com/udisondev/navsim/internal/geo"
	"github.com/udisondev/navsim/internal/tween"
)

// MoveHandle controls one scoped move. Cancel guarantees the completion
// callback never fires.
type MoveHandle interface {
	Cancel()
	Active() bool
}

// Mover interpolates a transform to a destination and calls done on arrival.
type Mover interface {
	Move(t tween.Transform, to geo.Point3D, d time.Duration, ease tween.Ease, done func()) MoveHandle
}

// TweenMover implements Mover with a tween.Tweener and advances it as a
// System of the tick manager.
type TweenMover struct {
	tweener *tween.Tweener
}

// NewTweenMover creates a mover over tw.
func NewTweenMover(tw *tween.Tweener) *TweenMover {
	return &TweenMover{tweener: tw}
}

// Move starts a tween and attaches done as its completion.
func (m *TweenMover) Move(t tween.Transform, to geo.Point3D, d time.Duration, ease tween.Ease, done func()) MoveHandle {
	return m.tweener.Move(t, to, d, ease).OnComplete(done)
}

// Update advances every tween.
func (m *TweenMover) Update(dt time.Duration) {
	m.tweener.Update(dt)
}
