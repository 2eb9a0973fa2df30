package tween

import (
	"time"

	"github.com/udisondev/navsim/internal/geo"
)

// Transform is anything with a settable world position.
type Transform interface {
	Position() geo.Point3D
	SetPosition(p geo.Point3D)
}

type tweenState uint8

const (
	tweenActive tweenState = iota
	tweenCompleted
	tweenCancelled
)

// Tween interpolates one Transform towards a destination.
type Tween struct {
	target     Transform
	from, to   geo.Point3D
	duration   time.Duration
	elapsed    time.Duration
	ease       Ease
	onComplete func()
	state      tweenState
}

// OnComplete sets the callback fired once when the tween reaches its
// destination. Returns t for chaining.
func (t *Tween) OnComplete(fn func()) *Tween {
	t.onComplete = fn
	return t
}

// Cancel stops the tween where it is. The completion callback will not fire,
// even when Cancel is called from another tween's callback in the same frame.
func (t *Tween) Cancel() {
	if t.state != tweenActive {
		return
	}
	t.state = tweenCancelled
	t.onComplete = nil
}

// Active reports whether the tween is still moving its target.
func (t *Tween) Active() bool {
	return t.state == tweenActive
}

// Completed reports whether the tween reached its destination.
func (t *Tween) Completed() bool {
	return t.state == tweenCompleted
}

// Destination returns the target position.
func (t *Tween) Destination() geo.Point3D {
	return t.to
}

// step advances by dt. Returns true while the tween stays active.
func (t *Tween) step(dt time.Duration) bool {
	t.elapsed += dt

	progress := 1.0
	if t.duration > 0 && t.elapsed < t.duration {
		progress = float64(t.elapsed) / float64(t.duration)
	}
	t.target.SetPosition(t.from.Lerp(t.to, t.ease(progress)))

	if progress < 1 {
		return true
	}

	t.state = tweenCompleted
	if fn := t.onComplete; fn != nil {
		t.onComplete = nil
		fn()
	}
	return false
}

// Tweener owns every running tween and advances them on Update.
// Not safe for concurrent use: driven by the tick goroutine.
type Tweener struct {
	tweens []*Tween
}

// NewTweener creates an empty tweener.
func NewTweener() *Tweener {
	return &Tweener{}
}

// Move starts a tween from the current position of t to to over d.
// A nil ease means Linear. Zero or negative d completes on the next Update.
func (tw *Tweener) Move(t Transform, to geo.Point3D, d time.Duration, ease Ease) *Tween {
	if ease == nil {
		ease = Linear
	}
	tween := &Tween{
		target:   t,
		from:     t.Position(),
		to:       to,
		duration: d,
		ease:     ease,
	}
	tw.tweens = append(tw.tweens, tween)
	return tween
}

// Update advances every active tween by dt and fires completions in start
// order. Tweens started from a completion callback first move on the next
// Update.
func (tw *Tweener) Update(dt time.Duration) {
	current := tw.tweens
	tw.tweens = make([]*Tween, 0, len(current))

	for _, t := range current {
		if t.state != tweenActive {
			continue
		}
		if t.step(dt) {
			tw.tweens = append(tw.tweens, t)
		}
	}
}

// Len returns the number of active tweens.
func (tw *Tweener) Len() int {
	n := 0
	for _, t := range tw.tweens {
		if t.state == tweenActive {
			n++
		}
	}
	return n
}

// CancelAll cancels every active tween.
func (tw *Tweener) CancelAll() {
	for _, t := range tw.tweens {
		t.Cancel()
	}
	tw.tweens = nil
}
