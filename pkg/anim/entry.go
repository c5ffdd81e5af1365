// Package anim holds the transient-animation state machines for a
// conversation view: message entry springs, the delivered-receipt
// fade sequence, the typing-indicator dot loop and the viewport slide.
// Every machine is stepped from the UI tick; none of them owns a timer,
// so navigating away stops everything by simply dropping the sequencer.
package anim

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// FPS is the tick rate the spring integrator is tuned for.
const FPS = 30

const settleEpsilon = 0.001

// EntryState tracks a message slide-in: pending(0) -> animating -> settled(1).
type EntryState int

const (
	EntryPending EntryState = iota
	EntryAnimating
	EntrySettled
)

// Entry animates a freshly sent message from 0 to 1 with a
// critically damped spring. One direction, not cancelable once started.
type Entry struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	state  EntryState
}

// NewEntry returns an entry animation at rest in the pending state.
func NewEntry() *Entry {
	return &Entry{
		spring: harmonica.NewSpring(harmonica.FPS(FPS), 7.0, 1.0),
	}
}

// Start begins the slide-in. Calling it again is a no-op.
func (e *Entry) Start() {
	if e.state == EntryPending {
		e.state = EntryAnimating
	}
}

// Step advances the spring by one frame.
func (e *Entry) Step() {
	if e.state != EntryAnimating {
		return
	}

	e.pos, e.vel = e.spring.Update(e.pos, e.vel, 1.0)
	if math.Abs(1-e.pos) < settleEpsilon && math.Abs(e.vel) < settleEpsilon {
		e.pos = 1
		e.vel = 0
		e.state = EntrySettled
	}
}

// Progress reports the animation position in [0, 1].
func (e *Entry) Progress() float64 {
	if e.pos < 0 {
		return 0
	}
	if e.pos > 1 {
		return 1
	}
	return e.pos
}

// State returns the current entry state.
func (e *Entry) State() EntryState {
	return e.state
}
