package anim

import (
	"math"
	"time"
)

// slideHalfLife controls how quickly the viewport eases toward its target
// offset; the offset halves its remaining distance every interval.
const slideHalfLife = 60 * time.Millisecond

// Slide eases the conversation viewport toward a vertical offset. The AI
// thinking sequence pushes it down before a reply lands and releases it
// back to zero afterwards.
type Slide struct {
	offset float64
	target float64
}

// SetTarget sets the offset (in rows) the viewport should ease toward.
func (s *Slide) SetTarget(rows float64) {
	s.target = rows
}

// Step eases the offset toward the target by dt.
func (s *Slide) Step(dt time.Duration) {
	if s.Settled() {
		s.offset = s.target
		return
	}

	decay := math.Pow(0.5, float64(dt)/float64(slideHalfLife))
	s.offset = s.target + (s.offset-s.target)*decay
	if math.Abs(s.offset-s.target) < 0.01 {
		s.offset = s.target
	}
}

// Offset reports the current offset in rows.
func (s *Slide) Offset() float64 {
	return s.offset
}

// Target reports the offset the slide is easing toward.
func (s *Slide) Target() float64 {
	return s.target
}

// Settled reports whether the offset has reached the target.
func (s *Slide) Settled() bool {
	return math.Abs(s.offset-s.target) < 0.01
}

// Reset snaps the viewport back to rest.
func (s *Slide) Reset() {
	s.offset = 0
	s.target = 0
}
