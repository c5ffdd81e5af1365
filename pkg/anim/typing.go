package anim

import "time"

// Typing indicator tuning. Each dot pulses 0.5 -> 1.0 -> 0.5 on its own
// loop, staggered so the dots ripple instead of blinking together.
const (
	typingBaseline = 0.5
	typingCycle    = 1000 * time.Millisecond
	typingStagger  = 200 * time.Millisecond
)

// Typing drives the three-dot indicator. While visible the dots loop
// indefinitely; Hide snaps every dot back to baseline with no fade and
// leaves no partial state behind.
type Typing struct {
	visible bool
	elapsed time.Duration
}

// Show starts the dot loops from their staggered origins.
func (t *Typing) Show() {
	if t.visible {
		return
	}
	t.visible = true
	t.elapsed = 0
}

// Hide stops all three loops immediately.
func (t *Typing) Hide() {
	t.visible = false
	t.elapsed = 0
}

// Visible reports whether the indicator is showing.
func (t *Typing) Visible() bool {
	return t.visible
}

// Step advances the loops by dt. A hidden indicator does not accumulate.
func (t *Typing) Step(dt time.Duration) {
	if t.visible {
		t.elapsed += dt
	}
}

// DotOpacities returns the three dot opacities. Dots that have not reached
// their stagger delay yet, and all dots while hidden, sit at baseline.
func (t *Typing) DotOpacities() [3]float64 {
	opacities := [3]float64{typingBaseline, typingBaseline, typingBaseline}
	if !t.visible {
		return opacities
	}

	for i := range opacities {
		delay := time.Duration(i) * typingStagger
		if t.elapsed < delay {
			continue
		}
		opacities[i] = pulse((t.elapsed - delay) % typingCycle)
	}

	return opacities
}

// pulse maps a cycle phase to a triangle wave between baseline and 1.0.
func pulse(phase time.Duration) float64 {
	half := typingCycle / 2
	var t float64
	if phase < half {
		t = float64(phase) / float64(half)
	} else {
		t = 1 - float64(phase-half)/float64(half)
	}
	return typingBaseline + (1-typingBaseline)*t
}
