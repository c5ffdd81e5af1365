package anim

import "time"

// Sequencer owns every transient animation for one open conversation.
// Entry handles live in a side-table keyed by message id so the message
// records themselves stay plain values.
type Sequencer struct {
	entries  map[string]*Entry
	Receipts Receipts
	Typing   Typing
	Slide    Slide
}

// NewSequencer returns a sequencer with everything at rest.
func NewSequencer() *Sequencer {
	return &Sequencer{entries: make(map[string]*Entry)}
}

// StartEntry begins the slide-in for a freshly sent message. Received
// messages render at rest and never get a handle. Starting
// an already-running or settled entry is a no-op.
func (s *Sequencer) StartEntry(messageID string) {
	if messageID == "" {
		return
	}

	entry, ok := s.entries[messageID]
	if !ok {
		entry = NewEntry()
		s.entries[messageID] = entry
	}
	entry.Start()
}

// EntryProgress reports the slide-in position for a message. Messages with
// no entry handle render at rest.
func (s *Sequencer) EntryProgress(messageID string) float64 {
	if entry, ok := s.entries[messageID]; ok {
		return entry.Progress()
	}
	return 1
}

// Step advances every running animation by one tick of dt.
func (s *Sequencer) Step(dt time.Duration) {
	for id, entry := range s.entries {
		entry.Step()
		if entry.State() == EntrySettled {
			// Settled handles are garbage; the message renders at rest
			// through the EntryProgress default from here on.
			delete(s.entries, id)
		}
	}

	s.Receipts.Step(dt)
	s.Typing.Step(dt)
	s.Slide.Step(dt)
}

// Reset drops all animation state. Called when the conversation view is
// dismissed so no loop keeps driving detached state.
func (s *Sequencer) Reset() {
	s.entries = make(map[string]*Entry)
	s.Receipts.Reset()
	s.Typing.Hide()
	s.Slide.Reset()
}
