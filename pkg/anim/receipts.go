package anim

import "time"

// Receipt fade timings.
const (
	receiptFadeIn  = 250 * time.Millisecond
	receiptFadeOut = 200 * time.Millisecond
)

const receiptRestScale = 0.8

// ReceiptState is the delivered-receipt lifecycle:
// hidden -> fadingIn -> visible -> fadingOut -> hidden.
type ReceiptState int

const (
	ReceiptHidden ReceiptState = iota
	ReceiptFadingIn
	ReceiptVisible
	ReceiptFadingOut
)

// Receipt is one delivered label's animation handle pair. A handle pair
// belongs to exactly one receipt for its whole life; when a receipt is
// superseded its handles are discarded, never recycled, so a stale
// completion can never stomp the replacement's state.
type Receipt struct {
	MessageID  string
	Generation uint64
	State      ReceiptState
	Opacity    float64
	Scale      float64

	elapsed time.Duration
}

// Receipts sequences delivered receipts for one conversation. At most one
// receipt is ever outside the hidden state: a new receipt waits for the
// old one's fade-out to fully complete before its fade-in begins.
type Receipts struct {
	current *Receipt
	pending string
	nextGen uint64
}

// Show requests the delivered label under the given message. If another
// receipt is showing it fades out first; the new one starts only after
// that completes.
func (r *Receipts) Show(messageID string) {
	if messageID == "" {
		return
	}

	if r.current == nil {
		r.current = r.allocate(messageID)
		return
	}

	if r.current.MessageID == messageID {
		// Re-showing the active receipt cancels a queued replacement.
		r.pending = ""
		return
	}

	r.pending = messageID
	if r.current.State == ReceiptFadingIn || r.current.State == ReceiptVisible {
		r.current.State = ReceiptFadingOut
		r.current.elapsed = 0
	}
}

// Step advances the active receipt by dt.
func (r *Receipts) Step(dt time.Duration) {
	if r.current == nil {
		return
	}

	r.current.elapsed += dt

	switch r.current.State {
	case ReceiptFadingIn:
		t := fraction(r.current.elapsed, receiptFadeIn)
		r.current.Opacity = t
		r.current.Scale = receiptRestScale + (1-receiptRestScale)*t
		if t >= 1 {
			r.current.State = ReceiptVisible
			r.current.elapsed = 0
		}
	case ReceiptFadingOut:
		t := fraction(r.current.elapsed, receiptFadeOut)
		r.current.Opacity = 1 - t
		r.current.Scale = 1 - (1-receiptRestScale)*t
		if t >= 1 {
			// The old handle pair dies here; the queued receipt gets a
			// fresh one on the next allocation.
			r.current = nil
			if r.pending != "" {
				r.current = r.allocate(r.pending)
				r.pending = ""
			}
		}
	}
}

// Current returns a copy of the active receipt, if any.
func (r *Receipts) Current() (Receipt, bool) {
	if r.current == nil {
		return Receipt{}, false
	}
	return *r.current, true
}

// ActiveFor reports whether the given message currently owns a non-hidden
// receipt.
func (r *Receipts) ActiveFor(messageID string) bool {
	return r.current != nil && r.current.MessageID == messageID
}

// Reset drops all receipt state immediately, including a queued one.
func (r *Receipts) Reset() {
	r.current = nil
	r.pending = ""
}

func (r *Receipts) allocate(messageID string) *Receipt {
	r.nextGen++
	return &Receipt{
		MessageID:  messageID,
		Generation: r.nextGen,
		State:      ReceiptFadingIn,
		Opacity:    0,
		Scale:      receiptRestScale,
	}
}

func fraction(elapsed time.Duration, total time.Duration) float64 {
	if total <= 0 || elapsed >= total {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(total)
}
