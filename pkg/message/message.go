package message

import (
	"strings"
	"time"
)

// Kind discriminates message payload variants. Exactly one payload is
// populated per message.
type Kind string

const (
	KindText        Kind = "text"
	KindAppleMusic  Kind = "appleMusic"
	KindVinylRecord Kind = "vinylRecord"

	// Reserved variants: the payload slots exist and the registry handles
	// them through the fallback renderer until someone registers one.
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindLocation Kind = "location"
	KindContact  Kind = "contact"
)

// Reaction is a tapback attached to a bubble.
type Reaction string

const (
	ReactionHeart             Reaction = "heart"
	ReactionThumbsUp          Reaction = "thumbsUp"
	ReactionHaha              Reaction = "haha"
	ReactionDoubleExclamation Reaction = "doubleExclamation"
)

// Song is the payload shared by the appleMusic and vinylRecord variants.
type Song struct {
	ID         string
	Title      string
	Artist     string
	ArtworkURL string
	PreviewURL string
	Duration   time.Duration
	Palette    []string
}

// Attachment is the payload for the reserved image/video variants.
type Attachment struct {
	URL      string
	MimeType string
}

// Location is the payload for the reserved location variant.
type Location struct {
	Label     string
	Latitude  float64
	Longitude float64
}

// Contact is the payload for the reserved contact variant.
type Contact struct {
	Name   string
	Number string
}

// Message is one chat bubble record. Display order is storage order; the
// record itself is a plain value and carries no animation state (the
// sequencer keeps its handles in side-tables keyed by ID).
type Message struct {
	ID        string
	Kind      Kind
	Sender    bool
	Timestamp string

	HasReaction bool
	Reaction    Reaction

	// ShowDelivered is meaningful for sender-authored messages only.
	ShowDelivered bool

	Text       string
	Song       *Song
	Attachment *Attachment
	Location   *Location
	Contact    *Contact
}

// Patch is a partial field update applied last-writer-wins.
type Patch struct {
	Text          *string
	ShowDelivered *bool
	HasReaction   *bool
	Reaction      *Reaction
	Song          *Song
}

// Apply merges set fields of the patch into the message.
func (m *Message) Apply(p Patch) {
	if p.Text != nil {
		m.Text = *p.Text
	}
	if p.ShowDelivered != nil {
		m.ShowDelivered = *p.ShowDelivered
	}
	if p.HasReaction != nil {
		m.HasReaction = *p.HasReaction
	}
	if p.Reaction != nil {
		m.Reaction = *p.Reaction
	}
	if p.Song != nil {
		song := *p.Song
		m.Song = &song
	}
}

// NewText builds a text message stamped with the current wall clock.
func NewText(body string, sender bool) Message {
	return Message{
		ID:        NewID(),
		Kind:      KindText,
		Sender:    sender,
		Timestamp: Clock(time.Now(), false),
		Text:      strings.TrimSpace(body),
	}
}

// NewSong builds an appleMusic message for the given track.
func NewSong(song Song, sender bool) Message {
	return Message{
		ID:        NewID(),
		Kind:      KindAppleMusic,
		Sender:    sender,
		Timestamp: Clock(time.Now(), false),
		Song:      &song,
	}
}

// Clock formats a display timestamp. The first message of a day-window
// carries the weekday prefix, every other message only the time of day.
func Clock(t time.Time, withWeekday bool) string {
	if withWeekday {
		return t.Format("Monday 3:04 PM")
	}
	return t.Format("3:04 PM")
}
