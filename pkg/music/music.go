// Package music looks up song metadata for the music bubbles. The client
// speaks the iTunes search/lookup JSON shape and is deliberately tolerant:
// a thin or broken response degrades to placeholder fields, never an
// unrenderable bubble.
package music

import "time"

// DefaultDuration stands in when the catalog does not report track length.
const DefaultDuration = 30 * time.Second

const (
	unknownTitle  = "Unknown Song"
	unknownArtist = "Unknown Artist"
)

// Track is the normalized catalog record a music bubble renders from.
type Track struct {
	ID         string
	Title      string
	Artist     string
	ArtworkURL string
	PreviewURL string
	Duration   time.Duration
	Palette    []string
}

// Minimal builds the fallback track used when every fetch fails: known
// fields win, everything else gets a placeholder.
func Minimal(query string) Track {
	track := Track{
		Title:    unknownTitle,
		Artist:   unknownArtist,
		Duration: DefaultDuration,
	}
	if query != "" {
		track.Title = query
	}
	return track
}

// normalize fills placeholder fields so downstream rendering never sees a
// half-empty track.
func (t *Track) normalize() {
	if t.Title == "" {
		t.Title = unknownTitle
	}
	if t.Artist == "" {
		t.Artist = unknownArtist
	}
	if t.Duration <= 0 {
		t.Duration = DefaultDuration
	}
}
