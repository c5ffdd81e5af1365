// Package bubble renders one message record into its visual bubble. The
// registry maps a message kind to a renderer plus a prop extractor and is
// mutable at runtime so new bubble kinds can be plugged in without touching
// the conversation view.
package bubble

import (
	"sync"

	"chatpop/pkg/message"
)

// Prop keys shared between extractors and renderers.
const (
	PropBody        = "body"
	PropTitle       = "title"
	PropArtist      = "artist"
	PropDuration    = "duration"
	PropArtworkURL  = "artworkURL"
	PropPreviewURL  = "previewURL"
	PropSender      = "sender"
	PropLastInGroup = "lastInGroup"
	PropHasReaction = "hasReaction"
	PropReaction    = "reaction"
	PropWidth       = "width"
	PropEntry       = "entryProgress"
)

// FallbackBody is the body text used when no renderer is registered for a
// message kind. Dispatch never fails on an unknown kind: one bad record
// must not take down the whole conversation view.
const FallbackBody = "Unsupported message type"

// Props is the shallow-merged property bag handed to a renderer.
type Props map[string]any

// Renderer turns an extracted+merged prop bag into terminal output.
type Renderer func(props Props) string

// Extractor pulls renderer props out of a message record.
type Extractor func(msg message.Message) Props

// Entry pairs a renderer with its prop extractor.
type Entry struct {
	Render  Renderer
	Extract Extractor
}

// Registry dispatches messages by kind. Entries may be added or overwritten
// at runtime; they are never removed.
type Registry struct {
	mu       sync.RWMutex
	entries  map[message.Kind]Entry
	fallback Entry
}

// NewRegistry returns a registry pre-populated with the built-in text,
// appleMusic and vinylRecord renderers. The reserved kinds (image, video,
// location, contact) resolve to the fallback until registered.
func NewRegistry() *Registry {
	r := &Registry{
		entries: make(map[message.Kind]Entry),
		fallback: Entry{
			Render: renderText,
			Extract: func(message.Message) Props {
				return Props{PropBody: FallbackBody}
			},
		},
	}

	r.Register(message.KindText, Entry{Render: renderText, Extract: extractText})
	r.Register(message.KindAppleMusic, Entry{Render: renderAppleMusic, Extract: extractSong})
	r.Register(message.KindVinylRecord, Entry{Render: renderVinylRecord, Extract: extractSong})

	return r
}

// Register adds or overwrites the entry for a kind. Idempotent.
func (r *Registry) Register(kind message.Kind, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[kind] = entry
}

// Resolve returns the entry for a kind, or the fallback entry when nothing
// is registered.
func (r *Registry) Resolve(kind message.Kind) Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.entries[kind]; ok {
		return entry
	}
	return r.fallback
}

// Dispatch resolves the message's kind, extracts its props, shallow-merges
// the common props on top and renders. Common props win on key collision.
func (r *Registry) Dispatch(msg message.Message, common Props) string {
	entry := r.Resolve(msg.Kind)

	props := entry.Extract(msg)
	if props == nil {
		props = Props{}
	}
	for key, value := range common {
		props[key] = value
	}

	return entry.Render(props)
}

// CommonProps builds the shared prop set for a message at its position in
// the conversation.
func CommonProps(msg message.Message, lastInGroup bool, width int) Props {
	return Props{
		PropSender:      msg.Sender,
		PropLastInGroup: lastInGroup,
		PropHasReaction: msg.HasReaction,
		PropReaction:    msg.Reaction,
		PropWidth:       width,
	}
}

func extractText(msg message.Message) Props {
	return Props{PropBody: msg.Text}
}

func extractSong(msg message.Message) Props {
	props := Props{
		PropTitle:  "Unknown Song",
		PropArtist: "Unknown Artist",
	}
	if msg.Song == nil {
		return props
	}

	if msg.Song.Title != "" {
		props[PropTitle] = msg.Song.Title
	}
	if msg.Song.Artist != "" {
		props[PropArtist] = msg.Song.Artist
	}
	props[PropDuration] = msg.Song.Duration
	props[PropArtworkURL] = msg.Song.ArtworkURL
	props[PropPreviewURL] = msg.Song.PreviewURL

	return props
}
