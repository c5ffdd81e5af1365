// Package respond drives the auto-reply sequence: delivered receipt on the
// user's message, typing indicator, model generation, then one or two
// appended bubbles. The orchestrator owns the timeline; the UI only
// reacts to bus events.
package respond

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"chatpop/pkg/bus"
	"chatpop/pkg/message"
	"chatpop/pkg/music"
	"chatpop/pkg/provider"
	providertypes "chatpop/pkg/provider/types"
	"chatpop/pkg/store"
)

// ErrBusy reports that a reply sequence is already running for the chat.
var ErrBusy = errors.New("reply sequence already in flight")

// fallbackBodies stand in when generation fails outright. The sequence
// still completes; only the words are canned.
var fallbackBodies = []string{
	"wait, say that again?",
	"hmm my brain just glitched, what were we saying",
	"sorry, got distracted. go on!",
}

// Timings spaces the reply sequence. Tests inject tiny values.
type Timings struct {
	// DeliveredDelay is how long after the trigger the user's last sent
	// message flips to Delivered.
	DeliveredDelay time.Duration
	// TypingDelay is the pause before the typing indicator appears.
	TypingDelay time.Duration
	// MinTypingHold keeps the indicator up even when generation returns
	// instantly.
	MinTypingHold time.Duration
	// BubbleGap separates the text bubble from the music bubble.
	BubbleGap time.Duration
}

// DefaultTimings paces the sequence like a real conversation.
func DefaultTimings() Timings {
	return Timings{
		DeliveredDelay: 500 * time.Millisecond,
		TypingDelay:    1200 * time.Millisecond,
		MinTypingHold:  1500 * time.Millisecond,
		BubbleGap:      900 * time.Millisecond,
	}
}

// Orchestrator runs at most one reply sequence per chat.
type Orchestrator struct {
	store   *store.Store
	events  *bus.Bus
	client  provider.Client
	catalog music.Service
	clock   clock.Clock
	timings Timings
	persona string

	mu   sync.Mutex
	busy map[string]bool
	wg   sync.WaitGroup
}

// New builds an orchestrator. A nil catalog disables music lookups; music
// replies then render from the fallback track.
func New(s *store.Store, events *bus.Bus, client provider.Client, catalog music.Service, persona string, timings Timings) *Orchestrator {
	return &Orchestrator{
		store:   s,
		events:  events,
		client:  client,
		catalog: catalog,
		clock:   clock.New(),
		timings: timings,
		persona: persona,
		busy:    make(map[string]bool),
	}
}

// WithClock swaps the timeline clock. Call before the first Trigger.
func (o *Orchestrator) WithClock(c clock.Clock) *Orchestrator {
	o.clock = c
	return o
}

// Busy reports whether a sequence is in flight for the chat.
func (o *Orchestrator) Busy(chatID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy[chatID]
}

// Wait blocks until every in-flight sequence has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Trigger starts the reply sequence for a chat. While a sequence is in
// flight further triggers return ErrBusy; the user can keep sending, the
// contact just is not writing two replies at once.
func (o *Orchestrator) Trigger(ctx context.Context, chatID string) error {
	o.mu.Lock()
	if o.busy[chatID] {
		o.mu.Unlock()
		return ErrBusy
	}
	o.busy[chatID] = true
	o.mu.Unlock()

	o.wg.Add(1)
	go o.run(ctx, chatID)

	return nil
}

func (o *Orchestrator) run(ctx context.Context, chatID string) {
	defer o.wg.Done()
	defer func() {
		o.mu.Lock()
		delete(o.busy, chatID)
		o.mu.Unlock()
	}()

	log := respondLogger().With("chat_id", chatID)
	startedAt := o.clock.Now()

	// Generation races the choreography; by the time the typing indicator
	// has held its minimum, the reply is usually ready.
	resultCh := o.generate(ctx, chatID)

	if err := o.sleep(ctx, o.timings.DeliveredDelay); err != nil {
		o.abort(chatID, err)
		return
	}
	o.markDelivered(chatID)

	if err := o.sleep(ctx, o.timings.TypingDelay); err != nil {
		o.abort(chatID, err)
		return
	}
	o.publish(bus.EventTypingShown, chatID, "")

	reply, err := o.awaitReply(ctx, resultCh)
	if err != nil {
		o.publish(bus.EventTypingHidden, chatID, "")
		o.abort(chatID, err)
		return
	}

	o.publish(bus.EventTypingHidden, chatID, "")
	o.publish(bus.EventViewportDown, chatID, "")

	text := message.NewText(reply.Body, false)
	if err := o.store.Append(chatID, text); err != nil {
		log.Error("append reply failed", "error", err)
		o.abort(chatID, err)
		return
	}

	if reply.Kind == providertypes.ReplyMusic {
		track := o.lookupTrack(ctx, reply.Query)

		if err := o.sleep(ctx, o.timings.BubbleGap); err != nil {
			o.abort(chatID, err)
			return
		}

		song := message.NewSong(message.Song{
			ID:         track.ID,
			Title:      track.Title,
			Artist:     track.Artist,
			ArtworkURL: track.ArtworkURL,
			PreviewURL: track.PreviewURL,
			Duration:   track.Duration,
			Palette:    track.Palette,
		}, false)
		if err := o.store.Append(chatID, song); err != nil {
			log.Error("append song failed", "error", err)
			o.abort(chatID, err)
			return
		}
	}

	o.publish(bus.EventViewportUp, chatID, "")
	o.publish(bus.EventSequenceDone, chatID, "")
	log.Debug("reply sequence completed",
		"duration_ms", o.clock.Since(startedAt).Milliseconds(),
		"kind", string(reply.Kind),
	)
}

// generate asks the provider in the background. Failures degrade to a
// canned text reply so the sequence always produces a bubble; only a
// cancelled context surfaces as an error.
func (o *Orchestrator) generate(ctx context.Context, chatID string) <-chan providertypes.Reply {
	resultCh := make(chan providertypes.Reply, 1)

	go func() {
		history := o.historyFor(chatID)
		reply, err := o.client.Generate(ctx, o.persona, history)
		if err != nil {
			if ctx.Err() == nil {
				respondLogger().Warn("generation failed, using fallback reply", "chat_id", chatID, "error", err)
				reply = providertypes.Reply{
					Kind: providertypes.ReplyText,
					Body: fallbackBodies[int(o.clock.Now().UnixNano())%len(fallbackBodies)],
				}
			}
		}
		if strings.TrimSpace(reply.Body) == "" {
			reply = providertypes.Reply{Kind: providertypes.ReplyText, Body: fallbackBodies[0]}
		}
		resultCh <- reply
	}()

	return resultCh
}

func (o *Orchestrator) awaitReply(ctx context.Context, resultCh <-chan providertypes.Reply) (providertypes.Reply, error) {
	holdDone := o.clock.Timer(o.timings.MinTypingHold)
	defer holdDone.Stop()

	var reply providertypes.Reply
	haveReply := false
	holdOver := false

	for !(haveReply && holdOver) {
		select {
		case reply = <-resultCh:
			haveReply = true
		case <-holdDone.C:
			holdOver = true
		case <-ctx.Done():
			return providertypes.Reply{}, ctx.Err()
		}
	}

	return reply, nil
}

// lookupTrack resolves the music query, degrading to a minimal track when
// the catalog is missing, empty, or erroring.
func (o *Orchestrator) lookupTrack(ctx context.Context, query string) music.Track {
	if o.catalog == nil {
		return music.Minimal(query)
	}

	track, err := o.catalog.Search(ctx, query)
	if err != nil || track == nil {
		if err != nil {
			respondLogger().Warn("track lookup failed, using minimal track", "query", query, "error", err)
		}
		return music.Minimal(query)
	}

	return *track
}

// historyFor flattens the chat into provider turns. Music bubbles become a
// short description so the model knows what was shared.
func (o *Orchestrator) historyFor(chatID string) []providertypes.Turn {
	messages := o.store.List(chatID)
	turns := make([]providertypes.Turn, 0, len(messages))
	for _, msg := range messages {
		role := providertypes.RoleContact
		if msg.Sender {
			role = providertypes.RoleUser
		}

		content := msg.Text
		if (msg.Kind == message.KindAppleMusic || msg.Kind == message.KindVinylRecord) && msg.Song != nil {
			content = "[shared the song " + msg.Song.Title + " by " + msg.Song.Artist + "]"
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		turns = append(turns, providertypes.Turn{Role: role, Content: content})
	}

	return turns
}

func (o *Orchestrator) markDelivered(chatID string) {
	last, ok := o.store.LastSent(chatID)
	if !ok || last.ShowDelivered {
		return
	}

	delivered := true
	if err := o.store.Update(chatID, last.ID, message.Patch{ShowDelivered: &delivered}); err != nil {
		respondLogger().Warn("delivered receipt update failed", "chat_id", chatID, "error", err)
	}
}

// abort tears the sequence down cleanly: one aborted event, no half-open
// typing indicator on the next mount.
func (o *Orchestrator) abort(chatID string, err error) {
	if o.events != nil {
		errText := ""
		if err != nil {
			errText = err.Error()
		}
		o.events.Publish(context.Background(), bus.Event{Type: bus.EventSequenceAborted, At: time.Now(), ChatID: chatID, Error: errText})
	}
	respondLogger().Debug("reply sequence aborted", "chat_id", chatID, "error", err)
}

func (o *Orchestrator) publish(eventType bus.EventType, chatID, messageID string) {
	if o.events == nil {
		return
	}
	o.events.Publish(context.Background(), bus.Event{Type: eventType, At: time.Now(), ChatID: chatID, MessageID: messageID})
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := o.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func respondLogger() *slog.Logger {
	return slog.Default().With("component", "respond.orchestrator")
}
