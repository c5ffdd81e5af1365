package respond

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatpop/pkg/bus"
	"chatpop/pkg/message"
	"chatpop/pkg/music"
	providertypes "chatpop/pkg/provider/types"
	"chatpop/pkg/store"
)

type fakeProvider struct {
	reply providertypes.Reply
	err   error
	delay time.Duration
}

func (f *fakeProvider) Health(ctx context.Context) error { return nil }

func (f *fakeProvider) Generate(ctx context.Context, persona string, history []providertypes.Turn) (providertypes.Reply, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return providertypes.Reply{}, ctx.Err()
		}
	}
	return f.reply, f.err
}

type fakeCatalog struct {
	track *music.Track
	err   error
}

func (f *fakeCatalog) Search(ctx context.Context, query string) (*music.Track, error) {
	return f.track, f.err
}

func (f *fakeCatalog) Lookup(ctx context.Context, id string) (*music.Track, error) {
	return f.track, f.err
}

func fastTimings() Timings {
	return Timings{
		DeliveredDelay: time.Millisecond,
		TypingDelay:    time.Millisecond,
		MinTypingHold:  time.Millisecond,
		BubbleGap:      time.Millisecond,
	}
}

// collect drains events until a terminal event or the deadline.
func collect(t *testing.T, ch <-chan bus.Event) []bus.Event {
	t.Helper()

	var events []bus.Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case event := <-ch:
			events = append(events, event)
			if event.Type == bus.EventSequenceDone || event.Type == bus.EventSequenceAborted {
				return events
			}
		case <-deadline:
			t.Fatalf("sequence never terminated; saw %d events", len(events))
		}
	}
}

func eventTypes(events []bus.Event) []bus.EventType {
	types := make([]bus.EventType, len(events))
	for i, event := range events {
		types[i] = event.Type
	}
	return types
}

func newHarness(t *testing.T, client *fakeProvider, catalog music.Service) (*Orchestrator, *store.Store, string, <-chan bus.Event) {
	t.Helper()

	events := bus.New()
	t.Cleanup(events.Close)

	s := store.New(events)
	chatID := s.CreateChat("test")
	if err := s.Append(chatID, message.NewText("hey!", true)); err != nil {
		t.Fatalf("seed append: %v", err)
	}

	ch, cancel := events.Subscribe(context.Background(), 32)
	t.Cleanup(cancel)

	o := New(s, events, client, catalog, "a friend", fastTimings())
	return o, s, chatID, ch
}

func TestTextReplySequenceOrder(t *testing.T) {
	client := &fakeProvider{reply: providertypes.Reply{Kind: providertypes.ReplyText, Body: "hey yourself"}}
	o, s, chatID, ch := newHarness(t, client, nil)

	if err := o.Trigger(context.Background(), chatID); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	events := collect(t, ch)
	want := []bus.EventType{
		bus.EventMessageUpdated,
		bus.EventTypingShown,
		bus.EventTypingHidden,
		bus.EventViewportDown,
		bus.EventMessageAppended,
		bus.EventViewportUp,
		bus.EventSequenceDone,
	}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("event sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}

	messages := s.List(chatID)
	if len(messages) != 2 {
		t.Fatalf("chat has %d messages, want 2", len(messages))
	}
	if !messages[0].ShowDelivered {
		t.Fatal("user message never marked delivered")
	}
	reply := messages[1]
	if reply.Sender || reply.Text != "hey yourself" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestMusicReplyAppendsTwoBubbles(t *testing.T) {
	client := &fakeProvider{reply: providertypes.Reply{
		Kind:  providertypes.ReplyMusic,
		Body:  "this one's for you",
		Query: "dreams fleetwood mac",
	}}
	catalog := &fakeCatalog{track: &music.Track{
		ID:       "1440857781",
		Title:    "Dreams",
		Artist:   "Fleetwood Mac",
		Duration: 254 * time.Second,
	}}
	o, s, chatID, ch := newHarness(t, client, catalog)

	if err := o.Trigger(context.Background(), chatID); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	events := collect(t, ch)
	got := eventTypes(events)
	want := []bus.EventType{
		bus.EventMessageUpdated,
		bus.EventTypingShown,
		bus.EventTypingHidden,
		bus.EventViewportDown,
		bus.EventMessageAppended,
		bus.EventMessageAppended,
		bus.EventViewportUp,
		bus.EventSequenceDone,
	}
	if len(got) != len(want) {
		t.Fatalf("event sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}

	messages := s.List(chatID)
	if len(messages) != 3 {
		t.Fatalf("chat has %d messages, want 3", len(messages))
	}
	song := messages[2]
	if song.Kind != message.KindAppleMusic || song.Song == nil {
		t.Fatalf("third message is not a song: %+v", song)
	}
	if song.Song.Title != "Dreams" || song.Song.Artist != "Fleetwood Mac" {
		t.Fatalf("song payload = %+v", song.Song)
	}
}

func TestGenerationFailureFallsBackToCannedReply(t *testing.T) {
	client := &fakeProvider{err: errors.New("model exploded")}
	o, s, chatID, ch := newHarness(t, client, nil)

	if err := o.Trigger(context.Background(), chatID); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	events := collect(t, ch)
	if events[len(events)-1].Type != bus.EventSequenceDone {
		t.Fatalf("sequence ended with %s, want done", events[len(events)-1].Type)
	}

	messages := s.List(chatID)
	if len(messages) != 2 {
		t.Fatalf("chat has %d messages, want 2", len(messages))
	}
	if messages[1].Text == "" {
		t.Fatal("fallback reply is empty")
	}
}

func TestCatalogFailureStillSendsMusicBubble(t *testing.T) {
	client := &fakeProvider{reply: providertypes.Reply{
		Kind:  providertypes.ReplyMusic,
		Body:  "listen to this",
		Query: "some obscure b-side",
	}}
	catalog := &fakeCatalog{err: errors.New("catalog down")}
	o, s, chatID, ch := newHarness(t, client, catalog)

	if err := o.Trigger(context.Background(), chatID); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	collect(t, ch)

	messages := s.List(chatID)
	if len(messages) != 3 {
		t.Fatalf("chat has %d messages, want 3", len(messages))
	}
	song := messages[2].Song
	if song == nil {
		t.Fatal("music bubble missing")
	}
	if song.Title != "some obscure b-side" {
		t.Fatalf("minimal track title = %q, want the query", song.Title)
	}
	if song.Artist != "Unknown Artist" || song.Duration != music.DefaultDuration {
		t.Fatalf("minimal track fields = %+v", song)
	}
}

func TestTriggerWhileBusyReturnsErrBusy(t *testing.T) {
	client := &fakeProvider{
		reply: providertypes.Reply{Kind: providertypes.ReplyText, Body: "slow reply"},
		delay: 50 * time.Millisecond,
	}
	o, _, chatID, ch := newHarness(t, client, nil)

	if err := o.Trigger(context.Background(), chatID); err != nil {
		t.Fatalf("first Trigger: %v", err)
	}
	if err := o.Trigger(context.Background(), chatID); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Trigger = %v, want ErrBusy", err)
	}

	collect(t, ch)
	o.Wait()
	if o.Busy(chatID) {
		t.Fatal("busy flag not cleared after sequence")
	}

	// A fresh trigger must be accepted again.
	if err := o.Trigger(context.Background(), chatID); err != nil {
		t.Fatalf("third Trigger: %v", err)
	}
	collect(t, ch)
}

func TestCancellationAbortsCleanly(t *testing.T) {
	client := &fakeProvider{reply: providertypes.Reply{Kind: providertypes.ReplyText, Body: "never lands"}}
	o, s, chatID, ch := newHarness(t, client, nil)
	o.timings.TypingDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	if err := o.Trigger(ctx, chatID); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	cancel()

	events := collect(t, ch)
	last := events[len(events)-1]
	if last.Type != bus.EventSequenceAborted {
		t.Fatalf("sequence ended with %s, want aborted", last.Type)
	}
	if last.Error == "" {
		t.Fatal("aborted event carries no reason")
	}

	o.Wait()
	if o.Busy(chatID) {
		t.Fatal("busy flag not cleared after abort")
	}

	for _, msg := range s.List(chatID) {
		if !msg.Sender {
			t.Fatal("aborted sequence still appended a reply")
		}
	}
}
