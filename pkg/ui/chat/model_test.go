package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatpop/pkg/bubble"
	"chatpop/pkg/bus"
	"chatpop/pkg/message"
	providertypes "chatpop/pkg/provider/types"
	"chatpop/pkg/respond"
	"chatpop/pkg/store"
)

type stubProvider struct {
	delay time.Duration
}

func (s stubProvider) Health(ctx context.Context) error { return nil }

func (s stubProvider) Generate(ctx context.Context, persona string, history []providertypes.Turn) (providertypes.Reply, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return providertypes.Reply{}, ctx.Err()
		}
	}
	return providertypes.Reply{Kind: providertypes.ReplyText, Body: "sure!"}, nil
}

func stamped(msg message.Message, stamp string) message.Message {
	msg.Timestamp = stamp
	return msg
}

func newTestModel(t *testing.T, responder *respond.Orchestrator) (*model, *store.Store, string) {
	t.Helper()

	events := bus.New()
	t.Cleanup(events.Close)

	s := store.New(events)
	chatID := s.CreateChat("Samantha")
	if err := s.Append(chatID, stamped(message.NewText("hey you", false), "Monday 2:14 PM")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Append(chatID, stamped(message.NewText("hey!!", true), "2:15 PM")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m := newModel(context.Background(), Deps{
		Store:     s,
		Events:    events,
		Responder: responder,
		Registry:  bubble.NewRegistry(),
	})
	t.Cleanup(m.unsubscribe)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	return m, s, chatID
}

func openChat(t *testing.T, m *model) {
	t.Helper()
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenConversation {
		t.Fatal("enter did not open the conversation")
	}
}

func TestInboxNavigation(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	if m.screen != screenInbox {
		t.Fatal("model should start on the inbox")
	}
	if len(m.chats) != 1 {
		t.Fatalf("inbox has %d rows, want 1", len(m.chats))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.cursor != 0 {
		t.Fatal("cursor moved past the last row")
	}

	openChat(t, m)
	if !m.ticking {
		t.Fatal("tick gate closed with a conversation open")
	}
	if len(m.messages) != 2 {
		t.Fatalf("conversation loaded %d messages, want 2", len(m.messages))
	}
}

func TestTypingEventsToggleIndicator(t *testing.T) {
	m, _, chatID := newTestModel(t, nil)
	openChat(t, m)

	m.Update(busEventMsg{Type: bus.EventTypingShown, ChatID: chatID})
	if !m.seq.Typing.Visible() {
		t.Fatal("typing indicator not shown")
	}

	m.Update(busEventMsg{Type: bus.EventTypingHidden, ChatID: chatID})
	if m.seq.Typing.Visible() {
		t.Fatal("typing indicator not hidden")
	}
}

func TestEscClosesConversationAndStopsAnimations(t *testing.T) {
	m, _, chatID := newTestModel(t, nil)
	openChat(t, m)

	m.Update(busEventMsg{Type: bus.EventTypingShown, ChatID: chatID})
	m.Update(busEventMsg{Type: bus.EventViewportDown, ChatID: chatID})

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenInbox {
		t.Fatal("esc did not return to the inbox")
	}
	if m.ticking {
		t.Fatal("tick gate left open")
	}
	if m.seq.Typing.Visible() {
		t.Fatal("typing indicator survived unmount")
	}
	if m.seq.Slide.Target() != 0 {
		t.Fatal("slide target survived unmount")
	}
}

func TestSendAppendsAndClearsInput(t *testing.T) {
	m, s, chatID := newTestModel(t, nil)
	openChat(t, m)

	m.input.SetValue("what are you doing tonight")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	messages := s.List(chatID)
	last := messages[len(messages)-1]
	if !last.Sender || last.Text != "what are you doing tonight" {
		t.Fatalf("sent message = %+v", last)
	}
	if m.input.Value() != "" {
		t.Fatal("input not cleared after send")
	}

	// An empty send must be a no-op.
	before := len(s.List(chatID))
	m.input.SetValue("   ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(s.List(chatID)) != before {
		t.Fatal("blank input was sent")
	}
}

func TestSendTriggersResponder(t *testing.T) {
	events := bus.New()
	t.Cleanup(events.Close)
	s := store.New(events)
	chatID := s.CreateChat("Samantha")

	timings := respond.Timings{
		DeliveredDelay: time.Millisecond,
		TypingDelay:    time.Millisecond,
		MinTypingHold:  50 * time.Millisecond,
		BubbleGap:      time.Millisecond,
	}
	responder := respond.New(s, events, stubProvider{delay: 30 * time.Millisecond}, nil, "a friend", timings)

	m := newModel(context.Background(), Deps{
		Store:     s,
		Events:    events,
		Responder: responder,
		Registry:  bubble.NewRegistry(),
	})
	t.Cleanup(m.unsubscribe)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	openChat(t, m)

	m.input.SetValue("hello?")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.replying {
		t.Fatal("send did not mark a reply in flight")
	}
	if !responder.Busy(chatID) {
		t.Fatal("responder was not triggered")
	}

	responder.Wait()
	if got := len(s.List(chatID)); got != 2 {
		t.Fatalf("chat has %d messages after reply, want 2", got)
	}
}

func TestTranscriptRendersGroupingAndReceipt(t *testing.T) {
	m, s, chatID := newTestModel(t, nil)

	delivered := true
	messages := s.List(chatID)
	if err := s.Update(chatID, messages[1].ID, message.Patch{ShowDelivered: &delivered}); err != nil {
		t.Fatalf("update: %v", err)
	}

	openChat(t, m)
	m.refreshViewport()
	m.viewport.GotoBottom()

	view := m.viewport.View()
	if !strings.Contains(view, "Monday 2:14 PM") {
		t.Fatalf("timestamp header missing from transcript:\n%s", view)
	}
	if !strings.Contains(view, "Delivered") {
		t.Fatalf("delivered receipt missing from transcript:\n%s", view)
	}
	if !strings.Contains(view, "hey you") || !strings.Contains(view, "hey!!") {
		t.Fatalf("bubbles missing from transcript:\n%s", view)
	}
}

func TestAppendEventStartsEntryForSentOnly(t *testing.T) {
	m, s, chatID := newTestModel(t, nil)
	openChat(t, m)

	sent := message.NewText("outgoing", true)
	if err := s.Append(chatID, sent); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.Update(busEventMsg{Type: bus.EventMessageAppended, ChatID: chatID, MessageID: sent.ID})

	if m.seq.EntryProgress(sent.ID) >= 1 {
		t.Fatal("sent message did not get an entry animation")
	}

	reply := message.NewText("incoming", false)
	if err := s.Append(chatID, reply); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.Update(busEventMsg{Type: bus.EventMessageAppended, ChatID: chatID, MessageID: reply.ID})

	if m.seq.EntryProgress(reply.ID) != 1 {
		t.Fatal("received message should render at rest")
	}
}

func TestOtherChatEventOnlyRefreshesInbox(t *testing.T) {
	m, s, chatID := newTestModel(t, nil)
	otherID := s.CreateChat("Max")
	openChat(t, m)

	before := len(m.messages)
	if err := s.Append(otherID, message.NewText("psst", false)); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.Update(busEventMsg{Type: bus.EventMessageAppended, ChatID: otherID})

	if len(m.messages) != before {
		t.Fatal("background chat event mutated the open conversation")
	}
	if len(m.chats) != 2 {
		t.Fatalf("inbox rows = %d, want 2", len(m.chats))
	}
	_ = chatID
}
