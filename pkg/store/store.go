// Package store owns the per-conversation message lists. Display order is
// storage order: messages are never re-sorted by timestamp or any other
// key. State lives for the process only.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatpop/pkg/bus"
	"chatpop/pkg/message"
)

// ErrChatNotFound is returned for operations on an unknown conversation.
var ErrChatNotFound = errors.New("chat not found")

// ErrMessageNotFound is returned when a partial update targets an id that
// is not in the conversation.
var ErrMessageNotFound = errors.New("message not found")

// Transport is the narrow surface the rest of the app talks to. The
// in-memory Store implements it; a real backend would too.
type Transport interface {
	Append(chatID string, msg message.Message) error
	List(chatID string) []message.Message
	Update(chatID string, messageID string, patch message.Patch) error
}

// ChatSummary is the inbox row view of a conversation.
type ChatSummary struct {
	ID      string
	Name    string
	Preview string
	Stamp   string
}

type chatState struct {
	id       string
	name     string
	messages []message.Message
}

// Store is the in-memory message store shared by the UI and the response
// orchestrator. Mutations publish events on the bus so the view can react
// without polling.
type Store struct {
	mu     sync.RWMutex
	chats  map[string]*chatState
	order  []string
	events *bus.Bus
}

// New returns an empty store. The bus may be nil when nothing renders.
func New(events *bus.Bus) *Store {
	return &Store{
		chats:  make(map[string]*chatState),
		events: events,
	}
}

// CreateChat registers a named conversation and returns its id.
func (s *Store) CreateChat(name string) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.chats[id] = &chatState{id: id, name: name}
	s.order = append(s.order, id)
	s.mu.Unlock()

	return id
}

// Name returns the display name of a conversation.
func (s *Store) Name(chatID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if chat, ok := s.chats[chatID]; ok {
		return chat.name
	}
	return ""
}

// Chats lists the inbox in creation order.
func (s *Store) Chats() []ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]ChatSummary, 0, len(s.order))
	for _, id := range s.order {
		chat := s.chats[id]
		summary := ChatSummary{ID: chat.id, Name: chat.name}
		if n := len(chat.messages); n > 0 {
			last := chat.messages[n-1]
			summary.Preview = previewFor(last)
			summary.Stamp = last.Timestamp
		}
		summaries = append(summaries, summary)
	}

	return summaries
}

// Append adds a message to the end of the conversation.
func (s *Store) Append(chatID string, msg message.Message) error {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("append to %s: %w", chatID, ErrChatNotFound)
	}
	chat.messages = append(chat.messages, msg)
	s.mu.Unlock()

	s.publish(bus.EventMessageAppended, chatID, msg.ID)
	return nil
}

// List returns a copy of the conversation in append order.
func (s *Store) List(chatID string) []message.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[chatID]
	if !ok || len(chat.messages) == 0 {
		return nil
	}

	out := make([]message.Message, len(chat.messages))
	copy(out, chat.messages)
	return out
}

// Update applies a partial field update in place, last writer wins.
func (s *Store) Update(chatID string, messageID string, patch message.Patch) error {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update in %s: %w", chatID, ErrChatNotFound)
	}

	updated := false
	for i := range chat.messages {
		if chat.messages[i].ID == messageID {
			chat.messages[i].Apply(patch)
			updated = true
			break
		}
	}
	s.mu.Unlock()

	if !updated {
		return fmt.Errorf("update %s in %s: %w", messageID, chatID, ErrMessageNotFound)
	}

	s.publish(bus.EventMessageUpdated, chatID, messageID)
	return nil
}

// ReplaceAll swaps the whole conversation, used by reset.
func (s *Store) ReplaceAll(chatID string, msgs []message.Message) error {
	s.mu.Lock()
	chat, ok := s.chats[chatID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("replace in %s: %w", chatID, ErrChatNotFound)
	}
	chat.messages = make([]message.Message, len(msgs))
	copy(chat.messages, msgs)
	s.mu.Unlock()

	s.publish(bus.EventChatReset, chatID, "")
	return nil
}

// LastSent returns the most recent sender-authored message, if any. The
// delivered receipt attaches under it.
func (s *Store) LastSent(chatID string) (message.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[chatID]
	if !ok {
		return message.Message{}, false
	}

	for i := len(chat.messages) - 1; i >= 0; i-- {
		if chat.messages[i].Sender {
			return chat.messages[i], true
		}
	}
	return message.Message{}, false
}

func (s *Store) publish(eventType bus.EventType, chatID string, messageID string) {
	if s.events == nil {
		return
	}

	s.events.Publish(context.Background(), bus.Event{
		Type:      eventType,
		At:        time.Now().UTC(),
		ChatID:    chatID,
		MessageID: messageID,
	})
}

func previewFor(msg message.Message) string {
	switch msg.Kind {
	case message.KindAppleMusic, message.KindVinylRecord:
		if msg.Song != nil && msg.Song.Title != "" {
			return "♫ " + msg.Song.Title
		}
		return "♫ Song"
	case message.KindText:
		return msg.Text
	default:
		return "Attachment"
	}
}
