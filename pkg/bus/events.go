package bus

import "time"

// EventType enumerates the chat timeline signals.
type EventType string

const (
	// Store mutations.
	EventMessageAppended EventType = "message_appended"
	EventMessageUpdated  EventType = "message_updated"
	EventChatReset       EventType = "chat_reset"

	// AI thinking sequence.
	EventTypingShown     EventType = "typing_shown"
	EventTypingHidden    EventType = "typing_hidden"
	EventViewportDown    EventType = "viewport_down"
	EventViewportUp      EventType = "viewport_up"
	EventSequenceDone    EventType = "sequence_done"
	EventSequenceAborted EventType = "sequence_aborted"
)

// Event is one chat timeline signal.
type Event struct {
	Type      EventType
	At        time.Time
	ChatID    string
	MessageID string
	Error     string
}
