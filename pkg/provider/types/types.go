// Package types holds the provider-neutral reply contract shared by every
// completion backend.
package types

import (
	"encoding/json"
	"strings"
)

// Role tags one side of the conversation history.
type Role string

const (
	// RoleUser is the person typing in the composer.
	RoleUser Role = "user"
	// RoleContact is the auto-responder persona.
	RoleContact Role = "contact"
)

// Turn is one prior message handed to the model as context.
type Turn struct {
	Role    Role
	Content string
}

// ReplyKind discriminates what the responder wants to send back.
type ReplyKind string

const (
	// ReplyText is a plain chat bubble.
	ReplyText ReplyKind = "text"
	// ReplyMusic is a text bubble followed by a song recommendation; Query
	// feeds the catalog search.
	ReplyMusic ReplyKind = "music"
)

// Reply is the normalized model output.
type Reply struct {
	Kind  ReplyKind `json:"kind"`
	Body  string    `json:"body"`
	Query string    `json:"query,omitempty"`
}

// ParseReply interprets raw model output. Providers are asked to answer in
// a small JSON envelope; anything that fails to parse, or claims a music
// reply without a search query, degrades to a plain text reply carrying
// the raw output.
func ParseReply(raw string) Reply {
	text := strings.TrimSpace(raw)
	fallback := Reply{Kind: ReplyText, Body: text}

	candidate := stripCodeFence(text)
	if !strings.HasPrefix(candidate, "{") {
		return fallback
	}

	var reply Reply
	if err := json.Unmarshal([]byte(candidate), &reply); err != nil {
		return fallback
	}

	reply.Body = strings.TrimSpace(reply.Body)
	reply.Query = strings.TrimSpace(reply.Query)
	if reply.Body == "" {
		return fallback
	}

	switch reply.Kind {
	case ReplyMusic:
		if reply.Query == "" {
			reply.Kind = ReplyText
		}
	case ReplyText:
	default:
		reply.Kind = ReplyText
	}

	return reply
}

// stripCodeFence unwraps ```json ... ``` style fences some models insist on.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Instructions renders the system prompt sent to every backend: the persona
// plus the reply envelope contract.
func Instructions(persona string) string {
	var b strings.Builder
	b.WriteString("You are ")
	if persona = strings.TrimSpace(persona); persona != "" {
		b.WriteString(persona)
	} else {
		b.WriteString("a friendly contact in a messaging app")
	}
	b.WriteString(". Reply with a single JSON object and nothing else.\n")
	b.WriteString(`For a normal reply: {"kind":"text","body":"<your message>"}.` + "\n")
	b.WriteString(`To recommend a song: {"kind":"music","body":"<your message>","query":"<song title and artist>"}.` + "\n")
	b.WriteString("Keep the body short and casual, like a text message.")
	return b.String()
}
