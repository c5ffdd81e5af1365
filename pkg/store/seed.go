package store

import (
	"time"

	"chatpop/pkg/message"
)

// Seed fills the store with the demo inbox. Returns the id of the primary
// conversation (the one the AI responder is attached to).
func Seed(s *Store) string {
	primary := s.CreateChat("Samantha")
	seedConversation(s, primary, []message.Message{
		stamped(false, "Monday 9:41 AM", "morning! did you end up listening to that record?"),
		reacted(stamped(true, "9:43 AM", "I did. the whole B side on repeat"), message.ReactionHeart),
		stamped(false, "9:44 AM", "told you"),
		song(false, "9:45 AM", message.Song{
			ID:       "1440857781",
			Title:    "Dreams",
			Artist:   "Fleetwood Mac",
			Duration: 4*time.Minute + 14*time.Second,
		}),
		stamped(true, "Tuesday 6:12 PM", "ok new plan, you pick every album from now on"),
	})

	club := s.CreateChat("Record Club")
	seedConversation(s, club, []message.Message{
		stamped(false, "Sunday 7:02 PM", "this week's theme: one-hit wonders"),
		stamped(true, "7:10 PM", "oh no"),
		stamped(false, "7:11 PM", "oh yes"),
	})

	max := s.CreateChat("Max")
	seedConversation(s, max, []message.Message{
		stamped(true, "Friday 11:30 PM", "you up?"),
	})

	return primary
}

func seedConversation(s *Store, chatID string, msgs []message.Message) {
	for _, msg := range msgs {
		// Seed errors only occur for unknown chat ids, which CreateChat
		// just returned.
		_ = s.Append(chatID, msg)
	}
}

func stamped(sender bool, stamp string, body string) message.Message {
	msg := message.NewText(body, sender)
	msg.Timestamp = stamp
	return msg
}

func reacted(msg message.Message, reaction message.Reaction) message.Message {
	msg.HasReaction = true
	msg.Reaction = reaction
	return msg
}

func song(sender bool, stamp string, track message.Song) message.Message {
	msg := message.NewSong(track, sender)
	msg.Timestamp = stamp
	return msg
}
