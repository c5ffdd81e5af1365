// Package grouping computes the visual clustering decisions for an ordered
// message list: when to repeat a timestamp header, where a sender group
// starts and ends, and where inter-group spacing goes. All predicates are
// pure and need only neighbor access.
package grouping

import (
	"strings"
	"time"
	"unicode"

	"chatpop/pkg/message"
)

// TimestampGap is the minimum gap between two messages before a new
// timestamp header is shown.
const TimestampGap = 15 * time.Minute

// Decision bundles the four per-index predicates.
type Decision struct {
	ShowTimestamp bool
	FirstInGroup  bool
	LastInGroup   bool
	GroupSpacing  bool
}

// Decide evaluates all predicates for the message at index i. Callers only
// invoke it for valid indices of a non-empty list.
func Decide(msgs []message.Message, i int) Decision {
	return Decision{
		ShowTimestamp: ShowTimestamp(msgs, i),
		FirstInGroup:  FirstInGroup(msgs, i),
		LastInGroup:   LastInGroup(msgs, i),
		GroupSpacing:  GroupSpacing(msgs, i),
	}
}

// ShowTimestamp reports whether message i opens a new timestamp window:
// the very first message, or a gap of at least TimestampGap since i-1.
func ShowTimestamp(msgs []message.Message, i int) bool {
	if i == 0 {
		return true
	}
	return gap(msgs[i-1].Timestamp, msgs[i].Timestamp) >= TimestampGap
}

// FirstInGroup reports whether message i starts a sender group.
func FirstInGroup(msgs []message.Message, i int) bool {
	if i == 0 {
		return true
	}
	if msgs[i].Sender != msgs[i-1].Sender {
		return true
	}
	return ShowTimestamp(msgs, i)
}

// LastInGroup reports whether message i closes a sender group. The closing
// bubble is the one that gets the tail.
func LastInGroup(msgs []message.Message, i int) bool {
	if i == len(msgs)-1 {
		return true
	}
	if msgs[i].Sender != msgs[i+1].Sender {
		return true
	}
	return ShowTimestamp(msgs, i+1)
}

// GroupSpacing reports whether extra spacing is rendered above message i.
func GroupSpacing(msgs []message.Message, i int) bool {
	if i == 0 {
		return false
	}
	return msgs[i].Sender != msgs[i-1].Sender || ShowTimestamp(msgs, i)
}

// gap returns the elapsed time-of-day between two display timestamps.
// Display strings carry no date, so a pair that wraps past midnight is
// read as crossing into the next day rather than going backwards.
func gap(earlier string, later string) time.Duration {
	a, okA := ParseClock(earlier)
	b, okB := ParseClock(later)
	if !okA || !okB {
		// Unparseable neighbors fall back to "new group" so a malformed
		// record degrades to an extra header, never a merged group.
		return TimestampGap
	}

	d := b - a
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

// ParseClock extracts the time of day from a display timestamp. The weekday
// prefix ("Monday 2:14 PM") is present only on the first message of a
// day-window, so comparison has to normalize it away: a literal string
// compare would make every non-first message look like a new group.
func ParseClock(stamp string) (time.Duration, bool) {
	stamp = strings.TrimSpace(stamp)
	if stamp == "" {
		return 0, false
	}

	if i := strings.IndexFunc(stamp, unicode.IsDigit); i > 0 {
		stamp = strings.TrimSpace(stamp[i:])
	} else if i < 0 {
		return 0, false
	}

	t, err := time.Parse("3:04 PM", stamp)
	if err != nil {
		return 0, false
	}

	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}
