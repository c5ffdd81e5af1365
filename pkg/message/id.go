package message

import (
	"strconv"
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// NewID returns a unique, creation-ordered message id derived from the
// current nanosecond timestamp. Ids must never repeat: an id collision
// would let two bubbles share one animation handle.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	now := time.Now().UnixNano()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now

	return strconv.FormatInt(now, 10)
}
