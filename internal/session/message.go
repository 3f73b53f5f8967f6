package session

import (
	"time"

	"github.com/flemzord/parley/internal/provider"
)

// Message is one turn in the conversation. Entries are immutable once
// appended; the log hands out copies only.
type Message struct {
	Role      provider.MessageRole `json:"role"`
	Content   string               `json:"content"`
	Timestamp time.Time            `json:"timestamp"`
}

// Stats is a point-in-time breakdown of the conversation log.
type Stats struct {
	Total      int
	User       int
	Assistant  int
	Characters int
}

// AverageLength returns the mean content length in characters, or 0 for an
// empty log.
func (s Stats) AverageLength() int {
	if s.Total == 0 {
		return 0
	}
	return s.Characters / s.Total
}
