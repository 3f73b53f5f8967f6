package session

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/flemzord/parley/internal/provider"
)

// Export serializes the log as an indented JSON array of
// {role, content, timestamp} objects. Timestamps use RFC 3339 with
// nanoseconds so a round trip through Import is loss-less.
func (m *Manager) Export() ([]byte, error) {
	history := m.History()
	if history == nil {
		history = []Message{}
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("session: export: %w", err)
	}
	return data, nil
}

// wireMessage uses pointers to tell missing fields from zero values.
type wireMessage struct {
	Role      *provider.MessageRole `json:"role"`
	Content   *string               `json:"content"`
	Timestamp *time.Time            `json:"timestamp"`
}

// Import replaces the whole log with the entries in data. On any error the
// existing log is left untouched. Payloads longer than the capacity keep
// their most recent entries.
func (m *Manager) Import(data []byte) error {
	msgs, err := decodeHistory(data)
	if err != nil {
		m.logger.Error("conversation import failed", "op", "import", "error", err)
		return err
	}

	m.mu.Lock()
	m.log = msgs
	m.trimLocked()
	n := len(m.log)
	m.mu.Unlock()

	m.logger.Info("conversation history imported", "messages", n, "dropped", len(msgs)-n)
	return nil
}

func decodeHistory(data []byte) ([]Message, error) {
	var wire []wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if wire == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrFormat)
	}

	msgs := make([]Message, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.Role == nil:
			return nil, fmt.Errorf("%w: entry %d: missing role", ErrFormat, i)
		case !w.Role.Valid():
			return nil, fmt.Errorf("%w: entry %d: unknown role %q", ErrFormat, i, *w.Role)
		case w.Content == nil:
			return nil, fmt.Errorf("%w: entry %d: missing content", ErrFormat, i)
		case w.Timestamp == nil:
			return nil, fmt.Errorf("%w: entry %d: missing timestamp", ErrFormat, i)
		}
		msgs = append(msgs, Message{Role: *w.Role, Content: *w.Content, Timestamp: *w.Timestamp})
	}
	return slices.Clip(msgs), nil
}
