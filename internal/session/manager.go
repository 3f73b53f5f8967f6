// Package session owns the conversation state of a chat: the system
// instructions and a bounded, append-only log of user and assistant turns
// with oldest-first eviction.
package session

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/flemzord/parley/internal/provider"
)

// DefaultCapacity is the number of turns retained when none is configured.
const DefaultCapacity = 20

// NoHistorySummary is returned by Summary for an empty log.
const NoHistorySummary = "No conversation history yet."

// DefaultInstructions is the persona used until instructions are replaced.
const DefaultInstructions = `You are a helpful, harmless and honest AI assistant.

Key traits:
- Provide accurate information and say so when you are uncertain
- Ask clarifying questions when a request is ambiguous
- Explain complex topics clearly and keep a conversational tone
- Format answers with markdown when it helps readability

You can help with answering questions, writing and editing, code review and
programming, analysis and reasoning, creative work and problem-solving.`

// Config controls a Manager.
type Config struct {
	// Capacity is the maximum number of retained turns. Default: 20.
	Capacity int

	// Instructions seeds the system instructions. Default: DefaultInstructions.
	Instructions string
}

// Manager holds the system instructions and the conversation log.
// All methods are safe for concurrent use; every mutation of the log
// happens under a single lock so ordering and the capacity bound hold.
type Manager struct {
	logger *slog.Logger

	mu           sync.RWMutex
	capacity     int
	log          []Message
	instructions string

	// now is injectable for testing. Defaults to time.Now.
	now func() time.Time
}

// NewManager creates an empty session.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Instructions == "" {
		cfg.Instructions = DefaultInstructions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:       logger,
		capacity:     cfg.Capacity,
		instructions: cfg.Instructions,
		now:          time.Now,
	}
}

// Capacity returns the configured bound on retained turns.
func (m *Manager) Capacity() int {
	return m.capacity
}

// Append timestamps and appends one turn, then evicts from the oldest end
// until the capacity bound holds. User content must be non-blank; assistant
// content is stored as-is, empty included.
func (m *Manager) Append(role provider.MessageRole, content string) error {
	if err := validate(role, content); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(role, content)
	return nil
}

// AppendExchange commits a user turn immediately followed by its assistant
// reply. No other append can interleave between the two entries.
func (m *Manager) AppendExchange(user, assistant string) error {
	if err := validate(provider.MessageRoleUser, user); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(provider.MessageRoleUser, user)
	m.appendLocked(provider.MessageRoleAssistant, assistant)
	return nil
}

func validate(role provider.MessageRole, content string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == provider.MessageRoleUser && strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return nil
}

func (m *Manager) appendLocked(role provider.MessageRole, content string) {
	m.log = append(m.log, Message{Role: role, Content: content, Timestamp: m.now()})
	m.trimLocked()
}

// trimLocked drops the oldest entries beyond capacity.
func (m *Manager) trimLocked() {
	if over := len(m.log) - m.capacity; over > 0 {
		m.log = slices.Delete(m.log, 0, over)
	}
}

// History returns a copy of the log in conversation order.
func (m *Manager) History() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.log)
}

// Len returns the number of retained turns.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.log)
}

// Clear empties the log. Calling it on an empty log is a no-op.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.log = nil
	m.mu.Unlock()
	m.logger.Info("conversation history cleared")
}

// Stats counts the retained turns by role.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	for _, msg := range m.log {
		s.Total++
		s.Characters += utf8.RuneCountInString(msg.Content)
		switch msg.Role {
		case provider.MessageRoleUser:
			s.User++
		case provider.MessageRoleAssistant:
			s.Assistant++
		}
	}
	return s
}

// Summary describes the log in one sentence.
func (m *Manager) Summary() string {
	s := m.Stats()
	if s.Total == 0 {
		return NoHistorySummary
	}
	return fmt.Sprintf("Conversation contains %d messages: %d from user, %d from assistant.",
		s.Total, s.User, s.Assistant)
}

// Instructions returns the current system instructions.
func (m *Manager) Instructions() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instructions
}

// SetInstructions replaces the system instructions. Empty is allowed.
func (m *Manager) SetInstructions(text string) {
	m.mu.Lock()
	m.instructions = text
	m.mu.Unlock()
	m.logger.Info("system instructions updated", "length", len(text))
}
