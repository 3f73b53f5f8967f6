package session

import "github.com/flemzord/parley/internal/provider"

// Assemble builds the message sequence for the completion endpoint: every
// user and assistant turn of history in order, then next as the final user
// message. Timestamps and instructions are never part of the sequence.
func Assemble(history []Message, next string) []provider.LLMMessage {
	msgs := make([]provider.LLMMessage, 0, len(history)+1)
	for _, h := range history {
		if !h.Role.Valid() {
			continue
		}
		msgs = append(msgs, provider.LLMMessage{Role: h.Role, Content: h.Content})
	}
	return append(msgs, provider.LLMMessage{Role: provider.MessageRoleUser, Content: next})
}

// Request snapshots the session and assembles a completion request for
// next, which must not have been appended yet. The caller fills in the
// model-call parameters.
func (m *Manager) Request(next string) provider.CompletionRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return provider.CompletionRequest{
		System:   m.instructions,
		Messages: Assemble(m.log, next),
	}
}
