package session

import "errors"

// Sentinel errors for session operations.
var (
	// ErrEmptyContent indicates a user message that is blank after trimming.
	ErrEmptyContent = errors.New("message content must not be empty")

	// ErrInvalidRole indicates a role other than user or assistant.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrFormat indicates an import payload that is not a serialized history.
	ErrFormat = errors.New("invalid conversation format")
)
