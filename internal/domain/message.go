package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownRole is returned when a backend role cannot be mapped.
var ErrUnknownRole = errors.New("unknown message role")

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks messages written by the signed-in user.
	RoleUser Role = "user"
	// RoleAgent marks messages produced by an AI agent.
	RoleAgent Role = "agent"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAgent
}

// ParseRole parses a client role ("user" or "agent").
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// ParseBackendRole maps the backend's role vocabulary onto Role.
// human/user become RoleUser, ai/assistant become RoleAgent.
func ParseBackendRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human", "user":
		return RoleUser, nil
	case "ai", "assistant":
		return RoleAgent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Message is a single chat message. Messages are never edited after creation.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
	// Synthetic is set when Timestamp was fabricated on the client because
	// the backend does not report one. Only slice order is authoritative.
	Synthetic bool `json:"synthetic,omitempty"`
}

// SyntheticTimestamps assigns timestamps to n messages counting backward
// from now in one second steps, so the last message is stamped now.
func SyntheticTimestamps(now time.Time, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = now.Add(-time.Duration(n-1-i) * time.Second).UnixMilli()
	}
	return out
}
