// Package domain defines the core domain models for the lead-qualification chat service.
package domain

import (
	"time"
)

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Phase is the coarse stage of the qualification funnel.
// Transitions are monotonic: discovery -> lead_capture -> scheduling.
type Phase string

const (
	PhaseDiscovery   Phase = "discovery"
	PhaseLeadCapture Phase = "lead_capture"
	PhaseScheduling  Phase = "scheduling"
)

// rank orders phases for the monotonicity check.
func (p Phase) rank() int {
	switch p {
	case PhaseLeadCapture:
		return 1
	case PhaseScheduling:
		return 2
	default:
		return 0
	}
}

// Before reports whether p comes earlier in the funnel than other.
func (p Phase) Before(other Phase) bool {
	return p.rank() < other.rank()
}

// ChatMessage is a single turn in a conversation. Immutable once appended.
type ChatMessage struct {
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ChatSession is one visitor's conversation and accumulated state.
// The chat manager owns all mutation; everyone else sees snapshots.
type ChatSession struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Messages  []ChatMessage     `json:"messages"`
	Profile   map[string]string `json:"user_profile,omitempty"`
	Phase     Phase             `json:"phase"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Active    bool              `json:"is_active"`
}

// UserMessageCount returns how many user-role messages the session holds.
func (s *ChatSession) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// ProfileValue returns the profile field or "" when unset.
func (s *ChatSession) ProfileValue(key string) string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile[key]
}

// Clone returns a deep copy safe to hand outside the manager's locks.
func (s *ChatSession) Clone() *ChatSession {
	out := *s
	out.Messages = make([]ChatMessage, len(s.Messages))
	copy(out.Messages, s.Messages)
	if s.Profile != nil {
		out.Profile = make(map[string]string, len(s.Profile))
		for k, v := range s.Profile {
			out.Profile[k] = v
		}
	}
	return &out
}
