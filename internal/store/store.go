// Package store defines the persistence interface the chat engine consumes
// and its SQLite implementation.
package store

import (
	"context"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// Store is the durable side of the service: leads, transcripts, summaries and
// dashboard notifications. The engine treats every call as best-effort; a
// storage hiccup must never abort a conversation turn.
type Store interface {
	// Lead operations
	SaveLead(ctx context.Context, lead *domain.Lead) (int64, error)
	GetLead(ctx context.Context, sessionID string) (*domain.Lead, error)
	ListLeads(ctx context.Context, status string, limit int) ([]domain.Lead, error)
	UpdateLeadStatus(ctx context.Context, sessionID, status string) error

	// Conversation transcripts
	SaveConversation(ctx context.Context, sessionID string, messages []domain.ChatMessage) error
	GetConversationMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)

	// Summary-only records (sessions that ended without an email)
	SaveConversationSummary(ctx context.Context, summary *domain.ConversationSummary) error
	GetConversationSummary(ctx context.Context, sessionID string) (*domain.ConversationSummary, error)
	ListConversationSummaries(ctx context.Context, limit, offset int) ([]domain.ConversationSummary, error)

	// Dashboard notifications
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}
