// Package notify delivers lead notifications to the team by email and chat
// webhooks. Delivery is best-effort: failures are logged, never propagated.
package notify

import (
	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// Notifier is the outbound side the chat engine hands finished leads to.
type Notifier interface {
	// NotifyNewLead reports whether at least one channel delivered.
	NotifyNewLead(lead *domain.Lead) bool
	NotifyStatusChange(lead *domain.Lead, newStatus string) bool
}

// Nop is a Notifier that does nothing. Used in tests and in deployments with
// no channels configured.
type Nop struct{}

func (Nop) NotifyNewLead(*domain.Lead) bool { return true }

func (Nop) NotifyStatusChange(*domain.Lead, string) bool { return true }
