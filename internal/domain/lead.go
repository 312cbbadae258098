package domain

import "time"

// Lead statuses as stored in the leads table.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
)

// Lead is a qualified contact record derived from a session.
type Lead struct {
	ID                   int64     `json:"id,omitempty"`
	SessionID            string    `json:"session_id"`
	Name                 string    `json:"name,omitempty"`
	Email                string    `json:"email,omitempty"`
	Company              string    `json:"company,omitempty"`
	Role                 string    `json:"role,omitempty"`
	PainPoints           []string  `json:"pain_points,omitempty"`
	Interests            []string  `json:"interests,omitempty"`
	RecommendedSolutions []string  `json:"recommended_solutions,omitempty"`
	QualificationScore   float64   `json:"qualification_score"`
	ConversationSummary  string    `json:"conversation_summary,omitempty"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ConversationSummary is the lightweight record kept for sessions that ended
// without an email, and alongside every saved lead for the dashboard.
type ConversationSummary struct {
	ID              int64     `json:"id,omitempty"`
	SessionID       string    `json:"session_id"`
	Summary         string    `json:"summary"`
	Intents         []string  `json:"intents,omitempty"`
	DurationMinutes float64   `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// Notification is a dashboard notification row created on lead activity.
type Notification struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"lead_id"`
	Type      string    `json:"type"` // new_lead, lead_qualified, lead_converted, status_change
	Message   string    `json:"message"`
	Read      bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
