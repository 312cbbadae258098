// Package chat implements the conversation orchestration engine: session
// lifecycle, the qualification phase machine, inactivity handling and the
// hand-off to storage and notification at session end.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
	"github.com/Italo-Ba-Hall/SITE/internal/llm"
	"github.com/Italo-Ba-Hall/SITE/internal/notify"
	"github.com/Italo-Ba-Hall/SITE/internal/store"
)

const (
	defaultSessionTimeout = 15 * time.Minute
	defaultWarningTimeout = 10 * time.Minute
)

const inactivityWarning = "⚠️ Olá! Notei que você está inativo há alguns minutos.\n\n" +
	"💡 Para continuarmos nossa conversa, você tem mais %d minutos.\n\n" +
	"📧 Caso precise de mais tempo, posso salvar seu contato para retomarmos depois.\n\n" +
	"O que gostaria de fazer?"

// sessionEntry wraps a live session with its own lock, so operations on one
// session never block another. The inactivity-warning marker lives here too:
// it is set when a warning fires and cleared by the next message.
type sessionEntry struct {
	mu       sync.Mutex
	session  *domain.ChatSession
	warnedAt *time.Time
}

// Manager owns the live-session table. Single-key operations are atomic with
// respect to each other; two racing requests for the same session resolve as
// last-write-wins, which is the documented behavior, not a bug to fix here.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	store    store.Store
	notifier notify.Notifier
	gateway  *llm.Gateway
	logger   *zap.Logger

	sessionTimeout time.Duration
	warningTimeout time.Duration
	now            func() time.Time
}

// ManagerConfig carries the session lifecycle tunables.
type ManagerConfig struct {
	SessionTimeout time.Duration
	WarningTimeout time.Duration
}

// DefaultManagerConfig returns the production defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		SessionTimeout: defaultSessionTimeout,
		WarningTimeout: defaultWarningTimeout,
	}
}

// NewManager creates a conversation engine. Zero timeouts fall back to the
// defaults.
func NewManager(st store.Store, notifier notify.Notifier, gateway *llm.Gateway, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = defaultSessionTimeout
	}
	if cfg.WarningTimeout <= 0 {
		cfg.WarningTimeout = defaultWarningTimeout
	}
	return &Manager{
		sessions:       make(map[string]*sessionEntry),
		store:          st,
		notifier:       notifier,
		gateway:        gateway,
		logger:         logger,
		sessionTimeout: cfg.SessionTimeout,
		warningTimeout: cfg.WarningTimeout,
		now:            time.Now,
	}
}

// CreateSession starts a new conversation seeded with the welcome message.
func (m *Manager) CreateSession(userID string) *domain.ChatSession {
	now := m.now()
	session := &domain.ChatSession{
		SessionID: newSessionID(),
		UserID:    userID,
		Messages: []domain.ChatMessage{{
			Role:      domain.RoleAssistant,
			Content:   llm.WelcomeMessage(),
			Timestamp: now,
		}},
		Phase:     domain.PhaseDiscovery,
		CreatedAt: now,
		UpdatedAt: now,
		Active:    true,
	}

	m.mu.Lock()
	m.sessions[session.SessionID] = &sessionEntry{session: session}
	m.mu.Unlock()

	return session.Clone()
}

// GetSession returns a snapshot of the session, or absent when it does not
// exist, was ended, or sat idle past the session timeout. The expiry check
// runs on every read, not just on the background sweep.
func (m *Manager) GetSession(id string) (*domain.ChatSession, bool) {
	e := m.entry(id)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !m.liveLocked(e) {
		return nil, false
	}
	return e.session.Clone(), true
}

// CheckInactivityWarning returns the nudge text once per silence period after
// the warning timeout. The marker is cleared by any subsequent message, so a
// new warning can fire after the next silence.
func (m *Manager) CheckInactivityWarning(id string) (string, bool) {
	e := m.entry(id)
	if e == nil {
		return "", false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !m.liveLocked(e) {
		return "", false
	}

	elapsed := m.now().Sub(e.session.UpdatedAt)
	if elapsed <= m.warningTimeout || e.warnedAt != nil {
		return "", false
	}

	now := m.now()
	e.warnedAt = &now
	remaining := int((m.sessionTimeout - elapsed).Minutes())
	return fmt.Sprintf(inactivityWarning, remaining), true
}

// AddMessage appends a message, bumps updatedAt, clears the warning marker and
// re-evaluates the phase. Returns false when the session is absent or expired;
// callers treat that as "start a new session".
func (m *Manager) AddMessage(id string, role domain.MessageRole, content string, metadata map[string]any) bool {
	e := m.entry(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !m.liveLocked(e) {
		return false
	}

	e.session.Messages = append(e.session.Messages, domain.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
		Metadata:  metadata,
	})
	e.session.UpdatedAt = m.now()
	e.warnedAt = nil
	advancePhase(e.session)
	return true
}

// UpdateProfile merges non-empty fields into the session profile. The first
// time an email lands, the lead is persisted immediately (guarded by an
// existing-record check) so an early capture is not lost to a later timeout.
func (m *Manager) UpdateProfile(ctx context.Context, id string, fields map[string]string) bool {
	e := m.entry(id)
	if e == nil {
		return false
	}

	e.mu.Lock()
	if !m.liveLocked(e) {
		e.mu.Unlock()
		return false
	}

	if e.session.Profile == nil {
		e.session.Profile = make(map[string]string)
	}
	hadEmail := e.session.Profile["email"] != ""
	for k, v := range fields {
		if v != "" {
			e.session.Profile[k] = v
		}
	}
	e.session.UpdatedAt = m.now()
	advancePhase(e.session)

	var snap *domain.ChatSession
	if !hadEmail && e.session.Profile["email"] != "" {
		snap = e.session.Clone()
	}
	e.mu.Unlock()

	if snap != nil {
		m.persistEarlyLead(ctx, snap)
	}
	return true
}

// Respond runs one conversation turn: the user message is appended, the
// gateway completes over the context prior to it, and the assistant reply plus
// any extracted profile fields are merged back. The user message stays on the
// transcript even when the reply is a degraded fallback.
func (m *Manager) Respond(ctx context.Context, id, text string) (*domain.CompletionResult, bool) {
	prior, ok := m.GetSession(id)
	if !ok {
		return nil, false
	}
	if !m.AddMessage(id, domain.RoleUser, text, nil) {
		return nil, false
	}

	res := m.gateway.Complete(ctx, prior, text)

	m.AddMessage(id, domain.RoleAssistant, res.Message, res.Metadata)
	if len(res.ExtractedProfile) > 0 {
		m.UpdateProfile(ctx, id, res.ExtractedProfile)
	}
	return res, true
}

// EndSession finalizes a conversation: the transcript is flushed, and a full
// lead (with email) or a summary-only record (without) is handed to storage.
// Idempotent: ending an already-inactive session returns absent.
func (m *Manager) EndSession(ctx context.Context, id, reason string) (*domain.ChatSession, bool) {
	e := m.entry(id)
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	if !m.liveLocked(e) {
		e.mu.Unlock()
		return nil, false
	}
	e.session.Active = false
	e.session.UpdatedAt = m.now()
	e.warnedAt = nil
	snap := e.session.Clone()
	e.mu.Unlock()

	m.logger.Info("session ended",
		zap.String("session_id", id),
		zap.String("reason", reason),
		zap.String("phase", string(snap.Phase)))

	if len(snap.Messages) > 0 {
		m.persistTranscript(ctx, snap)
	}
	if snap.ProfileValue("email") != "" {
		m.saveLeadFromSession(ctx, snap)
	} else {
		m.saveSummaryOnly(ctx, snap)
	}
	return snap, true
}

// CleanupExpiredSessions evicts sessions idle past the timeout. This is
// memory reclamation only: timed-out conversations are intentionally not
// re-scored or persisted. Staleness is re-checked under the entry lock so a
// just-refreshed session survives a concurrent sweep.
func (m *Manager) CleanupExpiredSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		stale := m.now().Sub(e.session.UpdatedAt) > m.sessionTimeout
		e.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// SessionSummary is the point-in-time view returned by ConversationSummary.
type SessionSummary struct {
	SessionID         string            `json:"session_id"`
	TotalMessages     int               `json:"total_messages"`
	UserMessages      int               `json:"user_messages"`
	AssistantMessages int               `json:"assistant_messages"`
	DurationMinutes   float64           `json:"duration_minutes"`
	Profile           map[string]string `json:"user_profile,omitempty"`
	DetectedIntents   []string          `json:"detected_intents,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	EndedAt           time.Time         `json:"ended_at"`
}

// ConversationSummary builds the live summary for an active session.
func (m *Manager) ConversationSummary(id string) (*SessionSummary, bool) {
	snap, ok := m.GetSession(id)
	if !ok {
		return nil, false
	}

	userCount := snap.UserMessageCount()
	assistantCount := 0
	for _, msg := range snap.Messages {
		if msg.Role == domain.RoleAssistant {
			assistantCount++
		}
	}

	return &SessionSummary{
		SessionID:         snap.SessionID,
		TotalMessages:     len(snap.Messages),
		UserMessages:      userCount,
		AssistantMessages: assistantCount,
		DurationMinutes:   snap.UpdatedAt.Sub(snap.CreatedAt).Minutes(),
		Profile:           snap.Profile,
		DetectedIntents:   detectedIntents(snap, llm.DetectIntent),
		CreatedAt:         snap.CreatedAt,
		EndedAt:           snap.UpdatedAt,
	}, true
}

// ActiveSessionCount returns the number of live, unexpired sessions.
func (m *Manager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := 0
	for _, e := range m.sessions {
		e.mu.Lock()
		if e.session.Active {
			active++
		}
		e.mu.Unlock()
	}
	return active
}

// Stats reports session-table counters plus the gateway's counters.
func (m *Manager) Stats() map[string]any {
	m.mu.RLock()
	total := len(m.sessions)
	m.mu.RUnlock()
	active := m.ActiveSessionCount()

	return map[string]any{
		"total_sessions":   total,
		"active_sessions":  active,
		"expired_sessions": total - active,
		"llm":              m.gateway.Stats(),
	}
}

func (m *Manager) entry(id string) *sessionEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// liveLocked verifies the session is active and unexpired, flipping it
// inactive on timeout. Callers must hold e.mu.
func (m *Manager) liveLocked(e *sessionEntry) bool {
	if !e.session.Active {
		return false
	}
	if m.now().Sub(e.session.UpdatedAt) > m.sessionTimeout {
		e.session.Active = false
		return false
	}
	return true
}

// advancePhase re-evaluates the phase machine after a mutation. Transitions
// are monotonic: discovery yields to lead_capture on the first user message,
// and a complete name+email profile forces scheduling from any phase.
func advancePhase(s *domain.ChatSession) {
	if s.Phase == domain.PhaseDiscovery && s.UserMessageCount() >= 1 {
		s.Phase = domain.PhaseLeadCapture
	}
	if s.ProfileValue("name") != "" && s.ProfileValue("email") != "" && s.Phase.Before(domain.PhaseScheduling) {
		s.Phase = domain.PhaseScheduling
	}
}

// persistEarlyLead runs the auto-persist-on-email-capture hook. Synchronous
// so tests can observe it, with its own error containment: a storage hiccup
// never aborts the conversation turn.
func (m *Manager) persistEarlyLead(ctx context.Context, snap *domain.ChatSession) {
	existing, err := m.store.GetLead(ctx, snap.SessionID)
	if err != nil {
		m.logger.Warn("failed to check existing lead", zap.String("session_id", snap.SessionID), zap.Error(err))
		return
	}
	if existing != nil {
		return
	}
	m.persistTranscript(ctx, snap)
	m.saveLeadFromSession(ctx, snap)
}

func (m *Manager) persistTranscript(ctx context.Context, snap *domain.ChatSession) {
	if err := m.store.SaveConversation(ctx, snap.SessionID, snap.Messages); err != nil {
		m.logger.Warn("failed to persist transcript", zap.String("session_id", snap.SessionID), zap.Error(err))
	}
}

func (m *Manager) saveLeadFromSession(ctx context.Context, snap *domain.ChatSession) {
	lead := &domain.Lead{
		SessionID:            snap.SessionID,
		Name:                 snap.ProfileValue("name"),
		Email:                snap.ProfileValue("email"),
		Company:              snap.ProfileValue("company"),
		Role:                 snap.ProfileValue("role"),
		Interests:            splitInterests(snap.ProfileValue("interests")),
		PainPoints:           DetectPainPoints(snap),
		RecommendedSolutions: DetectRecommendedSolutions(snap),
		QualificationScore:   QualificationScore(snap),
		ConversationSummary:  SummarizeConversation(snap),
		Status:               domain.LeadStatusNew,
	}

	leadID, err := m.store.SaveLead(ctx, lead)
	if err != nil {
		m.logger.Warn("failed to save lead", zap.String("session_id", snap.SessionID), zap.Error(err))
		return
	}
	lead.ID = leadID

	m.saveSummaryOnly(ctx, snap)

	if delivered := m.notifier.NotifyNewLead(lead); !delivered {
		m.logger.Warn("lead notification not delivered", zap.String("session_id", snap.SessionID))
	}
}

func (m *Manager) saveSummaryOnly(ctx context.Context, snap *domain.ChatSession) {
	summary := &domain.ConversationSummary{
		SessionID:       snap.SessionID,
		Summary:         SummarizeConversation(snap),
		Intents:         detectedIntents(snap, llm.DetectIntent),
		DurationMinutes: snap.UpdatedAt.Sub(snap.CreatedAt).Minutes(),
	}
	if err := m.store.SaveConversationSummary(ctx, summary); err != nil {
		m.logger.Warn("failed to save conversation summary", zap.String("session_id", snap.SessionID), zap.Error(err))
	}
}

func newSessionID() string {
	return "sess_" + uuid.New().String()[:8]
}

// splitInterests turns the comma-separated profile field into the list stored
// on the lead.
func splitInterests(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
