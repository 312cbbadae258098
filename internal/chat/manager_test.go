package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
	"github.com/Italo-Ba-Hall/SITE/internal/llm"
	"github.com/Italo-Ba-Hall/SITE/tests/helpers"
)

type scriptedCompletion struct {
	reply string
	err   error
	calls int
}

func (s *scriptedCompletion) Generate(_ context.Context, _ string, _ []domain.ChatMessage, _ string, _ int, _ float32) (string, int, error) {
	s.calls++
	if s.err != nil {
		return "", 0, s.err
	}
	return s.reply, 10, nil
}

type recordingNotifier struct {
	leads    []*domain.Lead
	statuses []string
}

func (n *recordingNotifier) NotifyNewLead(lead *domain.Lead) bool {
	n.leads = append(n.leads, lead)
	return true
}

func (n *recordingNotifier) NotifyStatusChange(lead *domain.Lead, newStatus string) bool {
	n.statuses = append(n.statuses, newStatus)
	return true
}

func newTestManager(t *testing.T, svc llm.CompletionService) (*Manager, *recordingNotifier) {
	t.Helper()
	st := helpers.NewTestSQLiteStore(t)
	notifier := &recordingNotifier{}
	gateway := llm.NewGateway(svc, llm.DefaultGatewayConfig(), zap.NewNop())
	return NewManager(st, notifier, gateway, DefaultManagerConfig(), zap.NewNop()), notifier
}

func TestCreateSessionSeedsWelcome(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})

	s := m.CreateSession("u1")
	assert.True(t, strings.HasPrefix(s.SessionID, "sess_"))
	assert.True(t, s.Active)
	assert.Equal(t, domain.PhaseDiscovery, s.Phase)
	assert.Len(t, s.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, s.Messages[0].Role)
	assert.NotEmpty(t, s.Messages[0].Content)
	assert.Equal(t, 1, m.ActiveSessionCount())
}

func TestRespondAdvancesToLeadCapture(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "Entendi! Como posso ajudar?"})
	s := m.CreateSession("u1")

	res, ok := m.Respond(context.Background(), s.SessionID, "Preciso automatizar relatórios")
	assert.True(t, ok)
	assert.Equal(t, "Entendi! Como posso ajudar?", res.Message)
	assert.Equal(t, s.SessionID, res.SessionID)

	after, ok := m.GetSession(s.SessionID)
	assert.True(t, ok)
	assert.Len(t, after.Messages, 3)
	assert.Equal(t, domain.PhaseLeadCapture, after.Phase)
	assert.Equal(t, domain.RoleUser, after.Messages[1].Role)
	assert.Equal(t, domain.RoleAssistant, after.Messages[2].Role)
}

func TestRespondUnknownSession(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})

	_, ok := m.Respond(context.Background(), "sess_missing", "olá")
	assert.False(t, ok)
}

func TestRespondFallbackKeepsUserMessage(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{err: context.DeadlineExceeded})
	s := m.CreateSession("u1")

	res, ok := m.Respond(context.Background(), s.SessionID, "quero ajuda")
	assert.True(t, ok)
	assert.Equal(t, true, res.Metadata["fallback"])

	after, _ := m.GetSession(s.SessionID)
	assert.Len(t, after.Messages, 3)
	assert.Equal(t, "quero ajuda", after.Messages[1].Content)
}

func TestRespondExtractsAndPersistsLead(t *testing.T) {
	m, notifier := newTestManager(t, &scriptedCompletion{reply: "Prazer!"})
	s := m.CreateSession("u1")
	ctx := context.Background()

	_, ok := m.Respond(ctx, s.SessionID, "meu nome é ana souza")
	assert.True(t, ok)

	after, _ := m.GetSession(s.SessionID)
	assert.Equal(t, "Ana Souza", after.Profile["name"])
	assert.Empty(t, notifier.leads)

	_, ok = m.Respond(ctx, s.SessionID, "meu email é ana@exemplo.com")
	assert.True(t, ok)

	after, _ = m.GetSession(s.SessionID)
	assert.Equal(t, "ana@exemplo.com", after.Profile["email"])
	assert.Equal(t, domain.PhaseScheduling, after.Phase)

	// the first captured email persists the lead exactly once
	assert.Len(t, notifier.leads, 1)
	lead, err := m.store.GetLead(ctx, s.SessionID)
	assert.NoError(t, err)
	if assert.NotNil(t, lead) {
		assert.Equal(t, "Ana Souza", lead.Name)
		assert.Equal(t, "ana@exemplo.com", lead.Email)
		assert.Equal(t, domain.LeadStatusNew, lead.Status)
	}

	// further profile updates do not duplicate the capture
	m.UpdateProfile(ctx, s.SessionID, map[string]string{"company": "Acme"})
	assert.Len(t, notifier.leads, 1)

	// the phase never regresses once scheduling is reached
	_, ok = m.Respond(ctx, s.SessionID, "na verdade, me fala mais sobre os serviços")
	assert.True(t, ok)
	after, _ = m.GetSession(s.SessionID)
	assert.Equal(t, domain.PhaseScheduling, after.Phase)
}

func TestInactivityWarningFiresOnce(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})

	current := time.Now()
	m.now = func() time.Time { return current }

	s := m.CreateSession("u1")

	// before the warning threshold nothing fires
	current = current.Add(9 * time.Minute)
	_, warned := m.CheckInactivityWarning(s.SessionID)
	assert.False(t, warned)

	current = current.Add(2 * time.Minute)
	msg, warned := m.CheckInactivityWarning(s.SessionID)
	assert.True(t, warned)
	assert.Contains(t, msg, "mais 4 minutos")

	// fires only once per silence period
	_, warned = m.CheckInactivityWarning(s.SessionID)
	assert.False(t, warned)

	// a new message resets the marker
	assert.True(t, m.AddMessage(s.SessionID, domain.RoleUser, "voltei", nil))
	current = current.Add(11 * time.Minute)
	_, warned = m.CheckInactivityWarning(s.SessionID)
	assert.True(t, warned)
}

func TestSessionExpiry(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})

	current := time.Now()
	m.now = func() time.Time { return current }

	s := m.CreateSession("u1")

	current = current.Add(16 * time.Minute)
	_, ok := m.GetSession(s.SessionID)
	assert.False(t, ok)
	assert.False(t, m.AddMessage(s.SessionID, domain.RoleUser, "olá", nil))
	_, ok = m.EndSession(context.Background(), s.SessionID, "user_ended")
	assert.False(t, ok)

	assert.Equal(t, 1, m.CleanupExpiredSessions())
	assert.Equal(t, 0, m.CleanupExpiredSessions())
}

func TestCleanupKeepsFreshSessions(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})

	current := time.Now()
	m.now = func() time.Time { return current }

	stale := m.CreateSession("u1")
	current = current.Add(10 * time.Minute)
	fresh := m.CreateSession("u2")
	current = current.Add(6 * time.Minute)

	assert.Equal(t, 1, m.CleanupExpiredSessions())
	_, ok := m.GetSession(fresh.SessionID)
	assert.True(t, ok)
	_, ok = m.GetSession(stale.SessionID)
	assert.False(t, ok)
}

func TestEndSessionSummaryOnlyWithoutEmail(t *testing.T) {
	m, notifier := newTestManager(t, &scriptedCompletion{reply: "ok"})
	ctx := context.Background()
	s := m.CreateSession("u1")

	_, ok := m.Respond(ctx, s.SessionID, "quero mentoria")
	assert.True(t, ok)

	snap, ok := m.EndSession(ctx, s.SessionID, "user_ended")
	assert.True(t, ok)
	assert.False(t, snap.Active)

	// no email: summary-only record, no lead, no notification
	lead, err := m.store.GetLead(ctx, s.SessionID)
	assert.NoError(t, err)
	assert.Nil(t, lead)
	assert.Empty(t, notifier.leads)

	summary, err := m.store.GetConversationSummary(ctx, s.SessionID)
	assert.NoError(t, err)
	if assert.NotNil(t, summary) {
		assert.Contains(t, summary.Intents, "mentoring")
	}

	// transcript was flushed
	messages, err := m.store.GetConversationMessages(ctx, s.SessionID)
	assert.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestEndSessionIdempotent(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})
	ctx := context.Background()
	s := m.CreateSession("u1")

	_, ok := m.EndSession(ctx, s.SessionID, "user_ended")
	assert.True(t, ok)
	_, ok = m.EndSession(ctx, s.SessionID, "user_ended")
	assert.False(t, ok)
}

func TestEndSessionWithEmailSavesLead(t *testing.T) {
	m, notifier := newTestManager(t, &scriptedCompletion{reply: "ok"})
	ctx := context.Background()
	s := m.CreateSession("u1")

	assert.True(t, m.AddMessage(s.SessionID, domain.RoleUser, "nosso processo manual é um problema", nil))
	assert.True(t, m.UpdateProfile(ctx, s.SessionID, map[string]string{
		"name":      "Ana Souza",
		"email":     "ana@exemplo.com",
		"interests": "automação, bi",
	}))
	assert.Len(t, notifier.leads, 1)

	snap, ok := m.EndSession(ctx, s.SessionID, "user_ended")
	assert.True(t, ok)
	assert.Equal(t, domain.PhaseScheduling, snap.Phase)

	lead, err := m.store.GetLead(ctx, s.SessionID)
	assert.NoError(t, err)
	if assert.NotNil(t, lead) {
		assert.Equal(t, "ana@exemplo.com", lead.Email)
		assert.Equal(t, []string{"automação", "bi"}, lead.Interests)
		assert.NotEmpty(t, lead.PainPoints)
		assert.InDelta(t, 0.5, lead.QualificationScore, 1e-9)
	}
	assert.Len(t, notifier.leads, 2)
}

func TestConfiguredTimeoutsHonored(t *testing.T) {
	st := helpers.NewTestSQLiteStore(t)
	gateway := llm.NewGateway(&scriptedCompletion{reply: "ok"}, llm.DefaultGatewayConfig(), zap.NewNop())
	m := NewManager(st, &recordingNotifier{}, gateway, ManagerConfig{
		SessionTimeout: 30 * time.Minute,
		WarningTimeout: 20 * time.Minute,
	}, zap.NewNop())

	current := time.Now()
	m.now = func() time.Time { return current }

	s := m.CreateSession("u1")

	// past the default timeouts but inside the configured ones
	current = current.Add(16 * time.Minute)
	_, ok := m.GetSession(s.SessionID)
	assert.True(t, ok)
	_, warned := m.CheckInactivityWarning(s.SessionID)
	assert.False(t, warned)

	current = current.Add(5 * time.Minute)
	msg, warned := m.CheckInactivityWarning(s.SessionID)
	assert.True(t, warned)
	assert.Contains(t, msg, "mais 9 minutos")

	current = current.Add(10 * time.Minute)
	_, ok = m.GetSession(s.SessionID)
	assert.False(t, ok)
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	st := helpers.NewTestSQLiteStore(t)
	gateway := llm.NewGateway(&scriptedCompletion{reply: "ok"}, llm.DefaultGatewayConfig(), zap.NewNop())
	m := NewManager(st, &recordingNotifier{}, gateway, ManagerConfig{}, zap.NewNop())

	assert.Equal(t, defaultSessionTimeout, m.sessionTimeout)
	assert.Equal(t, defaultWarningTimeout, m.warningTimeout)
}

func TestStatsCounters(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})
	ctx := context.Background()

	s1 := m.CreateSession("u1")
	m.CreateSession("u2")
	_, ok := m.EndSession(ctx, s1.SessionID, "user_ended")
	assert.True(t, ok)

	stats := m.Stats()
	assert.Equal(t, 2, stats["total_sessions"])
	assert.Equal(t, 1, stats["active_sessions"])
	assert.Equal(t, 1, stats["expired_sessions"])

	llmStats, ok := stats["llm"].(map[string]any)
	if assert.True(t, ok) {
		assert.Equal(t, "gemini-2.5-flash", llmStats["model"])
	}
}

func TestConversationSummarySnapshot(t *testing.T) {
	m, _ := newTestManager(t, &scriptedCompletion{reply: "ok"})
	ctx := context.Background()
	s := m.CreateSession("u1")

	_, ok := m.Respond(ctx, s.SessionID, "olá, quero mentoria")
	assert.True(t, ok)

	summary, ok := m.ConversationSummary(s.SessionID)
	assert.True(t, ok)
	assert.Equal(t, 3, summary.TotalMessages)
	assert.Equal(t, 1, summary.UserMessages)
	assert.Equal(t, 2, summary.AssistantMessages)
	assert.Equal(t, []string{"greeting"}, summary.DetectedIntents)
}
