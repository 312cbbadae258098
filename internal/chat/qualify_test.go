package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
	"github.com/Italo-Ba-Hall/SITE/internal/llm"
)

func sessionWith(profile map[string]string, duration time.Duration, messages ...domain.ChatMessage) *domain.ChatSession {
	created := time.Now().Add(-duration)
	return &domain.ChatSession{
		SessionID: "s1",
		Messages:  messages,
		Profile:   profile,
		Phase:     domain.PhaseDiscovery,
		CreatedAt: created,
		UpdatedAt: created.Add(duration),
		Active:    true,
	}
}

func userMsg(content string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleUser, Content: content}
}

func assistantMsg(content string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: content}
}

func TestQualificationScoreWeights(t *testing.T) {
	s := sessionWith(map[string]string{"email": "a@b.com"}, time.Minute, userMsg("oi"))
	assert.InDelta(t, 0.3, QualificationScore(s), 1e-9)

	s = sessionWith(map[string]string{"name": "Ana", "email": "a@b.com"}, time.Minute, userMsg("oi"))
	assert.InDelta(t, 0.5, QualificationScore(s), 1e-9)

	s = sessionWith(map[string]string{
		"name": "Ana", "email": "a@b.com", "company": "Acme", "role": "CTO",
	}, 6*time.Minute, userMsg("oi"))
	assert.InDelta(t, 0.9, QualificationScore(s), 1e-9)
}

func TestQualificationScoreCapped(t *testing.T) {
	s := sessionWith(map[string]string{
		"name": "Ana", "email": "a@b.com", "company": "Acme", "role": "CTO",
	}, 11*time.Minute,
		userMsg("m1"), userMsg("m2"), userMsg("m3"), userMsg("m4"))

	// 0.2+0.3+0.2+0.1+0.1+0.1+0.1 exceeds the ceiling
	assert.InDelta(t, 1.0, QualificationScore(s), 1e-9)
}

func TestDetectPainPointsWindowAndDedup(t *testing.T) {
	s := sessionWith(nil, time.Minute,
		userMsg("nosso maior problema é o processo manual de faturamento"),
		userMsg("nosso maior problema é o processo manual de faturamento"),
		assistantMsg("entendi o problema"))

	points := DetectPainPoints(s)
	assert.NotEmpty(t, points)
	// repeated messages dedup to one snippet per keyword context
	seen := map[string]bool{}
	for _, p := range points {
		assert.False(t, seen[p], "duplicate pain point %q", p)
		seen[p] = true
	}
	// assistant messages never contribute
	for _, p := range points {
		assert.NotContains(t, p, "entendi")
	}
}

func TestDetectPainPointsCap(t *testing.T) {
	s := sessionWith(nil, time.Minute,
		userMsg("problema um"),
		userMsg("dificuldade dois"),
		userMsg("processo lento demais"),
		userMsg("custo alto com erro frequente"),
		userMsg("sistema caro e manual"),
		userMsg("falha repetitiva na tecnologia"))

	points := DetectPainPoints(s)
	assert.LessOrEqual(t, len(points), 5)
	assert.Len(t, points, 5)
}

func TestDetectRecommendedSolutions(t *testing.T) {
	s := sessionWith(nil, time.Minute,
		userMsg("quero melhorar isso"),
		assistantMsg("Recomendo automação com dashboard"))

	solutions := DetectRecommendedSolutions(s)
	assert.Contains(t, solutions, "Solução com automação")
	assert.Contains(t, solutions, "Solução com dashboard")
}

func TestDetectRecommendedSolutionsCap(t *testing.T) {
	s := sessionWith(nil, time.Minute,
		assistantMsg("automação software plataforma dashboard"))

	assert.Len(t, DetectRecommendedSolutions(s), 3)
}

func TestSummarizeConversation(t *testing.T) {
	s := sessionWith(nil, time.Minute,
		assistantMsg("bem-vindo"),
		userMsg("olá"),
		assistantMsg("como posso ajudar?"),
		userMsg("quero automatizar relatórios"))

	summary := SummarizeConversation(s)
	assert.Contains(t, summary, "Conversa com 2 mensagens do usuário e 2 respostas do assistente.")
	assert.Contains(t, summary, "Contexto inicial: olá quero automatizar relatórios...")
}

func TestDetectedIntentsDedupFirstSeen(t *testing.T) {
	s := sessionWith(nil, time.Minute,
		userMsg("olá"),
		userMsg("quero mentoria"),
		userMsg("oi de novo"),
		assistantMsg("mentoria é conosco"))

	intents := detectedIntents(s, llm.DetectIntent)
	assert.Equal(t, []string{"greeting", "mentoring"}, intents)
}
