package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// Canned replies for the degraded paths. The user always gets some assistant
// message; degraded turns differ only in content and confidence.
const (
	emptyInputReply = "Por favor, digite uma mensagem para que eu possa te ajudar."
	rateLimitReply  = "Desculpe, estamos com muitas solicitações no momento. Tente novamente em alguns instantes."
	fallbackReply   = "Desculpe, estou com dificuldades técnicas no momento. Pode tentar novamente em alguns instantes?"
)

// CompletionService is the external model dependency. It must be assumed
// fallible: timeouts, quota errors, and malformed responses all surface as a
// plain error here and are absorbed by the gateway.
type CompletionService interface {
	Generate(ctx context.Context, systemInstruction string, history []domain.ChatMessage, message string, maxTokens int, temperature float32) (text string, tokens int, err error)
}

// GatewayConfig carries the tunables for a Gateway.
type GatewayConfig struct {
	Model                string
	MaxTokens            int
	Temperature          float32
	MaxRequestsPerMinute int
	CacheSize            int
	CacheTTL             time.Duration
}

// DefaultGatewayConfig returns the production defaults.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Model:                "gemini-2.5-flash",
		MaxTokens:            1500,
		Temperature:          0.25,
		MaxRequestsPerMinute: 60,
		CacheSize:            500,
		CacheTTL:             12 * time.Hour,
	}
}

// Gateway wraps the single external completion call: it bounds the prompt
// window, consults the response cache, applies rate limiting, and normalizes
// every failure into a canned result. Complete never returns an error.
type Gateway struct {
	svc    CompletionService
	cache  *ResponseCache
	logger *zap.Logger

	model        string
	maxTokens    int
	temperature  float32
	maxPerMinute int

	mu           sync.Mutex
	windowStart  time.Time
	requestCount int
	now          func() time.Time
}

// NewGateway creates a gateway around the given completion service.
func NewGateway(svc CompletionService, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	return &Gateway{
		svc:          svc,
		cache:        NewResponseCache(cfg.CacheSize, cfg.CacheTTL),
		logger:       logger,
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		maxPerMinute: cfg.MaxRequestsPerMinute,
		now:          time.Now,
	}
}

// Cache exposes the response cache for the janitor's AutoCompact sweep.
func (g *Gateway) Cache() *ResponseCache {
	return g.cache
}

// Complete runs one completion turn over a session snapshot. session.Messages
// is the context prior to userText; the new message is passed separately so
// the cache fingerprint stays (context, message) shaped.
func (g *Gateway) Complete(ctx context.Context, session *domain.ChatSession, userText string) *domain.CompletionResult {
	sessionID := session.SessionID

	if strings.TrimSpace(userText) == "" {
		return g.canned(emptyInputReply, sessionID, map[string]any{"error": "empty_message"})
	}

	if !g.checkRateLimit() {
		return g.canned(rateLimitReply, sessionID, map[string]any{"error": "rate_limit_exceeded"})
	}

	// Bounded context: persona slot at the head, then the session history.
	window := make([]domain.ChatMessage, 0, len(session.Messages)+1)
	window = append(window, domain.ChatMessage{Role: domain.RoleSystem, Content: defaultPersona})
	window = append(window, session.Messages...)
	window = TrimContext(window)

	prior := make([]string, len(window))
	for i, m := range window {
		prior[i] = m.Content
	}
	key := Fingerprint(prior, userText)

	if cached, ok := g.cache.Get(key); ok {
		res := cached.Copy()
		res.SessionID = sessionID
		if res.Metadata == nil {
			res.Metadata = make(map[string]any)
		}
		res.Metadata["cached"] = true
		res.Metadata["cache_hit"] = true
		return res
	}

	intent := DetectIntent(userText)
	system := PersonaPrompt(intent)
	if policy := ComposePolicy(session.Phase, session.Profile, session.Messages, userText); policy != "" {
		system += "\n\nPOLÍTICA ATUAL (OBRIGATÓRIA): " + policy
	}

	text, tokens, err := g.svc.Generate(ctx, system, window[1:], userText, g.maxTokens, g.temperature)
	if err != nil {
		g.logger.Warn("completion call failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return g.canned(fallbackReply, sessionID, map[string]any{
			"error":    err.Error(),
			"fallback": true,
		})
	}

	res := &domain.CompletionResult{
		Message:          text,
		SessionID:        sessionID,
		ExtractedProfile: ExtractProfile(userText),
		DetectedIntent:   intent,
		Confidence:       0.8,
		Metadata: map[string]any{
			"model":       g.model,
			"tokens_used": tokens,
			"timestamp":   g.now().Format(time.RFC3339),
			"cached":      false,
			"cache_hit":   false,
		},
	}
	g.cache.Put(key, res)
	return res
}

// checkRateLimit enforces the sliding one-minute window: the counter resets
// once the window elapses and the call at the ceiling is denied without
// incrementing.
func (g *Gateway) checkRateLimit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.windowStart) > time.Minute {
		g.requestCount = 0
		g.windowStart = now
	}
	if g.requestCount >= g.maxPerMinute {
		return false
	}
	g.requestCount++
	return true
}

// Stats reports gateway and cache counters.
func (g *Gateway) Stats() map[string]any {
	g.mu.Lock()
	count := g.requestCount
	g.mu.Unlock()
	return map[string]any{
		"model":                   g.model,
		"max_tokens":              g.maxTokens,
		"temperature":             g.temperature,
		"request_count":           count,
		"max_requests_per_minute": g.maxPerMinute,
		"cache_stats":             g.cache.Stats(),
	}
}

func (g *Gateway) canned(message, sessionID string, metadata map[string]any) *domain.CompletionResult {
	return &domain.CompletionResult{
		Message:    message,
		SessionID:  sessionID,
		Confidence: 0,
		Metadata:   metadata,
	}
}
