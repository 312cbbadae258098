package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

func testLead() *domain.Lead {
	return &domain.Lead{
		SessionID:            "sess_1",
		Name:                 "Ana Souza",
		Email:                "ana@exemplo.com",
		QualificationScore:   0.7,
		PainPoints:           []string{"processo manual"},
		RecommendedSolutions: []string{"Solução com automação"},
	}
}

func TestNotifyNewLeadSlack(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewService(Config{SlackWebhookURL: srv.URL}, zap.NewNop())
	assert.True(t, s.NotifyNewLead(testLead()))

	attachments, ok := payload["attachments"].([]any)
	if assert.True(t, ok) && assert.Len(t, attachments, 1) {
		text := attachments[0].(map[string]any)["text"].(string)
		assert.Contains(t, text, "Ana Souza")
		assert.Contains(t, text, "70%")
		assert.Contains(t, text, "processo manual")
	}
}

func TestNotifyNewLeadDiscord(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewService(Config{DiscordWebhookURL: srv.URL}, zap.NewNop())
	assert.True(t, s.NotifyNewLead(testLead()))

	embeds, ok := payload["embeds"].([]any)
	if assert.True(t, ok) && assert.Len(t, embeds, 1) {
		description := embeds[0].(map[string]any)["description"].(string)
		assert.Contains(t, description, "ana@exemplo.com")
	}
}

func TestNotifyNewLeadWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(Config{SlackWebhookURL: srv.URL}, zap.NewNop())
	assert.False(t, s.NotifyNewLead(testLead()))
}

func TestNotifyNewLeadNoChannelsConfigured(t *testing.T) {
	s := NewService(Config{}, zap.NewNop())
	assert.False(t, s.NotifyNewLead(testLead()))
}

func TestNotifyNewLeadMissingFieldsUseDefaults(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
	}))
	defer srv.Close()

	s := NewService(Config{SlackWebhookURL: srv.URL}, zap.NewNop())
	assert.True(t, s.NotifyNewLead(&domain.Lead{SessionID: "sess_1"}))

	attachments := payload["attachments"].([]any)
	text := attachments[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "Sem nome")
	assert.Contains(t, text, "Sem email")
}
