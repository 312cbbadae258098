package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// Config carries the delivery channels. Every channel is optional; an empty
// value disables it.
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	TeamEmail    string

	SlackWebhookURL   string
	DiscordWebhookURL string
}

// Service sends team notifications over SMTP and Slack/Discord webhooks.
type Service struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewService creates a notification service.
func NewService(cfg Config, logger *zap.Logger) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// NotifyNewLead announces a captured lead on every configured channel and
// reports whether at least one delivered.
func (s *Service) NotifyNewLead(lead *domain.Lead) bool {
	name := orDefault(lead.Name, "Sem nome")
	email := orDefault(lead.Email, "Sem email")
	company := orDefault(lead.Company, "Sem empresa")
	role := orDefault(lead.Role, "Sem cargo")

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 NOVO LEAD CAPTURADO!\n\n")
	fmt.Fprintf(&b, "👤 Nome: %s\n📧 Email: %s\n🏢 Empresa: %s\n💼 Cargo: %s\n", name, email, company, role)
	fmt.Fprintf(&b, "⭐ Score de Qualificação: %.0f%%\n\n", lead.QualificationScore*100)
	fmt.Fprintf(&b, "📊 Resumo da Conversa:\n%s\n", orDefault(lead.ConversationSummary, "Não disponível"))
	if len(lead.PainPoints) > 0 {
		fmt.Fprintf(&b, "\n🎯 Pontos de Dor Identificados:\n%s\n", bulletList(lead.PainPoints))
	}
	if len(lead.RecommendedSolutions) > 0 {
		fmt.Fprintf(&b, "\n💡 Soluções Recomendadas:\n%s\n", bulletList(lead.RecommendedSolutions))
	}
	body := b.String()

	emailSent := s.sendEmail(fmt.Sprintf("Novo Lead Qualificado: %s", name), body)
	slackSent := s.sendSlack(body)
	discordSent := s.sendDiscord(body)

	return emailSent || slackSent || discordSent
}

// NotifyStatusChange announces a lead status transition by email.
func (s *Service) NotifyStatusChange(lead *domain.Lead, newStatus string) bool {
	name := orDefault(lead.Name, "Sem nome")
	body := fmt.Sprintf("🔄 STATUS DO LEAD ATUALIZADO\n\n👤 Nome: %s\n📧 Email: %s\n🆕 Novo Status: %s\n",
		name, orDefault(lead.Email, "Sem email"), newStatus)
	return s.sendEmail(fmt.Sprintf("Lead Atualizado: %s - %s", name, newStatus), body)
}

func (s *Service) sendEmail(subject, body string) bool {
	if s.cfg.SMTPUsername == "" || s.cfg.SMTPPassword == "" {
		return false
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: 🎯 /-HALL-DEV: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.cfg.SMTPUsername, s.cfg.TeamEmail, subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.SMTPUsername, []string{s.cfg.TeamEmail}, []byte(msg)); err != nil {
		s.logger.Warn("failed to send email notification", zap.String("subject", subject), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) sendSlack(message string) bool {
	if s.cfg.SlackWebhookURL == "" {
		return false
	}

	payload := map[string]any{
		"attachments": []map[string]any{{
			"color":  "good",
			"title":  "🎯 /-HALL-DEV - Novo Lead",
			"text":   message,
			"footer": "/-HALL-DEV Bot",
			"ts":     time.Now().Unix(),
		}},
	}
	return s.postWebhook(s.cfg.SlackWebhookURL, payload, "slack")
}

func (s *Service) sendDiscord(message string) bool {
	if s.cfg.DiscordWebhookURL == "" {
		return false
	}

	payload := map[string]any{
		"embeds": []map[string]any{{
			"title":       "🎯 /-HALL-DEV - Novo Lead",
			"description": message,
			"color":       0x00FF00,
			"footer":      map[string]any{"text": "/-HALL-DEV Bot"},
			"timestamp":   time.Now().Format(time.RFC3339),
		}},
	}
	return s.postWebhook(s.cfg.DiscordWebhookURL, payload, "discord")
}

func (s *Service) postWebhook(url string, payload any, channel string) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal webhook payload", zap.String("channel", channel), zap.Error(err))
		return false
	}

	resp, err := s.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("failed to post webhook", zap.String("channel", channel), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "• %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}
