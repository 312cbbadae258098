package chat

import (
	"fmt"
	"strings"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// Qualification heuristics: pure functions over a point-in-time session
// snapshot. Keyword misses silently yield empty results; that is the expected
// steady state, not an error.

const (
	maxPainPoints = 5
	maxSolutions  = 3
)

// painKeywords flag pain points in user messages.
var painKeywords = []string{
	"problema", "dificuldade", "dor", "desafio", "lento", "caro",
	"ineficiente", "manual", "repetitivo", "erro", "falha", "tempo",
	"custo", "processo", "sistema", "tecnologia",
}

// solutionKeywords flag recommended solutions in assistant messages.
var solutionKeywords = []string{
	"automação", "software", "sistema", "plataforma", "dashboard", "bi",
	"business intelligence", "machine learning", "ia", "inteligência artificial",
	"rpa", "processo", "otimização", "integração", "api",
}

// SummarizeConversation produces the textual summary stored with the lead.
func SummarizeConversation(s *domain.ChatSession) string {
	var userMessages []string
	assistantCount := 0
	for _, m := range s.Messages {
		switch m.Role {
		case domain.RoleUser:
			userMessages = append(userMessages, m.Content)
		case domain.RoleAssistant:
			assistantCount++
		}
	}

	summary := fmt.Sprintf("Conversa com %d mensagens do usuário e %d respostas do assistente.",
		len(userMessages), assistantCount)

	if len(userMessages) > 0 {
		context := userMessages
		if len(context) > 3 {
			context = context[:3]
		}
		summary += fmt.Sprintf(" Contexto inicial: %s...", strings.Join(context, " "))
	}

	return summary
}

// DetectPainPoints extracts up to maxPainPoints deduplicated pain-point
// snippets from user messages: for each matched keyword a small window of
// surrounding words is kept as context.
func DetectPainPoints(s *domain.ChatSession) []string {
	var points []string
	seen := make(map[string]bool)

	for _, m := range s.Messages {
		if m.Role != domain.RoleUser {
			continue
		}
		lower := strings.ToLower(m.Content)
		words := strings.Fields(m.Content)

		for _, keyword := range painKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			for i, word := range words {
				if !strings.Contains(strings.ToLower(word), keyword) {
					continue
				}
				start := i - 3
				if start < 0 {
					start = 0
				}
				end := i + 4
				if end > len(words) {
					end = len(words)
				}
				context := strings.Join(words[start:end], " ")
				if !seen[context] {
					seen[context] = true
					points = append(points, context)
				}
				break
			}
		}
	}

	if len(points) > maxPainPoints {
		points = points[:maxPainPoints]
	}
	return points
}

// DetectRecommendedSolutions extracts up to maxSolutions deduplicated solution
// labels from assistant messages.
func DetectRecommendedSolutions(s *domain.ChatSession) []string {
	var solutions []string
	seen := make(map[string]bool)

	for _, m := range s.Messages {
		if m.Role != domain.RoleAssistant {
			continue
		}
		lower := strings.ToLower(m.Content)
		for _, keyword := range solutionKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			label := "Solução com " + keyword
			if !seen[label] {
				seen[label] = true
				solutions = append(solutions, label)
			}
		}
	}

	if len(solutions) > maxSolutions {
		solutions = solutions[:maxSolutions]
	}
	return solutions
}

// QualificationScore computes the lead score from collected profile fields,
// conversation duration and engagement, capped at 1.0. The weights are
// empirical constants carried over unchanged.
func QualificationScore(s *domain.ChatSession) float64 {
	score := 0.0

	if s.ProfileValue("name") != "" {
		score += 0.2
	}
	if s.ProfileValue("email") != "" {
		score += 0.3
	}
	if s.ProfileValue("company") != "" {
		score += 0.2
	}
	if s.ProfileValue("role") != "" {
		score += 0.1
	}

	durationMinutes := s.UpdatedAt.Sub(s.CreatedAt).Minutes()
	if durationMinutes > 5 {
		score += 0.1
	}
	if durationMinutes > 10 {
		score += 0.1
	}

	if s.UserMessageCount() > 3 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// detectedIntents returns the deduplicated intents across user messages, in
// first-seen order.
func detectedIntents(s *domain.ChatSession, detect func(string) string) []string {
	var intents []string
	seen := make(map[string]bool)
	for _, m := range s.Messages {
		if m.Role != domain.RoleUser {
			continue
		}
		if intent := detect(m.Content); intent != "" && !seen[intent] {
			seen[intent] = true
			intents = append(intents, intent)
		}
	}
	return intents
}
