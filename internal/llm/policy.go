package llm

import (
	"strings"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// contextWindow bounds the prompt: histories longer than contextLimit keep the
// first element plus the most recent contextKeep turns. A fixed sliding
// window, not a summarizing compaction.
const (
	contextLimit = 10
	contextKeep  = 8
)

// uncertaintyPhrases flag a user who needs guidance; the policy then shortens
// questions and moves straight to capturing name and email.
var uncertaintyPhrases = []string{
	"não sei",
	"nao sei",
	"preciso de orienta",
	"não entendo",
	"nao entendo",
}

// ComposePolicy derives the imperative policy directive layered on top of the
// persona prompt. The triggering conditions are mutually exclusive where they
// would contradict (profile complete vs incomplete), so the joined directives
// never conflict. prior is the conversation context excluding the new message.
func ComposePolicy(phase domain.Phase, profile map[string]string, prior []domain.ChatMessage, userText string) string {
	var parts []string

	lower := strings.ToLower(userText)
	uncertain := false
	for _, p := range uncertaintyPhrases {
		if strings.Contains(lower, p) {
			uncertain = true
			break
		}
	}

	hasName := profile["name"] != ""
	hasEmail := profile["email"] != ""

	userCount := 0
	for _, m := range prior {
		if m.Role == domain.RoleUser {
			userCount++
		}
	}

	if userCount >= 1 && (!hasName || !hasEmail) {
		if uncertain {
			parts = append(parts, "Usuário incerto: reduza perguntas. Peça NOME e EMAIL agora em UMA frase curta, então conduza para agendamento.")
		} else {
			parts = append(parts, "Se NOME/EMAIL faltarem, peça ambos AGORA em UMA frase curta. No máximo 1 pergunta adicional.")
		}
	}

	if hasName && hasEmail {
		parts = append(parts, "Proponha AGENDAMENTO imediatamente e ofereça escolha: 'explicações técnicas rápidas' OU 'agendar agora'.")
	}

	if phase == domain.PhaseLeadCapture && (!hasName || !hasEmail) {
		parts = append(parts, "Estamos em LEAD_CAPTURE: priorize coletar NOME e EMAIL nesta resposta.")
	}
	if phase == domain.PhaseScheduling && hasName && hasEmail {
		parts = append(parts, "Estamos em SCHEDULING: foque em confirmar data/horário de reunião.")
	}

	parts = append(parts, "No máximo 2 perguntas na resposta.")

	return strings.TrimSpace(strings.Join(parts, " "))
}

// TrimContext bounds the conversation context sent upstream. Short histories
// pass through untouched; longer ones keep the head element (the persona slot)
// plus the last contextKeep messages.
func TrimContext(msgs []domain.ChatMessage) []domain.ChatMessage {
	if len(msgs) <= contextLimit {
		return msgs
	}
	out := make([]domain.ChatMessage, 0, 1+contextKeep)
	out = append(out, msgs[0])
	out = append(out, msgs[len(msgs)-contextKeep:]...)
	return out
}
