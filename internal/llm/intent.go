package llm

import "strings"

// intentRule pairs an intent label with the keywords that trigger it.
type intentRule struct {
	Intent   string
	Keywords []string
}

// intentTable is evaluated top to bottom; the first rule with a matching
// keyword wins, so the order here is part of the contract.
var intentTable = []intentRule{
	{"greeting", []string{"olá", "oi", "bom dia", "boa tarde", "boa noite"}},
	{"mentoring", []string{"mentoria", "mentor"}},
	{"learning", []string{"aprender", "estudar", "curso", "treinamento", "formação"}},
	{"programming", []string{"programar", "programação", "código", "desenvolver", "coding"}},
	{"self_learning", []string{"sozinho", "autodidata", "independente", "por conta própria"}},
	{"help_request", []string{"ajudar", "ajuda", "suporte", "assistência"}},
	{"problem_description", []string{"problema", "dificuldade", "dor", "preciso", "quero"}},
	{"service_inquiry", []string{"serviço", "solução", "desenvolvimento", "software"}},
	{"contact_info", []string{"contato", "email", "telefone", "whatsapp"}},
	{"pricing", []string{"preço", "valor", "custo", "orçamento"}},
	{"technical", []string{"tecnologia", "programação", "código", "sistema"}},
}

// DetectIntent returns the first intent whose keyword list matches the
// lower-cased message, or "" when nothing matches.
func DetectIntent(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range intentTable {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Intent
			}
		}
	}
	return ""
}
