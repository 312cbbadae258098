package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// GeminiService implements CompletionService against the Google Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini-backed completion service.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{client: client, model: model}, nil
}

// Generate sends the bounded history plus the new message to Gemini with the
// composed persona+policy as system instruction.
func (s *GeminiService) Generate(ctx context.Context, systemInstruction string, history []domain.ChatMessage, message string, maxTokens int, temperature float32) (string, int, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleModel)
		if m.Role == domain.RoleUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
		Temperature:       genai.Ptr(temperature),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return "", 0, fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", 0, fmt.Errorf("gemini returned an empty response")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return text, tokens, nil
}
