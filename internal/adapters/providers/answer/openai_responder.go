package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
	"github.com/banjirlab/relief-assistant/pkg/config"
)

// OpenAIResponder rephrases the retrieved context with a chat model, grounded
// by a system prompt that forbids answering outside the context. Any API
// failure degrades to the template answer, never to an error the caller sees.
type OpenAIResponder struct {
	client   *openai.Client
	model    string
	fallback *TemplateResponder
}

var _ providers.AnswerProvider = (*OpenAIResponder)(nil)

// NewOpenAIResponder creates the OpenAI answer provider.
func NewOpenAIResponder(cfg *config.OpenAIConfig) (*OpenAIResponder, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIResponder{
		client:   openai.NewClient(cfg.APIKey),
		model:    model,
		fallback: NewTemplateResponder(),
	}, nil
}

// Answer generates an answer from the retrieved context.
func (r *OpenAIResponder) Answer(ctx context.Context, q providers.AnswerQuery) (string, error) {
	if !q.Found {
		return services.AnswerNotFoundPhrase(q.Language), nil
	}

	tpl := promptFor(services.NormalizeLanguage(q.Language))
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: tpl.System},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(tpl.User, q.Context, q.Query)},
		},
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		log.Printf("Warning: OpenAI answer generation failed, using template answer: %v", err)
		return r.fallback.Answer(ctx, q)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		log.Printf("Warning: OpenAI returned an empty answer, using template answer")
		return r.fallback.Answer(ctx, q)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if q.Source != "" && !strings.Contains(answer, q.Source) {
		answer = fmt.Sprintf("%s (Source: %s)", answer, q.Source)
	}
	return answer, nil
}
