package answer

import (
	"context"
	"fmt"

	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

// TemplateResponder answers from the retrieved context alone. The corpus
// stores curated answers, so the retrieved text is the answer; the responder
// just attaches the source. This is the default answer path and the fallback
// when no language model is configured.
type TemplateResponder struct{}

var _ providers.AnswerProvider = (*TemplateResponder)(nil)

// NewTemplateResponder creates the template answer provider.
func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

// Answer renders the retrieved context with its source, or the localized
// not-found message when retrieval came up empty.
func (r *TemplateResponder) Answer(ctx context.Context, q providers.AnswerQuery) (string, error) {
	if !q.Found {
		return services.AnswerNotFoundPhrase(q.Language), nil
	}
	return fmt.Sprintf("%s (Source: %s)", q.Context, q.Source), nil
}
