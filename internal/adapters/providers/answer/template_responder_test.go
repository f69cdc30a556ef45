package answer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

func TestTemplateResponder_AnswerWithContext(t *testing.T) {
	r := NewTemplateResponder()

	got, err := r.Answer(context.Background(), providers.AnswerQuery{
		Query:    "What should I pack?",
		Context:  "Pack documents, water, and medicine.",
		Source:   "english_prompt.parquet",
		Language: "en",
		Found:    true,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Pack documents, water, and medicine. (Source: english_prompt.parquet)", got)
}

func TestTemplateResponder_NotFoundEnglish(t *testing.T) {
	r := NewTemplateResponder()

	got, err := r.Answer(context.Background(), providers.AnswerQuery{Query: "anything", Language: "en"})

	assert.NoError(t, err)
	assert.Equal(t, "I could not find relevant information for your query in the provided documents. (Source: N/A)", got)
}

func TestTemplateResponder_NotFoundMalay(t *testing.T) {
	r := NewTemplateResponder()

	got, err := r.Answer(context.Background(), providers.AnswerQuery{Query: "apa-apa", Language: "ms"})

	assert.NoError(t, err)
	assert.Equal(t, "Saya tidak dapat mencari maklumat yang berkaitan dengan soalan anda dalam dokumen yang disediakan. (Sumber: N/A)", got)
}

func TestTemplateResponder_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	r := NewTemplateResponder()

	got, err := r.Answer(context.Background(), providers.AnswerQuery{Query: "anything", Language: "fr"})

	assert.NoError(t, err)
	assert.Contains(t, got, "I could not find relevant information")
}

func TestPromptFor(t *testing.T) {
	assert.Contains(t, promptFor("ms").System, "Pembantu Mitigasi Banjir")
	assert.Contains(t, promptFor("en").User, "USER QUESTION")
	assert.Equal(t, promptFor("en"), promptFor("de"))
}
