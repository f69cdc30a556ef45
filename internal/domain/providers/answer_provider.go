package providers

import "context"

// AnswerQuery is the input to answer generation: the user's question plus
// whatever retrieval found for it.
type AnswerQuery struct {
	Query    string
	Context  string
	Source   string
	Language string
	Found    bool
}

// AnswerProvider turns a retrieval result into the answer text shown to the
// user. Implementations must not fail on unknown language codes; they fall
// back to English phrasing.
type AnswerProvider interface {
	Answer(ctx context.Context, q AnswerQuery) (string, error)
}
