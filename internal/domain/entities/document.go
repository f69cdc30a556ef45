package entities

// Document is one retrievable corpus record: a known question paired with a
// vetted answer. Language is "en", "ms", or "" for records that apply to
// either language.
type Document struct {
	ID       string `json:"id"`
	Query    string `json:"query"`
	Text     string `json:"text"`
	Source   string `json:"source"`
	Language string `json:"language"`
}

// Chunk is one ingested fragment of an uploaded document.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// RetrievalResult is what retrieval hands to the answer layer.
type RetrievalResult struct {
	Text   string `json:"retrieved_context"`
	Source string `json:"source"`
	Found  bool   `json:"found"`
}
