package embedding

// EmbeddingProvider generates a vector embedding for a piece of text. The
// taskType hint ("RETRIEVAL_QUERY" vs "RETRIEVAL_DOCUMENT") is honored by
// providers that distinguish them and ignored by the rest.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
