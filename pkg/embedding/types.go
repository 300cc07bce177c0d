package embedding

type EmbeddingRequestContentPart struct {
	Text string `json:"text"`
}

type EmbeddingRequestContent struct {
	Parts []EmbeddingRequestContentPart `json:"parts"`
}

type EmbeddingRequest struct {
	Model    string                  `json:"model"`
	Content  EmbeddingRequestContent `json:"content"`
	TaskType string                  `json:"task_type,omitempty"`
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// FitToDimension adapts a vector to the index dimension. Models emitting
// shorter vectors (e.g. 768) are zero padded up to collections built at a
// larger size (e.g. 1536); longer vectors are truncated.
func FitToDimension(values []float32, dimension int) []float32 {
	if dimension <= 0 || len(values) == dimension {
		return values
	}
	if len(values) > dimension {
		return values[:dimension]
	}
	fitted := make([]float32, dimension)
	copy(fitted, values)
	return fitted
}
