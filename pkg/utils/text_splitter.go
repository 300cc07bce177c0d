package utils

// SplitText cuts text into chunks of at most chunkSize runes, each chunk
// overlapping the previous one by overlap runes so context survives the
// boundary. Character-based, not token-aware; good enough for sizing LLM
// prompts.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		// An overlap at or above the chunk size would never advance.
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == totalLen {
			break
		}
	}
	return chunks
}
