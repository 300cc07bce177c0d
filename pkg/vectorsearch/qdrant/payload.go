package qdrant

import (
	"encoding/json"
	"strings"
)

// ContentFromPayload pulls the passage text out of a point payload.
// Collections indexed by different tooling store text under different keys
// (content, page_content, or a JSON-encoded _node_content envelope), so the
// known shapes are tried in order and JSON envelopes are unwrapped.
func ContentFromPayload(payload map[string]interface{}) string {
	content, ok := firstString(payload, "content", "page_content", "_node_content")
	if !ok {
		return ""
	}
	return unwrapJSONContent(content)
}

// unwrapJSONContent resolves JSON-encoded node envelopes to their text
// field. Anything that is not a JSON object (or fails to parse) is returned
// unchanged.
func unwrapJSONContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return content
	}

	var node map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &node); err != nil {
		return content
	}

	for _, key := range []string{"text", "content", "body", "description"} {
		if s, ok := node[key].(string); ok && s != "" {
			return s
		}
	}
	return content
}
