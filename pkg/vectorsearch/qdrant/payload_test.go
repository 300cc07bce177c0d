package qdrant

import "testing"

func TestContentFromPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    string
	}{
		{
			name:    "plain content key",
			payload: map[string]interface{}{"content": "section 80c deduction limits"},
			want:    "section 80c deduction limits",
		},
		{
			name:    "page_content key",
			payload: map[string]interface{}{"page_content": "gst registration thresholds"},
			want:    "gst registration thresholds",
		},
		{
			name: "content preferred over page_content",
			payload: map[string]interface{}{
				"content":      "primary",
				"page_content": "secondary",
			},
			want: "primary",
		},
		{
			name:    "json node envelope with text",
			payload: map[string]interface{}{"_node_content": `{"text":"tds rates for contractors","id":"n1"}`},
			want:    "tds rates for contractors",
		},
		{
			name:    "json envelope falls through text content body description",
			payload: map[string]interface{}{"content": `{"body":"companies act filing rules"}`},
			want:    "companies act filing rules",
		},
		{
			name:    "invalid json kept verbatim",
			payload: map[string]interface{}{"content": `{not json at all`},
			want:    `{not json at all`,
		},
		{
			name:    "empty payload",
			payload: map[string]interface{}{},
			want:    "",
		},
		{
			name:    "non-string content ignored",
			payload: map[string]interface{}{"content": 42},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentFromPayload(tt.payload); got != tt.want {
				t.Errorf("ContentFromPayload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourceFromPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    string
	}{
		{
			name:    "source key wins",
			payload: map[string]interface{}{"source": "icai.org", "file_path": "/tmp/x"},
			want:    "icai.org",
		},
		{
			name:    "file_path fallback",
			payload: map[string]interface{}{"file_path": "/docs/circular.pdf"},
			want:    "/docs/circular.pdf",
		},
		{
			name:    "file_name fallback",
			payload: map[string]interface{}{"file_name": "circular.pdf"},
			want:    "circular.pdf",
		},
		{
			name:    "unknown when nothing set",
			payload: map[string]interface{}{},
			want:    "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceFromPayload(tt.payload); got != tt.want {
				t.Errorf("sourceFromPayload() = %q, want %q", got, tt.want)
			}
		})
	}
}
