package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{name: "short text stays whole", text: "hello", chunkSize: 10, overlap: 2, wantChunks: 1},
		{name: "splits with overlap", text: strings.Repeat("a", 25), chunkSize: 10, overlap: 5, wantChunks: 4},
		{name: "overlap at chunk size falls back to full step", text: strings.Repeat("b", 25), chunkSize: 10, overlap: 10, wantChunks: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("expected %d chunks, got %d", tt.wantChunks, len(chunks))
			}
			for i, chunk := range chunks {
				if len([]rune(chunk)) > tt.chunkSize {
					t.Errorf("chunk %d exceeds size: %d", i, len(chunk))
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "shorter stays", text: "abc", max: 5, want: "abc"},
		{name: "exact stays", text: "abcde", max: 5, want: "abcde"},
		{name: "cut gets ellipsis", text: "abcdef", max: 5, want: "abcde..."},
		{name: "zero max empties", text: "abc", max: 0, want: ""},
		{name: "rune safe", text: "तनख्वाह", max: 3, want: "तनख..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}
