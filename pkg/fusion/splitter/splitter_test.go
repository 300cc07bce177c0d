package splitter

import (
	"strings"
	"testing"
)

func TestSections(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantSections int
	}{
		{
			name:         "empty input",
			content:      "",
			wantSections: 0,
		},
		{
			name:         "whitespace only",
			content:      "  \n\n  ",
			wantSections: 0,
		},
		{
			name:         "two paragraphs",
			content:      "the first paragraph has enough words\n\nthe second paragraph also has enough words",
			wantSections: 2,
		},
		{
			name:         "short sections dropped",
			content:      "tiny bit\n\nthis one has more than five words in it",
			wantSections: 1,
		},
		{
			name:         "single paragraph groups lines",
			content:      "line one of the text\nline two of the text\nline three of the text\nline four of the text",
			wantSections: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sections(tt.content)
			if len(got) != tt.wantSections {
				t.Errorf("Sections() = %d sections %v, want %d", len(got), got, tt.wantSections)
			}
		})
	}
}

func TestSectionsGroupsByLineCount(t *testing.T) {
	// Four short lines with no blank separators: grouped 3 + 1; the trailing
	// single-line group survives only if it has 5+ words.
	content := "alpha beta gamma delta epsilon\nzeta eta theta iota kappa\nlambda mu nu xi omicron\npi rho sigma tau upsilon"
	got := Sections(content)
	if len(got) != 2 {
		t.Fatalf("Sections() = %d sections, want 2", len(got))
	}
	if !strings.Contains(got[0], "alpha") || !strings.Contains(got[0], "lambda") {
		t.Errorf("first group = %q, want the first three lines joined", got[0])
	}
}

func TestSectionsGroupsByCharacterBudget(t *testing.T) {
	long := strings.Repeat("word ", 70) // ~350 chars, over the group budget
	content := strings.TrimSpace(long) + "\nsecond line with plenty of words here"
	got := Sections(content)
	if len(got) != 2 {
		t.Fatalf("Sections() = %d sections, want 2 (long line closes its group)", len(got))
	}
}

func TestSectionsIsDeterministic(t *testing.T) {
	content := "first paragraph with enough words inside\n\nsecond paragraph with enough words inside"
	a := Sections(content)
	b := Sections(content)
	if len(a) != len(b) {
		t.Fatalf("repeat runs differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("section %d differs between runs", i)
		}
	}
}
