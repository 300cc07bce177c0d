// Package splitter cuts raw document text into coherent sections for
// relevance scoring. Splitting is a pure function of its input.
package splitter

import "strings"

const (
	maxLinesPerGroup = 3
	maxGroupChars    = 300
	minSectionWords  = 5
)

// Sections splits text into scoring-sized passages. Blank-line paragraphs
// are preferred; when the text has no paragraph structure, single lines are
// grouped greedily (at most 3 lines or 300 characters per group). Sections
// under 5 words are dropped.
func Sections(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var sections []string

	var paragraphs []string
	for _, p := range strings.Split(content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	if len(paragraphs) > 1 {
		sections = paragraphs
	} else {
		sections = groupLines(content)
	}

	filtered := sections[:0]
	for _, s := range sections {
		if len(strings.Fields(s)) >= minSectionWords {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func groupLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var sections []string
	var current []string
	for _, line := range lines {
		current = append(current, line)
		joined := strings.Join(current, " ")
		if len(current) >= maxLinesPerGroup || len(joined) > maxGroupChars {
			sections = append(sections, joined)
			current = nil
		}
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, " "))
	}
	return sections
}
