// Package extract turns uploaded files into plain text session documents
// for relevance scoring and summary refinement.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ca-assistant-be/pkg/store"
)

// defaultMaxChars caps stored text so one oversized upload cannot blow up
// session memory or prompt budgets.
const defaultMaxChars = 200000

var supportedExtensions = []string{".pdf", ".docx", ".doc", ".xlsx", ".xls", ".csv", ".txt", ".md"}

// UnsupportedTypeError reports a file extension no extractor handles.
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s (supported: %s)", e.Ext, strings.Join(supportedExtensions, ", "))
}

// SupportedExtensions returns the extensions Process accepts.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// Processor extracts text and a short per-type summary from uploaded files.
type Processor struct {
	maxChars int
}

// NewProcessor returns a Processor. maxChars caps the stored text length in
// runes; zero or negative uses the default.
func NewProcessor(maxChars int) *Processor {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Processor{maxChars: maxChars}
}

// Process extracts one uploaded file into a complete session document.
// Extraction failures come back as errors, never partial documents.
func (p *Processor) Process(name string, data []byte) (*store.UploadedDocument, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var (
		text     string
		metadata map[string]interface{}
		err      error
	)
	switch ext {
	case ".pdf":
		text, metadata, err = extractPDF(data)
		if err != nil {
			return nil, fmt.Errorf("failed to process PDF: %w", err)
		}
	case ".docx", ".doc":
		text, metadata, err = extractDocx(data)
		if err != nil {
			return nil, fmt.Errorf("failed to process Word document: %w", err)
		}
	case ".xlsx":
		text, metadata, err = extractXlsx(data)
		if err != nil {
			return nil, fmt.Errorf("failed to process Excel file: %w", err)
		}
	case ".xls":
		text, metadata, err = extractXls(data)
		if err != nil {
			return nil, fmt.Errorf("failed to process Excel file: %w", err)
		}
	case ".csv":
		text, metadata, err = extractCSV(data)
		if err != nil {
			return nil, fmt.Errorf("failed to process CSV file: %w", err)
		}
	case ".txt", ".md":
		text = strings.TrimSpace(string(data))
		metadata = map[string]interface{}{}
	default:
		return nil, &UnsupportedTypeError{Ext: ext}
	}

	// Summary reflects the full extraction even when the stored text is
	// capped below it.
	summary := summaryFor(ext, text, metadata)

	return &store.UploadedDocument{
		ID:            uuid.NewString(),
		Name:          name,
		Ext:           ext,
		ExtractedText: capRunes(text, p.maxChars),
		Summary:       summary,
		Metadata:      metadata,
		UploadedAt:    time.Now(),
	}, nil
}

func summaryFor(ext, content string, metadata map[string]interface{}) string {
	chars := utf8.RuneCountInString(content)
	switch ext {
	case ".pdf":
		return fmt.Sprintf("PDF with %d pages. %d characters extracted.", intValue(metadata, "pages"), chars)
	case ".docx", ".doc":
		return fmt.Sprintf("Word document with %d paragraphs and %d tables.", intValue(metadata, "paragraphs"), intValue(metadata, "tables"))
	case ".xlsx", ".xls":
		names, _ := metadata["sheets"].([]string)
		return fmt.Sprintf("Excel file with %d sheets: %s", len(names), strings.Join(names, ", "))
	case ".csv":
		return fmt.Sprintf("CSV file with %d rows and %d columns.", intValue(metadata, "rows"), intValue(metadata, "columns"))
	}
	return fmt.Sprintf("File processed successfully. %d characters extracted.", chars)
}

func intValue(metadata map[string]interface{}, key string) int {
	if v, ok := metadata[key].(int); ok {
		return v
	}
	return 0
}

func capRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
