package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestProcessTxt(t *testing.T) {
	doc, err := NewProcessor(0).Process("note.txt", []byte("GST payable by the 20th.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID == "" || doc.UploadedAt.IsZero() {
		t.Errorf("expected identity fields, got %+v", doc)
	}
	if doc.Ext != ".txt" {
		t.Errorf("expected .txt, got %s", doc.Ext)
	}
	if doc.ExtractedText != "GST payable by the 20th." {
		t.Errorf("unexpected text: %q", doc.ExtractedText)
	}
	if doc.Summary != "File processed successfully. 24 characters extracted." {
		t.Errorf("unexpected summary: %q", doc.Summary)
	}
}

func TestProcessUnsupported(t *testing.T) {
	_, err := NewProcessor(0).Process("malware.exe", []byte("x"))
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if unsupported.Ext != ".exe" {
		t.Errorf("expected .exe, got %s", unsupported.Ext)
	}
	if !strings.Contains(err.Error(), ".pdf") {
		t.Errorf("error should list supported types: %v", err)
	}
}

func TestProcessCSV(t *testing.T) {
	data := []byte("name,amount\nrent,1200\nsalary,5000\n")
	doc, err := NewProcessor(0).Process("expenses.csv", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Summary != "CSV file with 2 rows and 2 columns." {
		t.Errorf("unexpected summary: %q", doc.Summary)
	}
	for _, want := range []string{"CSV FILE ANALYSIS", "Columns: name, amount", "rent\t1200"} {
		if !strings.Contains(doc.ExtractedText, want) {
			t.Errorf("expected %q in text:\n%s", want, doc.ExtractedText)
		}
	}
	if rows, _ := doc.Metadata["rows"].(int); rows != 2 {
		t.Errorf("expected rows metadata 2, got %v", doc.Metadata["rows"])
	}
}

func TestProcessDocx(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Income details follow.</w:t></w:r></w:p><w:tbl><w:tr><w:tc><w:p><w:r><w:t>Head</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Amount</w:t></w:r></w:p></w:tc></w:tr></w:tbl><w:p><w:r><w:t>End of statement.</w:t></w:r></w:p></w:body></w:document>`)

	doc, err := NewProcessor(0).Process("statement.docx", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Summary != "Word document with 2 paragraphs and 1 tables." {
		t.Errorf("unexpected summary: %q", doc.Summary)
	}
	for _, want := range []string{"Income details follow.", "Head", "Amount", "End of statement."} {
		if !strings.Contains(doc.ExtractedText, want) {
			t.Errorf("expected %q in text:\n%s", want, doc.ExtractedText)
		}
	}
}

func TestProcessLegacyDocFails(t *testing.T) {
	_, err := NewProcessor(0).Process("legacy.doc", []byte("not a zip archive"))
	if err == nil || !strings.Contains(err.Error(), "failed to process Word document") {
		t.Fatalf("expected word processing error, got %v", err)
	}
}

func TestProcessXlsx(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"item", "value"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"fees", 4500}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	doc, err := NewProcessor(0).Process("ledger.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Summary != "Excel file with 1 sheets: Sheet1" {
		t.Errorf("unexpected summary: %q", doc.Summary)
	}
	for _, want := range []string{"Sheet: Sheet1", "Header: item\tvalue", "Row 2: fees\t4500"} {
		if !strings.Contains(doc.ExtractedText, want) {
			t.Errorf("expected %q in text:\n%s", want, doc.ExtractedText)
		}
	}
}

func TestProcessPDFFallback(t *testing.T) {
	data := []byte("%PDF-1.4\nGST summary for the quarter\n%%EOF")
	doc, err := NewProcessor(0).Process("summary.pdf", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.ExtractedText, "GST summary for the quarter") {
		t.Errorf("expected fallback text, got:\n%s", doc.ExtractedText)
	}
	if !strings.HasPrefix(doc.Summary, "PDF with 0 pages.") {
		t.Errorf("unexpected summary: %q", doc.Summary)
	}
}

func TestProcessCapsStoredText(t *testing.T) {
	doc, err := NewProcessor(10).Process("big.txt", []byte(strings.Repeat("a", 20)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.ExtractedText) != 10 {
		t.Errorf("expected capped text, got %d chars", len(doc.ExtractedText))
	}
	if !strings.Contains(doc.Summary, "20 characters extracted.") {
		t.Errorf("summary should reflect full extraction: %q", doc.Summary)
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
