package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDocx walks word/document.xml inside the DOCX zip. Legacy .doc
// files are not zip archives, so they fail here with a parse error.
func extractDocx(data []byte) (string, map[string]interface{}, error) {
	if len(data) == 0 {
		return "", nil, errors.New("empty file")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, "word/document.xml") {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", nil, errors.New("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	text, paragraphs, tables := walkDocumentXML(rc)
	return strings.TrimSpace(text), map[string]interface{}{
		"paragraphs": paragraphs,
		"tables":     tables,
	}, nil
}

// walkDocumentXML streams text nodes out of the WordprocessingML body.
// Paragraphs and table rows become lines. The paragraph count covers body
// paragraphs only, not the ones nested inside table cells.
func walkDocumentXML(r io.Reader) (string, int, int) {
	dec := xml.NewDecoder(r)
	var buf strings.Builder
	var lastWasNewline bool
	paragraphs, tables, tableDepth := 0, 0, 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tables++
				tableDepth++
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					buf.WriteString(text)
					lastWasNewline = false
				}
			case "tab":
				buf.WriteByte('\t')
				lastWasNewline = false
			case "br", "cr":
				buf.WriteByte('\n')
				lastWasNewline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "p":
				if tableDepth == 0 {
					paragraphs++
				}
				if !lastWasNewline {
					buf.WriteByte('\n')
					lastWasNewline = true
				}
			case "tr":
				if !lastWasNewline {
					buf.WriteByte('\n')
					lastWasNewline = true
				}
			case "tc":
				if !lastWasNewline {
					buf.WriteByte('\t')
					lastWasNewline = false
				}
			}
		}
	}
	return buf.String(), paragraphs, tables
}
