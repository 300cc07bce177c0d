package extract

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text out of a PDF. Files the parser rejects fall
// back to a printable byte scan, which still recovers text from many
// malformed exports.
func extractPDF(data []byte) (string, map[string]interface{}, error) {
	if len(data) == 0 {
		return "", nil, errors.New("empty file")
	}

	metadata := map[string]interface{}{"pages": 0}
	if reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		metadata["pages"] = reader.NumPage()
		if plain, err := reader.GetPlainText(); err == nil {
			if out, readErr := io.ReadAll(plain); readErr == nil {
				if text := strings.TrimSpace(string(out)); text != "" {
					return text, metadata, nil
				}
			}
		}
	}

	text := strings.TrimSpace(string(printableText(data)))
	if text == "" {
		return "", nil, errors.New("no extractable text")
	}
	return text, metadata, nil
}

func printableText(in []byte) []byte {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if isPrintableASCII(b) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.Bytes()
}

func isPrintableASCII(b byte) bool {
	return b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127)
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	if r >= 32 && r < 127 {
		return true
	}
	if r >= 127 && r <= 0x10FFFF {
		return true
	}
	return false
}
