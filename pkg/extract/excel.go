package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx renders every sheet as a header line plus numbered rows, the
// same shape the scorer sections on.
func extractXlsx(data []byte) (string, map[string]interface{}, error) {
	if len(data) == 0 {
		return "", nil, errors.New("empty file")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	var b strings.Builder
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "Sheet: %s\n", sheet)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Header: %s\n", strings.Join(rows[0], "\t"))
		for i := 1; i < len(rows); i++ {
			fmt.Fprintf(&b, "Row %d: %s\n", i+1, strings.Join(rows[i], "\t"))
		}
	}

	return strings.TrimSpace(b.String()), map[string]interface{}{
		"sheets":       sheets,
		"total_sheets": len(sheets),
	}, nil
}
