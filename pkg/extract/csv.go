package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

const csvSampleRows = 5

// extractCSV summarizes column structure and leads with a small sample so
// the matcher has something to section even for very wide files.
func extractCSV(data []byte) (string, map[string]interface{}, error) {
	if len(data) == 0 {
		return "", nil, errors.New("empty file")
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", nil, err
	}
	if len(records) == 0 {
		return "", nil, errors.New("no rows")
	}

	header := records[0]
	dataRows := records[1:]

	var b strings.Builder
	b.WriteString("CSV FILE ANALYSIS\n")
	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", len(dataRows), len(header))
	fmt.Fprintf(&b, "Columns: %s\n\n", strings.Join(header, ", "))
	fmt.Fprintf(&b, "Sample Data (First %d rows):\n", csvSampleRows)
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for i, row := range dataRows {
		if i == csvSampleRows {
			break
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}

	return strings.TrimSpace(b.String()), map[string]interface{}{
		"rows":         len(dataRows),
		"columns":      len(header),
		"column_names": header,
	}, nil
}
