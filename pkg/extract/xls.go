package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
)

// extractXls handles the legacy binary workbook format, producing the same
// sheet/header/row text shape as the xlsx path.
func extractXls(data []byte) (string, map[string]interface{}, error) {
	if len(data) == 0 {
		return "", nil, errors.New("empty file")
	}
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}

	var sheets []string
	var b strings.Builder
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		sheets = append(sheets, sheet.GetName())
		fmt.Fprintf(&b, "Sheet: %s\n", sheet.GetName())
		for r, row := range sheet.GetRows() {
			values := cellValues(row.GetCols())
			if r == 0 {
				fmt.Fprintf(&b, "Header: %s\n", strings.Join(values, "\t"))
				continue
			}
			fmt.Fprintf(&b, "Row %d: %s\n", r+1, strings.Join(values, "\t"))
		}
	}

	return strings.TrimSpace(b.String()), map[string]interface{}{
		"sheets":       sheets,
		"total_sheets": len(sheets),
	}, nil
}

// cellValues renders typed cells as strings. Numeric cells whose formatted
// string is empty fall back to the raw float or int value.
func cellValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
