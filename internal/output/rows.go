package output

import (
	"bytes"
	"encoding/json"

	"github.com/redopsync/scopefilter/internal/report"
)

// RowSet implements Formatter for report tables.
type RowSet struct {
	Table *report.Table
}

// FormatText returns the rows under a header of column labels. An empty table
// renders as an empty string.
func (r RowSet) FormatText() string {
	if r.Table == nil || len(r.Table.Rows) == 0 {
		return ""
	}
	labels := make([]string, len(r.Table.Columns))
	for i, c := range r.Table.Columns {
		labels[i] = c.Label
	}

	tw := NewTableWriter()
	tw.Header(labels...)
	for _, row := range r.Table.Rows {
		tw.Row(row...)
	}
	return tw.String()
}

// FormatJSON returns an array of objects keyed by column id, keys in column order.
// Empty cells are null.
func (r RowSet) FormatJSON() ([]byte, error) {
	if r.Table == nil || len(r.Table.Rows) == 0 {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for n, row := range r.Table.Rows {
		buf.WriteString("  {")
		for i, c := range r.Table.Columns {
			if i > 0 {
				buf.WriteString(", ")
			}
			key, err := json.Marshal(c.ID)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteString(": ")
			if row[i] == "" {
				buf.WriteString("null")
				continue
			}
			val, err := json.Marshal(row[i])
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteString("}")
		if n < len(r.Table.Rows)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]")
	return buf.Bytes(), nil
}
