package output

import (
	"encoding/json"
	"strings"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/report"
)

// ColumnList implements Formatter for the columns and filter attributes of a
// builder data source.
type ColumnList struct {
	DataSource string
	Columns    []report.Column
	Attributes []filter.AttributeInfo
}

type attributeJSON struct {
	filter.AttributeInfo
	Domain string `json:"domain"`
}

// FormatText returns the column table followed by the attribute table.
func (l *ColumnList) FormatText() string {
	cols := NewTableWriter()
	cols.Header("column", "label")
	for _, c := range l.Columns {
		cols.Row(c.ID, c.Label)
	}

	attrs := NewTableWriter()
	attrs.Header("attribute", "aliases", "type", "operators")
	for _, a := range l.Attributes {
		ops := make([]string, len(a.Operators))
		for i, op := range a.Operators {
			ops[i] = string(op)
		}
		attrs.Row(a.ID, strings.Join(a.Aliases, ","), a.Domain.String(), strings.Join(ops, " "))
	}

	return cols.String() + "\n\n" + attrs.String()
}

// FormatJSON returns {"data_source", "columns", "attributes"}.
func (l *ColumnList) FormatJSON() ([]byte, error) {
	attrs := make([]attributeJSON, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = attributeJSON{AttributeInfo: a, Domain: a.Domain.String()}
	}
	return json.MarshalIndent(struct {
		DataSource string          `json:"data_source"`
		Columns    []report.Column `json:"columns"`
		Attributes []attributeJSON `json:"attributes"`
	}{l.DataSource, l.Columns, attrs}, "", "  ")
}
