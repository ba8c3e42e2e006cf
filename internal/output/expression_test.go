package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/report"
	"github.com/redopsync/scopefilter/internal/scope"
)

func TestExpressionOutput(t *testing.T) {
	tests := []struct {
		input       string
		wantType    string
		wantSmart   bool
		wantOperand any
	}{
		{"port >= 443", "integer", false, float64(443)},
		{`ip contains "10."`, "string", false, "10."},
		{"online == true", "boolean", false, true},
		{"10.0.0.", "string", true, "10.0.0."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			o := NewExpressionOutput(tt.input)
			if !strings.Contains(o.FormatText(), tt.wantType) {
				t.Errorf("text output missing type %q:\n%s", tt.wantType, o.FormatText())
			}

			data, err := o.FormatJSON()
			if err != nil {
				t.Fatal(err)
			}
			var parsed map[string]any
			if err := json.Unmarshal(data, &parsed); err != nil {
				t.Fatal(err)
			}
			if parsed["operand_type"] != tt.wantType {
				t.Errorf("operand_type = %v, want %v", parsed["operand_type"], tt.wantType)
			}
			if parsed["smart"] != tt.wantSmart {
				t.Errorf("smart = %v, want %v", parsed["smart"], tt.wantSmart)
			}
			if parsed["operand"] != tt.wantOperand {
				t.Errorf("operand = %v, want %v", parsed["operand"], tt.wantOperand)
			}
		})
	}
}

func TestExpressionOutputExists(t *testing.T) {
	o := NewExpressionOutput("screenshot exists")
	lines := strings.Split(o.FormatText(), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "exists") {
		t.Errorf("unexpected text output: %q", lines)
	}
}

func TestExpressionOutputBlank(t *testing.T) {
	o := NewExpressionOutput("   ")
	if o.OK {
		t.Fatal("blank input should not parse")
	}
	if !strings.Contains(o.FormatText(), "matches everything") {
		t.Errorf("FormatText = %q", o.FormatText())
	}
	data, _ := o.FormatJSON()
	if !strings.Contains(string(data), `"empty": true`) {
		t.Errorf("FormatJSON = %s", data)
	}
}

func TestColumnList(t *testing.T) {
	l := &ColumnList{
		DataSource: "ports",
		Columns:    []report.Column{{ID: "port", Label: "Port"}},
		Attributes: filter.Attributes(scope.KindPort),
	}
	text := l.FormatText()
	for _, want := range []string{"COLUMN", "port_number", "integer", ">="} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}

	data, err := l.FormatJSON()
	if err != nil {
		t.Fatal(err)
	}
	var parsed struct {
		DataSource string `json:"data_source"`
		Attributes []struct {
			ID     string `json:"id"`
			Domain string `json:"domain"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.DataSource != "ports" || len(parsed.Attributes) == 0 || parsed.Attributes[0].Domain != "integer" {
		t.Errorf("unexpected JSON: %s", data)
	}
}
