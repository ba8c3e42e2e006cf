package filter

import (
	"strings"

	"github.com/redopsync/scopefilter/internal/scope"
)

type evidenceAttr = attribute[scope.Evidence]

var evidenceAttributes = newRegistry([]string{"caption", "filename", "source"},
	evidenceAttr{names: []string{"source"}, label: "Source", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(ev.Source) }},
	evidenceAttr{names: []string{"screenshot"}, label: "Screenshot", domain: DomainBoolean, ops: booleanOps,
		resolve: func(ev scope.Evidence) Value { return BoolValue(isScreenshot(ev)) }},
	evidenceAttr{names: []string{"response_code"}, label: "Response Code", domain: DomainInteger,
		resolve: func(ev scope.Evidence) Value { return OptionalIntValue(labelDigits(ev.Caption, responseCodeLabels)) }},
	evidenceAttr{names: []string{"server"}, label: "Server", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(serverOf(ev)) }},
	evidenceAttr{names: []string{"page_title"}, label: "Page Title", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(pageTitleOf(ev)) }},
	evidenceAttr{names: []string{"technology"}, label: "Technology", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(ev.Caption) }},
	evidenceAttr{names: []string{"caption"}, label: "Caption", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(ev.Caption) }},
	evidenceAttr{names: []string{"filename"}, label: "Filename", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(ev.Filename) }},
	evidenceAttr{names: []string{"mime"}, label: "MIME Type", domain: DomainString,
		resolve: func(ev scope.Evidence) Value { return StringValue(ev.MIME) }},
)

func isScreenshot(ev scope.Evidence) bool {
	return strings.HasPrefix(strings.ToLower(ev.MIME), "image/")
}

func serverOf(ev scope.Evidence) string {
	v, _ := labelValue(ev.Caption, serverLabels)
	return v
}

// pageTitleOf falls back to the whole caption when no title label is present.
func pageTitleOf(ev scope.Evidence) string {
	if v, found := labelValue(ev.Caption, titleLabels); found {
		return v
	}
	return ev.Caption
}

// ResolveEvidence resolves an evidence attribute. ok is false for unknown attributes.
func ResolveEvidence(ev scope.Evidence, name string) (Value, bool) {
	return evidenceAttributes.resolve(ev, name)
}
