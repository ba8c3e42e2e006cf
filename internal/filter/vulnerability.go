package filter

import "github.com/redopsync/scopefilter/internal/scope"

type vulnAttr = attribute[scope.VulnerabilityInstance]

var vulnerabilityAttributes = newRegistry([]string{"title", "severity"},
	vulnAttr{names: []string{"severity", "vuln.severity"}, label: "Severity", domain: DomainSeverity,
		resolve: func(v scope.VulnerabilityInstance) Value { return SeverityValue(v.EffectiveSeverity()) }},
	vulnAttr{names: []string{"title", "vuln.title"}, label: "Title", domain: DomainString,
		resolve: func(v scope.VulnerabilityInstance) Value { return StringValue(v.Title) }},
	vulnAttr{names: []string{"cvss", "vuln.cvss"}, label: "CVSS", domain: DomainFloat,
		resolve: func(v scope.VulnerabilityInstance) Value { return FloatValue(v.CVSSScore) }},
	vulnAttr{names: []string{"vuln.status"}, label: "Status", domain: DomainString,
		resolve: func(v scope.VulnerabilityInstance) Value { return StringValue(v.Status) }},
)

// ResolveVulnerability resolves a vulnerability attribute. ok is false for unknown attributes.
func ResolveVulnerability(v scope.VulnerabilityInstance, name string) (Value, bool) {
	return vulnerabilityAttributes.resolve(v, name)
}
