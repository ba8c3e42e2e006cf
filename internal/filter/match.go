package filter

import "github.com/redopsync/scopefilter/internal/scope"

// MatchesHost reports whether h satisfies e.
func MatchesHost(e Expression, h scope.Host) bool {
	return hostAttributes.match(e, h)
}

// MatchesPort reports whether p satisfies e.
func MatchesPort(e Expression, p scope.Port) bool {
	return portAttributes.match(e, p)
}

// MatchesEvidence reports whether ev satisfies e.
func MatchesEvidence(e Expression, ev scope.Evidence) bool {
	return evidenceAttributes.match(e, ev)
}

// MatchesVulnerability reports whether v satisfies e.
func MatchesVulnerability(e Expression, v scope.VulnerabilityInstance) bool {
	return vulnerabilityAttributes.match(e, v)
}

// Supports reports whether attribute resolves for entities of kind. The smart
// search attribute is supported by every kind.
func Supports(kind scope.Kind, attribute string) bool {
	if attribute == SmartAttribute {
		return true
	}
	switch kind {
	case scope.KindHost:
		return hostAttributes.supports(attribute)
	case scope.KindPort:
		return portAttributes.supports(attribute)
	case scope.KindEvidence:
		return evidenceAttributes.supports(attribute)
	case scope.KindVulnerability:
		return vulnerabilityAttributes.supports(attribute)
	default:
		return false
	}
}
