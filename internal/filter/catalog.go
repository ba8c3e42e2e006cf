package filter

import "github.com/redopsync/scopefilter/internal/scope"

// AttributeInfo describes one filterable attribute of an entity kind.
type AttributeInfo struct {
	ID        string     `json:"id"`
	Aliases   []string   `json:"aliases,omitempty"`
	Label     string     `json:"label"`
	Domain    Domain     `json:"-"`
	Operators []Operator `json:"operators"`
}

// Attributes lists the attributes of kind in registration order. Unknown kinds
// have none.
func Attributes(kind scope.Kind) []AttributeInfo {
	switch kind {
	case scope.KindHost:
		return hostAttributes.info()
	case scope.KindPort:
		return portAttributes.info()
	case scope.KindEvidence:
		return evidenceAttributes.info()
	case scope.KindVulnerability:
		return vulnerabilityAttributes.info()
	default:
		return nil
	}
}

// SmartAttributes lists the attributes a fallback search scans for kind.
func SmartAttributes(kind scope.Kind) []string {
	var smart []string
	switch kind {
	case scope.KindHost:
		smart = hostAttributes.smart
	case scope.KindPort:
		smart = portAttributes.smart
	case scope.KindEvidence:
		smart = evidenceAttributes.smart
	case scope.KindVulnerability:
		smart = vulnerabilityAttributes.smart
	}
	return append([]string(nil), smart...)
}
