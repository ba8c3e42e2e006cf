package report

import (
	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/scope"
)

// FilterTree returns a copy of p pruned to the hosts matching input. A host whose
// own attributes match keeps all of its children; otherwise it is kept with only
// the ports, evidence and vulnerabilities that match. Project-level evidence is
// kept when it matches. Blank input returns p unchanged.
func FilterTree(p *scope.Project, input string) *scope.Project {
	e, ok := filter.Parse(input)
	if !ok {
		return p
	}

	out := &scope.Project{Name: p.Name}
	for _, h := range p.Hosts {
		if filter.MatchesHost(e, h) {
			out.Hosts = append(out.Hosts, h)
			continue
		}
		pruned := h
		pruned.Ports = keepMatching(h.Ports, func(x scope.Port) bool { return filter.MatchesPort(e, x) })
		pruned.Evidence = keepMatching(h.Evidence, func(x scope.Evidence) bool { return filter.MatchesEvidence(e, x) })
		pruned.Vulnerabilities = keepMatching(h.Vulnerabilities, func(x scope.VulnerabilityInstance) bool {
			return filter.MatchesVulnerability(e, x)
		})
		if len(pruned.Ports)+len(pruned.Evidence)+len(pruned.Vulnerabilities) > 0 {
			out.Hosts = append(out.Hosts, pruned)
		}
	}
	out.Evidence = keepMatching(p.Evidence, func(x scope.Evidence) bool { return filter.MatchesEvidence(e, x) })
	return out
}

func keepMatching[T any](in []T, match func(T) bool) []T {
	var out []T
	for _, x := range in {
		if match(x) {
			out = append(out, x)
		}
	}
	return out
}
