package report

import (
	"fmt"
	"strconv"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/scope"
)

// Column is a selectable report column.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// item is one row candidate. host is nil only for project-level evidence.
type item struct {
	host     *scope.Host
	port     *scope.Port
	evidence *scope.Evidence
	vuln     *scope.VulnerabilityInstance
}

type column struct {
	Column
	cell func(item) string
}

// dataSource is an entity stream the builder can filter and project.
type dataSource struct {
	name    string
	kind    scope.Kind
	columns []column
	items   func(*scope.Project) []item
}

func col(id, label string, cell func(item) string) column {
	return column{Column: Column{ID: id, Label: label}, cell: cell}
}

func hostIP(it item) string {
	if it.host == nil {
		return ""
	}
	return it.host.IP
}

func hostDNS(it item) string {
	if it.host == nil {
		return ""
	}
	return it.host.DNSName
}

func hostStatus(it item) string {
	if it.host.Status == "" {
		return "unknown"
	}
	return it.host.Status
}

func hostSubnet(it item) string { return it.host.Subnet }

func hostLabel(it item) string {
	if it.host.DNSName != "" {
		return it.host.IP + " (" + it.host.DNSName + ")"
	}
	return it.host.IP
}

// whoisCell reads the same side-map keys the whois_* filter attributes use.
func whoisCell(keys ...string) func(item) string {
	return func(it item) string { return filter.WhoisField(it.host.Whois, keys...) }
}

func evidenceSourceCell(it item) string {
	if it.evidence.Source == "" {
		return "manual"
	}
	return it.evidence.Source
}

func evidenceCaptionCell(it item) string {
	if it.evidence.Caption == "" {
		return it.evidence.Filename
	}
	return it.evidence.Caption
}

func cvssCell(it item) string {
	if it.vuln.CVSSScore == nil {
		return ""
	}
	return strconv.FormatFloat(*it.vuln.CVSSScore, 'f', -1, 64)
}

var hostsData = &dataSource{
	name: "hosts",
	kind: scope.KindHost,
	columns: []column{
		col("ip", "IP", hostIP),
		col("hostname", "Hostname", hostDNS),
		col("status", "Status", hostStatus),
		col("subnet_cidr", "Subnet", hostSubnet),
		col("whois_network", "Whois Network", whoisCell("network_name", "asn_description")),
		col("whois_asn", "Whois ASN", whoisCell("asn")),
		col("whois_country", "Whois Country", whoisCell("country", "asn_country")),
		col("whois_cidr", "Whois CIDR", whoisCell("cidr")),
		col("whois_type", "Whois Type", whoisCell("network_type")),
		col("whois_registry", "Whois Registry", whoisCell("asn_registry")),
	},
	items: func(p *scope.Project) []item {
		out := make([]item, 0, len(p.Hosts))
		for i := range p.Hosts {
			out = append(out, item{host: &p.Hosts[i]})
		}
		return out
	},
}

var portsData = &dataSource{
	name: "ports",
	kind: scope.KindPort,
	columns: []column{
		col("ip", "IP", hostIP),
		col("hostname", "Hostname", hostDNS),
		col("port", "Port", func(it item) string { return strconv.Itoa(int(it.port.Number)) }),
		col("protocol", "Protocol", func(it item) string { return it.port.Protocol }),
		col("service", "Service", func(it item) string { return it.port.ServiceName }),
		col("version", "Version", func(it item) string { return it.port.ServiceVersion }),
		col("state", "State", func(it item) string { return it.port.State }),
	},
	items: func(p *scope.Project) []item {
		var out []item
		for i := range p.Hosts {
			h := &p.Hosts[i]
			for j := range h.Ports {
				out = append(out, item{host: h, port: &h.Ports[j]})
			}
		}
		return out
	},
}

var evidenceData = &dataSource{
	name: "evidence",
	kind: scope.KindEvidence,
	columns: []column{
		col("host_ip", "Host IP", hostIP),
		col("source", "Source", evidenceSourceCell),
		col("caption", "Caption", evidenceCaptionCell),
		col("filename", "Filename", func(it item) string { return it.evidence.Filename }),
	},
	items: func(p *scope.Project) []item {
		var out []item
		for i := range p.Hosts {
			h := &p.Hosts[i]
			for j := range h.Evidence {
				out = append(out, item{host: h, evidence: &h.Evidence[j]})
			}
		}
		for i := range p.Evidence {
			out = append(out, item{evidence: &p.Evidence[i]})
		}
		return out
	},
}

var vulnsData = &dataSource{
	name: "vulns",
	kind: scope.KindVulnerability,
	columns: []column{
		col("title", "Title", func(it item) string { return it.vuln.Title }),
		col("severity", "Severity", func(it item) string { return it.vuln.EffectiveSeverity().String() }),
		col("cvss", "CVSS", cvssCell),
		col("host_ip", "Host IP", hostIP),
		col("host_dns", "Host DNS", hostDNS),
		col("status", "Status", func(it item) string { return it.vuln.Status }),
	},
	items: func(p *scope.Project) []item {
		var out []item
		for i := range p.Hosts {
			h := &p.Hosts[i]
			for j := range h.Vulnerabilities {
				out = append(out, item{host: h, vuln: &h.Vulnerabilities[j]})
			}
		}
		return out
	},
}

// dataSources in display order.
var dataSources = []*dataSource{hostsData, portsData, evidenceData, vulnsData}

func lookupSource(name string) (*dataSource, bool) {
	for _, ds := range dataSources {
		if ds.name == name {
			return ds, true
		}
	}
	return nil, false
}

// DataSources returns the builder data source names.
func DataSources() []string {
	names := make([]string, len(dataSources))
	for i, ds := range dataSources {
		names[i] = ds.name
	}
	return names
}

// Columns returns the selectable columns of a data source.
func Columns(source string) ([]Column, error) {
	ds, ok := lookupSource(source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataSource, source)
	}
	out := make([]Column, len(ds.columns))
	for i, c := range ds.columns {
		out[i] = c.Column
	}
	return out, nil
}

// SourceKind returns the entity kind a data source's filters resolve on.
func SourceKind(source string) (scope.Kind, error) {
	ds, ok := lookupSource(source)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataSource, source)
	}
	return ds.kind, nil
}

// selectColumns keeps the requested columns that exist, in request order.
// When none are valid every column is used.
func (ds *dataSource) selectColumns(ids []string) []column {
	var out []column
	seen := make(map[string]bool)
	for _, id := range ids {
		for _, c := range ds.columns {
			if c.ID == id && !seen[id] {
				out = append(out, c)
				seen[id] = true
			}
		}
	}
	if len(out) == 0 {
		return ds.columns
	}
	return out
}

// matches evaluates e against the row entity. Attributes the row kind does not
// have, including status, are resolved on the parent host; smart searches cover both.
func (ds *dataSource) matches(e filter.Expression, it item) bool {
	var own bool
	switch ds.kind {
	case scope.KindHost:
		return filter.MatchesHost(e, *it.host)
	case scope.KindPort:
		own = filter.MatchesPort(e, *it.port)
	case scope.KindEvidence:
		own = filter.MatchesEvidence(e, *it.evidence)
	case scope.KindVulnerability:
		own = filter.MatchesVulnerability(e, *it.vuln)
	}
	if own || it.host == nil {
		return own
	}
	if e.Smart() || !filter.Supports(ds.kind, e.Attribute) {
		return filter.MatchesHost(e, *it.host)
	}
	return false
}
