package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/scope"
)

// ReportInfo describes a canned report.
type ReportInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportFilters are the structured filters of a canned report. Each set field
// becomes one filter expression; all of them must match.
type ReportFilters struct {
	ExcludeUnresolved bool   // ignored by the unresolved_hosts report
	Status            string // host status: online/up, offline/down or unknown (missing counts)
	Subnet            string // CIDR
	PortNumber        *uint16
	PortProtocol      string
	Severity          string // minimum level name
}

// Expressions renders the filters as expression strings.
func (f ReportFilters) Expressions() []string {
	var clauses []string
	if f.ExcludeUnresolved {
		clauses = append(clauses, "unresolved == false")
	}
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "online", "up":
		clauses = append(clauses, "online exists")
	case "offline", "down":
		clauses = append(clauses, "offline exists")
	case "unknown":
		clauses = append(clauses, "status_unknown exists")
	}
	if f.Subnet != "" {
		// Quoted operands cannot carry a double quote.
		clauses = append(clauses, fmt.Sprintf(`subnet == "%s"`, strings.ReplaceAll(f.Subnet, `"`, "")))
	}
	if f.PortNumber != nil {
		clauses = append(clauses, "port == "+strconv.Itoa(int(*f.PortNumber)))
	}
	if proto := strings.ToLower(strings.TrimSpace(f.PortProtocol)); proto != "" {
		clauses = append(clauses, fmt.Sprintf(`protocol == "%s"`, strings.ReplaceAll(proto, `"`, "")))
	}
	if sev := strings.TrimSpace(f.Severity); sev != "" {
		clauses = append(clauses, fmt.Sprintf(`severity >= "%s"`, strings.ReplaceAll(sev, `"`, "")))
	}
	return clauses
}

type cannedReport struct {
	info           ReportInfo
	source         *dataSource
	columns        []column
	keep           func(item) bool // structural precondition, applied before filters
	less           func(a, b item) bool
	orphans        bool // host-less rows are kept without evaluating filters
	onlyUnresolved bool // the unresolved exclusion would empty the report
	dedupe         bool
}

func resolved(it item) bool {
	return it.host.IP != "" && !strings.EqualFold(it.host.IP, "unresolved")
}

var cannedReports = []cannedReport{
	{
		info:    ReportInfo{ID: "ips", Name: "List of all IP addresses"},
		source:  hostsData,
		columns: []column{col("ip", "IP", hostIP)},
		keep:    resolved,
		less:    func(a, b item) bool { return a.host.IP < b.host.IP },
		dedupe:  true,
	},
	{
		info:    ReportInfo{ID: "hostnames", Name: "List of all hostnames"},
		source:  hostsData,
		columns: []column{col("hostname", "Hostname", hostDNS)},
		keep:    func(it item) bool { return it.host.DNSName != "" },
		less: func(a, b item) bool {
			return strings.ToLower(a.host.DNSName) < strings.ToLower(b.host.DNSName)
		},
		dedupe: true,
	},
	{
		info:   ReportInfo{ID: "hosts", Name: "List of all hosts (IP + DNS)"},
		source: hostsData,
		columns: []column{
			col("ip", "IP", hostIP),
			col("dns_name", "DNS Name", hostDNS),
			col("label", "Label", hostLabel),
		},
		keep: resolved,
		less: func(a, b item) bool {
			if a.host.IP != b.host.IP {
				return a.host.IP < b.host.IP
			}
			return a.host.DNSName < b.host.DNSName
		},
	},
	{
		info:   ReportInfo{ID: "open_ports", Name: "List of all open ports"},
		source: portsData,
		columns: []column{
			col("ip", "IP", hostIP),
			col("port", "Port", func(it item) string { return strconv.Itoa(int(it.port.Number)) }),
			col("protocol", "Protocol", func(it item) string { return it.port.Protocol }),
			col("service", "Service", func(it item) string { return it.port.ServiceName }),
			col("host_dns", "Host DNS", hostDNS),
		},
		keep: func(it item) bool { return strings.EqualFold(it.port.State, "open") },
		less: func(a, b item) bool {
			switch {
			case a.host.IP != b.host.IP:
				return a.host.IP < b.host.IP
			case a.port.Number != b.port.Number:
				return a.port.Number < b.port.Number
			default:
				return a.port.Protocol < b.port.Protocol
			}
		},
	},
	{
		info:   ReportInfo{ID: "hosts_by_subnet", Name: "List of hosts by subnet"},
		source: hostsData,
		columns: []column{
			col("subnet_cidr", "Subnet", hostSubnet),
			col("ip", "IP", hostIP),
			col("dns_name", "DNS Name", hostDNS),
			col("label", "Label", hostLabel),
		},
		keep: resolved,
		less: func(a, b item) bool {
			sa, sb := a.host.Subnet, b.host.Subnet
			switch {
			case sa == sb:
				return a.host.IP < b.host.IP
			case sa == "":
				return false // hosts without a subnet last
			case sb == "":
				return true
			default:
				return sa < sb
			}
		},
	},
	{
		info:   ReportInfo{ID: "unresolved_hosts", Name: "List of unresolved hosts"},
		source: hostsData,
		columns: []column{
			col("hostname", "Hostname", hostDNS),
			col("ip", "IP", func(item) string { return "unresolved" }),
		},
		keep:           func(it item) bool { return strings.EqualFold(it.host.IP, "unresolved") },
		less:           func(a, b item) bool { return a.host.DNSName < b.host.DNSName },
		onlyUnresolved: true,
	},
	{
		info:    ReportInfo{ID: "vulns_flat", Name: "List of vulnerabilities (flat)"},
		source:  vulnsData,
		columns: vulnColumns(),
		less: func(a, b item) bool {
			if a.vuln.Title != b.vuln.Title {
				return a.vuln.Title < b.vuln.Title
			}
			return a.host.IP < b.host.IP
		},
	},
	{
		info:    ReportInfo{ID: "vulns_by_severity", Name: "List of vulnerabilities by severity"},
		source:  vulnsData,
		columns: vulnColumns(),
		less: func(a, b item) bool {
			ra, rb := a.vuln.EffectiveSeverity().Rank(), b.vuln.EffectiveSeverity().Rank()
			switch {
			case ra != rb:
				return ra > rb
			case a.vuln.Title != b.vuln.Title:
				return a.vuln.Title < b.vuln.Title
			default:
				return a.host.IP < b.host.IP
			}
		},
	},
	{
		info:   ReportInfo{ID: "evidence", Name: "List of evidence entries (source + type)"},
		source: evidenceData,
		columns: []column{
			col("source", "Source", evidenceSourceCell),
			col("caption", "Caption", evidenceCaptionCell),
			col("host_ip", "Host IP", hostIP),
			col("filename", "Filename", func(it item) string { return it.evidence.Filename }),
		},
		orphans: true,
	},
}

func vulnColumns() []column {
	return []column{
		col("title", "Title", func(it item) string { return it.vuln.Title }),
		col("severity", "Severity", func(it item) string { return it.vuln.EffectiveSeverity().String() }),
		col("host_ip", "Host IP", hostIP),
		col("host_dns", "Host DNS", hostDNS),
		col("status", "Status", func(it item) string { return it.vuln.Status }),
	}
}

// Reports lists the canned reports.
func Reports() []ReportInfo {
	out := make([]ReportInfo, len(cannedReports))
	for i, r := range cannedReports {
		out[i] = r.info
	}
	return out
}

// RunReport runs the canned report id with filters.
func (b *Builder) RunReport(ctx context.Context, p *scope.Project, id string, filters ReportFilters) (*Table, error) {
	var r *cannedReport
	for i := range cannedReports {
		if cannedReports[i].info.ID == id {
			r = &cannedReports[i]
			break
		}
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, id)
	}

	if r.onlyUnresolved {
		filters.ExcludeUnresolved = false
	}
	var exprs []filter.Expression
	for _, clause := range filters.Expressions() {
		if e, ok := filter.Parse(clause); ok {
			exprs = append(exprs, e)
		}
	}

	var items []item
	for _, it := range r.source.items(p) {
		if r.keep == nil || r.keep(it) {
			items = append(items, it)
		}
	}
	kept, err := b.filter(ctx, r.source, items, exprs, r.orphans)
	if err != nil {
		return nil, err
	}
	if r.less != nil {
		sort.SliceStable(kept, func(i, j int) bool { return r.less(kept[i], kept[j]) })
	}

	t := project(r.columns, kept)
	if r.dedupe {
		t.Rows = dedupeRows(t.Rows)
	}
	b.log.WithFields(logrus.Fields{"report": id, "clauses": len(exprs), "rows": len(t.Rows)}).Debug("Report built")
	return t, nil
}

// dedupeRows drops rows equal to an earlier row.
func dedupeRows(rows [][]string) [][]string {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := strings.Join(row, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
