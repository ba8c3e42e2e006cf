package report

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redopsync/scopefilter/internal/filter"
	"github.com/redopsync/scopefilter/internal/scope"
	"github.com/redopsync/scopefilter/internal/severity"
)

func score(f float64) *float64 { return &f }

func testProject() *scope.Project {
	return &scope.Project{
		Name: "acme",
		Hosts: []scope.Host{
			{
				IP: "10.0.0.5", DNSName: "web01.acme.local", Status: "up", Subnet: "10.0.0.0/24",
				Whois: scope.Whois{"network_name": "ACME-NET", "asn": "AS64500"},
				Ports: []scope.Port{
					{Number: 443, Protocol: "tcp", ServiceName: "https", State: "open"},
					{Number: 80, Protocol: "tcp", ServiceName: "http", State: "open"},
					{Number: 8080, Protocol: "tcp", ServiceName: "http-proxy", State: "filtered"},
				},
				Evidence: []scope.Evidence{
					{Caption: "Response code: 200\nPage title: Portal", Filename: "web01.png", MIME: "image/png", Source: "gowitness"},
				},
				Vulnerabilities: []scope.VulnerabilityInstance{
					{Title: "Outdated TLS", CVSSScore: score(7.5), Status: "open"},
					{Title: "Banner", CVSSScore: score(2.0), Status: "fixed"},
				},
			},
			{
				IP: "10.0.1.7", DNSName: "db01.acme.local", Status: "down", Subnet: "10.0.1.0/24",
				Ports: []scope.Port{{Number: 5432, Protocol: "tcp", ServiceName: "postgresql", State: "open"}},
				Vulnerabilities: []scope.VulnerabilityInstance{
					{Title: "Weak password", ManualSeverity: severity.Critical},
				},
			},
			{IP: "unresolved", DNSName: "old.acme.local"},
			{IP: "10.0.0.5", DNSName: "alias.acme.local"},
		},
		Evidence: []scope.Evidence{{Caption: "Scope letter", Filename: "scope.pdf", MIME: "application/pdf"}},
	}
}

func newTestBuilder(opts Options) *Builder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewBuilder(log, opts)
}

func cells(t *testing.T, tbl *Table, id string) []string {
	t.Helper()
	for i, c := range tbl.Columns {
		if c.ID == id {
			var out []string
			for _, row := range tbl.Rows {
				out = append(out, row[i])
			}
			return out
		}
	}
	t.Fatalf("column %q not in table", id)
	return nil
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantCol string
		want    []string
	}{
		{"hosts no filter", Request{DataSource: "hosts", Columns: []string{"ip"}}, "ip", []string{"10.0.0.5", "10.0.1.7", "unresolved", "10.0.0.5"}},
		{"hosts smart", Request{DataSource: "hosts", Columns: []string{"hostname"}, Filter: "db01"}, "hostname", []string{"db01.acme.local"}},
		{"hosts online", Request{DataSource: "hosts", Columns: []string{"hostname"}, Filter: "online == true"}, "hostname", []string{"web01.acme.local"}},
		{"ports ordering", Request{DataSource: "ports", Columns: []string{"port"}, Filter: "port >= 443"}, "port", []string{"443", "8080", "5432"}},
		{"ports host fallback", Request{DataSource: "ports", Columns: []string{"port"}, Filter: `ip contains "10.0.1."`}, "port", []string{"5432"}},
		{"ports smart covers host", Request{DataSource: "ports", Columns: []string{"port"}, Filter: "db01"}, "port", []string{"5432"}},
		{"evidence own attribute", Request{DataSource: "evidence", Columns: []string{"filename"}, Filter: "screenshot exists"}, "filename", []string{"web01.png"}},
		{"evidence host attribute skips orphan", Request{DataSource: "evidence", Columns: []string{"filename"}, Filter: "online exists"}, "filename", []string{"web01.png"}},
		{"evidence orphan own attribute", Request{DataSource: "evidence", Columns: []string{"filename"}, Filter: `caption contains "letter"`}, "filename", []string{"scope.pdf"}},
		{"vulns severity", Request{DataSource: "vulns", Columns: []string{"title"}, Filter: "severity >= High"}, "title", []string{"Outdated TLS", "Weak password"}},
		{"vulns finding status", Request{DataSource: "vulns", Columns: []string{"title"}, Filter: "vuln.status == fixed"}, "title", []string{"Banner"}},
		{"vulns status is host status", Request{DataSource: "vulns", Columns: []string{"title"}, Filter: "status == down"}, "title", []string{"Weak password"}},
		{"vulns host fallback", Request{DataSource: "vulns", Columns: []string{"title"}, Filter: "hostname == db01.acme.local"}, "title", []string{"Weak password"}},
		{"no match", Request{DataSource: "hosts", Columns: []string{"ip"}, Filter: "port == 22"}, "ip", nil},
	}

	b := newTestBuilder(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := b.Run(context.Background(), testProject(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cells(t, tbl, tt.wantCol))
		})
	}
}

func TestRunColumns(t *testing.T) {
	b := newTestBuilder(Options{})
	p := testProject()

	tbl, err := b.Run(context.Background(), p, Request{DataSource: "hosts", Columns: []string{"whois_network", "bogus", "ip"}})
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, "whois_network", tbl.Columns[0].ID)
	assert.Equal(t, []string{"ACME-NET", "10.0.0.5"}, tbl.Rows[0])

	tbl, err = b.Run(context.Background(), p, Request{DataSource: "vulns", Columns: []string{"bogus"}})
	require.NoError(t, err)
	all, err := Columns("vulns")
	require.NoError(t, err)
	assert.Equal(t, all, tbl.Columns)
	assert.Equal(t, []string{"High", "Low", "Critical"}, cells(t, tbl, "severity"))

	tbl, err = b.Run(context.Background(), p, Request{DataSource: "hosts", Columns: []string{"status"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"up", "down", "unknown", "unknown"}, cells(t, tbl, "status"))
}

func TestRunUnknownDataSource(t *testing.T) {
	_, err := newTestBuilder(Options{}).Run(context.Background(), testProject(), Request{DataSource: "subnets"})
	require.ErrorIs(t, err, ErrUnknownDataSource)

	_, err = Columns("subnets")
	require.ErrorIs(t, err, ErrUnknownDataSource)
}

func TestRunChunked(t *testing.T) {
	p := &scope.Project{}
	for i := 0; i < 1000; i++ {
		p.Hosts = append(p.Hosts, scope.Host{IP: "10.0.0.1", Ports: []scope.Port{{Number: uint16(i), Protocol: "tcp"}}})
	}

	b := newTestBuilder(Options{Workers: 4, ChunkSize: 7})
	tbl, err := b.Run(context.Background(), p, Request{DataSource: "ports", Columns: []string{"port"}, Filter: "port < 500"})
	require.NoError(t, err)
	ports := cells(t, tbl, "port")
	require.Len(t, ports, 500)
	assert.Equal(t, "0", ports[0])
	assert.Equal(t, "499", ports[499])
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestBuilder(Options{}).Run(ctx, testProject(), Request{DataSource: "hosts", Filter: "ip exists"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReportFiltersExpressions(t *testing.T) {
	port := uint16(443)
	f := ReportFilters{
		ExcludeUnresolved: true,
		Status:            " Up ",
		Subnet:            "10.0.0.0/24",
		PortNumber:        &port,
		PortProtocol:      "TCP",
		Severity:          "Medium",
	}
	assert.Equal(t, []string{
		"unresolved == false",
		"online exists",
		`subnet == "10.0.0.0/24"`,
		"port == 443",
		`protocol == "tcp"`,
		`severity >= "Medium"`,
	}, f.Expressions())

	assert.Equal(t, []string{"offline exists"}, ReportFilters{Status: "down"}.Expressions())
	assert.Equal(t, []string{"status_unknown exists"}, ReportFilters{Status: "unknown"}.Expressions())
	assert.Empty(t, ReportFilters{Status: "bogus"}.Expressions())
}

func TestRunReport(t *testing.T) {
	port := uint16(443)
	tests := []struct {
		id      string
		filters ReportFilters
		col     string
		want    []string
	}{
		{"ips", ReportFilters{}, "ip", []string{"10.0.0.5", "10.0.1.7"}},
		{"hostnames", ReportFilters{ExcludeUnresolved: true}, "hostname", []string{"alias.acme.local", "db01.acme.local", "web01.acme.local"}},
		{"hosts", ReportFilters{}, "label", []string{"10.0.0.5 (alias.acme.local)", "10.0.0.5 (web01.acme.local)", "10.0.1.7 (db01.acme.local)"}},
		{"hosts", ReportFilters{Status: "offline"}, "ip", []string{"10.0.0.5", "10.0.1.7"}},
		{"open_ports", ReportFilters{}, "port", []string{"80", "443", "5432"}},
		{"open_ports", ReportFilters{PortNumber: &port}, "port", []string{"443"}},
		{"open_ports", ReportFilters{Subnet: "10.0.1.0/24"}, "port", []string{"5432"}},
		{"hosts_by_subnet", ReportFilters{}, "subnet_cidr", []string{"10.0.0.0/24", "10.0.1.0/24", ""}},
		{"unresolved_hosts", ReportFilters{}, "hostname", []string{"old.acme.local"}},
		{"unresolved_hosts", ReportFilters{ExcludeUnresolved: true}, "hostname", []string{"old.acme.local"}},
		{"hosts", ReportFilters{Status: "unknown"}, "label", []string{"10.0.0.5 (alias.acme.local)"}},
		{"vulns_flat", ReportFilters{}, "title", []string{"Banner", "Outdated TLS", "Weak password"}},
		{"vulns_by_severity", ReportFilters{}, "severity", []string{"Critical", "High", "Low"}},
		{"vulns_by_severity", ReportFilters{Severity: "high"}, "title", []string{"Weak password", "Outdated TLS"}},
		{"evidence", ReportFilters{}, "source", []string{"gowitness", "manual"}},
		{"evidence", ReportFilters{Status: "down"}, "filename", []string{"scope.pdf"}},
	}

	b := newTestBuilder(Options{})
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tbl, err := b.RunReport(context.Background(), testProject(), tt.id, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cells(t, tbl, tt.col))
		})
	}
}

func TestRunReportHostStatus(t *testing.T) {
	p := &scope.Project{Hosts: []scope.Host{
		{IP: "10.0.0.1", Vulnerabilities: []scope.VulnerabilityInstance{{Title: "No status host", Status: "open"}}},
		{IP: "10.0.0.2", Status: "up", Vulnerabilities: []scope.VulnerabilityInstance{{Title: "Up host"}}},
	}}
	b := newTestBuilder(Options{})

	tests := []struct {
		id     string
		status string
		want   []string
	}{
		{"vulns_flat", "unknown", []string{"No status host"}},
		{"vulns_flat", "online", []string{"Up host"}},
		{"vulns_by_severity", "unknown", []string{"No status host"}},
	}
	for _, tt := range tests {
		t.Run(tt.id+" "+tt.status, func(t *testing.T) {
			tbl, err := b.RunReport(context.Background(), p, tt.id, ReportFilters{ExcludeUnresolved: true, Status: tt.status})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cells(t, tbl, "title"))
		})
	}

	tbl, err := b.Run(context.Background(), p, Request{DataSource: "vulns", Columns: []string{"title"}, Filter: "status == up"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Up host"}, cells(t, tbl, "title"))
}

func TestSourceKind(t *testing.T) {
	for _, name := range DataSources() {
		kind, err := SourceKind(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, filter.Attributes(kind), name)
	}
	kind, err := SourceKind("vulns")
	require.NoError(t, err)
	assert.Equal(t, scope.KindVulnerability, kind)

	_, err = SourceKind("subnets")
	require.ErrorIs(t, err, ErrUnknownDataSource)
}

func TestRunReportUnknown(t *testing.T) {
	_, err := newTestBuilder(Options{}).RunReport(context.Background(), testProject(), "subnets", ReportFilters{})
	require.ErrorIs(t, err, ErrUnknownReport)
	assert.Len(t, Reports(), 9)
}

func TestFilterTree(t *testing.T) {
	p := testProject()

	got := FilterTree(p, "")
	assert.Same(t, p, got)

	got = FilterTree(p, "port == 5432")
	require.Len(t, got.Hosts, 1)
	assert.Equal(t, "db01.acme.local", got.Hosts[0].DNSName)
	assert.Len(t, got.Hosts[0].Ports, 1)
	assert.Empty(t, got.Hosts[0].Vulnerabilities)
	assert.Empty(t, got.Evidence)

	got = FilterTree(p, `hostname == "web01.acme.local"`)
	require.Len(t, got.Hosts, 1)
	assert.Len(t, got.Hosts[0].Ports, 3, "matching host keeps its children")

	got = FilterTree(p, "pdf")
	assert.Empty(t, got.Hosts)
	assert.Len(t, got.Evidence, 1)

	assert.Len(t, p.Hosts[0].Ports, 3, "input is not modified")
}
