package filter

import (
	"testing"

	"github.com/redopsync/scopefilter/internal/scope"
	"github.com/redopsync/scopefilter/internal/severity"
)

func mustParse(t *testing.T, input string) Expression {
	t.Helper()
	e, ok := Parse(input)
	if !ok {
		t.Fatalf("Parse(%q) returned no expression", input)
	}
	return e
}

func cvss(f float64) *float64 { return &f }

func TestMatchesHost(t *testing.T) {
	web := scope.Host{IP: "10.0.0.5", DNSName: "Web01.corp.local", Status: "Up", Subnet: "10.0.0.0/24",
		Whois: scope.Whois{"network_name": "CORP-NET", "asn": 64500, "asn_country": "DE", "cidr": "10.0.0.0/8"}}
	other := scope.Host{IP: "10.0.1.5", Status: "offline"}
	unresolved := scope.Host{IP: "Unresolved", DNSName: "ghost.example.com"}
	orgOnly := scope.Host{IP: "192.0.2.1", Whois: scope.Whois{"network_name": "", "asn_description": "Example Org", "country": "US", "asn_country": "CA"}}
	nested := scope.Host{IP: "192.0.2.2", Whois: scope.Whois{"network_name": map[string]any{"name": "x"}, "asn": []any{1, 2}}}

	tests := []struct {
		name string
		expr string
		host scope.Host
		want bool
	}{
		{"ip equals", "ip == 10.0.0.5", web, true},
		{"ip equals other", "ip == 10.0.0.5", other, false},
		{"ip contains", `ip contains "10.0."`, web, true},
		{"hostname case-insensitive", `hostname == "web01.CORP.local"`, web, true},
		{"dns_name alias", `dns_name contains "corp"`, web, true},
		{"hostname exists empty", "hostname exists", other, false},
		{"status not equals", `status != "up"`, web, false},
		{"subnet equals", `subnet == "10.0.0.0/24"`, web, true},
		{"string ordering never matches", `ip > "1"`, web, false},

		{"unresolved true", "unresolved == true", unresolved, true},
		{"unresolved false", "unresolved == false", web, true},
		{"unresolved exists", "unresolved exists", unresolved, true},
		{"unresolved exists on resolved host", "unresolved exists", web, false},
		{"unresolved quoted true", `unresolved == "TRUE"`, unresolved, true},
		{"unresolved not equals disallowed", "unresolved != false", unresolved, false},
		{"resolved", "resolved == true", web, true},
		{"online up", "online == true", web, true},
		{"online offline status", "online == true", other, false},
		{"status unknown when missing", "status_unknown exists", unresolved, true},
		{"status unknown when recorded", "status_unknown == true", scope.Host{IP: "10.0.0.9", Status: "Unknown"}, true},
		{"status unknown known status", "status_unknown exists", web, false},
		{"missing status does not exist", "status exists", unresolved, false},
		{"offline", "offline exists", other, true},
		{"online contains disallowed", `online contains "t"`, web, false},
		{"online integer operand", "online == 1", web, false},

		{"whois network", `whois_network == "corp-net"`, web, true},
		{"whois network falls back", `whois_network == "example org"`, orgOnly, true},
		{"whois asn number", "whois_asn == 64500", web, true},
		{"whois country fallback", `whois_country == "de"`, web, true},
		{"whois country preferred", `whois_country == "us"`, orgOnly, true},
		{"whois cidr", `whois_cidr contains "10."`, web, true},
		{"whois missing exists", "whois_asn exists", other, false},
		{"whois missing contains empty", `whois_asn contains ""`, other, true},
		{"whois nested value is empty", "whois_network exists", nested, false},
		{"whois list value is empty", `whois_asn contains ""`, nested, true},
		{"whois type absent", "whois_type exists", web, false},

		{"unsupported attribute", "port == 443", web, false},
		{"unsupported attribute exists", "severity exists", web, false},
		{"unsupported attribute not equals", "title != x", web, false},

		{"smart ip prefix", "10.0.0.", web, true},
		{"smart ip prefix miss", "10.0.0.", other, false},
		{"smart hostname", "WEB01", web, true},
		{"smart ignores status", "offline", other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesHost(mustParse(t, tt.expr), tt.host); got != tt.want {
				t.Errorf("MatchesHost(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatchesPort(t *testing.T) {
	https := scope.Port{Number: 443, Protocol: "tcp", ServiceName: "https", State: "open", ServiceVersion: "nginx 1.18.0"}
	http := scope.Port{Number: 80, Protocol: "TCP", ServiceName: "http"}
	dns := scope.Port{Number: 53, Protocol: "udp", ServiceName: "domain", ServiceVersion: "9.16.1 (Ubuntu)"}

	tests := []struct {
		name string
		expr string
		port scope.Port
		want bool
	}{
		{"port ge match", "port >= 443", https, true},
		{"port ge miss", "port >= 443", http, false},
		{"port le", "port <= 80", http, true},
		{"port gt", "port > 80", http, false},
		{"port lt", "port < 443", http, true},
		{"port equals", "port == 80", http, true},
		{"port not equals", "port != 80", https, true},
		{"port_number alias", "port_number == 443", https, true},
		{"port quoted digits", `port == "443"`, https, true},
		{"port text operand", "port == https", https, false},
		{"port contains", `port contains "44"`, https, false},
		{"port exists", "port exists", http, true},
		{"protocol case-insensitive", "protocol == tcp", http, true},
		{"service contains https", `service contains "http"`, https, true},
		{"service contains http", `service contains "http"`, http, true},
		{"state exists", "state exists", https, true},
		{"state missing", "state exists", http, false},
		{"state equals", `state == "OPEN"`, https, true},
		{"version ordering", `service_version >= "9.0"`, dns, true},
		{"version ordering miss", `version < "9.16"`, dns, false},
		{"version unparsable", `version > "1"`, https, false},
		{"version contains", `version contains "ubuntu"`, dns, true},

		{"unsupported attribute", "severity >= high", https, false},

		{"smart number", "443", https, true},
		{"smart protocol", "udp", dns, true},
		{"smart service", "domain", dns, true},
		{"smart miss", "open", https, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesPort(mustParse(t, tt.expr), tt.port); got != tt.want {
				t.Errorf("MatchesPort(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatchesPortEndToEnd(t *testing.T) {
	ports := []scope.Port{
		{Number: 443, Protocol: "tcp", ServiceName: "https"},
		{Number: 80, Protocol: "tcp", ServiceName: "http"},
	}
	count := func(expr string) []uint16 {
		e := mustParse(t, expr)
		var out []uint16
		for _, p := range ports {
			if MatchesPort(e, p) {
				out = append(out, p.Number)
			}
		}
		return out
	}

	if got := count("port >= 443"); len(got) != 1 || got[0] != 443 {
		t.Errorf("port >= 443 matched %v, want [443]", got)
	}
	if got := count(`service contains "http"`); len(got) != 2 {
		t.Errorf(`service contains "http" matched %v, want both`, got)
	}
}

func TestMatchesEvidence(t *testing.T) {
	shot := scope.Evidence{
		Caption:  "Response code: 200\nServer: nginx/1.18.0\nPage title: Admin Login",
		Filename: "web01_443.png",
		MIME:     "Image/PNG",
		Source:   "gowitness",
	}
	plain := scope.Evidence{Caption: "Apache Tomcat default page", Filename: "notes.txt", MIME: "text/plain", Source: "manual"}
	empty := scope.Evidence{Filename: "blank.bin"}
	underscored := scope.Evidence{Caption: "response_code=404 server = Apache"}

	tests := []struct {
		name string
		expr string
		ev   scope.Evidence
		want bool
	}{
		{"screenshot", "screenshot exists", shot, true},
		{"screenshot text", "screenshot exists", plain, false},
		{"screenshot equals false", "screenshot == false", plain, true},
		{"source", "source == gowitness", shot, true},
		{"response code", "response_code == 200", shot, true},
		{"response code ordering", "response_code >= 400", underscored, true},
		{"response code quoted", `response_code == "404"`, underscored, true},
		{"response code absent", "response_code exists", plain, false},
		{"response code absent never equal", "response_code != 200", plain, false},
		{"server", `server contains "nginx"`, shot, true},
		{"server equals separator", `server == "apache"`, underscored, true},
		{"server absent", "server exists", plain, false},
		{"page title label", `page_title == "admin login"`, shot, true},
		{"page title fallback", `page_title == "apache tomcat default page"`, plain, true},
		{"technology is caption", `technology contains "tomcat"`, plain, true},
		{"no caption page title", "page_title exists", empty, false},
		{"no caption technology", `technology contains ""`, empty, true},
		{"filename", `filename contains ".png"`, shot, true},
		{"mime", `mime == "text/plain"`, plain, true},

		{"unsupported attribute", "ip exists", shot, false},

		{"smart caption", "tomcat", plain, true},
		{"smart filename", "web01_443", shot, true},
		{"smart source", "manual", plain, true},
		{"smart miss", "image", shot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesEvidence(mustParse(t, tt.expr), tt.ev); got != tt.want {
				t.Errorf("MatchesEvidence(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatchesVulnerability(t *testing.T) {
	high := scope.VulnerabilityInstance{Title: "Outdated TLS", CVSSScore: cvss(7.5), Status: "open"}
	low := scope.VulnerabilityInstance{Title: "Banner disclosure", CVSSScore: cvss(3.0)}
	overridden := scope.VulnerabilityInstance{Title: "SQL Injection", ManualSeverity: severity.Low, CVSSScore: cvss(9.8)}
	unscored := scope.VulnerabilityInstance{Title: "Note"}

	tests := []struct {
		name string
		expr string
		vuln scope.VulnerabilityInstance
		want bool
	}{
		{"ordinal ge", "severity >= Medium", high, true},
		{"ordinal ge low", "severity >= Medium", low, false},
		{"ordinal lt", "severity < critical", high, true},
		{"ordinal equals quoted", `severity == "HIGH"`, high, true},
		{"dotted alias", "vuln.severity == high", high, true},
		{"override equals", "severity == Low", overridden, true},
		{"override not critical", "severity == Critical", overridden, false},
		{"override ordering", "severity >= High", overridden, false},
		{"no cvss is info", "severity == info", unscored, true},
		{"rank integer", "severity == 4", high, true},
		{"rank quoted integer", `severity > "3"`, high, true},
		{"unknown level equals", "severity == urgent", high, false},
		{"unknown level not equals", "severity != urgent", high, true},
		{"severity contains", `severity contains "hi"`, high, false},
		{"severity exists", "severity exists", unscored, true},

		{"cvss ge", "cvss >= 7", high, true},
		{"cvss lt", "vuln.cvss < 7", high, false},
		{"cvss equals", "cvss == 3", low, true},
		{"cvss float operand never matches", "cvss >= 7.5", high, false},
		{"cvss missing", "cvss < 10", unscored, false},
		{"cvss missing not equals", "cvss != 1", unscored, false},
		{"cvss missing exists", "cvss exists", unscored, false},

		{"title", `vuln.title contains "tls"`, high, true},
		{"finding status", "vuln.status == open", high, true},
		{"bare status is a host attribute", "status == open", high, false},

		{"unsupported attribute", "port > 1", high, false},

		{"smart title", "injection", overridden, true},
		{"smart severity name", "high", high, true},
		{"smart effective severity", "critical", overridden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesVulnerability(mustParse(t, tt.expr), tt.vuln); got != tt.want {
				t.Errorf("MatchesVulnerability(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestUnsupportedNeverMatches(t *testing.T) {
	for _, op := range Operators {
		var operand Literal = Text{Value: "x"}
		if op == OpExists {
			operand = nil
		}
		e := NewExpression("nope", op, operand)
		if Evaluate(e, Value{}, false) {
			t.Errorf("Evaluate(%s) on unsupported attribute = true", op)
		}
		if MatchesHost(e, scope.Host{IP: "x"}) {
			t.Errorf("MatchesHost(%s) on unknown attribute = true", op)
		}
	}
}

func TestResolve(t *testing.T) {
	v, ok := ResolveHost(scope.Host{IP: " 10.0.0.1 "}, "IP")
	if !ok || v.Text != "10.0.0.1" || v.Domain != DomainString {
		t.Errorf("ResolveHost(IP) = %+v, %v", v, ok)
	}
	if _, ok := ResolvePort(scope.Port{}, "hostname"); ok {
		t.Error("ResolvePort(hostname) should be unsupported")
	}
	v, ok = ResolveEvidence(scope.Evidence{Caption: "Response code: 301"}, "response_code")
	if !ok || !v.Present || v.Int != 301 {
		t.Errorf("ResolveEvidence(response_code) = %+v, %v", v, ok)
	}
	v, ok = ResolveVulnerability(scope.VulnerabilityInstance{CVSSScore: cvss(9.1)}, "vuln.severity")
	if !ok || v.Level != severity.Critical {
		t.Errorf("ResolveVulnerability(vuln.severity) = %+v, %v", v, ok)
	}
}

func TestSupports(t *testing.T) {
	tests := []struct {
		kind scope.Kind
		attr string
		want bool
	}{
		{scope.KindHost, "ip", true},
		{scope.KindHost, "Whois_ASN", true},
		{scope.KindHost, "port", false},
		{scope.KindPort, "port_number", true},
		{scope.KindEvidence, "screenshot", true},
		{scope.KindVulnerability, "vuln.cvss", true},
		{scope.KindVulnerability, "vuln.status", true},
		{scope.KindVulnerability, "status", false},
		{scope.KindHost, "status_unknown", true},
		{scope.KindVulnerability, "_smart", true},
		{scope.Kind("subnet"), "ip", false},
	}
	for _, tt := range tests {
		if got := Supports(tt.kind, tt.attr); got != tt.want {
			t.Errorf("Supports(%s, %s) = %v, want %v", tt.kind, tt.attr, got, tt.want)
		}
	}
}

func TestAttributes(t *testing.T) {
	for _, kind := range []scope.Kind{scope.KindHost, scope.KindPort, scope.KindEvidence, scope.KindVulnerability} {
		attrs := Attributes(kind)
		if len(attrs) == 0 {
			t.Fatalf("Attributes(%s) is empty", kind)
		}
		for _, a := range attrs {
			if !Supports(kind, a.ID) {
				t.Errorf("Attributes(%s) lists %s but Supports is false", kind, a.ID)
			}
			for _, alias := range a.Aliases {
				if !Supports(kind, alias) {
					t.Errorf("Attributes(%s) lists alias %s but Supports is false", kind, alias)
				}
			}
			if a.Label == "" || len(a.Operators) == 0 {
				t.Errorf("Attributes(%s): %s has no label or operators", kind, a.ID)
			}
		}
		for _, name := range SmartAttributes(kind) {
			if !Supports(kind, name) {
				t.Errorf("smart attribute %s of %s is not supported", name, kind)
			}
		}
	}
	if Attributes(scope.Kind("subnet")) != nil {
		t.Error("unknown kind should have no attributes")
	}
}

func TestBooleanAttributesRestrictOperators(t *testing.T) {
	for _, a := range Attributes(scope.KindHost) {
		if a.Domain != DomainBoolean {
			continue
		}
		if len(a.Operators) != 2 || a.Operators[0] != OpEquals || a.Operators[1] != OpExists {
			t.Errorf("%s operators = %v, want [== exists]", a.ID, a.Operators)
		}
	}
}
