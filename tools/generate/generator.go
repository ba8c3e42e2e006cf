// Package generate builds synthetic project datasets for demos and benchmarks.
package generate

import (
	"fmt"
	"math/rand/v2"

	"github.com/redopsync/scopefilter/internal/scope"
	"github.com/redopsync/scopefilter/internal/severity"
)

// ProjectGenerator produces a deterministic project for a given seed.
type ProjectGenerator struct {
	Name    string
	Subnets int // /24 networks under 10.0.0.0/8
	Hosts   int // hosts per subnet
	Seed    uint64
}

// Address space limits of the 10.0.0.0/8 layout.
const (
	MaxSubnets = 1 << 16
	MaxHosts   = 254
)

// Validate checks that every generated address fits the 10.0.0.0/8 layout.
func (g ProjectGenerator) Validate() error {
	if g.Subnets < 0 || g.Subnets > MaxSubnets {
		return fmt.Errorf("subnets must be between 0 and %d, got %d", MaxSubnets, g.Subnets)
	}
	if g.Hosts < 0 || g.Hosts > MaxHosts {
		return fmt.Errorf("hosts must be between 0 and %d, got %d", MaxHosts, g.Hosts)
	}
	return nil
}

type service struct {
	port     uint16
	name     string
	versions []string
}

var services = []service{
	{22, "ssh", []string{"OpenSSH 8.9p1", "OpenSSH 9.6p1"}},
	{80, "http", []string{"nginx 1.18.0", "Apache httpd 2.4.57"}},
	{443, "https", []string{"nginx 1.24.0", "Microsoft IIS httpd 10.0"}},
	{445, "microsoft-ds", nil},
	{3306, "mysql", []string{"8.0.36", "5.7.44"}},
	{5432, "postgresql", []string{"15.4", "9.6.24"}},
	{8080, "http-proxy", []string{"Apache Tomcat 9.0.80"}},
}

var findings = []struct {
	title string
	cvss  float64
}{
	{"Outdated TLS configuration", 7.5},
	{"Directory listing enabled", 5.3},
	{"SSH weak key exchange algorithms", 3.7},
	{"Default credentials", 9.8},
	{"Server banner disclosure", 0},
}

var titles = []string{"Login", "Dashboard", "Welcome to nginx!", "Apache Tomcat", "IIS Windows Server"}

// Generate builds the project.
func (g ProjectGenerator) Generate() *scope.Project {
	r := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))
	p := &scope.Project{Name: g.Name}

	for s := 0; s < g.Subnets; s++ {
		cidr := fmt.Sprintf("10.%d.%d.0/24", s/256, s%256)
		for h := 0; h < g.Hosts; h++ {
			p.Hosts = append(p.Hosts, g.host(r, s, h, cidr))
		}
	}
	// A few names that never resolved, plus loose project evidence.
	for i := 0; i < max(1, g.Subnets); i++ {
		p.Hosts = append(p.Hosts, scope.Host{IP: "unresolved", DNSName: fmt.Sprintf("legacy%02d.%s.example", i, g.Name)})
	}
	p.Evidence = append(p.Evidence, scope.Evidence{Caption: "Rules of engagement", Filename: "roe.pdf", MIME: "application/pdf", Source: "manual"})
	return p
}

func (g ProjectGenerator) host(r *rand.Rand, subnet, n int, cidr string) scope.Host {
	ip := fmt.Sprintf("10.%d.%d.%d", subnet/256, subnet%256, n+1)
	h := scope.Host{
		IP:     ip,
		Status: "up",
		Subnet: cidr,
		Whois: scope.Whois{
			"network_name": fmt.Sprintf("%s-NET-%d", g.Name, subnet),
			"asn":          fmt.Sprint(64500 + subnet),
			"country":      []string{"DE", "NL", "US"}[subnet%3],
			"cidr":         cidr,
		},
	}
	if r.IntN(4) == 0 {
		h.Status = "down"
	}
	if r.IntN(3) > 0 {
		h.DNSName = fmt.Sprintf("host%d-%d.%s.example", subnet, n+1, g.Name)
	}

	for _, svc := range services {
		if r.IntN(3) != 0 {
			continue
		}
		port := scope.Port{Number: svc.port, Protocol: "tcp", State: "open", ServiceName: svc.name}
		if len(svc.versions) > 0 {
			port.ServiceVersion = svc.versions[r.IntN(len(svc.versions))]
		}
		h.Ports = append(h.Ports, port)

		if svc.name == "http" || svc.name == "https" || svc.name == "http-proxy" {
			code := []int{200, 301, 403, 404}[r.IntN(4)]
			h.Evidence = append(h.Evidence, scope.Evidence{
				Caption: fmt.Sprintf("Response code: %d\nServer: %s\nPage title: %s",
					code, port.ServiceVersion, titles[r.IntN(len(titles))]),
				Filename: fmt.Sprintf("%s_%d.png", ip, svc.port),
				MIME:     "image/png",
				Source:   "gowitness",
			})
		}
	}

	for _, f := range findings {
		if r.IntN(5) != 0 {
			continue
		}
		v := scope.VulnerabilityInstance{Title: f.title, Status: "open"}
		if f.cvss > 0 {
			score := f.cvss
			v.CVSSScore = &score
		}
		if r.IntN(6) == 0 {
			v.ManualSeverity = severity.Levels[r.IntN(len(severity.Levels))]
		}
		h.Vulnerabilities = append(h.Vulnerabilities, v)
	}
	return h
}
