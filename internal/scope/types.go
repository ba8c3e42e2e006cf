// Package scope provides the read-only project records that filters are evaluated against.
package scope

import "github.com/redopsync/scopefilter/internal/severity"

// Kind identifies an entity kind.
type Kind string

const (
	KindHost          Kind = "host"
	KindPort          Kind = "port"
	KindEvidence      Kind = "evidence"
	KindVulnerability Kind = "vulnerability"
)

func (k Kind) String() string { return string(k) }

// Whois holds the structured whois/RDAP side-map attached to a host.
// Values are left untyped because importers store whatever the source document carried.
type Whois map[string]any

// Host is a network host in the project scope.
type Host struct {
	IP      string `yaml:"ip" json:"ip"`
	DNSName string `yaml:"dns_name,omitempty" json:"dns_name,omitempty"`
	Status  string `yaml:"status,omitempty" json:"status,omitempty"`
	Subnet  string `yaml:"subnet,omitempty" json:"subnet,omitempty"` // CIDR of the owning subnet
	Whois   Whois  `yaml:"whois,omitempty" json:"whois,omitempty"`

	Ports           []Port                  `yaml:"ports,omitempty" json:"ports,omitempty"`
	Evidence        []Evidence              `yaml:"evidence,omitempty" json:"evidence,omitempty"`
	Vulnerabilities []VulnerabilityInstance `yaml:"vulnerabilities,omitempty" json:"vulnerabilities,omitempty"`
}

// Port is an open (or observed) port on a host.
type Port struct {
	Number         uint16 `yaml:"number" json:"number"`
	Protocol       string `yaml:"protocol" json:"protocol"`
	State          string `yaml:"state,omitempty" json:"state,omitempty"`
	ServiceName    string `yaml:"service_name,omitempty" json:"service_name,omitempty"`
	ServiceVersion string `yaml:"service_version,omitempty" json:"service_version,omitempty"`
}

// Evidence is a screenshot or text artifact with a free-form caption.
type Evidence struct {
	Caption  string `yaml:"caption,omitempty" json:"caption,omitempty"`
	Filename string `yaml:"filename" json:"filename"`
	MIME     string `yaml:"mime,omitempty" json:"mime,omitempty"`
	Source   string `yaml:"source,omitempty" json:"source,omitempty"`
}

// VulnerabilityInstance is a finding recorded against a host.
type VulnerabilityInstance struct {
	Title          string         `yaml:"title,omitempty" json:"title,omitempty"`
	ManualSeverity severity.Level `yaml:"manual_severity,omitempty" json:"manual_severity,omitempty"`
	CVSSScore      *float64       `yaml:"cvss_score,omitempty" json:"cvss_score,omitempty"`
	Status         string         `yaml:"status,omitempty" json:"status,omitempty"`
}

// EffectiveSeverity returns the manual override if set, else the CVSS-derived level.
func (v VulnerabilityInstance) EffectiveSeverity() severity.Level {
	return severity.Effective(v.ManualSeverity, v.CVSSScore)
}

// Project is a complete scope dataset.
type Project struct {
	Name  string `yaml:"name" json:"name"`
	Hosts []Host `yaml:"hosts" json:"hosts"`
	// Evidence not attached to any host.
	Evidence []Evidence `yaml:"evidence,omitempty" json:"evidence,omitempty"`
}
