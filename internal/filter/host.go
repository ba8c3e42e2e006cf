package filter

import (
	"fmt"

	"github.com/redopsync/scopefilter/internal/scope"
)

type hostAttr = attribute[scope.Host]

// Derived boolean attributes answer only equality and existence.
var booleanOps = []Operator{OpEquals, OpExists}

var hostAttributes = newRegistry([]string{"ip", "hostname"},
	hostAttr{names: []string{"ip"}, label: "IP", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(h.IP) }},
	hostAttr{names: []string{"hostname", "dns_name"}, label: "Hostname", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(h.DNSName) }},
	hostAttr{names: []string{"status"}, label: "Status", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(h.Status) }},
	hostAttr{names: []string{"subnet"}, label: "Subnet", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(h.Subnet) }},
	hostAttr{names: []string{"unresolved"}, label: "Unresolved", domain: DomainBoolean, ops: booleanOps,
		resolve: func(h scope.Host) Value { return BoolValue(isUnresolved(h)) }},
	hostAttr{names: []string{"resolved"}, label: "Resolved", domain: DomainBoolean, ops: booleanOps,
		resolve: func(h scope.Host) Value { return BoolValue(!isUnresolved(h)) }},
	hostAttr{names: []string{"online"}, label: "Online", domain: DomainBoolean, ops: booleanOps,
		resolve: func(h scope.Host) Value { return BoolValue(isOnline(h)) }},
	hostAttr{names: []string{"offline"}, label: "Offline", domain: DomainBoolean, ops: booleanOps,
		resolve: func(h scope.Host) Value { return BoolValue(!isOnline(h)) }},
	hostAttr{names: []string{"status_unknown"}, label: "Status Unknown", domain: DomainBoolean, ops: booleanOps,
		resolve: func(h scope.Host) Value { return BoolValue(isStatusUnknown(h)) }},
	hostAttr{names: []string{"whois_network"}, label: "Whois Network", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(WhoisField(h.Whois, "network_name", "asn_description")) }},
	hostAttr{names: []string{"whois_asn"}, label: "Whois ASN", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(WhoisField(h.Whois, "asn")) }},
	hostAttr{names: []string{"whois_country"}, label: "Whois Country", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(WhoisField(h.Whois, "country", "asn_country")) }},
	hostAttr{names: []string{"whois_cidr"}, label: "Whois CIDR", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(WhoisField(h.Whois, "cidr")) }},
	hostAttr{names: []string{"whois_type"}, label: "Whois Type", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(WhoisField(h.Whois, "network_type")) }},
	hostAttr{names: []string{"whois_registry"}, label: "Whois Registry", domain: DomainString,
		resolve: func(h scope.Host) Value { return StringValue(WhoisField(h.Whois, "asn_registry")) }},
)

func isUnresolved(h scope.Host) bool {
	return normalize(h.IP) == "unresolved"
}

func isOnline(h scope.Host) bool {
	switch normalize(h.Status) {
	case "online", "up":
		return true
	default:
		return false
	}
}

// isStatusUnknown reports a missing status or one recorded as "unknown".
func isStatusUnknown(h scope.Host) bool {
	s := normalize(h.Status)
	return s == "" || s == "unknown"
}

// WhoisField returns the first non-empty scalar among keys. Nested objects and
// lists are not scalars and count as empty.
func WhoisField(w scope.Whois, keys ...string) string {
	for _, k := range keys {
		switch v := w[k].(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v
			}
		case map[string]any, []any:
			continue
		default:
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// ResolveHost resolves a host attribute. ok is false for unknown attributes.
func ResolveHost(h scope.Host, name string) (Value, bool) {
	return hostAttributes.resolve(h, name)
}
