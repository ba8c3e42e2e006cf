package filter

import "github.com/redopsync/scopefilter/internal/scope"

type portAttr = attribute[scope.Port]

var portAttributes = newRegistry([]string{"port", "protocol", "service"},
	portAttr{names: []string{"port", "port_number"}, label: "Port", domain: DomainInteger,
		resolve: func(p scope.Port) Value { return IntValue(int64(p.Number)) }},
	portAttr{names: []string{"protocol"}, label: "Protocol", domain: DomainString,
		resolve: func(p scope.Port) Value { return StringValue(p.Protocol) }},
	portAttr{names: []string{"service"}, label: "Service", domain: DomainString,
		resolve: func(p scope.Port) Value { return StringValue(p.ServiceName) }},
	portAttr{names: []string{"state"}, label: "State", domain: DomainString,
		resolve: func(p scope.Port) Value { return StringValue(p.State) }},
	portAttr{names: []string{"service_version", "version"}, label: "Service Version", domain: DomainVersion,
		resolve: func(p scope.Port) Value { return VersionValue(p.ServiceVersion) }},
)

// ResolvePort resolves a port attribute. ok is false for unknown attributes.
func ResolvePort(p scope.Port, name string) (Value, bool) {
	return portAttributes.resolve(p, name)
}
