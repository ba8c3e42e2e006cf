package filter

import "strings"

// attribute is one named field of an entity kind.
type attribute[T any] struct {
	names   []string // canonical id first, then aliases
	label   string
	domain  Domain
	ops     []Operator // nil means every operator the domain supports
	resolve func(T) Value
}

// allows reports whether op may be applied to this attribute.
func (a *attribute[T]) allows(op Operator) bool {
	for _, o := range a.operators() {
		if o == op {
			return true
		}
	}
	return false
}

func (a *attribute[T]) operators() []Operator {
	if a.ops != nil {
		return a.ops
	}
	return domainOperators[a.domain]
}

// domainOperators lists the operators that can match in each domain.
var domainOperators = map[Domain][]Operator{
	DomainString:   {OpEquals, OpNotEquals, OpContains, OpExists},
	DomainInteger:  {OpEquals, OpNotEquals, OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpExists},
	DomainFloat:    {OpEquals, OpNotEquals, OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpExists},
	DomainBoolean:  {OpEquals, OpNotEquals, OpExists},
	DomainSeverity: {OpEquals, OpNotEquals, OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpExists},
	DomainVersion:  {OpEquals, OpNotEquals, OpContains, OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpExists},
}

// registry is the static attribute table of one entity kind.
type registry[T any] struct {
	attrs  []*attribute[T]
	byName map[string]*attribute[T]
	smart  []string // attributes searched by a fallback expression
}

func newRegistry[T any](smart []string, attrs ...attribute[T]) *registry[T] {
	r := &registry[T]{byName: make(map[string]*attribute[T]), smart: smart}
	for i := range attrs {
		a := &attrs[i]
		r.attrs = append(r.attrs, a)
		for _, name := range a.names {
			if _, dup := r.byName[name]; dup {
				panic("filter: duplicate attribute " + name)
			}
			r.byName[name] = a
		}
	}
	for _, name := range smart {
		if _, ok := r.byName[name]; !ok {
			panic("filter: smart search attribute " + name + " is not registered")
		}
	}
	return r
}

// resolve looks up name (case-insensitively) and resolves it on entity.
func (r *registry[T]) resolve(entity T, name string) (Value, bool) {
	a, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Value{}, false
	}
	return a.resolve(entity), true
}

// match evaluates e against entity.
func (r *registry[T]) match(e Expression, entity T) bool {
	if e.Smart() {
		return r.matchSmart(e, entity)
	}
	a, ok := r.byName[e.Attribute]
	if !ok {
		return Evaluate(e, Value{}, false)
	}
	if !a.allows(e.Operator) {
		return false
	}
	return Evaluate(e, a.resolve(entity), true)
}

// matchSmart reports whether any default attribute contains the operand.
func (r *registry[T]) matchSmart(e Expression, entity T) bool {
	if e.Operand == nil {
		return false
	}
	needle := normalize(e.Operand.String())
	for _, name := range r.smart {
		if strings.Contains(r.byName[name].resolve(entity).Display(), needle) {
			return true
		}
	}
	return false
}

// supports reports whether name is an attribute of this kind.
func (r *registry[T]) supports(name string) bool {
	_, ok := r.byName[strings.ToLower(name)]
	return ok
}

// info describes every attribute for catalogs.
func (r *registry[T]) info() []AttributeInfo {
	out := make([]AttributeInfo, 0, len(r.attrs))
	for _, a := range r.attrs {
		out = append(out, AttributeInfo{
			ID:        a.names[0],
			Aliases:   append([]string(nil), a.names[1:]...),
			Label:     a.label,
			Domain:    a.domain,
			Operators: append([]Operator(nil), a.operators()...),
		})
	}
	return out
}
