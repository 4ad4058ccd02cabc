package execution

import "sort"

// Binding is a single named value held in Memory.
type Binding struct {
	Kind     string
	Value    any
	Constant bool
}

// Memory maps variable names to bindings for one execution. Scopes chain to a
// parent so lookups fall through to enclosing blocks; declarations always land
// in the innermost scope.
type Memory struct {
	vars   map[string]Binding
	parent *Memory
}

// NewMemory returns an empty top-level scope.
func NewMemory() *Memory {
	return &Memory{vars: make(map[string]Binding)}
}

// Child opens a nested scope whose lookups fall back to m.
func (m *Memory) Child() *Memory {
	return &Memory{vars: make(map[string]Binding), parent: m}
}

// Parent returns the enclosing scope, or nil for the top level.
func (m *Memory) Parent() *Memory {
	if m == nil {
		return nil
	}
	return m.parent
}

// Lookup resolves name through the scope chain.
func (m *Memory) Lookup(name string) (Binding, bool) {
	for scope := m; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Declared reports whether name is bound in this scope, ignoring parents.
func (m *Memory) Declared(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.vars[name]
	return ok
}

// Declare binds name in the innermost scope, replacing any previous binding there.
func (m *Memory) Declare(name string, b Binding) {
	m.vars[name] = b
}

// Assign updates the value of the nearest existing binding for name. It
// returns false when name is not bound anywhere in the chain.
func (m *Memory) Assign(name string, value any) bool {
	for scope := m; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			b.Value = value
			scope.vars[name] = b
			return true
		}
	}
	return false
}

// Names lists the names visible from this scope in sorted order.
func (m *Memory) Names() []string {
	seen := make(map[string]struct{})
	for scope := m; scope != nil; scope = scope.parent {
		for name := range scope.vars {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
