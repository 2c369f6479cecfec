package binding

import (
	"sort"
	"strings"
)

// MapBinding is the bundled convenience Binding implementation (§1's
// "public input-binding convenience type"): a flat map from identifier to
// Value, with a fluent builder for constructing one inline at a call site.
type MapBinding map[string]Value

// New returns an empty MapBinding.
func New() MapBinding {
	return make(MapBinding)
}

// With returns a copy of m with name bound to v, leaving m untouched. The
// fluent form lets callers build a binding in one expression:
//
//	binding.New().With("user", binding.String{V: "ada"}).With("count", binding.Int{V: 3})
func (m MapBinding) With(name string, v Value) MapBinding {
	out := make(MapBinding, len(m)+1)
	for k, val := range m {
		out[k] = val
	}
	out[name] = v
	return out
}

// Set binds name to v in place and returns m, for callers building up a
// binding imperatively instead of fluently.
func (m MapBinding) Set(name string, v Value) MapBinding {
	m[name] = v
	return m
}

func (m MapBinding) Exists(name string) bool {
	_, ok := m[name]
	return ok
}

func (m MapBinding) Emit(name string, out *strings.Builder) {
	if v, ok := m[name]; ok {
		v.Stringify(out)
	}
}

// Digest returns a stable string summary of the binding, used by
// pkg/rendercache to build cache keys. Two MapBindings with the same
// names bound to values that stringify the same produce the same digest.
func (m MapBinding) Digest() string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(Digest(m[name]))
		b.WriteByte(';')
	}
	return b.String()
}

func (m MapBinding) Iterate(name string) (Cursor, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	c, ok := v.(Container)
	if !ok {
		return nil, false
	}
	return NewCursor(c), true
}
