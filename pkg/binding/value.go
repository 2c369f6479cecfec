// Package binding provides the host-side adapter the VM renders against:
// a tagged Value sum type, the capability-based Binding interface the VM
// is written against (§9's "Capability-based binding" design note), and a
// MapBinding convenience implementation (§1's "public input-binding
// convenience type").
//
// Grounded on the teacher's pkg/vm/value.go: one small struct per variant,
// each carrying a single method — here Stringify instead of Type, since
// Fae's VM only ever needs a value's rendered text, never its kind.
package binding

import (
	"strconv"
	"strings"
)

// Value is anything a Binding can hand back to the VM for a name. The host
// decides how its own domain types map onto these five kinds; Fae never
// inspects a Value beyond asking it to Stringify itself or, for
// containers, to iterate.
type Value interface {
	// Stringify writes the value's rendered text to out.
	Stringify(out *strings.Builder)
}

// Bool is a boolean Value. Rendering it does not special-case truthiness —
// $(if v) only tests presence (§8 scenario 4), never a Bool's value.
type Bool struct{ V bool }

func (b Bool) Stringify(out *strings.Builder) { out.WriteString(strconv.FormatBool(b.V)) }

// Int is an integer Value.
type Int struct{ V int64 }

func (i Int) Stringify(out *strings.Builder) { out.WriteString(strconv.FormatInt(i.V, 10)) }

// Float is a floating-point Value.
type Float struct{ V float64 }

func (f Float) Stringify(out *strings.Builder) {
	out.WriteString(strconv.FormatFloat(f.V, 'g', -1, 64))
}

// String is a string Value.
type String struct{ V string }

func (s String) Stringify(out *strings.Builder) { out.WriteString(s.V) }

// Container is an ordered sequence of Values, the only Value kind that can
// back a $(for x in xs) loop. Stringifying a Container directly (e.g. via
// a bare $(xs) substitution) concatenates its elements' stringification —
// there is no separator, matching the spec's silence on the question (a
// host wanting a different join should flatten the container itself before
// binding it).
type Container struct{ Items []Value }

func (c Container) Stringify(out *strings.Builder) {
	for _, v := range c.Items {
		v.Stringify(out)
	}
}

// Len reports the number of elements. The VM's iterator bookkeeping does
// not call it; loops walk a Container through a Cursor (see NewCursor).
func (c Container) Len() int { return len(c.Items) }

// At returns the element at index i.
func (c Container) At(i int) Value { return c.Items[i] }

// Digest returns a stable string form of the value, used only by
// pkg/rendercache to build cache keys; it is not part of the VM's render
// path.
func Digest(v Value) string {
	var b strings.Builder
	v.Stringify(&b)
	return b.String()
}
