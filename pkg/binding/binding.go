package binding

import "strings"

// Cursor walks a Container one element at a time. Next reports the next
// element and whether one was available; once it returns false the cursor
// is exhausted.
type Cursor interface {
	Next() (Value, bool)
}

// Binding is the capability the VM renders against (§9 "Capability-based
// binding"): existence tests, value emission, and container iteration.
// The VM never inspects a Binding's internals — it only calls these three
// methods — so a host can back this with a struct, a database row, or
// anything else that can answer these questions.
type Binding interface {
	// Exists reports whether name is bound. The VM also consults its own
	// loop-iterator state for loop-local names; Exists only needs to
	// answer for names the Binding itself knows about.
	Exists(name string) bool

	// Emit writes name's current value to out. A no-op if name is unbound
	// — missing bindings are not errors (§7).
	Emit(name string, out *strings.Builder)

	// Iterate returns a Cursor over the container bound to name, or
	// ok=false if name is unbound or not iterable.
	Iterate(name string) (cursor Cursor, ok bool)
}

// sliceCursor walks a Container's Items in order.
type sliceCursor struct {
	items []Value
	pos   int
}

func (c *sliceCursor) Next() (Value, bool) {
	if c.pos >= len(c.items) {
		return nil, false
	}
	v := c.items[c.pos]
	c.pos++
	return v, true
}

// NewCursor returns a Cursor over a Container's elements in order, for use
// by Binding implementations whose containers already model Container.
func NewCursor(c Container) Cursor {
	return &sliceCursor{items: c.Items}
}
