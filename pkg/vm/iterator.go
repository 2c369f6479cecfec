package vm

import "github.com/fae-lang/fae/pkg/binding"

// iterState is the render-scoped bookkeeping for one active $(for) loop:
// the cursor over its container, and the value the cursor last produced
// (what the loop-item name currently resolves to).
type iterState struct {
	cursor  binding.Cursor
	current binding.Value
}

// iterators maps loop-item name index to the active iteration over its
// container, if any. It is created fresh for every render and is bounded
// by the maximum static nesting depth of for-blocks (§5).
type iterators map[uint32]*iterState

// advance implements §4.2's advance(item, list): it either starts a new
// iteration over the container bound to names[list], or steps the
// existing one forward. It returns false when the loop body should not
// run for this pass (container absent, not iterable, empty, or
// exhausted) — in which case VM has already removed any stale entry.
func (it iterators) advance(b binding.Binding, names []string, itemIdx, listIdx uint32) bool {
	state, active := it[itemIdx]
	if !active {
		cursor, ok := b.Iterate(names[listIdx])
		if !ok {
			return false
		}
		v, ok := cursor.Next()
		if !ok {
			return false
		}
		it[itemIdx] = &iterState{cursor: cursor, current: v}
		return true
	}

	v, ok := state.cursor.Next()
	if !ok {
		delete(it, itemIdx)
		return false
	}
	state.current = v
	return true
}
