package binding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapBindingWithLeavesOriginalUntouched(t *testing.T) {
	base := New().With("a", Int{V: 1})
	extended := base.With("b", Int{V: 2})

	assert.True(t, base.Exists("a"))
	assert.False(t, base.Exists("b"))
	assert.True(t, extended.Exists("a"))
	assert.True(t, extended.Exists("b"))
}

func TestMapBindingSetMutatesInPlace(t *testing.T) {
	m := New()
	same := m.Set("x", String{V: "y"})
	assert.True(t, m.Exists("x"))
	assert.True(t, same.Exists("x"))
}

func TestMapBindingEmitMissingIsNoOp(t *testing.T) {
	m := New()
	var b strings.Builder
	m.Emit("missing", &b)
	assert.Equal(t, "", b.String())
}

func TestMapBindingEmitKnown(t *testing.T) {
	m := New().With("name", String{V: "ada"})
	var b strings.Builder
	m.Emit("name", &b)
	assert.Equal(t, "ada", b.String())
}

func TestMapBindingDigestIsOrderIndependent(t *testing.T) {
	a := New().With("x", Int{V: 1}).With("y", Int{V: 2})
	b := New().With("y", Int{V: 2}).With("x", Int{V: 1})
	assert.Equal(t, a.Digest(), b.Digest())
}

func TestMapBindingDigestDistinguishesValues(t *testing.T) {
	a := New().With("x", Int{V: 1})
	b := New().With("x", Int{V: 2})
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestMapBindingIterateOverContainer(t *testing.T) {
	items := Container{Items: []Value{Int{V: 1}, Int{V: 2}}}
	m := New().With("xs", items)

	cursor, ok := m.Iterate("xs")
	require.True(t, ok)

	v, ok := cursor.Next()
	require.True(t, ok)
	assert.Equal(t, Int{V: 1}, v)

	v, ok = cursor.Next()
	require.True(t, ok)
	assert.Equal(t, Int{V: 2}, v)

	_, ok = cursor.Next()
	assert.False(t, ok)
}

func TestMapBindingIterateMissingOrNonContainer(t *testing.T) {
	m := New().With("x", Int{V: 1})

	_, ok := m.Iterate("missing")
	assert.False(t, ok)

	_, ok = m.Iterate("x")
	assert.False(t, ok)
}

func TestNewCursorExhaustsInOrder(t *testing.T) {
	c := Container{Items: []Value{String{V: "a"}, String{V: "b"}}}
	cursor := NewCursor(c)

	v, ok := cursor.Next()
	require.True(t, ok)
	assert.Equal(t, String{V: "a"}, v)

	v, ok = cursor.Next()
	require.True(t, ok)
	assert.Equal(t, String{V: "b"}, v)

	_, ok = cursor.Next()
	assert.False(t, ok)
}
