package binding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stringify(v Value) string {
	var b strings.Builder
	v.Stringify(&b)
	return b.String()
}

func TestValueStringify(t *testing.T) {
	assert.Equal(t, "true", stringify(Bool{V: true}))
	assert.Equal(t, "false", stringify(Bool{V: false}))
	assert.Equal(t, "42", stringify(Int{V: 42}))
	assert.Equal(t, "-7", stringify(Int{V: -7}))
	assert.Equal(t, "3.14", stringify(Float{V: 3.14}))
	assert.Equal(t, "ada", stringify(String{V: "ada"}))
}

func TestContainerStringifyConcatenatesWithoutSeparator(t *testing.T) {
	c := Container{Items: []Value{Int{V: 1}, String{V: "x"}, Int{V: 2}}}
	assert.Equal(t, "1x2", stringify(c))
}

func TestContainerLenAndAt(t *testing.T) {
	c := Container{Items: []Value{Int{V: 1}, Int{V: 2}, Int{V: 3}}}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, Int{V: 2}, c.At(1))
}

func TestDigestIsStableAndDistinguishesValues(t *testing.T) {
	assert.Equal(t, Digest(Int{V: 5}), Digest(Int{V: 5}))
	assert.NotEqual(t, Digest(Int{V: 5}), Digest(Int{V: 6}))
	assert.Equal(t, "5", Digest(Int{V: 5}))
}
