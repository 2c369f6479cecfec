package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithOffsetComputesLineAndColumn(t *testing.T) {
	src := "abc\ndef\nghi"
	e := (&InvalidTemplate{Message: "boom"}).WithOffset(src, 5)
	// offset 5 is 'e' in "def" (0-indexed: a0 b1 c2 \n3 d4 e5)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 2, e.Col)
}

func TestWithOffsetAtStart(t *testing.T) {
	e := (&InvalidTemplate{}).WithOffset("abc", 0)
	assert.Equal(t, 1, e.Line)
	assert.Equal(t, 1, e.Col)
}

func TestInvalidTemplateErrorIncludesMessage(t *testing.T) {
	e := &InvalidTemplate{Message: "unrecognized command"}
	assert.Contains(t, e.Error(), "unrecognized command")
}

func TestFormatErrorWithSnippetAndSuggestion(t *testing.T) {
	src := "hello $(bad!)"
	e := (&InvalidTemplate{
		Message:    "unrecognized command",
		Suggestion: "check your syntax",
	}).WithOffset(src, 7)

	plain := e.FormatError(false)
	assert.Contains(t, plain, "unrecognized command")
	assert.Contains(t, plain, "check your syntax")
	assert.Contains(t, plain, src)
	assert.NotContains(t, plain, Red)

	colored := e.FormatError(true)
	assert.Contains(t, colored, Red)
}

func TestTemplateNotFoundError(t *testing.T) {
	err := &TemplateNotFound{Name: "partials/header.fae"}
	require.EqualError(t, err, `template not found: "partials/header.fae"`)
}
