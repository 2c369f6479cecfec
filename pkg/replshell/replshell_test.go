package replshell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fae-lang/fae/pkg/binding"
)

func TestIsBareIdent(t *testing.T) {
	assert.True(t, isBareIdent("name"))
	assert.True(t, isBareIdent("_count2"))
	assert.False(t, isBareIdent(""))
	assert.False(t, isBareIdent("2count"))
	assert.False(t, isBareIdent("has space"))
	assert.False(t, isBareIdent("has-dash"))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, binding.Bool{V: true}, parseValue("true"))
	assert.Equal(t, binding.Bool{V: false}, parseValue("false"))
	assert.Equal(t, binding.Int{V: 42}, parseValue("42"))
	assert.Equal(t, binding.Float{V: 3.5}, parseValue("3.5"))
	assert.Equal(t, binding.String{V: "ada"}, parseValue(`"ada"`))
	assert.Equal(t, binding.String{V: "bare"}, parseValue("bare"))
}

func runShell(input string) string {
	var out bytes.Buffer
	s := New(strings.NewReader(input), &out, nil, nil)
	s.Run()
	return out.String()
}

func TestShellBindsAndRendersSnippet(t *testing.T) {
	out := runShell("name = \"ada\"\n$(name)\n")
	assert.Contains(t, out, "name bound")
	assert.Contains(t, out, "ada")
}

func TestShellVarsCommandListsBoundNames(t *testing.T) {
	out := runShell("x = 1\n:vars\n")
	assert.Contains(t, out, "x")
}

func TestShellClearCommandResetsBindings(t *testing.T) {
	out := runShell("x = 1\n:clear\n$(x)\n")
	assert.Contains(t, out, "bindings cleared")
}

func TestShellQuitStopsLoop(t *testing.T) {
	out := runShell(":quit\nshould not run\n")
	assert.Contains(t, out, "goodbye")
	assert.NotContains(t, out, "should not run")
}

func TestShellReportsCompileErrors(t *testing.T) {
	out := runShell("$(bad!)\n")
	assert.NotContains(t, out, "panic")
	assert.Contains(t, out, "unrecognized command")
}
