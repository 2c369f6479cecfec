// Package template provides Template, the compiled-once/rendered-many-times
// wrapper around a bytecode.Program.
package template

import (
	"context"

	"github.com/fae-lang/fae/pkg/binding"
	"github.com/fae-lang/fae/pkg/bytecode"
	"github.com/fae-lang/fae/pkg/compiler"
	"github.com/fae-lang/fae/pkg/vm"
)

// Template is a source string plus its compiled Program. It is immutable
// and safe to render concurrently from multiple goroutines, provided each
// render uses its own Binding (§5).
type Template struct {
	prog *bytecode.Program
}

// New compiles source into a Template, or returns the *errors.InvalidTemplate
// describing why it couldn't be compiled. ctx is passed straight through to
// compiler.Compile to carry a trace span (§11.4); pass context.Background()
// when no span is in flight.
func New(ctx context.Context, source string) (*Template, error) {
	prog, err := compiler.Compile(ctx, source)
	if err != nil {
		return nil, err
	}
	return &Template{prog: prog}, nil
}

// Program returns the template's compiled bytecode, for disassembly or
// introspection.
func (t *Template) Program() *bytecode.Program {
	return t.prog
}

// Render executes the template's program against b, resolving any
// $(include ...) through inc (which may be nil to make includes no-ops).
func (t *Template) Render(b binding.Binding, inc vm.Includer) (string, error) {
	return vm.Execute(t.prog, b, inc)
}
