// Package vm executes a compiled bytecode.Program against a Binding,
// producing the rendered text.
//
// The dispatch loop is grounded on the teacher's pkg/vm/vm.go: a step
// method that fetches and executes one instruction, and an
// executeInstruction switch that fans out to one exec* method per opcode.
// Fae's loop is simpler than the teacher's (fixed-width 16-bit
// instructions, no operand-stack, no separate constant pool) but keeps the
// same shape because it is the right shape for a straight-line bytecode
// interpreter.
package vm

import (
	"fmt"
	"strings"

	"github.com/fae-lang/fae/pkg/binding"
	"github.com/fae-lang/fae/pkg/bytecode"
	ferrors "github.com/fae-lang/fae/pkg/errors"
)

// Includer resolves and renders an included template by name, appending
// its output to out. Implementations must never let a failure propagate:
// per §4.3/§7, an include failure is silently swallowed (it contributes no
// output), so RenderInclude has no error return. A nil Includer simply
// makes every $(include ...) a no-op, matching "renders empty on
// failure."
type Includer interface {
	RenderInclude(target string, b binding.Binding, out *strings.Builder)
}

// Execute runs prog against b, resolving includes via inc (which may be
// nil), and returns the rendered output.
//
// Execute never mutates prog. Two concurrent calls sharing the same prog
// are safe as long as each uses its own Binding (§5) — all of Execute's
// mutable state (the output buffer and the iterator map) is local to this
// call.
func Execute(prog *bytecode.Program, b binding.Binding, inc Includer) (string, error) {
	m := &machine{
		prog:  prog,
		b:     b,
		inc:   inc,
		iters: make(iterators),
	}
	return m.run()
}

// machine holds one render's worth of VM state.
type machine struct {
	prog *bytecode.Program
	b    binding.Binding
	inc  Includer

	pc    int
	out   strings.Builder
	iters iterators
}

func (m *machine) run() (string, error) {
	code := m.prog.Code
	for m.pc < len(code) {
		insn := code[m.pc]
		if insn.Op() == bytecode.Halt {
			break
		}
		if err := m.step(insn); err != nil {
			return "", err
		}
		m.pc++
	}
	return m.out.String(), nil
}

// step executes a single instruction and advances control flow for
// jumps; the caller still applies the unconditional pc++ afterward, which
// is why every jump target below is stored/compared as operand-1 (§4.2).
func (m *machine) step(insn bytecode.Instruction) error {
	switch insn.Op() {
	case bytecode.Copy:
		return m.execCopy(insn)
	case bytecode.Substitute:
		return m.execSubstitute(insn)
	case bytecode.Immediate:
		return m.execImmediate()
	case bytecode.FalseJump:
		return m.execFalseJump(insn)
	case bytecode.ListEndJump:
		return m.execListEndJump(insn)
	case bytecode.Jump:
		return m.execJump(insn)
	case bytecode.Include:
		return m.execInclude(insn)
	default:
		return &ferrors.InvalidTemplate{
			Message: fmt.Sprintf("vm: unrecognized instruction %v at pc=%d", insn, m.pc),
		}
	}
}

func (m *machine) execCopy(insn bytecode.Instruction) error {
	idx := insn.Operand()
	if int(idx) >= len(m.prog.Fragments) {
		return fmt.Errorf("vm: fragment index %d out of range at pc=%d", idx, m.pc)
	}
	m.out.WriteString(m.prog.Fragments[idx])
	return nil
}

func (m *machine) execSubstitute(insn bytecode.Instruction) error {
	idx := insn.Operand()
	if int(idx) >= len(m.prog.Names) {
		return fmt.Errorf("vm: name index %d out of range at pc=%d", idx, m.pc)
	}
	if state, active := m.iters[idx]; active {
		state.current.Stringify(&m.out)
		return nil
	}
	m.b.Emit(m.prog.Names[idx], &m.out)
	return nil
}

// execImmediate does nothing: its operand is read by the following
// control op via lookback into m.prog.Code, not by any state Immediate
// itself holds.
func (m *machine) execImmediate() error {
	return nil
}

func (m *machine) execFalseJump(insn bytecode.Instruction) error {
	idx := m.operandAt(m.pc - 1)
	name := m.prog.Names[idx]
	if _, active := m.iters[idx]; !active && !m.b.Exists(name) {
		m.pc = int(insn.Operand()) - 1
	}
	return nil
}

func (m *machine) execListEndJump(insn bytecode.Instruction) error {
	itemIdx := m.operandAt(m.pc - 2)
	listIdx := m.operandAt(m.pc - 1)
	if !m.iters.advance(m.b, m.prog.Names, itemIdx, listIdx) {
		m.pc = int(insn.Operand()) - 1
	}
	return nil
}

func (m *machine) execJump(insn bytecode.Instruction) error {
	m.pc = int(insn.Operand()) - 1
	return nil
}

func (m *machine) execInclude(insn bytecode.Instruction) error {
	idx := insn.Operand()
	if int(idx) >= len(m.prog.Includes) {
		return fmt.Errorf("vm: include index %d out of range at pc=%d", idx, m.pc)
	}
	if m.inc == nil {
		return nil
	}
	m.inc.RenderInclude(m.prog.Includes[idx], m.b, &m.out)
	return nil
}

func (m *machine) operandAt(pc int) uint32 {
	return m.prog.Code[pc].Operand()
}
