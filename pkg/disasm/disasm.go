// Package disasm renders a compiled bytecode.Program as a readable
// instruction listing, for the "fae disasm" subcommand and for
// debugging the compiler itself.
//
// Grounded on the teacher's pkg/decompiler/decompiler.go: an
// InstructionInfo{Offset, Opcode, Operand, Comment} record per
// instruction, built by walking the code array and annotating each
// entry against the side tables (there: a constant pool; here:
// fragments/names/includes).
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fae-lang/fae/pkg/bytecode"
)

// Line is one disassembled instruction.
type Line struct {
	Offset  int
	Opcode  string
	Operand uint32
	Comment string // resolved fragment/name/include text or jump target note
}

// Listing is the full disassembly of a Program.
type Listing struct {
	Lines []Line
}

// Disassemble walks prog.Code and annotates each instruction with the
// table entry or jump target its operand refers to.
func Disassemble(prog *bytecode.Program) Listing {
	listing := Listing{Lines: make([]Line, 0, len(prog.Code))}
	for pc, insn := range prog.Code {
		line := Line{Offset: pc, Opcode: insn.Op().String(), Operand: insn.Operand()}
		line.Comment = comment(prog, insn)
		listing.Lines = append(listing.Lines, line)
	}
	return listing
}

func comment(prog *bytecode.Program, insn bytecode.Instruction) string {
	idx := int(insn.Operand())
	switch insn.Op() {
	case bytecode.Copy:
		if idx < len(prog.Fragments) {
			return strconv.Quote(prog.Fragments[idx])
		}
	case bytecode.Substitute, bytecode.Immediate:
		if idx < len(prog.Names) {
			return prog.Names[idx]
		}
	case bytecode.Include:
		if idx < len(prog.Includes) {
			return prog.Includes[idx]
		}
	case bytecode.FalseJump, bytecode.ListEndJump, bytecode.Jump:
		return fmt.Sprintf("-> %d", idx)
	}
	return ""
}

// Format renders listing as a plain-text assembly dump, one line per
// instruction, in the style "0003 falsejump       7  -> 7".
func Format(listing Listing) string {
	var b strings.Builder
	for _, ln := range listing.Lines {
		fmt.Fprintf(&b, "%04d %-11s %5d", ln.Offset, ln.Opcode, ln.Operand)
		if ln.Comment != "" {
			fmt.Fprintf(&b, "  %s", ln.Comment)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
