package bytecode

// Program is the immutable output of compiling one template source string:
// an instruction vector terminated by Halt, plus the three append-only
// tables the instructions index into. Programs are never mutated after
// compilation and are safe to share across concurrent renders.
type Program struct {
	Source string // original template source, for error reporting

	Code []Instruction

	// Fragments holds literal text emitted by Copy. Not deduplicated:
	// every literal span between commands gets its own entry.
	Fragments []string

	// Names holds variable identifiers referenced by Substitute/Immediate.
	// Deduplicated: addVariable returns the existing index for a name seen
	// before.
	Names []string

	// Includes holds raw include targets referenced by Include. Not
	// deduplicated.
	Includes []string
}

// Len returns the number of instructions in the program, including the
// trailing Halt.
func (p *Program) Len() int {
	return len(p.Code)
}
