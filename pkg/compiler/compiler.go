// Package compiler parses Fae template source into a bytecode.Program.
//
// The compiler never needs a runtime stack of its own: block nesting is
// tracked with a small fixup stack of pending forward-jump program
// counters, patched when the matching "end)" is seen. This mirrors the
// teacher's pcomp/fcomp split (one struct building a whole program, one
// holding per-block state) without needing the teacher's separate
// AST/resolver passes — Fae's grammar is simple enough to compile in one
// left-to-right walk.
package compiler

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/fae-lang/fae/pkg/bytecode"
	ferrors "github.com/fae-lang/fae/pkg/errors"
)

// tracer reports a span around every Compile call. Grounded on
// pkg/tracing.Tracer's otel wiring (§11.4); the compiler reaches for the
// global TracerProvider directly instead of library.Tracer's interface
// because compilation has no Library to thread one through. It resolves to
// whatever provider tracing.Init last installed globally, and to a no-op
// tracer when tracing.Init has not been called (neither cmd/fae nor
// pkg/library calls it).
var tracer = otel.Tracer("fae/compiler")

var (
	reEnd     = regexp.MustCompile(`^end\)`)
	reVar     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\)`)
	reIf      = regexp.MustCompile(`^if[ \t]+([A-Za-z_][A-Za-z0-9_]*)\)`)
	reFor     = regexp.MustCompile(`^for[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]+in[ \t]+([A-Za-z_][A-Za-z0-9_]*)\)`)
	reInclude = regexp.MustCompile(`^include ([^)]+)\)`)
)

// pcomp holds the state of a single in-progress compilation.
type pcomp struct {
	source string
	code   []bytecode.Instruction
	frags  []string
	names  []string
	nameOf map[string]uint32
	incs   []string

	fixup []int // PCs of FalseJump/ListEndJump placeholders awaiting "end)"

	err error // set by flush on fragment-table overflow
}

// Compile parses source into a bytecode.Program, or returns an
// *ferrors.InvalidTemplate describing the first failure. ctx carries a
// span for the compilation (§11.4); the compiler itself never suspends
// on ctx, it only tags and closes the span around the synchronous parse.
func Compile(ctx context.Context, source string) (*bytecode.Program, error) {
	_, span := tracer.Start(ctx, "compiler.Compile")
	defer span.End()

	prog, err := compile(source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return prog, err
}

func compile(source string) (*bytecode.Program, error) {
	c := &pcomp{
		source: source,
		nameOf: make(map[string]uint32),
	}

	processed := 0
	for {
		rel := strings.Index(source[processed:], "$(")
		if rel < 0 {
			break
		}
		expStart := processed + rel

		if expStart > 0 && source[expStart-1] == '\\' {
			if expStart-2 >= 0 && source[expStart-2] == '\\' {
				// "\\\\$(": collapse the pair to a single backslash, then
				// fall through to parse a live command below.
				if processed < expStart-1 {
					c.flush(source[processed : expStart-1])
				}
				if c.err != nil {
					return nil, c.err
				}
				processed = expStart
			} else {
				// "\$(": escape the introducer; "(" and the rest become
				// plain text.
				frag := source[processed:expStart-1] + "$"
				c.flush(frag)
				if c.err != nil {
					return nil, c.err
				}
				processed = expStart + 1
				continue
			}
		}

		if processed < expStart {
			c.flush(source[processed:expStart])
		}
		if c.err != nil {
			return nil, c.err
		}

		rest := source[expStart+2:]
		consumed, err := c.command(rest, expStart+2)
		if err != nil {
			return nil, err
		}
		processed = expStart + 2 + consumed
	}

	if processed < len(source) {
		c.flush(source[processed:])
	}
	if c.err != nil {
		return nil, c.err
	}

	if len(c.fixup) > 0 {
		return nil, (&ferrors.InvalidTemplate{
			Message:    "unclosed block: missing $(end)",
			Suggestion: "add a matching $(end) for every $(if ...) or $(for ... in ...)",
		}).WithOffset(source, len(source))
	}

	c.emit(bytecode.Encode(bytecode.Halt, 0))

	return &bytecode.Program{
		Source:    source,
		Code:      c.code,
		Fragments: c.frags,
		Names:     c.names,
		Includes:  c.incs,
	}, nil
}

// command dispatches on the command body starting right after "$(", at
// absolute source offset cmdOffset. It returns the number of bytes of rest
// consumed (including the trailing ")").
func (c *pcomp) command(rest string, cmdOffset int) (int, error) {
	if loc := reEnd.FindStringIndex(rest); loc != nil {
		if err := c.closeBlock(cmdOffset); err != nil {
			return 0, err
		}
		return loc[1], nil
	}

	// Variable substitution is tried before "if"/"for"/"include" per the
	// specification's command dispatch order: "$(if)" alone, for example,
	// names a variable literally called "if" rather than failing as a
	// malformed conditional.
	if m := reVar.FindStringSubmatch(rest); m != nil {
		idx, err := c.addVariable(m[1], cmdOffset)
		if err != nil {
			return 0, err
		}
		c.emit(bytecode.Encode(bytecode.Substitute, idx))
		return len(m[0]), nil
	}

	if m := reIf.FindStringSubmatch(rest); m != nil {
		idx, err := c.addVariable(m[1], cmdOffset)
		if err != nil {
			return 0, err
		}
		c.emit(bytecode.Encode(bytecode.Immediate, idx))
		pc := len(c.code)
		c.emit(bytecode.Encode(bytecode.FalseJump, 0))
		c.fixup = append(c.fixup, pc)
		return len(m[0]), nil
	}

	if m := reFor.FindStringSubmatch(rest); m != nil {
		itemIdx, err := c.addVariable(m[1], cmdOffset)
		if err != nil {
			return 0, err
		}
		listIdx, err := c.addVariable(m[2], cmdOffset)
		if err != nil {
			return 0, err
		}
		c.emit(bytecode.Encode(bytecode.Immediate, itemIdx))
		c.emit(bytecode.Encode(bytecode.Immediate, listIdx))
		pc := len(c.code)
		c.emit(bytecode.Encode(bytecode.ListEndJump, 0))
		c.fixup = append(c.fixup, pc)
		return len(m[0]), nil
	}

	if m := reInclude.FindStringSubmatch(rest); m != nil {
		idx := len(c.incs)
		if !bytecode.FitsOperand(idx) {
			return 0, c.overflow("include", cmdOffset)
		}
		c.incs = append(c.incs, m[1])
		c.emit(bytecode.Encode(bytecode.Include, uint32(idx)))
		return len(m[0]), nil
	}

	return 0, (&ferrors.InvalidTemplate{
		Message:    "unrecognized command",
		Suggestion: `expected one of: IDENT, "if IDENT", "for IDENT in IDENT", "include PATH", "end"`,
	}).WithOffset(c.source, cmdOffset)
}

// closeBlock handles "$(end)": pops the fixup stack and patches the
// matching FalseJump/ListEndJump to jump here.
func (c *pcomp) closeBlock(cmdOffset int) error {
	if len(c.fixup) == 0 {
		return (&ferrors.InvalidTemplate{
			Message: `"end" with no open block`,
		}).WithOffset(c.source, cmdOffset)
	}

	n := len(c.fixup) - 1
	p0 := c.fixup[n]
	c.fixup = c.fixup[:n]

	if c.code[p0].Op() == bytecode.ListEndJump {
		// Re-enter the loop header: jump back to the ListEndJump itself,
		// which re-reads the item/list Immediates at PC-2/PC-1 (still at
		// their original positions) and calls advance() again.
		if !bytecode.FitsOperand(p0) {
			return c.overflow("jump target", cmdOffset)
		}
		c.emit(bytecode.Encode(bytecode.Jump, uint32(p0)))
	}

	target := len(c.code)
	if !bytecode.FitsOperand(target) {
		return c.overflow("jump target", cmdOffset)
	}
	c.code[p0] = bytecode.Encode(c.code[p0].Op(), uint32(target))
	return nil
}

// addVariable interns name into the name table, returning its (possibly
// pre-existing) index.
func (c *pcomp) addVariable(name string, cmdOffset int) (uint32, error) {
	if idx, ok := c.nameOf[name]; ok {
		return idx, nil
	}
	idx := uint32(len(c.names))
	if !bytecode.FitsOperand(len(c.names)) {
		return 0, c.overflow("variable name", cmdOffset)
	}
	c.names = append(c.names, name)
	c.nameOf[name] = idx
	return idx, nil
}

// flush emits a literal fragment (if non-empty) as a new Copy instruction.
func (c *pcomp) flush(text string) {
	if text == "" {
		return
	}
	idx := len(c.frags)
	if !bytecode.FitsOperand(idx) {
		c.err = c.overflow("fragment", len(c.source))
		return
	}
	c.frags = append(c.frags, text)
	c.emit(bytecode.Encode(bytecode.Copy, uint32(idx)))
}

func (c *pcomp) emit(insn bytecode.Instruction) {
	c.code = append(c.code, insn)
}

func (c *pcomp) overflow(what string, cmdOffset int) error {
	return (&ferrors.InvalidTemplate{
		Message:    "too many " + what + "s: program exceeds the 8192-entry limit",
		Suggestion: "split the template or reduce the number of distinct " + what + "s",
	}).WithOffset(c.source, cmdOffset)
}
