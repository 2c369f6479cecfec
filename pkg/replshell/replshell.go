// Package replshell provides an interactive shell for rendering Fae
// templates against bindings built up a line at a time.
//
// Grounded on the teacher's pkg/repl/repl.go: a REPL struct wrapping a
// bufio.Reader/io.Writer pair, a running flag, and a processLine that
// dispatches ":"-prefixed lines to commands and everything else to
// evaluation. Fae's REPL evaluates ":bind name=value"/"name = value"
// bindings and "$(...)" snippets instead of Glyph source, and colors its
// prompt and errors with github.com/fatih/color the way cmd/glyph's CLI
// output does. §11.6 names a Library-backed shell (":render path",
// ":disasm path", ":reload"); Shell accepts an optional *library.Library
// for those three commands and falls back to ad hoc snippet compilation
// (via pkg/template directly) when none is set.
package replshell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/fae-lang/fae/pkg/binding"
	"github.com/fae-lang/fae/pkg/disasm"
	"github.com/fae-lang/fae/pkg/library"
	"github.com/fae-lang/fae/pkg/template"
	"github.com/fae-lang/fae/pkg/vm"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	errorColor  = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
)

// Shell is an interactive read-eval-print loop over a MapBinding:
// "name = value" (or ":bind name=value") lines bind a variable, any other
// non-command line is compiled and rendered immediately against the
// accumulated bindings.
type Shell struct {
	reader  *bufio.Reader
	writer  io.Writer
	binding binding.MapBinding
	inc     vm.Includer
	lib     *library.Library
	running bool
}

// New creates a Shell reading from r and writing prompts/output to w.
// inc resolves $(include ...) within bare snippets entered at the prompt
// (pass nil to make includes a no-op); lib, if non-nil, backs the
// ":render"/":disasm"/":reload" commands against a loaded template
// library.
func New(r io.Reader, w io.Writer, inc vm.Includer, lib *library.Library) *Shell {
	return &Shell{
		reader:  bufio.NewReader(r),
		writer:  w,
		binding: binding.New(),
		inc:     inc,
		lib:     lib,
	}
}

// Run starts the loop; it returns when the reader hits EOF or a ":quit"
// command is entered.
func (s *Shell) Run() error {
	s.running = true
	fmt.Fprintln(s.writer, "fae interactive shell — :help for commands, :quit to exit")

	for s.running {
		promptColor.Fprint(s.writer, "fae> ")
		line, err := s.reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			s.processLine(line)
		}

		if err != nil {
			if err == io.EOF {
				break
			}
			errorColor.Fprintf(s.writer, "read error: %v\n", err)
			break
		}
	}
	fmt.Fprintln(s.writer, "goodbye")
	return nil
}

func (s *Shell) processLine(line string) {
	if strings.HasPrefix(line, ":") {
		s.runCommand(line)
		return
	}

	if name, valueText, ok := strings.Cut(line, "="); ok && isBareIdent(strings.TrimSpace(name)) {
		s.binding = s.binding.With(strings.TrimSpace(name), parseValue(strings.TrimSpace(valueText)))
		okColor.Fprintf(s.writer, "%s bound\n", strings.TrimSpace(name))
		return
	}

	tmpl, err := template.New(context.Background(), line)
	if err != nil {
		errorColor.Fprintf(s.writer, "%v\n", err)
		return
	}
	out, err := tmpl.Render(s.binding, s.inc)
	if err != nil {
		errorColor.Fprintf(s.writer, "%v\n", err)
		return
	}
	fmt.Fprintln(s.writer, out)
}

func (s *Shell) runCommand(line string) {
	trimmed := strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case ":quit", ":q", ":exit":
		s.running = false
	case ":vars":
		names := make([]string, 0, len(s.binding))
		for name := range s.binding {
			names = append(names, name)
		}
		fmt.Fprintln(s.writer, strings.Join(names, ", "))
	case ":clear":
		s.binding = binding.New()
		okColor.Fprintln(s.writer, "bindings cleared")
	case ":bind":
		s.bind(rest)
	case ":render":
		s.renderPath(rest)
	case ":disasm":
		s.disasmPath(rest)
	case ":reload":
		s.reload()
	case ":help":
		fmt.Fprintln(s.writer, "name = value      bind a variable (bool/int/float/string)")
		fmt.Fprintln(s.writer, ":bind name=value  same, explicit form")
		fmt.Fprintln(s.writer, "$(...)            compile and render a snippet against current bindings")
		fmt.Fprintln(s.writer, ":render path      render a template from the loaded library")
		fmt.Fprintln(s.writer, ":disasm path      print a library template's bytecode listing")
		fmt.Fprintln(s.writer, ":reload           rescan the loaded library's root directory")
		fmt.Fprintln(s.writer, ":vars             list bound names")
		fmt.Fprintln(s.writer, ":clear            clear all bindings")
		fmt.Fprintln(s.writer, ":quit             exit")
	default:
		errorColor.Fprintf(s.writer, "unknown command %q (:help for a list)\n", line)
	}
}

// bind implements ":bind name=value", the explicit form of a bare
// "name = value" line.
func (s *Shell) bind(assignment string) {
	name, valueText, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)
	if !ok || !isBareIdent(name) {
		errorColor.Fprintf(s.writer, "usage: :bind name=value\n")
		return
	}
	s.binding = s.binding.With(name, parseValue(strings.TrimSpace(valueText)))
	okColor.Fprintf(s.writer, "%s bound\n", name)
}

// renderPath implements ":render path": render a named template from the
// loaded library against the shell's accumulated bindings.
func (s *Shell) renderPath(path string) {
	if s.lib == nil {
		errorColor.Fprintln(s.writer, "no library loaded; start the repl with a library directory")
		return
	}
	out, err := s.lib.Render(context.Background(), path, s.binding)
	if err != nil {
		errorColor.Fprintf(s.writer, "%v\n", err)
		return
	}
	fmt.Fprintln(s.writer, out)
}

// disasmPath implements ":disasm path": print the bytecode listing for a
// template already compiled into the loaded library.
func (s *Shell) disasmPath(path string) {
	if s.lib == nil {
		errorColor.Fprintln(s.writer, "no library loaded; start the repl with a library directory")
		return
	}
	prog, ok := s.lib.Program(path)
	if !ok {
		errorColor.Fprintf(s.writer, "no such template: %q\n", path)
		return
	}
	fmt.Fprint(s.writer, disasm.Format(disasm.Disassemble(prog)))
}

// reload implements ":reload": rescan the loaded library's root directory.
func (s *Shell) reload() {
	if s.lib == nil {
		errorColor.Fprintln(s.writer, "no library loaded; start the repl with a library directory")
		return
	}
	if err := s.lib.Reload(true); err != nil {
		errorColor.Fprintf(s.writer, "%v\n", err)
		return
	}
	okColor.Fprintln(s.writer, "library reloaded")
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

func parseValue(text string) binding.Value {
	if text == "true" || text == "false" {
		return binding.Bool{V: text == "true"}
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return binding.Int{V: i}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return binding.Float{V: f}
	}
	return binding.String{V: strings.Trim(text, `"`)}
}
