// Command fae is the Fae command-line interface: compile and render
// templates, disassemble their bytecode, or run a live preview server,
// a file watcher, or an interactive shell.
//
// Grounded on the teacher's cmd/glyph/main.go: a cobra root command
// with one subcommand per verb, each subcommand's flags attached right
// after its construction, and colored [INFO]/[SUCCESS]/[WARNING]/[ERROR]
// console output via github.com/fatih/color.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func printInfo(msg string)    { infoColor.Printf("[INFO] %s\n", msg) }
func printSuccess(msg string) { successColor.Printf("[SUCCESS] %s\n", msg) }
func printWarning(msg string) { warningColor.Printf("[WARNING] %s\n", msg) }
func printError(err error)    { errorColor.Fprintf(os.Stderr, "[ERROR] %s\n", err.Error()) }

func main() {
	rootCmd := &cobra.Command{
		Use:     "fae",
		Short:   "Fae - a minimal bytecode-compiled text templating engine",
		Version: version,
	}

	renderCmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template file against a JSON binding",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringP("bindings", "b", "", "path to a JSON file of bindings (no bindings when omitted)")
	renderCmd.Flags().StringP("root", "r", "", "library root directory, for resolving $(include ...) (defaults to the template's own directory)")

	compileCmd := &cobra.Command{
		Use:   "compile <template>",
		Short: "Compile a template and report success or the compile error",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm <template>",
		Short: "Compile a template and print its bytecode listing",
		Args:  cobra.ExactArgs(1),
		RunE:  runDisasm,
	}

	serveCmd := &cobra.Command{
		Use:   "serve <root>",
		Short: "Serve a live preview of a template library over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
	serveCmd.Flags().StringP("addr", "a", ":8080", "address to listen on")
	serveCmd.Flags().BoolP("watch", "w", true, "reload the library on file changes (connected clients are not notified)")
	serveCmd.Flags().Bool("recursive", true, "scan subdirectories of root")
	serveCmd.Flags().String("config", "", "path to a YAML config file (overrides the above flags)")

	watchCmd := &cobra.Command{
		Use:   "watch <root>",
		Short: "Watch a template library directory and recompile on change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().Bool("recursive", true, "scan subdirectories of root")

	replCmd := &cobra.Command{
		Use:   "repl [library-dir]",
		Short: "Start an interactive shell for building bindings and rendering snippets or library templates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRepl,
	}

	rootCmd.AddCommand(renderCmd, compileCmd, disasmCmd, serveCmd, watchCmd, replCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
