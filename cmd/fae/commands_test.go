package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	return cmd
}

func writeTemplate(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCompileReportsSuccess(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "greeting.fae", "hello $(name)!")

	cmd := newTestCommand(t)
	err := runCompile(cmd, []string{path})
	assert.NoError(t, err)
}

func TestRunCompileReportsFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "bad.fae", "$(bad!)")

	cmd := newTestCommand(t)
	err := runCompile(cmd, []string{path})
	assert.Error(t, err)
}

func TestRunDisasmPrintsListing(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "greeting.fae", "hi $(name)")

	cmd := newTestCommand(t)

	out := captureStdout(t, func() {
		err := runDisasm(cmd, []string{path})
		require.NoError(t, err)
	})
	assert.Contains(t, out, "copy")
	assert.Contains(t, out, "substitute")
}

func TestRunRenderRendersAgainstEmptyBindings(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "greeting.fae", "static text")

	cmd := newTestCommand(t)
	cmd.Flags().StringP("bindings", "b", "", "")
	cmd.Flags().StringP("root", "r", "", "")

	out := captureStdout(t, func() {
		err := runRender(cmd, []string{path})
		require.NoError(t, err)
	})
	assert.Equal(t, "static text", out)
}

func TestRunRenderMissingTemplateFails(t *testing.T) {
	dir := t.TempDir()

	cmd := newTestCommand(t)
	cmd.Flags().StringP("bindings", "b", "", "")
	cmd.Flags().StringP("root", "r", "", "")

	err := runRender(cmd, []string{filepath.Join(dir, "missing.fae")})
	assert.Error(t, err)
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// what was written to it. The CLI's success-path output (runDisasm,
// runRender) goes straight to os.Stdout via fmt.Print, so there is no
// writer to inject without changing their signatures.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	saved := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = saved
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String()
}
