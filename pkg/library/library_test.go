package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fae-lang/fae/pkg/binding"
	ferrors "github.com/fae-lang/fae/pkg/errors"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpenScansAndRenders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greeting.fae", "hello $(name)!")

	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	out, err := lib.Render(context.Background(), "greeting.fae", binding.New().With("name", binding.String{V: "ada"}))
	require.NoError(t, err)
	assert.Equal(t, "hello ada!", out)
}

func TestOpenRecursiveScansSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "partials/header.fae", "HEADER")

	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	out, err := lib.Render(context.Background(), "partials/header.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "HEADER", out)
}

func TestOpenNonRecursiveSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.fae", "TOP")
	writeFile(t, dir, "nested/child.fae", "CHILD")

	lib, err := Open(dir, false, false)
	require.NoError(t, err)

	_, err = lib.Render(context.Background(), "top.fae", binding.New())
	require.NoError(t, err)

	_, err = lib.Render(context.Background(), "nested/child.fae", binding.New())
	require.Error(t, err)
	var nf *ferrors.TemplateNotFound
	require.ErrorAs(t, err, &nf)
}

func TestOpenFailsOnBadTemplateByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.fae", "$(bad!)")

	_, err := Open(dir, true, false)
	require.Error(t, err)
}

func TestOpenIgnoresBadTemplatesWhenRequested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.fae", "$(bad!)")
	writeFile(t, dir, "good.fae", "fine")

	lib, err := Open(dir, true, true)
	require.NoError(t, err)

	_, err = lib.Render(context.Background(), "bad.fae", binding.New())
	require.Error(t, err)

	out, err := lib.Render(context.Background(), "good.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "fine", out)
}

func TestRenderMissingTemplateReturnsTemplateNotFound(t *testing.T) {
	lib, err := Open(t.TempDir(), true, false)
	require.NoError(t, err)

	_, err = lib.Render(context.Background(), "nope.fae", binding.New())
	require.Error(t, err)
	var nf *ferrors.TemplateNotFound
	require.ErrorAs(t, err, &nf)
}

func TestRenderResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "footer.fae", "footer text")
	writeFile(t, dir, "page.fae", "before $(include footer.fae) after")

	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	out, err := lib.Render(context.Background(), "page.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "before footer text after", out)
}

func TestRenderSwallowsIncludeOfMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.fae", "before $(include missing.fae) after")

	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	out, err := lib.Render(context.Background(), "page.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "before  after", out)
}

func TestRenderDetectsCyclicIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.fae", "A($(include b.fae))")
	writeFile(t, dir, "b.fae", "B($(include a.fae))")

	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	out, err := lib.Render(context.Background(), "a.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "A(B())", out, "the cyclic include back to a.fae renders empty, not infinitely")
}

func TestReloadDiscardClearsStaleEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.fae", "one")
	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "one.fae")))
	writeFile(t, dir, "two.fae", "two")

	require.NoError(t, lib.Reload(true))

	_, err = lib.Render(context.Background(), "one.fae", binding.New())
	require.Error(t, err)

	out, err := lib.Render(context.Background(), "two.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "two", out)
}

func TestReloadWithoutDiscardKeepsUntouchedEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.fae", "keep")
	lib, err := Open(dir, true, false)
	require.NoError(t, err)

	writeFile(t, dir, "added.fae", "added")
	require.NoError(t, lib.Reload(false))

	out, err := lib.Render(context.Background(), "keep.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "keep", out)

	out, err = lib.Render(context.Background(), "added.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, "added", out)
}

type stubCache struct {
	store map[string]string
	hits  int
}

func (c *stubCache) Get(key string) (string, bool) {
	v, ok := c.store[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *stubCache) Set(key, value string) {
	if c.store == nil {
		c.store = make(map[string]string)
	}
	c.store[key] = value
}

func TestRenderUsesCacheForDigestableBindings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greet.fae", "hi $(name)")

	cache := &stubCache{}
	lib, err := Open(dir, true, false, WithCache(cache))
	require.NoError(t, err)

	b := binding.New().With("name", binding.String{V: "ada"})

	out1, err := lib.Render(context.Background(), "greet.fae", b)
	require.NoError(t, err)
	out2, err := lib.Render(context.Background(), "greet.fae", b)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, 1, cache.hits, "second render should hit the cache")
}

type stubMetrics struct {
	compiles     []bool
	renders      []bool
	templateLoad int
}

func (m *stubMetrics) ObserveRender(template string, duration time.Duration, ok bool) {
	m.renders = append(m.renders, ok)
}
func (m *stubMetrics) ObserveCompile(ok bool)   { m.compiles = append(m.compiles, ok) }
func (m *stubMetrics) SetTemplatesLoaded(n int) { m.templateLoad = n }

func TestRenderReportsMetrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.fae", "fine")

	m := &stubMetrics{}
	lib, err := Open(dir, true, false, WithMetrics(m))
	require.NoError(t, err)
	assert.Equal(t, 1, m.templateLoad)
	assert.Equal(t, []bool{true}, m.compiles)

	_, err = lib.Render(context.Background(), "ok.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, m.renders)
}

type stubAudit struct {
	records int
}

func (a *stubAudit) RecordRender(ctx context.Context, template string, duration time.Duration, renderErr error) {
	a.records++
}

func TestRenderRecordsAudit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.fae", "fine")

	a := &stubAudit{}
	lib, err := Open(dir, true, false, WithAuditStore(a))
	require.NoError(t, err)

	_, err = lib.Render(context.Background(), "ok.fae", binding.New())
	require.NoError(t, err)
	assert.Equal(t, 1, a.records)
}

type stubTracer struct {
	starts int
	ended  int
}

func (tr *stubTracer) Start(ctx context.Context, op, template string) (context.Context, func(error)) {
	tr.starts++
	return ctx, func(err error) { tr.ended++ }
}

func TestRenderStartsAndEndsSpan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.fae", "fine")

	tr := &stubTracer{}
	lib, err := Open(dir, true, false, WithTracer(tr))
	require.NoError(t, err)

	_, err = lib.Render(context.Background(), "ok.fae", binding.New())
	require.NoError(t, err)
	// One compile span from Open's scan of ok.fae, plus one render span.
	assert.Equal(t, 2, tr.starts)
	assert.Equal(t, 2, tr.ended)
}
