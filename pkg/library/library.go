// Package library wraps a directory of template files, exposing them by
// relative path and resolving $(include ...) requests between them (§4.3).
//
// Grounded on the teacher's pkg/interpreter/modules.go (a name-to-compiled-
// unit map with a resolver callback) and its pkg/hotreload functional-option
// style (Option func(*Library)) for wiring in the optional observability
// and caching components from SPEC_FULL.md §11.
package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fae-lang/fae/pkg/binding"
	"github.com/fae-lang/fae/pkg/bytecode"
	ferrors "github.com/fae-lang/fae/pkg/errors"
	"github.com/fae-lang/fae/pkg/logging"
	"github.com/fae-lang/fae/pkg/template"
)

// RenderCache is the subset of pkg/rendercache.Cache the Library needs;
// defined here to avoid a hard dependency from library -> rendercache.
type RenderCache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// AuditStore is the subset of pkg/audit.Store the Library needs.
type AuditStore interface {
	RecordRender(ctx context.Context, template string, duration time.Duration, renderErr error)
}

// Metrics is the subset of pkg/metrics.Metrics the Library needs.
type Metrics interface {
	ObserveRender(template string, duration time.Duration, ok bool)
	ObserveCompile(ok bool)
	SetTemplatesLoaded(n int)
}

// Tracer is the subset of pkg/tracing the Library needs: start a span for
// an operation, returning the (possibly replaced) context and a function
// that ends the span, recording err if non-nil.
type Tracer interface {
	Start(ctx context.Context, op, template string) (context.Context, func(err error))
}

// Library compiles every regular file under a root directory into a
// Template keyed by its root-relative, forward-slash-separated path.
type Library struct {
	mu        sync.RWMutex
	root      string
	recursive bool
	ignoreBad bool
	templates map[string]*template.Template

	logger  *logging.Logger
	cache   RenderCache
	audit   AuditStore
	metrics Metrics
	tracer  Tracer
}

// Option configures optional collaborators on a Library.
type Option func(*Library)

// WithLogger attaches a logger; a nil Logger (the zero value of this
// option) leaves logging a no-op.
func WithLogger(l *logging.Logger) Option { return func(lib *Library) { lib.logger = l } }

// WithCache attaches a render cache.
func WithCache(c RenderCache) Option { return func(lib *Library) { lib.cache = c } }

// WithAuditStore attaches a render audit log.
func WithAuditStore(a AuditStore) Option { return func(lib *Library) { lib.audit = a } }

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m Metrics) Option { return func(lib *Library) { lib.metrics = m } }

// WithTracer attaches an OpenTelemetry span helper.
func WithTracer(t Tracer) Option { return func(lib *Library) { lib.tracer = t } }

// New returns an empty Library with no backing directory. Reload on such a
// Library scans nothing and leaves it empty; use Open to load templates
// from a directory.
func New(opts ...Option) *Library {
	lib := &Library{templates: make(map[string]*template.Template)}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// Open builds a Library rooted at dir. When recursive is true,
// subdirectories are scanned too. When ignoreBadTemplates is true, files
// that fail to compile are silently dropped from the map instead of
// aborting construction.
func Open(dir string, recursive, ignoreBadTemplates bool, opts ...Option) (*Library, error) {
	lib := New(opts...)
	lib.root = dir
	lib.recursive = recursive
	lib.ignoreBad = ignoreBadTemplates
	if err := lib.Reload(true); err != nil {
		return nil, err
	}
	return lib, nil
}

// Reload re-scans the library's root directory. If discard is true the
// existing template map is cleared first; otherwise new/changed files are
// added or replace existing entries and the rest of the map is untouched.
//
// Reload is not safe to call concurrently with a render on the same
// Library (§5).
func (lib *Library) Reload(discard bool) error {
	fresh := make(map[string]*template.Template)
	if !discard {
		lib.mu.RLock()
		for k, v := range lib.templates {
			fresh[k] = v
		}
		lib.mu.RUnlock()
	}

	if lib.root != "" {
		if err := lib.scan(fresh); err != nil {
			return err
		}
	}

	lib.mu.Lock()
	lib.templates = fresh
	lib.mu.Unlock()

	if lib.metrics != nil {
		lib.metrics.SetTemplatesLoaded(len(fresh))
	}
	if lib.logger != nil {
		lib.logger.InfoWithFields("library reloaded", map[string]interface{}{
			"root": lib.root, "templates": len(fresh),
		})
	}
	return nil
}

func (lib *Library) scan(into map[string]*template.Template) error {
	walk := filepath.WalkDir
	return walk(lib.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != lib.root && !lib.recursive {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(lib.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		ctx := context.Background()
		var end func(error)
		if lib.tracer != nil {
			ctx, end = lib.tracer.Start(ctx, "compile", name)
		}

		t, err := template.New(ctx, string(src))
		if end != nil {
			end(err)
		}
		if lib.metrics != nil {
			lib.metrics.ObserveCompile(err == nil)
		}
		if err != nil {
			if lib.ignoreBad {
				if lib.logger != nil {
					lib.logger.WarnWithFields("dropping template that failed to compile", map[string]interface{}{
						"path": name, "error": err.Error(),
					})
				}
				return nil
			}
			return err
		}
		into[name] = t
		return nil
	})
}

// Program returns the compiled bytecode.Program for a template already
// loaded into the library, for introspection (e.g. pkg/disasm, pkg/replshell's
// ":disasm" command).
func (lib *Library) Program(templateName string) (*bytecode.Program, bool) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	t, ok := lib.templates[templateName]
	if !ok {
		return nil, false
	}
	return t.Program(), true
}

// Render looks up templateName and drives the VM against bindings, using
// this Library to resolve any $(include ...) it contains.
func (lib *Library) Render(ctx context.Context, templateName string, bindings binding.Binding) (string, error) {
	start := time.Now()
	out, err := lib.render(ctx, templateName, bindings, map[string]bool{templateName: true})
	dur := time.Since(start)

	if lib.metrics != nil {
		lib.metrics.ObserveRender(templateName, dur, err == nil)
	}
	if lib.audit != nil {
		lib.audit.RecordRender(ctx, templateName, dur, err)
	}
	if lib.logger != nil {
		fields := map[string]interface{}{"template": templateName, "duration_ms": dur.Milliseconds()}
		if err != nil {
			fields["error"] = err.Error()
			lib.logger.WarnWithFields("render failed", fields)
		} else {
			lib.logger.InfoWithFields("render completed", fields)
		}
	}
	return out, err
}

func (lib *Library) render(ctx context.Context, name string, b binding.Binding, visiting map[string]bool) (string, error) {
	if lib.tracer != nil {
		var end func(error)
		ctx, end = lib.tracer.Start(ctx, "render", name)
		var err error
		defer func() { end(err) }()
		out, rerr := lib.renderCached(ctx, name, b, visiting)
		err = rerr
		return out, err
	}
	return lib.renderCached(ctx, name, b, visiting)
}

func (lib *Library) renderCached(ctx context.Context, name string, b binding.Binding, visiting map[string]bool) (string, error) {
	lib.mu.RLock()
	t, ok := lib.templates[name]
	lib.mu.RUnlock()
	if !ok {
		return "", &ferrors.TemplateNotFound{Name: name}
	}

	var cacheKey string
	canCache := false
	if lib.cache != nil {
		if d, ok := b.(digestableBinding); ok {
			canCache = true
			cacheKey = name + "|" + d.Digest()
			if cached, hit := lib.cache.Get(cacheKey); hit {
				return cached, nil
			}
		}
	}

	out, err := t.Render(b, &includeScope{lib: lib, ctx: ctx, visiting: visiting})
	if err == nil && canCache {
		lib.cache.Set(cacheKey, out)
	}
	return out, err
}

// digestableBinding is implemented by Binding types (e.g. binding.MapBinding)
// that can summarize themselves as a stable string for cache-key purposes.
// Bindings that don't implement it simply bypass the render cache.
type digestableBinding interface {
	Digest() string
}

// includeScope implements vm.Includer for one top-level Render call,
// carrying the render-scoped cycle-detection set described in DESIGN.md's
// Open Questions (§9 of spec.md left this undecided).
type includeScope struct {
	lib      *Library
	ctx      context.Context
	visiting map[string]bool
}

func (s *includeScope) RenderInclude(target string, b binding.Binding, out *strings.Builder) {
	if s.visiting[target] {
		return // cyclic include: swallowed like any other include failure
	}
	s.visiting[target] = true
	defer delete(s.visiting, target)

	ctx := s.ctx
	var end func(error)
	if s.lib.tracer != nil {
		ctx, end = s.lib.tracer.Start(ctx, "include", target)
	}

	text, err := s.lib.renderCached(ctx, target, b, s.visiting)
	if end != nil {
		end(err)
	}
	if err != nil {
		return // §4.3: include failures are silently swallowed
	}
	out.WriteString(text)
}
