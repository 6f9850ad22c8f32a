package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nestfix/internal/detect"
	"nestfix/internal/format"
	"nestfix/internal/observ"
	"nestfix/internal/project"
	"nestfix/internal/trace"
)

// ErrNoFiles is returned when the given paths contain nothing to format.
var ErrNoFiles = errors.New("format: no source files found")

// FormatOptions configures a formatting run.
type FormatOptions struct {
	// Check reports what would change without touching files.
	Check bool
	// Stdout returns formatted text in the results without touching files.
	Stdout bool
	// Kind forces an engine; detect.Unknown means detect per file.
	Kind detect.Kind
	// ByExtension lets the file extension pick the engine when Kind is
	// Unknown; detection runs only for unknown extensions.
	ByExtension bool
	Options     format.Options
	// Extensions selects files inside directories. Files named explicitly
	// are always taken.
	Extensions []string
	// Ignore skips matching paths during directory walks.
	Ignore func(path string) bool
	Jobs   int
	Cache  *DiskCache
	Sink   ProgressSink
	Timer  *observ.Timer
}

// FileResult captures the result of formatting a single file.
type FileResult struct {
	Path      string
	Kind      detect.Kind
	Encoding  TextEncoding
	Changed   bool
	Fallback  bool
	Cached    bool
	Err       error
	Formatted []byte
	Stats     format.Stats
}

// FormatPaths formats the given files or directories (recursively collecting
// files with the configured extensions) in parallel. Results come back in
// path order. When opts.Check is set nothing is written; Changed says
// whether formatting would update the file. When opts.Stdout is set the
// formatted bytes are returned instead of written.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "fmt", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	collect := opts.Timer.Begin("collect")
	files, err := CollectFiles(ctx, paths, opts.Extensions, opts.Ignore)
	opts.Timer.End(collect, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	if len(files) == 0 {
		span.End("no files")
		return nil, ErrNoFiles
	}
	for _, path := range files {
		emit(opts.Sink, Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine owns its slot; no mutex needed
	results := make([]FileResult, len(files))

	run := opts.Timer.Begin("format")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return err
			}
			results[i] = formatFile(gctx, path, opts)
			return nil
		})
	}
	err = g.Wait()
	opts.Timer.End(run, "")

	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	span.WithExtra("files", fmt.Sprint(len(files))).WithExtra("changed", fmt.Sprint(changed)).End("")
	if err != nil {
		return results, err
	}
	return results, nil
}

func formatFile(ctx context.Context, path string, opts FormatOptions) FileResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file", trace.CurrentSpan(ctx))
	started := time.Now()
	result := FileResult{Path: path}

	fail := func(stage Stage, err error) FileResult {
		result.Err = err
		trace.Failure(tracer, trace.ScopeFile, "error", fmt.Sprintf("%s: %v", path, err), span.ID())
		emit(opts.Sink, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		span.End(path)
		return result
	}

	emit(opts.Sink, Event{File: path, Stage: StageRead, Status: StatusWorking})
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(StageRead, err)
	}
	raw, enc, err := DecodeText(data)
	if err != nil {
		return fail(StageRead, fmt.Errorf("%s: %w", path, err))
	}
	result.Encoding = enc

	emit(opts.Sink, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	kind := opts.Kind
	if kind == detect.Unknown && opts.ByExtension {
		kind, _ = KindForPath(path)
	}
	res, cached := formatText(ctx, raw, kind, opts, span.ID())
	result.Kind = res.Kind
	result.Fallback = res.Fallback
	result.Cached = cached
	result.Stats = res.Stats(raw)
	if res.Fallback {
		trace.Failure(tracer, trace.ScopeFile, "fallback", fmt.Sprintf("%s: %v", path, res.Err), span.ID())
	}

	formatted, err := EncodeText(res.Text, enc)
	if err != nil {
		return fail(StageFormat, fmt.Errorf("%s: %w", path, err))
	}
	result.Changed = res.Changed(raw)

	switch {
	case opts.Check:
	case opts.Stdout:
		result.Formatted = formatted
	case result.Changed:
		emit(opts.Sink, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		if err := writeFile(path, formatted); err != nil {
			result.Changed = false
			return fail(StageWrite, err)
		}
	}

	status := StatusDone
	if res.Fallback {
		status = StatusFallback
	}
	emit(opts.Sink, Event{File: path, Stage: StageFormat, Status: status, Elapsed: time.Since(started)})
	span.WithExtra("kind", result.Kind.String()).WithExtra("changed", fmt.Sprint(result.Changed)).End(path)
	return result
}

// FormatSource formats in-memory text (stdin) with the same options.
func FormatSource(ctx context.Context, name string, data []byte, opts FormatOptions) FileResult {
	result := FileResult{Path: name}
	raw, enc, err := DecodeText(data)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", name, err)
		return result
	}
	result.Encoding = enc
	res, cached := formatText(ctx, raw, opts.Kind, opts, trace.CurrentSpan(ctx))
	formatted, err := EncodeText(res.Text, enc)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", name, err)
		return result
	}
	result.Kind = res.Kind
	result.Fallback = res.Fallback
	result.Cached = cached
	result.Changed = res.Changed(raw)
	result.Stats = res.Stats(raw)
	result.Formatted = formatted
	if res.Fallback {
		trace.Failure(trace.FromContext(ctx), trace.ScopeFile, "fallback", fmt.Sprintf("%s: %v", name, res.Err), trace.CurrentSpan(ctx))
	}
	return result
}

// formatText runs the engine for kind, detecting it when Unknown, and goes
// through the cache when one is configured. Cache failures degrade to a fresh
// format.
func formatText(ctx context.Context, raw string, kind detect.Kind, opts FormatOptions, parent uint64) (format.Result, bool) {
	tracer := trace.FromContext(ctx)
	var key project.Digest
	if opts.Cache != nil {
		key = CacheKey(raw, kind, opts.Options)
		if res, ok, err := opts.Cache.Get(key); err == nil && ok {
			trace.Point(tracer, trace.ScopeEngine, "cache-hit", res.Kind.String(), parent)
			return res, true
		}
	}

	span := trace.Begin(tracer, trace.ScopeEngine, "engine", parent)
	started := time.Now()
	var res format.Result
	if kind != detect.Unknown {
		res = format.FormatAs(raw, kind, opts.Options)
	} else {
		res = format.Format(raw, opts.Options)
	}
	opts.Timer.Add("engine:"+res.Kind.String(), time.Since(started))
	span.End(res.Kind.String())

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, res); err != nil {
			trace.Failure(tracer, trace.ScopeEngine, "cache-put", err.Error(), parent)
		}
	}
	return res, false
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, data, mode.Perm())
}

// CollectFiles expands paths into a sorted, de-duplicated file list. Files
// inside directories are kept when their extension is in exts and ignore
// does not reject them; explicitly named files are always kept.
func CollectFiles(ctx context.Context, paths, exts []string, ignore func(string) bool) ([]string, error) {
	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
					return filepath.SkipDir
				}
				if path != p && ignore != nil && ignore(path) {
					return filepath.SkipDir
				}
				return nil
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if !wanted[ext] {
				return nil
			}
			if ignore != nil && ignore(path) {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// KindForPath returns the kind implied by a file extension.
func KindForPath(path string) (detect.Kind, bool) {
	return detect.KindForExt(strings.TrimPrefix(filepath.Ext(path), "."))
}
