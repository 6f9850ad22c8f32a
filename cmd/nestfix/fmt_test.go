package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"nestfix/internal/detect"
	"nestfix/internal/driver"
	"nestfix/internal/format"
	"nestfix/internal/project"
)

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
	if !shouldUseTUI(uiModeOn, nil) || shouldUseTUI(uiModeOff, nil) {
		t.Fatalf("explicit modes must be honored")
	}
	if shouldUseTUI(uiModeAuto, nil) {
		t.Fatalf("auto without a terminal must stay off")
	}
}

func TestBuildFormatOptions(t *testing.T) {
	manifest := &project.Manifest{Config: project.DefaultConfig()}
	manifest.Config.Format.IndentWidth = 4
	manifest.Config.Format.UseTabs = true
	manifest.Config.Cache.Enabled = false

	opts, err := buildFormatOptions(fmtFlags{kind: detect.Script}, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Options.IndentWidth != 4 || !opts.Options.UseTabs || opts.Kind != detect.Script {
		t.Fatalf("manifest values lost: %+v", opts)
	}
	if opts.Cache != nil {
		t.Fatalf("cache must stay off when disabled in the manifest")
	}

	opts, err = buildFormatOptions(fmtFlags{indent: 3, tabs: false, tabsSet: true, fromStdin: true}, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Options.IndentWidth != 3 || opts.Options.UseTabs {
		t.Fatalf("flags must override the manifest: %+v", opts.Options)
	}
	if !opts.Stdout {
		t.Fatalf("stdin input must not write files")
	}

	cacheDir := t.TempDir()
	manifest.Config.Cache = project.CacheConfig{Enabled: true, Dir: cacheDir}
	opts, err = buildFormatOptions(fmtFlags{}, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Cache == nil || opts.Cache.Dir() != cacheDir {
		t.Fatalf("want cache at %s, got %+v", cacheDir, opts.Cache)
	}
	opts, _ = buildFormatOptions(fmtFlags{noCache: true}, manifest)
	if opts.Cache != nil {
		t.Fatalf("--no-cache must disable the cache")
	}
}

func TestRenderFmtText(t *testing.T) {
	results := []driver.FileResult{
		{Path: "a.css", Changed: true},
		{Path: "b.js"},
		{Path: "c.js", Err: errors.New("boom")},
	}
	var out, errOut bytes.Buffer
	var hasErrors, hasChanges bool
	renderFmtText(&out, &errOut, results, true, false, &hasErrors, &hasChanges)
	if out.String() != "a.css\n" {
		t.Fatalf("check mode must list changed files, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "c.js: boom") {
		t.Fatalf("error not reported: %q", errOut.String())
	}
	if !hasErrors || !hasChanges {
		t.Fatalf("flags not set: errors=%v changes=%v", hasErrors, hasChanges)
	}

	out.Reset()
	hasErrors, hasChanges = false, false
	renderFmtText(&out, &errOut, results[:2], false, false, &hasErrors, &hasChanges)
	if out.String() != "reformatted a.css\n" {
		t.Fatalf("unexpected rewrite output %q", out.String())
	}
}

func TestRenderFmtStdout(t *testing.T) {
	results := []driver.FileResult{
		{Path: stdinName, Kind: detect.Script, Fallback: true, Formatted: []byte("raw`")},
	}
	var out, errOut bytes.Buffer
	var hasErrors, hasChanges bool
	renderFmtStdout(&out, &errOut, results, &hasErrors, &hasChanges)
	if out.String() != "raw`" {
		t.Fatalf("fallback text must be echoed, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "kept as is (script engine gave up)") {
		t.Fatalf("fallback not reported: %q", errOut.String())
	}
	if hasErrors || hasChanges {
		t.Fatalf("fallback is neither an error nor a change")
	}
}

func TestRenderFmtJSON(t *testing.T) {
	results := []driver.FileResult{
		{Path: "a.css", Kind: detect.Stylesheet, Changed: true, Stats: format.Stats{CharsIn: 6, CharsOut: 14, LineDelta: 3}},
	}
	var out bytes.Buffer
	var hasErrors, hasChanges bool
	if err := renderFmtJSON(&out, results, false, &hasErrors, &hasChanges); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload []map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload) != 1 || payload[0]["kind"] != "stylesheet" || payload[0]["ext"] != "css" {
		t.Fatalf("unexpected payload %v", payload)
	}
	stats, _ := payload[0]["stats"].(map[string]any)
	if stats["line_delta"] != float64(3) {
		t.Fatalf("stats not reported: %v", payload[0])
	}
	if !hasChanges || hasErrors {
		t.Fatalf("flags not set from results")
	}
}

func TestBuildFormatOptionsClearCache(t *testing.T) {
	cacheDir := t.TempDir()
	manifest := &project.Manifest{Config: project.DefaultConfig()}
	manifest.Config.Cache = project.CacheConfig{Enabled: true, Dir: cacheDir}

	cache, err := driver.OpenDiskCache(cacheDir, "nestfix")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	key := driver.CacheKey("a{b:c}", detect.Stylesheet, format.Options{})
	if err := cache.Put(key, format.Result{Kind: detect.Stylesheet, Text: "a {\n  b: c;\n}\n"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	opts, err := buildFormatOptions(fmtFlags{clearCache: true}, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Cache == nil {
		t.Fatalf("--clear-cache must keep the cache enabled")
	}
	if _, ok, _ := opts.Cache.Get(key); ok {
		t.Fatalf("entry survived --clear-cache")
	}
}
