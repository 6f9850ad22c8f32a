package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// MaxIndentWidth bounds [format].indent_width.
const MaxIndentWidth = 16

// Manifest is a loaded nestfix.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of nestfix.toml.
type Config struct {
	Format FormatConfig `toml:"format"`
	Files  FilesConfig  `toml:"files"`
	Cache  CacheConfig  `toml:"cache"`
}

// FormatConfig is the [format] section.
type FormatConfig struct {
	IndentWidth int  `toml:"indent_width"`
	UseTabs     bool `toml:"use_tabs"`
}

// FilesConfig is the [files] section. Extensions are given without the dot;
// Ignore holds filepath.Match patterns checked against slash-separated paths
// relative to the project root and against base names.
type FilesConfig struct {
	Extensions []string `toml:"extensions"`
	Ignore     []string `toml:"ignore"`
}

// CacheConfig is the [cache] section. An empty Dir selects the user cache
// directory.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DefaultConfig returns the configuration used without a manifest.
func DefaultConfig() Config {
	return Config{
		Format: FormatConfig{IndentWidth: 2},
		Files:  FilesConfig{Extensions: []string{"html", "htm", "css", "js", "mjs", "cjs"}},
		Cache:  CacheConfig{Enabled: true},
	}
}

// Load finds and loads nestfix.toml above startDir. ok is false when there is
// no manifest; the returned manifest then carries DefaultConfig.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: DefaultConfig()}, false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes the manifest at path over DefaultConfig. Keys that are
// not set keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("format", "indent_width") {
		if w := cfg.Format.IndentWidth; w < 1 || w > MaxIndentWidth {
			return Config{}, fmt.Errorf("%s: [format].indent_width must be between 1 and %d, got %d", path, MaxIndentWidth, w)
		}
	}
	if meta.IsDefined("files", "extensions") {
		exts, err := normalizeExtensions(cfg.Files.Extensions)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [files].extensions: %w", path, err)
		}
		cfg.Files.Extensions = exts
	}
	for _, pattern := range cfg.Files.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return Config{}, fmt.Errorf("%s: [files].ignore: bad pattern %q: %w", path, pattern, err)
		}
	}
	if meta.IsDefined("cache", "dir") && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

func normalizeExtensions(exts []string) ([]string, error) {
	if len(exts) == 0 {
		return nil, fmt.Errorf("must not be empty")
	}
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			return nil, fmt.Errorf("empty extension")
		}
		if !seen[ext] {
			seen[ext] = true
			out = append(out, ext)
		}
	}
	return out, nil
}

// Ignored reports whether path matches one of the [files].ignore patterns.
func (m *Manifest) Ignored(path string) bool {
	if m == nil || len(m.Config.Files.Ignore) == 0 {
		return false
	}
	rel := path
	if m.Root != "" {
		if abs, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(m.Root, abs); err == nil {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pattern := range m.Config.Files.Ignore {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
