package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"nestfix/internal/detect"
	"nestfix/internal/driver"
	"nestfix/internal/format"
	"nestfix/internal/observ"
	"nestfix/internal/project"
)

const stdinName = "<stdin>"

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Format markup, stylesheet and script files",
	Long: `Format files or directories in place. Directories are walked for the
configured extensions. With no path, or with "-", stdin is formatted to stdout.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files that would change without rewriting them")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted text to stdout instead of rewriting files")
	fmtCmd.Flags().String("kind", "auto", "force the engine (auto|markup|stylesheet|script or html|css|js)")
	fmtCmd.Flags().Bool("by-ext", false, "let the file extension pick the engine")
	fmtCmd.Flags().Int("indent", 0, "spaces per indentation level (overrides nestfix.toml)")
	fmtCmd.Flags().Bool("tabs", false, "indent with tabs (overrides nestfix.toml)")
	fmtCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	fmtCmd.Flags().Bool("no-cache", false, "disable the result cache")
	fmtCmd.Flags().Bool("clear-cache", false, "drop every cached result before formatting")
	fmtCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

type fmtFlags struct {
	check      bool
	output     string
	stdout     bool
	kind       detect.Kind
	byExt      bool
	indent     int
	tabs       bool
	tabsSet    bool
	jobs       int
	noCache    bool
	clearCache bool
	ui         uiMode
	quiet      bool
	timings    bool
	fromStdin  bool
}

func readFmtFlags(cmd *cobra.Command, args []string) (fmtFlags, error) {
	var ff fmtFlags
	var err error
	flags := cmd.Flags()

	if ff.check, err = flags.GetBool("check"); err != nil {
		return ff, err
	}
	if ff.output, err = flags.GetString("format"); err != nil {
		return ff, err
	}
	if ff.stdout, err = flags.GetBool("stdout"); err != nil {
		return ff, err
	}
	kindStr, err := flags.GetString("kind")
	if err != nil {
		return ff, err
	}
	if kindStr != "auto" {
		if ff.kind, err = detect.ParseKind(kindStr); err != nil {
			return ff, fmt.Errorf("fmt: %w", err)
		}
	}
	if ff.byExt, err = flags.GetBool("by-ext"); err != nil {
		return ff, err
	}
	if ff.indent, err = flags.GetInt("indent"); err != nil {
		return ff, err
	}
	if ff.indent < 0 || ff.indent > project.MaxIndentWidth {
		return ff, fmt.Errorf("fmt: --indent must be between 1 and %d", project.MaxIndentWidth)
	}
	if ff.tabs, err = flags.GetBool("tabs"); err != nil {
		return ff, err
	}
	ff.tabsSet = flags.Changed("tabs")
	if ff.jobs, err = flags.GetInt("jobs"); err != nil {
		return ff, err
	}
	if ff.noCache, err = flags.GetBool("no-cache"); err != nil {
		return ff, err
	}
	if ff.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return ff, err
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return ff, err
	}
	if ff.ui, err = readUIMode(uiStr); err != nil {
		return ff, err
	}
	if ff.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return ff, err
	}
	if ff.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return ff, err
	}
	ff.fromStdin = len(args) == 0 || (len(args) == 1 && args[0] == "-")

	switch ff.output {
	case "text", "json":
	default:
		return ff, fmt.Errorf("fmt: unsupported output format %q", ff.output)
	}
	if ff.stdout && ff.check {
		return ff, fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if ff.stdout && ff.output != "text" {
		return ff, fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	return ff, nil
}

// buildFormatOptions merges nestfix.toml with command-line overrides.
func buildFormatOptions(ff fmtFlags, manifest *project.Manifest) (driver.FormatOptions, error) {
	cfg := project.DefaultConfig()
	if manifest != nil {
		cfg = manifest.Config
	}
	opt := format.Options{IndentWidth: cfg.Format.IndentWidth, UseTabs: cfg.Format.UseTabs}
	if ff.indent > 0 {
		opt.IndentWidth = ff.indent
	}
	if ff.tabsSet {
		opt.UseTabs = ff.tabs
	}

	opts := driver.FormatOptions{
		Check:       ff.check,
		Stdout:      ff.stdout || ff.fromStdin,
		Kind:        ff.kind,
		ByExtension: ff.byExt,
		Options:     opt,
		Extensions:  cfg.Files.Extensions,
		Jobs:        ff.jobs,
	}
	if manifest != nil {
		opts.Ignore = manifest.Ignored
	}
	if cfg.Cache.Enabled && !ff.noCache {
		cache, err := driver.OpenDiskCache(cfg.Cache.Dir, "nestfix")
		if err != nil {
			return opts, err
		}
		if ff.clearCache {
			if err := cache.DropAll(); err != nil {
				return opts, fmt.Errorf("fmt: clear cache: %w", err)
			}
		}
		opts.Cache = cache
	}
	return opts, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	ff, err := readFmtFlags(cmd, args)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	load := timer.Begin("load")
	manifest, found, err := project.Load(".")
	if err != nil {
		return err
	}
	if found {
		timer.End(load, manifest.Path)
	} else {
		timer.End(load, "defaults")
	}
	opts, err := buildFormatOptions(ff, manifest)
	if err != nil {
		return err
	}
	opts.Timer = timer

	var results []driver.FileResult
	if ff.fromStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("fmt: read stdin: %w", err)
		}
		results = []driver.FileResult{driver.FormatSource(cmd.Context(), stdinName, data, opts)}
		ff.stdout = ff.output == "text" && !ff.check
	} else {
		results, err = formatFiles(cmd, args, ff, opts)
		if err != nil {
			return err
		}
	}

	var hasErrors, hasChanges bool
	out := cmd.OutOrStdout()
	switch {
	case ff.output == "json":
		if err := renderFmtJSON(out, results, ff.check, &hasErrors, &hasChanges); err != nil {
			return err
		}
	case ff.stdout:
		renderFmtStdout(out, cmd.ErrOrStderr(), results, &hasErrors, &hasChanges)
	default:
		renderFmtText(out, cmd.ErrOrStderr(), results, ff.check, ff.quiet, &hasErrors, &hasChanges)
	}

	if ff.timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if ff.check && hasChanges {
		return errSilent
	}
	return nil
}

func formatFiles(cmd *cobra.Command, args []string, ff fmtFlags, opts driver.FormatOptions) ([]driver.FileResult, error) {
	useUI := !ff.quiet && !ff.stdout && ff.output == "text" && shouldUseTUI(ff.ui, os.Stdout)
	if !useUI {
		return driver.FormatPaths(cmd.Context(), args, opts)
	}
	files, err := driver.CollectFiles(cmd.Context(), args, opts.Extensions, opts.Ignore)
	if err != nil {
		return nil, err
	}
	if len(files) < 2 {
		return driver.FormatPaths(cmd.Context(), args, opts)
	}
	title := "nestfix fmt"
	if ff.check {
		title = "nestfix fmt --check"
	}
	return runFormatWithUI(cmd.Context(), title, files, opts)
}

func renderFmtStdout(out, errOut io.Writer, results []driver.FileResult, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if res.Changed {
			*hasChanges = true
		}
		if res.Fallback {
			fmt.Fprintf(errOut, "fmt: %s: kept as is (%s)\n", res.Path, fallbackReason(res))
		}
		_, _ = out.Write(res.Formatted)
	}
}

func renderFmtText(out, errOut io.Writer, results []driver.FileResult, check, quiet bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if res.Fallback && !quiet {
			fmt.Fprintf(errOut, "fmt: %s: kept as is (%s)\n", res.Path, fallbackReason(res))
		}
		if !res.Changed {
			continue
		}
		*hasChanges = true
		if quiet {
			continue
		}
		if check {
			mustPrintf(out, "%s\n", res.Path)
		} else {
			mustPrintf(out, "reformatted %s\n", res.Path)
		}
	}
}

func fallbackReason(res driver.FileResult) string {
	return fmt.Sprintf("%s engine gave up", res.Kind)
}

type jsonResult struct {
	Path     string       `json:"path"`
	Kind     string       `json:"kind"`
	Ext      string       `json:"ext"`
	Encoding string       `json:"encoding"`
	Changed  bool         `json:"changed"`
	Fallback bool         `json:"fallback,omitempty"`
	Cached   bool         `json:"cached,omitempty"`
	Error    string       `json:"error,omitempty"`
	Stats    format.Stats `json:"stats"`
	CheckRun bool         `json:"check"`
}

func renderFmtJSON(out io.Writer, results []driver.FileResult, check bool, hasErrors, hasChanges *bool) error {
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:     res.Path,
			Kind:     res.Kind.String(),
			Ext:      res.Kind.Ext(),
			Encoding: res.Encoding.String(),
			Changed:  res.Changed,
			Fallback: res.Fallback,
			Cached:   res.Cached,
			Stats:    res.Stats,
			CheckRun: check,
		}
		if res.Err != nil {
			*hasErrors = true
			jr.Error = res.Err.Error()
		}
		if res.Changed {
			*hasChanges = true
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func mustPrintf(w io.Writer, tmpl string, args ...any) {
	if _, err := fmt.Fprintf(w, tmpl, args...); err != nil && !errors.Is(err, os.ErrClosed) {
		panic(err)
	}
}
