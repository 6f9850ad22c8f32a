package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nestfix/internal/detect"
	"nestfix/internal/driver"
	"nestfix/internal/project"
)

var detectCmd = &cobra.Command{
	Use:   "detect [flags] [path...]",
	Short: "Print the detected kind of each input",
	Long: `Run the kind detector over files, directories or stdin and print the
kind together with the rule that decided it.`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().String("format", "text", "output format (text|json)")
	detectCmd.Flags().Bool("evidence", false, "show every evaluated rule")
}

var kindColors = map[detect.Kind]*color.Color{
	detect.Markup:     color.New(color.FgMagenta, color.Bold),
	detect.Stylesheet: color.New(color.FgCyan, color.Bold),
	detect.Script:     color.New(color.FgYellow, color.Bold),
	detect.Unknown:    color.New(color.FgWhite),
}

type detectEntry struct {
	Path     string        `json:"path"`
	Kind     string        `json:"kind"`
	Ext      string        `json:"ext"`
	Rule     string        `json:"rule"`
	Reason   string        `json:"reason"`
	Evidence []detect.Hint `json:"evidence,omitempty"`
	Error    string        `json:"error,omitempty"`

	kind detect.Kind
}

func runDetect(cmd *cobra.Command, args []string) error {
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	showEvidence, err := cmd.Flags().GetBool("evidence")
	if err != nil {
		return err
	}
	switch outputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("detect: unsupported output format %q", outputFormat)
	}

	var entries []detectEntry
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("detect: read stdin: %w", err)
		}
		entries = append(entries, classifyData(stdinName, data, showEvidence))
	} else {
		entries, err = classifyPaths(cmd.Context(), args, showEvidence)
		if err != nil {
			return err
		}
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return err
		}
	} else {
		renderDetectText(cmd.OutOrStdout(), entries, showEvidence)
	}
	for _, e := range entries {
		if e.Error != "" {
			return errSilent
		}
	}
	return nil
}

func classifyPaths(ctx context.Context, paths []string, showEvidence bool) ([]detectEntry, error) {
	manifest, _, err := project.Load(".")
	if err != nil {
		return nil, err
	}
	files, err := driver.CollectFiles(ctx, paths, manifest.Config.Files.Extensions, manifest.Ignored)
	if err != nil {
		return nil, err
	}
	entries := make([]detectEntry, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			entries = append(entries, detectEntry{Path: path, Kind: detect.Unknown.String(), Error: err.Error()})
			continue
		}
		entries = append(entries, classifyData(path, data, showEvidence))
	}
	return entries, nil
}

func classifyData(name string, data []byte, showEvidence bool) detectEntry {
	text, _, err := driver.DecodeText(data)
	if err != nil {
		return detectEntry{Path: name, Kind: detect.Unknown.String(), Error: err.Error()}
	}
	c := detect.Classify(text)
	entry := detectEntry{
		Path:   name,
		Kind:   c.Kind.String(),
		Ext:    c.Kind.Ext(),
		Rule:   c.Rule,
		Reason: c.Reason,
		kind:   c.Kind,
	}
	if showEvidence {
		entry.Evidence = c.Evidence.Hints()
	}
	return entry
}

func renderDetectText(out io.Writer, entries []detectEntry, showEvidence bool) {
	for _, e := range entries {
		if e.Error != "" {
			mustPrintf(out, "%s: %s\n", e.Path, color.RedString("error: %s", e.Error))
			continue
		}
		label := kindColors[e.kind].Sprintf("%-10s", e.Kind)
		mustPrintf(out, "%s %s  (%s: %s)\n", label, e.Path, e.Rule, e.Reason)
		if !showEvidence {
			continue
		}
		for _, h := range e.Evidence {
			mark := color.New(color.Faint).Sprint("-")
			if h.Matched {
				mark = color.GreenString("+")
			}
			mustPrintf(out, "    %s %-18s %s\n", mark, h.Rule, h.Reason)
		}
	}
}
