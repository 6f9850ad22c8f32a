package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nestfix/internal/version"
)

// errSilent marks failures that were already reported to the user.
var errSilent = errors.New("silent failure")

var (
	traceCleanup   = func() {}
	profileCleanup = func() {}
)

func cleanupAll() {
	traceCleanup()
	profileCleanup()
}

var rootCmd = &cobra.Command{
	Use:   "nestfix",
	Short: "Best-effort formatter for markup, stylesheets and scripts",
	Long: `nestfix guesses whether text is markup, a stylesheet or a script and
re-emits it with normalized indentation, spacing and statement termination.
Text it cannot understand is passed through unchanged.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		stop, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		profileCleanup = stop
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanupAll()
	},
}

// main registers subcommands and persistent flags and runs the root command.
// Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("exec-trace", "", "write a Go execution trace to file")

	if err := rootCmd.Execute(); err != nil {
		cleanupAll()
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "nestfix: %v\n", err)
		}
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
