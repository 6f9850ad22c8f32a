package format

import (
	"fmt"
	"strings"

	"nestfix/internal/detect"
)

// Result is the outcome of formatting one text. When Fallback is set, Text is
// the raw input and Err describes why the engine gave up.
type Result struct {
	Kind     detect.Kind
	Text     string
	Fallback bool
	Err      error
}

// Stats mirrors the counters shown next to a formatted result.
type Stats struct {
	CharsIn   int `json:"chars_in"`
	CharsOut  int `json:"chars_out"`
	LineDelta int `json:"line_delta"`
}

// Stats compares the formatted text with the raw input. LineDelta counts
// added lines and is never negative.
func (r Result) Stats(raw string) Stats {
	delta := strings.Count(r.Text, "\n") - strings.Count(raw, "\n")
	return Stats{
		CharsIn:   len(raw),
		CharsOut:  len(r.Text),
		LineDelta: max(0, delta),
	}
}

// Changed reports whether formatting altered the text.
func (r Result) Changed(raw string) bool {
	return r.Text != raw
}

// Engine formats text of a single kind.
type Engine func(raw string, opt Options) (string, error)

// EngineFor returns the engine for kind, or nil for Unknown.
func EngineFor(kind detect.Kind) Engine {
	switch kind {
	case detect.Markup:
		return FormatMarkup
	case detect.Stylesheet:
		return FormatStylesheet
	case detect.Script:
		return FormatScript
	default:
		return nil
	}
}

// Format detects the kind of raw and formats it. It never fails: unknown text
// and engine failures come back unchanged, with the detected kind kept.
func Format(raw string, opt Options) Result {
	return FormatAs(raw, detect.Detect(raw), opt)
}

// FormatAs formats raw with the engine for kind, skipping detection.
func FormatAs(raw string, kind detect.Kind, opt Options) Result {
	engine := EngineFor(kind)
	if engine == nil {
		return Result{Kind: kind, Text: raw}
	}
	text, err := run(engine, raw, opt.withDefaults())
	if err != nil {
		return Result{Kind: kind, Text: raw, Fallback: true, Err: &FailureError{Kind: kind, Err: err}}
	}
	return Result{Kind: kind, Text: text}
}

func run(engine Engine, raw string, opt Options) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrEnginePanic, r)
		}
	}()
	return engine(raw, opt)
}
