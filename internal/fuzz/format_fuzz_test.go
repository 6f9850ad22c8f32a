package fuzztests

import (
	"testing"
	"unicode/utf8"

	"nestfix/internal/detect"
	"nestfix/internal/format"
	"nestfix/internal/scan"
	"nestfix/internal/testkit"
)

const maxFuzzInput = 1 << 16

func clampInput(input []byte) string {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return string(input)
}

func FuzzScannerPieces(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		raw := clampInput(input)
		sc := scan.New(raw, scan.Options{BlockComments: true, LineComments: true, Templates: true})
		var rebuilt []byte
		for {
			p := sc.Next()
			if p.Kind == scan.PieceEOF {
				break
			}
			rebuilt = append(rebuilt, p.Text...)
		}
		if string(rebuilt) != raw {
			t.Fatalf("pieces do not cover the input")
		}
	})
}

func FuzzDetect(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		raw := clampInput(input)
		c := detect.Classify(raw)
		if c.Kind != detect.Detect(raw) {
			t.Fatalf("Classify and Detect disagree")
		}
		if c.Rule == "" {
			t.Fatalf("classification without a rule")
		}
	})
}

func FuzzFormat(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if !utf8.Valid(input) {
			return
		}
		raw := clampInput(input)
		res := format.Format(raw, format.Options{})
		if err := testkit.CheckResult(raw, res); err != nil {
			t.Fatalf("%v\ninput: %q", err, raw)
		}
	})
}

func FuzzEngines(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		raw := clampInput(input)
		for _, kind := range []detect.Kind{detect.Markup, detect.Stylesheet, detect.Script} {
			res := format.FormatAs(raw, kind, format.Options{IndentWidth: 4})
			if res.Kind != kind {
				t.Fatalf("FormatAs(%s) reported %s", kind, res.Kind)
			}
			if res.Fallback && res.Text != raw {
				t.Fatalf("%s fallback changed the input", kind)
			}
		}
	})
}
