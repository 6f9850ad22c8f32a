// Package testkit holds output checks shared by the engine tests and the fuzz
// harnesses.
package testkit

import (
	"fmt"
	"regexp"
	"strings"

	"nestfix/internal/detect"
	"nestfix/internal/format"
	"nestfix/internal/scan"
)

// CheckResult runs the structural checks every Format result must pass:
//  1. a fallback or an unknown kind echoes raw unchanged
//  2. formatted text is empty or ends with exactly one newline
//  3. every input byte survives in order (see CheckKept)
//  4. stylesheet and script output keeps the braces of the input balanced
func CheckResult(raw string, res format.Result) error {
	if res.Fallback || res.Kind == detect.Unknown {
		if res.Text != raw {
			return fmt.Errorf("%s fallback changed the input", res.Kind)
		}
		return nil
	}
	if res.Err != nil {
		return fmt.Errorf("error without fallback: %w", res.Err)
	}
	text := res.Text
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\n\n") {
		return fmt.Errorf("output must end with exactly one newline: %q", tail(text))
	}
	if err := CheckKept(raw, text, res.Kind); err != nil {
		return err
	}
	if res.Kind == detect.Markup {
		return nil
	}
	opt := scan.Options{BlockComments: true}
	if res.Kind == detect.Script {
		opt.LineComments, opt.Templates = true, true
	}
	in, inOK := BraceBalance(raw, opt)
	out, outOK := BraceBalance(text, opt)
	if inOK && outOK && in != out {
		return fmt.Errorf("brace balance changed: input %d, output %d", in, out)
	}
	return nil
}

// voidEndTag matches end tags of void elements, which the markup engine
// drops.
var voidEndTag = regexp.MustCompile(`(?i)</(area|base|br|col|embed|hr|img|input|link|meta|param|source|track|wbr)(\s[^>]*)?>`)

// CheckKept fails when a byte of raw is missing from text. Whitespace and
// `;` are exempt: engines rewrite spacing and drop empty declarations. The
// remaining bytes must appear in text in the same order.
func CheckKept(raw, text string, kind detect.Kind) error {
	if kind == detect.Markup {
		raw = voidEndTag.ReplaceAllString(raw, "")
	}
	j := 0
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if isSpace(b) || b == ';' {
			continue
		}
		for j < len(text) && text[j] != b {
			j++
		}
		if j == len(text) {
			return fmt.Errorf("%s output lost %q from input offset %d", kind, raw[i:min(i+16, len(raw))], i)
		}
		j++
	}
	return nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// BraceBalance counts structural `{` minus `}`. ok is false when the text
// ends inside a string, comment or template.
func BraceBalance(text string, opt scan.Options) (balance int, ok bool) {
	sc := scan.New(text, opt)
	for {
		p := sc.Next()
		switch p.Kind {
		case scan.PieceEOF:
			return balance, sc.Unterminated() == scan.ModeNormal
		case scan.PieceChar:
			switch p.Byte() {
			case '{':
				balance++
			case '}':
				balance--
			}
		}
	}
}

// CheckIdempotent fails when formatting already formatted text changes it.
func CheckIdempotent(res format.Result, opt format.Options) error {
	if res.Fallback || res.Kind == detect.Unknown {
		return nil
	}
	again := format.FormatAs(res.Text, res.Kind, opt)
	if again.Fallback {
		return fmt.Errorf("%s engine rejected its own output: %v", res.Kind, again.Err)
	}
	if again.Text != res.Text {
		return fmt.Errorf("second pass changed the output:\nfirst:  %q\nsecond: %q", res.Text, again.Text)
	}
	return nil
}

func tail(s string) string {
	if len(s) > 16 {
		return s[len(s)-16:]
	}
	return s
}
