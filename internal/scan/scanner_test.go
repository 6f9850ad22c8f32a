package scan

import (
	"strings"
	"testing"
)

var scriptOpts = Options{BlockComments: true, LineComments: true, Templates: true}

func collect(t *testing.T, text string, opts Options) []Piece {
	t.Helper()
	s := New(text, opts)
	var out []Piece
	for {
		p := s.Next()
		if p.Kind == PieceEOF {
			return out
		}
		out = append(out, p)
		if len(out) > len(text)+1 {
			t.Fatalf("scanner does not make progress on %q", text)
		}
	}
}

func TestScannerRoundTrip(t *testing.T) {
	inputs := []string{
		"a { color: \"red\" }",
		"x = `a ${ b + `c ${d}` } e`; // tail",
		"/* block */ f('it\\'s')",
		"unterminated 'string\nnext",
		"`open ${",
	}
	for _, in := range inputs {
		var sb strings.Builder
		for _, p := range collect(t, in, scriptOpts) {
			sb.WriteString(p.Text)
		}
		if sb.String() != in {
			t.Fatalf("pieces do not reassemble input:\nwant %q\ngot  %q", in, sb.String())
		}
	}
}

func TestScannerPieces(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opts Options
		kind PieceKind
		text string
	}{
		{"double quoted", `"a;b"`, Options{}, PieceString, `"a;b"`},
		{"escaped quote", `'it\'s'`, Options{}, PieceString, `'it\'s'`},
		{"escaped backslash", `"a\\"`, Options{}, PieceString, `"a\\"`},
		{"block comment", "/* { } */", scriptOpts, PieceBlockComment, "/* { } */"},
		{"line comment", "// a { b\nc", scriptOpts, PieceLineComment, "// a { b"},
		{"template", "`a ${b} c`", scriptOpts, PieceTemplate, "`a ${b} c`"},
		{"template nested braces", "`${ {a: 1} }`", scriptOpts, PieceTemplate, "`${ {a: 1} }`"},
		{"template nested template", "`x ${ `y ${z}` } w`", scriptOpts, PieceTemplate, "`x ${ `y ${z}` } w`"},
		{"template string with brace", "`${ \"}\" }`", scriptOpts, PieceTemplate, "`${ \"}\" }`"},
		{"template escaped backtick", "`a \\` b`", scriptOpts, PieceTemplate, "`a \\` b`"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.in, tc.opts)
			p := s.Next()
			if p.Kind != tc.kind || p.Text != tc.text {
				t.Fatalf("got %v %q, want %v %q", p.Kind, p.Text, tc.kind, tc.text)
			}
			if p.Unterminated {
				t.Fatalf("piece %q should be terminated", p.Text)
			}
		})
	}
}

func TestScannerDisabledForms(t *testing.T) {
	s := New("//x", Options{BlockComments: true})
	if p := s.Next(); p.Kind != PieceChar || p.Byte() != '/' {
		t.Fatalf("line comments disabled: got %v %q", p.Kind, p.Text)
	}
	s = New("`a`", Options{})
	if p := s.Next(); p.Kind != PieceChar || p.Byte() != '`' {
		t.Fatalf("templates disabled: got %v %q", p.Kind, p.Text)
	}
}

func TestScannerUnterminated(t *testing.T) {
	s := New("`a ${ `b ${ c", scriptOpts)
	p := s.Next()
	if p.Kind != PieceTemplate || !p.Unterminated {
		t.Fatalf("expected unterminated template, got %+v", p)
	}
	if s.Unterminated() != ModeTemplate {
		t.Fatalf("Unterminated() = %v", s.Unterminated())
	}
	if s.InterpolationDepth() != 2 {
		t.Fatalf("InterpolationDepth() = %d, want 2", s.InterpolationDepth())
	}
	if next := s.Next(); next.Kind != PieceEOF {
		t.Fatalf("expected EOF, got %+v", next)
	}

	s = New("/* open", scriptOpts)
	if p := s.Next(); !p.Unterminated || s.Unterminated() != ModeBlockComment {
		t.Fatalf("expected unterminated block comment, got %+v", p)
	}

	s = New("// fine", scriptOpts)
	if p := s.Next(); p.Unterminated || s.Unterminated() != ModeNormal || s.Mode() != ModeNormal {
		t.Fatalf("line comment at EOF is terminated, got %+v", p)
	}
}

func TestScannerStringStopsAtNewline(t *testing.T) {
	s := New("'abc\n}", Options{})
	p := s.Next()
	if p.Kind != PieceString || p.Text != "'abc" || !p.Unterminated {
		t.Fatalf("got %+v", p)
	}
	if s.Unterminated() != ModeNormal {
		t.Fatalf("a string broken by a newline is not an EOF failure")
	}
	if nl := s.Next(); nl.Byte() != '\n' {
		t.Fatalf("expected newline next, got %q", nl.Text)
	}
}
