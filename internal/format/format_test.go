package format

import (
	"errors"
	"testing"

	"nestfix/internal/detect"
)

func TestFormatDispatch(t *testing.T) {
	cases := []struct {
		in   string
		kind detect.Kind
		want string
	}{
		{"a{color:red;margin:0}", detect.Stylesheet, "a {\n  color: red;\n  margin: 0;\n}\n"},
		{"if(x){y=1}", detect.Script, "if(x) {\n  y = 1;\n}\n"},
		{`a[data-x="let me"] { color: red; }`, detect.Stylesheet, "a[data-x=\"let me\"] {\n  color: red;\n}\n"},
		{"<div>hi</div>", detect.Markup, "<div>hi</div>\n"},
		{"hello world", detect.Unknown, "hello world"},
		{"", detect.Unknown, ""},
	}
	for _, tc := range cases {
		res := Format(tc.in, Options{})
		if res.Kind != tc.kind {
			t.Fatalf("Format(%q) kind: want %v got %v", tc.in, tc.kind, res.Kind)
		}
		if res.Text != tc.want {
			t.Fatalf("Format(%q): want %q got %q", tc.in, tc.want, res.Text)
		}
		if res.Fallback || res.Err != nil {
			t.Fatalf("Format(%q): unexpected fallback %v", tc.in, res.Err)
		}
	}
}

func TestFormatFallback(t *testing.T) {
	raw := "const s = `a ${ `b ${ c`;"
	res := Format(raw, Options{})
	if res.Kind != detect.Script {
		t.Fatalf("want script, got %v", res.Kind)
	}
	if !res.Fallback || res.Text != raw {
		t.Fatalf("want raw fallback, got %+v", res)
	}
	var fe *FailureError
	if !errors.As(res.Err, &fe) || fe.Kind != detect.Script {
		t.Fatalf("want *FailureError for script, got %v", res.Err)
	}
	if !errors.Is(res.Err, ErrUnterminatedTemplate) {
		t.Fatalf("want ErrUnterminatedTemplate in chain, got %v", res.Err)
	}
	if res.Changed(raw) {
		t.Fatalf("fallback must not report a change")
	}
}

func TestFormatAsOverride(t *testing.T) {
	res := FormatAs("a{b:c}", detect.Unknown, Options{})
	if res.Text != "a{b:c}" {
		t.Fatalf("unknown kind must echo input, got %q", res.Text)
	}
	res = FormatAs("x{y:z}", detect.Stylesheet, Options{})
	if res.Text != "x {\n  y: z;\n}\n" {
		t.Fatalf("unexpected stylesheet output %q", res.Text)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	boom := func(string, Options) (string, error) { panic("boom") }
	_, err := run(boom, "x", Options{})
	if !errors.Is(err, ErrEnginePanic) {
		t.Fatalf("want ErrEnginePanic, got %v", err)
	}
}

func TestResultStats(t *testing.T) {
	raw := "a{b:c}"
	res := Format(raw, Options{})
	st := res.Stats(raw)
	if st.CharsIn != len(raw) || st.CharsOut != len(res.Text) {
		t.Fatalf("unexpected char counts %+v", st)
	}
	if st.LineDelta != 3 {
		t.Fatalf("want line delta 3, got %d", st.LineDelta)
	}
	shrunk := Result{Text: "a"}
	if d := shrunk.Stats("a\nb\nc\n").LineDelta; d != 0 {
		t.Fatalf("line delta must not be negative, got %d", d)
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter(Options{})
	w.Line("a {")
	w.IndentPush()
	w.Line("   b;  ")
	w.Line("")
	w.IndentPop()
	w.IndentPop()
	w.Line("}")
	if got, want := w.String(), "a {\n  b;\n}\n"; got != want {
		t.Fatalf("want %q got %q", want, got)
	}
	if NewWriter(Options{}).String() != "" {
		t.Fatalf("empty writer must render nothing")
	}
}
