package format

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatScript(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"if block", "if(x){y=1}", "if(x) {\n  y = 1;\n}\n"},
		{"assignment", "const x=1", "const x = 1;\n"},
		{"arrow", "a = b => b*2", "a = b => b*2;\n"},
		{"comparison untouched", "if (a==b) {c+=1}", "if (a==b) {\n  c+=1;\n}\n"},
		{"for header", "for(let i=0;i<3;i++){f(i)}", "for(let i = 0;i<3;i++) {\n  f(i);\n}\n"},
		{"object literal", "const o = {a: 1, b: 2};", "const o = {\n  a: 1,\n  b: 2\n};\n"},
		{"callback", "items.forEach(function(x){console.log(x)})", "items.forEach(function(x) {\n  console.log(x);\n});\n"},
		{"else", "if(a){b()}else{c()}", "if(a) {\n  b();\n} else {\n  c();\n}\n"},
		{"bare return", "function f(){return}", "function f() {\n  return\n}\n"},
		{"comment after statement", "x = 1; // one\ny = 2", "x = 1; // one\ny = 2;\n"},
		{"terminator before comment", "x = 1 // one", "x = 1; // one\n"},
		{
			"template braces",
			"const s = `a ${ {b:1}.b } c`;\nif (s) {\n  go();\n}",
			"const s = `a ${ {b:1}.b } c`;\nif (s) {\n  go();\n}\n",
		},
		{"string untouched", `x = "a=b;c"`, "x = \"a=b;c\";\n"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatScript(tc.in, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestFormatScriptUnterminatedTemplate(t *testing.T) {
	_, err := FormatScript("const s = `a ${ `b ${ c`;", Options{})
	if !errors.Is(err, ErrUnterminatedTemplate) {
		t.Fatalf("want ErrUnterminatedTemplate, got %v", err)
	}
	if !strings.Contains(err.Error(), "depth 2") {
		t.Fatalf("want interpolation depth in error, got %q", err.Error())
	}
}

func TestFormatScriptBracesBalanced(t *testing.T) {
	inputs := []string{
		"if(x){y=1}",
		"function f(a){if(a){return 1}else{return 2}}",
		"items.forEach(function(x){console.log(x)})",
		"const o = {a: {b: 1}, c: [1, 2]};",
	}
	for _, in := range inputs {
		got, err := FormatScript(in, Options{})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		for _, br := range []string{"{", "}"} {
			if strings.Count(got, br) != strings.Count(in, br) {
				t.Fatalf("%q count changed for %q: got %q", br, in, got)
			}
		}
	}
}

func TestFormatScriptIdempotent(t *testing.T) {
	inputs := []string{
		"if(x){y=1}",
		"const o = {a: 1, b: 2};",
		"items.forEach(function(x){console.log(x)})",
		"if(a){b()}else{c()}",
		"x = 1; // one\ny = 2",
	}
	for _, in := range inputs {
		once, err := FormatScript(in, Options{})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		twice, _ := FormatScript(once, Options{})
		if once != twice {
			t.Fatalf("not idempotent for %q:\nfirst  %q\nsecond %q", in, once, twice)
		}
	}
}

func TestNeedsTerminator(t *testing.T) {
	line := func(code string) scriptLine {
		return scriptLine{segs: []segment{{kind: segCode, text: code}}}
	}
	cases := []struct {
		lines []scriptLine
		want  bool
	}{
		{[]scriptLine{line("x = 1")}, true},
		{[]scriptLine{line("x = 1;")}, false},
		{[]scriptLine{line("while (x)"), line("{")}, false},
		{[]scriptLine{line("call(x)"), line("y")}, true},
		{[]scriptLine{line("else")}, false},
		{[]scriptLine{line("break")}, false},
		{[]scriptLine{line("label:")}, false},
		{[]scriptLine{line("p"), line(".then(f)")}, false},
		{[]scriptLine{{segs: []segment{{kind: segLineComment, text: "// c"}}}}, false},
		{[]scriptLine{{object: true, segs: []segment{{kind: segCode, text: "a: 1"}}}}, false},
	}
	for _, tc := range cases {
		if got := needsTerminator(tc.lines, 0); got != tc.want {
			t.Fatalf("needsTerminator(%q) = %v, want %v", tc.lines[0].text(), got, tc.want)
		}
	}
}
