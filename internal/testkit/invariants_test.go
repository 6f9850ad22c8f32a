package testkit

import (
	"testing"

	"nestfix/internal/detect"
	"nestfix/internal/format"
	"nestfix/internal/scan"
)

func TestBraceBalance(t *testing.T) {
	cases := []struct {
		text    string
		opt     scan.Options
		balance int
		ok      bool
	}{
		{"a{b{}}", scan.Options{}, 0, true},
		{"a{ '}' ", scan.Options{}, 1, true},
		{"x = `${ {a} }`", scan.Options{Templates: true}, 0, true},
		{"/* { ", scan.Options{BlockComments: true}, 0, false},
		{"}}", scan.Options{}, -2, true},
	}
	for _, tc := range cases {
		got, ok := BraceBalance(tc.text, tc.opt)
		if got != tc.balance || ok != tc.ok {
			t.Fatalf("BraceBalance(%q) = %d,%v; want %d,%v", tc.text, got, ok, tc.balance, tc.ok)
		}
	}
}

func TestCheckResult(t *testing.T) {
	inputs := []string{
		"a{color:red}",
		"if(x){y=1}else{z()}",
		"<ul><li>a<li>b</ul>",
		"x = `${a`",
		"plain words",
		"<div>hello <b",
		"for (let i=0;i<n;i++) { s+=i }",
		"<div>a</div><span class=\"x",
		"<p>a<br></br>b</p>",
		"<pre>a\n\n\n\n\nb</pre>",
		`a[data-x="let me"] { color: red; }`,
		"a{;;color:red;;}",
	}
	for _, in := range inputs {
		res := format.Format(in, format.Options{})
		if err := CheckResult(in, res); err != nil {
			t.Fatalf("CheckResult(%q): %v", in, err)
		}
		if err := CheckIdempotent(res, format.Options{}); err != nil {
			t.Fatalf("CheckIdempotent(%q): %v", in, err)
		}
	}
}

func TestCheckKept(t *testing.T) {
	cases := []struct {
		raw, text string
		kind      detect.Kind
		ok        bool
	}{
		{"a{b:c}", "a {\n  b: c;\n}\n", detect.Stylesheet, true},
		{"<br></BR>", "<br>\n", detect.Markup, true},
		{"<div>hello <b", "<div>hello</div>\n", detect.Markup, false},
		{"ab", "ba", detect.Script, false},
	}
	for _, tc := range cases {
		err := CheckKept(tc.raw, tc.text, tc.kind)
		if (err == nil) != tc.ok {
			t.Fatalf("CheckKept(%q, %q) = %v, want ok=%v", tc.raw, tc.text, err, tc.ok)
		}
	}
}

func TestCheckResultRejects(t *testing.T) {
	bad := []struct {
		raw string
		res format.Result
	}{
		{"a{}", format.Result{Kind: detect.Stylesheet, Text: "a {\n"}},
		{"a{}", format.Result{Kind: detect.Stylesheet, Text: "a {\n}"}},
		{"raw", format.Result{Kind: detect.Script, Fallback: true, Text: "changed"}},
	}
	for _, tc := range bad {
		if err := CheckResult(tc.raw, tc.res); err == nil {
			t.Fatalf("expected failure for %+v", tc.res)
		}
	}
}
