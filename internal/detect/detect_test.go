package detect

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Kind
	}{
		{"markup", "<div>hi</div>", Markup},
		{"doctype", "<!DOCTYPE html><html></html>", Markup},
		{"closing tag only", "text </p>", Markup},
		{"stylesheet", ".a { color: red; }", Stylesheet},
		{"stylesheet media", "@media (max-width: 600px) { .a { color: red } }", Stylesheet},
		{"stylesheet var()", ":root { --x: 1px } a { width: var(--x) }", Stylesheet},
		{"stylesheet comment", "/* theme */ body { margin: 0 }", Stylesheet},
		{"stylesheet url", "a { background: url(http://x/y.png) }", Stylesheet},
		{"keyword in attribute selector", `a[data-x="let me"] { color: red; }`, Stylesheet},
		{"keyword in content string", `.a{color:red} .b::before{content:"class list"}`, Stylesheet},
		{"arrow in content string", `.a::after { content: "=>" }`, Stylesheet},
		{"script", "const x = 1;", Script},
		{"script object literal", "const o = {a: 1};", Script},
		{"script arrow in block", "items.map(x => { return x })", Script},
		{"script call", "doThing()", Script},
		{"markup beats braces", "<p>{ color: red }</p>", Markup},
		{"empty", "", Unknown},
		{"whitespace", " \n\t ", Unknown},
		{"prose", "just some words", Unknown},
		{"less than", "a < b", Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detect(tc.in); got != tc.want {
				t.Fatalf("Detect(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassifyRecordsEvidence(t *testing.T) {
	c := Classify(".a { color: red }")
	if c.Rule != "declaration-block" {
		t.Fatalf("rule = %q, want declaration-block", c.Rule)
	}
	hints := c.Evidence.Hints()
	if len(hints) != 3 {
		t.Fatalf("expected 3 evaluated rules, got %d", len(hints))
	}
	if hints[0].Matched || hints[1].Matched || !hints[2].Matched {
		t.Fatalf("unexpected match flags: %+v", hints)
	}
	if hints[2].Rule != c.Rule {
		t.Fatalf("last hint %q must be the deciding rule %q", hints[2].Rule, c.Rule)
	}
}

func TestClassifyFallthrough(t *testing.T) {
	c := Classify("plain words")
	if c.Kind != Unknown || c.Rule != "fallthrough" {
		t.Fatalf("got %+v", c)
	}
	if len(c.Evidence.Hints()) != len(rules) {
		t.Fatalf("every rule should be evaluated, got %d hints", len(c.Evidence.Hints()))
	}
}

func TestStripComments(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a /* x */ b", "a   b"},
		{"a // x\nb", "a \nb"},
		{"url(http://x)", "url(http://x)"},
		{"a /* open", "a "},
	}
	for _, tc := range cases {
		if got := StripComments(tc.in); got != tc.want {
			t.Fatalf("StripComments(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKindNamesAndExt(t *testing.T) {
	cases := []struct {
		k    Kind
		name string
		ext  string
	}{
		{Markup, "markup", "html"},
		{Stylesheet, "stylesheet", "css"},
		{Script, "script", "js"},
		{Unknown, "unknown", "txt"},
	}
	for _, tc := range cases {
		if tc.k.String() != tc.name || tc.k.Ext() != tc.ext {
			t.Fatalf("%#v: got %s/%s", tc.k, tc.k.String(), tc.k.Ext())
		}
		parsed, err := ParseKind(tc.ext)
		if err != nil || parsed != tc.k {
			t.Fatalf("ParseKind(%q) = %v, %v", tc.ext, parsed, err)
		}
	}
	if _, err := ParseKind("cobol"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
