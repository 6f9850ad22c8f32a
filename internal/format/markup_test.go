package format

import (
	"strings"
	"testing"
)

func TestFormatMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"inline", "<div>hi</div>", "<div>hi</div>\n"},
		{
			"void elements",
			`<div><br><img src="a.png"><p>x</p></div>`,
			"<div>\n  <br>\n  <img src=\"a.png\">\n  <p>x</p>\n</div>\n",
		},
		{
			"document",
			"<html><head><title>T</title></head><body><p>Hi</p></body></html>",
			"<html>\n  <head>\n    <title>T</title>\n  </head>\n  <body>\n    <p>Hi</p>\n  </body>\n</html>\n",
		},
		{"head with text", "<head>just text</head>", "<head>\n  just text\n</head>\n"},
		{"style", "<style>a{color:red}</style>", "<style>\n  a {\n    color: red;\n  }\n</style>\n"},
		{"script", "<script>if(x){y=1}</script>", "<script>\n  if(x) {\n    y = 1;\n  }\n</script>\n"},
		{"empty script", `<script src="a.js"></script>`, "<script src=\"a.js\"></script>\n"},
		{
			"json script",
			`<script type="application/ld+json">{"a":1}</script>`,
			"<script type=\"application/ld+json\">\n  {\"a\":1}\n</script>\n",
		},
		{
			"broken script kept",
			"<script>const s = `a ${</script>",
			"<script>\n  const s = `a ${\n</script>\n",
		},
		{"doctype and comment", "<!DOCTYPE html>\n<!-- note -->\n<p>a</p>", "<!DOCTYPE html>\n<!-- note -->\n<p>a</p>\n"},
		{"pre preserved", "<div><pre>  a\n   b</pre></div>", "<div>\n  <pre>  a\n   b</pre>\n</div>\n"},
		{"pre blank lines kept", "<pre>a\n\n\n\n\nb</pre>", "<pre>a\n\n\n\n\nb</pre>\n"},
		{"script blank lines collapsed", "<script type=\"text/template\">a\n\n\n\n\nb</script>", "<script type=\"text/template\">\n  a\n\n  b\n</script>\n"},
		{"stray end tag", "<p>a</p></span>", "<p>a</p>\n</span>\n"},
		{"implied end tags", "<ul><li>a<li>b</ul>", "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"},
		{"inline text spacing", "<p>Hello   <b>big</b>\n world</p>", "<p>Hello <b>big</b> world</p>\n"},
		{"void end tag dropped", "<br></br>", "<br>\n"},
		{"tag whitespace", "<a   href=\"x  y\"\n  >t</a>", "<a href=\"x  y\">t</a>\n"},
		{"self closed", "<img src=x />", "<img src=x />\n"},
		{"empty", "", ""},
		{"open tag at eof", "<div>hello <b", "<div>hello</div>\n<b\n"},
		{"unquoted attribute at eof", "<div>a</div><span class=\"x", "<div>a</div>\n<span class=\"x\n"},
		{"comparison read as tag", "for (let i=0;i<n;i++) { s+=i }", "for (let i=0;i\n<n;i++) { s+=i }\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatMarkup(tc.in, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestFormatMarkupVoidNeverClosed(t *testing.T) {
	got, _ := FormatMarkup("<p>a<br>b<hr><input type=text></p>", Options{})
	for _, tag := range []string{"</br>", "</hr>", "</input>"} {
		if strings.Contains(got, tag) {
			t.Fatalf("void closing tag %s in output %q", tag, got)
		}
	}
}

func TestFormatMarkupIdempotent(t *testing.T) {
	inputs := []string{
		"<html><head><title>T</title></head><body><p>Hi</p></body></html>",
		`<div><br><img src="a.png"><p>x</p></div>`,
		"<style>a{color:red}</style>",
		"<ul><li>a<li>b</ul>",
	}
	for _, in := range inputs {
		once, _ := FormatMarkup(in, Options{})
		twice, _ := FormatMarkup(once, Options{})
		if once != twice {
			t.Fatalf("not idempotent for %q:\nfirst  %q\nsecond %q", in, once, twice)
		}
	}
}

func TestFormatMarkupKeepsTail(t *testing.T) {
	inputs := []string{
		"<div>hello <b",
		"for (let i=0;i<n;i++) { s+=i }",
		"<div>a</div><span class=\"x",
		"<p>ok</p><",
	}
	for _, in := range inputs {
		got, err := FormatMarkup(in, Options{})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		tail := in[strings.LastIndex(in, "<"):]
		if !strings.Contains(got, tail) {
			t.Fatalf("lost %q from %q: got %q", tail, in, got)
		}
		again, _ := FormatMarkup(got, Options{})
		if again != got {
			t.Fatalf("not idempotent for %q:\nfirst  %q\nsecond %q", in, got, again)
		}
	}
}

func TestParseMarkupTree(t *testing.T) {
	root, err := ParseMarkup(`<div id="a" class="b"><span>x</span></div></em>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("want 2 top-level nodes, got %d", len(root.Children))
	}
	div, ok := root.Children[0].(*ElementNode)
	if !ok || div.Tag != "div" {
		t.Fatalf("want div element, got %#v", root.Children[0])
	}
	if len(div.Attrs) != 2 || div.Attrs[0].Name != "id" || div.Attrs[1].Name != "class" {
		t.Fatalf("attribute order lost: %+v", div.Attrs)
	}
	if v, _ := div.Attr("class"); v != "b" {
		t.Fatalf("want class b, got %q", v)
	}
	if div.End != "</div>" {
		t.Fatalf("want explicit end tag, got %q", div.End)
	}
	if _, ok := root.Children[1].(*StrayNode); !ok {
		t.Fatalf("want stray end tag, got %#v", root.Children[1])
	}
}

func TestCollapseBlankLines(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a\n\n\n\nb\n", "a\n\nb\n"},
		{"a\n\n\nb\n", "a\n\n\nb\n"},
		{"a\nb\n", "a\nb\n"},
	}
	for _, tc := range cases {
		if got := collapseBlankLines(tc.in); got != tc.want {
			t.Fatalf("collapseBlankLines(%q): want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestDedent(t *testing.T) {
	in := "\n    a\n      b\n\n    c\n"
	if got, want := dedent(in), "a\n  b\n\nc"; got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}
