package format

import (
	"strings"

	"nestfix/internal/scan"
)

// inlineElements may sit inside a line rendered as one unit.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true, "button": true,
	"cite": true, "code": true, "data": true, "del": true, "dfn": true, "em": true, "i": true,
	"img": true, "input": true, "ins": true, "kbd": true, "label": true, "mark": true, "q": true,
	"s": true, "samp": true, "small": true, "span": true, "strong": true, "sub": true, "sup": true,
	"time": true, "u": true, "var": true, "wbr": true,
}

// preserveElements keep their content byte for byte.
var preserveElements = map[string]bool{
	"pre": true, "textarea": true, "listing": true, "plaintext": true, "xmp": true,
}

var scriptTypes = map[string]bool{
	"": true, "text/javascript": true, "application/javascript": true, "module": true,
	"text/ecmascript": true, "application/ecmascript": true, "text/jsx": true, "text/babel": true,
}

// FormatMarkup serializes markup as an indented element tree. Embedded
// <style> and <script> bodies go through FormatStylesheet and FormatScript.
func FormatMarkup(raw string, opt Options) (string, error) {
	root, err := ParseMarkup(raw)
	if err != nil {
		return "", err
	}
	p := markupPrinter{opt: opt.withDefaults(), w: NewWriter(opt)}
	p.children(root)
	return p.w.String(), nil
}

type markupPrinter struct {
	opt Options
	w   *Writer
}

func (p *markupPrinter) children(e *ElementNode) {
	for _, child := range e.Children {
		p.node(child)
	}
}

func (p *markupPrinter) node(n Node) {
	switch n := n.(type) {
	case *TextNode:
		p.w.Line(collapseSpace(n.Raw))
	case *CommentNode:
		p.w.Line(n.Raw)
	case *DoctypeNode:
		p.w.Line(n.Raw)
	case *StrayNode:
		p.w.Line(n.Raw)
	case *ElementNode:
		p.element(n)
	}
}

func (p *markupPrinter) element(e *ElementNode) {
	open := normalizeTag(e.Open)
	switch {
	case e.Void || e.SelfClosed:
		p.w.Line(open)
	case e.Tag == "style" || e.Tag == "script":
		p.embedded(e, open)
	case preserveElements[e.Tag]:
		var sb strings.Builder
		sb.WriteString(open)
		for _, child := range e.Children {
			writeRaw(&sb, child)
		}
		sb.WriteString(closeTag(e))
		p.w.LineAt(p.w.Level(), sb.String())
	case p.canInline(e):
		var sb strings.Builder
		for _, child := range e.Children {
			writeInline(&sb, child)
		}
		p.w.Line(open + strings.TrimSpace(sb.String()) + closeTag(e))
	default:
		p.w.Line(open)
		p.w.IndentPush()
		p.children(e)
		p.w.IndentPop()
		p.w.Line(closeTag(e))
	}
}

// embedded renders a <style> or <script> element: its body is formatted by
// the matching engine and re-indented one level deeper. Bodies that are not
// stylesheet/script, or that the engine rejects, are kept as written.
func (p *markupPrinter) embedded(e *ElementNode, open string) {
	var body strings.Builder
	for _, child := range e.Children {
		writeRaw(&body, child)
	}
	content := body.String()
	if strings.TrimSpace(content) == "" {
		p.w.Line(open + closeTag(e))
		return
	}

	var formatted string
	var err error
	switch {
	case e.Tag == "style":
		formatted, err = FormatStylesheet(content, p.opt)
	case isScriptType(e):
		formatted, err = FormatScript(content, p.opt)
	default:
		formatted = dedent(content)
	}
	if err != nil {
		formatted = dedent(content)
	}
	formatted = collapseBlankLines(formatted)

	p.w.Line(open)
	p.w.IndentPush()
	for _, line := range strings.Split(strings.TrimRight(formatted, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			p.w.Blank()
			continue
		}
		p.w.LineAt(p.w.Level(), strings.TrimRight(line, " \t\r"))
	}
	p.w.IndentPop()
	p.w.Line(closeTag(e))
}

func isScriptType(e *ElementNode) bool {
	typ, _ := e.Attr("type")
	return scriptTypes[strings.ToLower(strings.TrimSpace(typ))]
}

// canInline reports whether e renders on one line: every child is text or
// an inline element and there is visible text. <head> and whitespace
// preserving elements always render expanded.
func (p *markupPrinter) canInline(e *ElementNode) bool {
	if e.Tag == "head" || e.Tag == "" || preserveElements[e.Tag] {
		return false
	}
	for _, child := range e.Children {
		if !inlineable(child) {
			return false
		}
	}
	return hasText(e)
}

func inlineable(n Node) bool {
	switch n := n.(type) {
	case *TextNode:
		return true
	case *ElementNode:
		if !inlineElements[n.Tag] {
			return false
		}
		for _, child := range n.Children {
			if !inlineable(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func hasText(e *ElementNode) bool {
	for _, child := range e.Children {
		switch c := child.(type) {
		case *TextNode:
			if strings.TrimSpace(c.Raw) != "" {
				return true
			}
		case *ElementNode:
			if hasText(c) {
				return true
			}
		}
	}
	return false
}

func writeInline(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *TextNode:
		sb.WriteString(collapseRuns(n.Raw))
	case *ElementNode:
		sb.WriteString(normalizeTag(n.Open))
		if n.Void || n.SelfClosed {
			return
		}
		for _, child := range n.Children {
			writeInline(sb, child)
		}
		sb.WriteString(closeTag(n))
	}
}

// writeRaw re-emits a subtree as it was written; implied end tags are not
// invented inside verbatim content.
func writeRaw(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *TextNode:
		sb.WriteString(n.Raw)
	case *CommentNode:
		sb.WriteString(n.Raw)
	case *DoctypeNode:
		sb.WriteString(n.Raw)
	case *StrayNode:
		sb.WriteString(n.Raw)
	case *ElementNode:
		sb.WriteString(n.Open)
		for _, child := range n.Children {
			writeRaw(sb, child)
		}
		sb.WriteString(n.End)
	}
}

func closeTag(e *ElementNode) string {
	if e.End != "" {
		return normalizeTag(e.End)
	}
	return "</" + e.Tag + ">"
}

// normalizeTag collapses whitespace outside attribute quotes and drops the
// space before a closing `>`.
func normalizeTag(raw string) string {
	sc := scan.New(strings.TrimSpace(raw), scan.Options{})
	var sb strings.Builder
	sb.Grow(len(raw))
	pendingSpace := false
	for {
		pc := sc.Next()
		if pc.Kind == scan.PieceEOF {
			break
		}
		if pc.Kind == scan.PieceChar && isSpaceByte(pc.Byte()) {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace && !(pc.Kind == scan.PieceChar && pc.Byte() == '>' && !strings.HasSuffix(sb.String(), "/")) {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		sb.WriteString(pc.Text)
	}
	return sb.String()
}

// collapseSpace turns whitespace runs into one space and trims the result.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseRuns turns whitespace runs into one space but keeps a leading or
// trailing space, which separates inline siblings.
func collapseRuns(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		if isSpaceByte(s[i]) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// dedent trims surrounding blank lines and removes the indentation common to
// all non-blank lines.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\r\n"), "\n")
	common := -1
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lead := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || lead < common {
			common = lead
		}
	}
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if len(line) >= common && common > 0 {
			line = line[common:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// collapseBlankLines replaces every run of three or more blank lines with a
// single blank line. Only embedded bodies go through it; whitespace
// preserving elements are written as they are.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	run := 0
	flushRun := func() {
		switch {
		case run >= 3:
			out = append(out, "")
		case run > 0:
			for range run {
				out = append(out, "")
			}
		}
		run = 0
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" && i < len(lines)-1 {
			run++
			continue
		}
		flushRun()
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
