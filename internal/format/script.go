package format

import (
	"fmt"
	"strings"

	"nestfix/internal/scan"
)

// FormatScript reflows script text into one statement per line with
// brace-driven indentation, then polishes operator spacing and statement
// terminators. A template literal left open at EOF fails with
// ErrUnterminatedTemplate.
func FormatScript(raw string, opt Options) (string, error) {
	opt = opt.withDefaults()
	r := newReflower(raw)
	lines, err := r.run()
	if err != nil {
		return "", err
	}
	polish(lines)

	w := NewWriter(opt)
	for _, ln := range lines {
		if text := ln.text(); text != "" {
			w.LineAt(ln.indent, text)
		}
	}
	return w.String(), nil
}

type segKind uint8

const (
	segCode segKind = iota
	segString
	segTemplate
	segBlockComment
	segLineComment
)

// segment is a run of one lexical kind inside a logical line. Only segCode
// is ever rewritten.
type segment struct {
	kind segKind
	text string
}

type scriptLine struct {
	indent int
	segs   []segment
	// object is set for lines inside an object literal; they never get a
	// statement terminator.
	object bool
}

func (ln *scriptLine) text() string {
	var sb strings.Builder
	for _, sg := range ln.segs {
		sb.WriteString(sg.text)
	}
	return strings.TrimSpace(sb.String())
}

type braceCtx struct {
	object    bool
	savedNest int
}

// reflower is the structural phase: it turns scanner pieces into logical
// lines. nest counts open ( and [ inside the innermost brace.
type reflower struct {
	sc      *scan.Scanner
	lines   []scriptLine
	indent  int
	pending []segment
	nest    int
	braces  []braceCtx
	// lineOpen is set after a line is committed and cleared by a raw
	// newline, so a trailing // comment can rejoin the statement it follows.
	lineOpen bool
}

func newReflower(raw string) *reflower {
	return &reflower{
		sc: scan.New(raw, scan.Options{BlockComments: true, LineComments: true, Templates: true}),
	}
}

func (r *reflower) run() ([]scriptLine, error) {
	for {
		p := r.sc.Next()
		switch p.Kind {
		case scan.PieceEOF:
			if r.sc.Unterminated() == scan.ModeTemplate {
				return nil, fmt.Errorf("%w (interpolation depth %d)", ErrUnterminatedTemplate, r.sc.InterpolationDepth())
			}
			r.flush()
			return r.lines, nil
		case scan.PieceChar:
			r.char(p.Byte())
		case scan.PieceString:
			r.add(segString, p.Text)
		case scan.PieceTemplate:
			r.add(segTemplate, p.Text)
		case scan.PieceBlockComment:
			r.add(segBlockComment, p.Text)
		case scan.PieceLineComment:
			r.lineComment(strings.TrimRight(p.Text, " \t\r"))
		}
	}
}

func (r *reflower) char(b byte) {
	switch b {
	case '{':
		r.openBrace()
	case '}':
		r.closeBrace()
	case ';':
		r.code(b)
		if r.nest == 0 {
			r.flush()
		}
	case ',':
		r.code(b)
		if r.nest == 0 && r.inObject() {
			r.flush()
		}
	case '(', '[':
		r.nest++
		r.code(b)
	case ')', ']':
		if r.nest > 0 {
			r.nest--
		}
		r.code(b)
	case '\n', '\r':
		r.lineOpen = false
		if r.nest > 0 {
			r.space()
		} else {
			r.flush()
		}
	case ' ', '\t', '\f', '\v':
		r.space()
	default:
		r.code(b)
	}
}

func (r *reflower) lineComment(text string) {
	if r.pendingEmpty() && r.lineOpen && len(r.lines) > 0 {
		last := &r.lines[len(r.lines)-1]
		last.segs = append(last.segs, segment{kind: segCode, text: " "}, segment{kind: segLineComment, text: text})
		return
	}
	if !r.pendingEmpty() {
		r.space()
	}
	r.add(segLineComment, text)
	r.flush()
}

func (r *reflower) openBrace() {
	object := r.opensObject()
	head := strings.TrimSpace(r.pendingText())
	switch {
	case head == "":
		r.pending = nil
		r.code('{')
	case strings.HasSuffix(head, "(") || strings.HasSuffix(head, "["):
		r.trimPendingRight()
		r.code('{')
	default:
		r.trimPendingRight()
		r.code(' ')
		r.code('{')
	}
	r.flush()
	r.braces = append(r.braces, braceCtx{object: object, savedNest: r.nest})
	r.nest = 0
	r.indent++
}

func (r *reflower) closeBrace() {
	r.flush()
	if n := len(r.braces); n > 0 {
		r.nest = r.braces[n-1].savedNest
		r.braces = r.braces[:n-1]
	}
	if r.indent > 0 {
		r.indent--
	}
	r.code('}')
	rest := strings.TrimLeft(r.sc.Rest(), " \t")
	switch {
	case !continuesClosingBrace(rest):
		r.flush()
	case isIdentByte(rest[0]):
		r.code(' ')
	}
}

// continuesClosingBrace reports whether the text after a `}` belongs on the
// same line: `});`, `},`, `}.then(...)`, `} else {`, `} while (x)`.
func continuesClosingBrace(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		return false
	}
	switch rest[0] {
	case ')', ']', ',', ';', '.':
		return true
	}
	for _, kw := range []string{"else", "catch", "finally", "while"} {
		if strings.HasPrefix(rest, kw) && (len(rest) == len(kw) || !isIdentByte(rest[len(kw)])) {
			return true
		}
	}
	return false
}

// opensObject guesses whether the `{` about to be opened starts an object
// literal rather than a block, from the code that precedes it.
func (r *reflower) opensObject() bool {
	head := strings.TrimSpace(r.pendingText())
	if head == "" {
		return r.nest > 0
	}
	if strings.HasPrefix(head, "case ") || (strings.HasPrefix(head, "default") && strings.HasSuffix(head, ":")) {
		return false
	}
	if strings.HasSuffix(head, "=>") {
		return false
	}
	switch head[len(head)-1] {
	case '=', ':', '(', ',', '[', '?':
		return true
	}
	for _, kw := range []string{"return", "default", "yield", "&&", "||", "??"} {
		if strings.HasSuffix(head, kw) && (len(head) == len(kw) || !isIdentByte(head[len(head)-len(kw)-1]) || !isIdentByte(kw[0])) {
			return true
		}
	}
	return false
}

func (r *reflower) inObject() bool {
	n := len(r.braces)
	return n > 0 && r.braces[n-1].object
}

func (r *reflower) add(kind segKind, text string) {
	if kind == segCode {
		if n := len(r.pending); n > 0 && r.pending[n-1].kind == segCode {
			r.pending[n-1].text += text
			return
		}
	}
	r.pending = append(r.pending, segment{kind: kind, text: text})
}

func (r *reflower) code(b byte) {
	r.add(segCode, string(b))
}

// space writes one collapsed space; leading and repeated spaces are dropped.
func (r *reflower) space() {
	n := len(r.pending)
	if n == 0 {
		return
	}
	last := r.pending[n-1].text
	if last == "" || last[len(last)-1] == ' ' {
		return
	}
	r.code(' ')
}

func (r *reflower) pendingText() string {
	var sb strings.Builder
	for _, sg := range r.pending {
		sb.WriteString(sg.text)
	}
	return sb.String()
}

func (r *reflower) pendingEmpty() bool {
	return strings.TrimSpace(r.pendingText()) == ""
}

func (r *reflower) trimPendingRight() {
	n := len(r.pending)
	if n > 0 && r.pending[n-1].kind == segCode {
		r.pending[n-1].text = strings.TrimRight(r.pending[n-1].text, " ")
	}
}

// flush commits the pending statement as a line at the current indent.
func (r *reflower) flush() {
	if r.pendingEmpty() {
		r.pending = nil
		return
	}
	segs := r.pending
	r.pending = nil
	if segs[0].kind == segCode {
		segs[0].text = strings.TrimLeft(segs[0].text, " ")
	}
	if last := len(segs) - 1; segs[last].kind == segCode {
		segs[last].text = strings.TrimRight(segs[last].text, " ")
	}
	r.lines = append(r.lines, scriptLine{indent: r.indent, segs: segs, object: r.inObject()})
	r.lineOpen = true
}

func isIdentByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '$'
}
