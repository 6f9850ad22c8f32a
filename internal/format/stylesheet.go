package format

import (
	"strings"

	"nestfix/internal/scan"
)

// FormatStylesheet reflows stylesheet text into one selector or declaration
// per line with brace-based indentation. Malformed input never fails; spans
// it cannot close are flushed as they are.
func FormatStylesheet(raw string, opt Options) (string, error) {
	sf := styleFormatter{
		w:     NewWriter(opt),
		sc:    scan.New(raw, scan.Options{BlockComments: true}),
		colon: -1,
	}
	sf.run()
	return sf.w.String(), nil
}

type styleFormatter struct {
	w         *Writer
	sc        *scan.Scanner
	buf       strings.Builder
	colon     int // offset of the first structural ':' in buf, -1 if none
	lastSpace bool
}

func (f *styleFormatter) run() {
	for {
		p := f.sc.Next()
		switch p.Kind {
		case scan.PieceEOF:
			f.flushDeclaration(false)
			return
		case scan.PieceChar:
			f.char(p.Byte())
		case scan.PieceBlockComment:
			if f.pendingEmpty() {
				f.reset()
				f.w.Line(p.Text)
				continue
			}
			f.write(p.Text)
		default:
			f.write(p.Text)
		}
	}
}

func (f *styleFormatter) char(b byte) {
	switch b {
	case '{':
		sel := strings.TrimSpace(f.buf.String())
		f.reset()
		if sel != "" {
			f.w.Line(sel + " {")
		} else {
			f.w.Line("{")
		}
		f.w.IndentPush()
	case '}':
		f.flushDeclaration(false)
		f.w.IndentPop()
		f.w.Line("}")
	case ';':
		f.flushDeclaration(true)
	case ':':
		if f.colon < 0 {
			f.colon = f.buf.Len()
		}
		f.write(":")
	case ' ', '\t', '\n', '\r', '\f':
		if f.buf.Len() > 0 && !f.lastSpace {
			f.buf.WriteByte(' ')
			f.lastSpace = true
		}
	default:
		f.buf.WriteByte(b)
		f.lastSpace = false
	}
}

func (f *styleFormatter) write(s string) {
	f.buf.WriteString(s)
	f.lastSpace = false
}

func (f *styleFormatter) pendingEmpty() bool {
	return strings.TrimSpace(f.buf.String()) == ""
}

func (f *styleFormatter) reset() {
	f.buf.Reset()
	f.colon = -1
	f.lastSpace = false
}

// flushDeclaration emits the buffer as `property: value;`. Text without a
// structural colon and at-rules such as @import keep their shape and only get
// the terminator they were written with.
func (f *styleFormatter) flushDeclaration(terminated bool) {
	text, colon := f.buf.String(), f.colon
	f.reset()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	if colon < 0 || trimmed[0] == '@' {
		line := trimmed
		if terminated {
			line += ";"
		}
		f.w.Line(line)
		return
	}
	f.w.Line(declaration(text[:colon], text[colon+1:]) + ";")
}

func declaration(prop, value string) string {
	prop, value = strings.TrimSpace(prop), strings.TrimSpace(value)
	if value == "" {
		return prop + ":"
	}
	return prop + ": " + value
}
