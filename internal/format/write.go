package format

import "strings"

// Writer accumulates formatted output line by line at the current indent.
type Writer struct {
	opt         Options
	buf         strings.Builder
	indentLevel int
}

// NewWriter creates a new formatting writer.
func NewWriter(opt Options) *Writer {
	return &Writer{opt: opt.withDefaults()}
}

// Line writes text as one line at the current indent. Blank text is skipped.
func (w *Writer) Line(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.LineAt(w.indentLevel, text)
}

// LineAt writes text as one line at an explicit indent level.
func (w *Writer) LineAt(level int, text string) {
	w.buf.WriteString(w.opt.indent(level))
	w.buf.WriteString(text)
	w.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.buf.WriteByte('\n')
}

// Level returns the current indentation level.
func (w *Writer) Level() int { return w.indentLevel }

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.indentLevel++
}

// IndentPop decreases the indentation level, never below zero.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}

// String returns the output with exactly one trailing newline, or "" when
// nothing was written.
func (w *Writer) String() string {
	out := strings.TrimRight(w.buf.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}
