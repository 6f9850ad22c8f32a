package format

import "strings"

// headerKeywords open a control-flow or declaration header; such lines never
// get a terminator.
var headerKeywords = []string{
	"if", "for", "while", "switch", "with", "catch", "try", "finally", "do", "else", "class", "function",
}

// bareKeywords are left alone when they are the whole statement.
var bareKeywords = map[string]bool{
	"return": true, "throw": true, "yield": true, "continue": true, "break": true,
}

// assignGuard lists the bytes that, right before `=`, make it part of a
// comparison or compound operator.
const assignGuard = "=!<>+-*/%&|^~?:"

// polish is the style pass over reflowed lines: operator spacing first, then
// statement terminators.
func polish(lines []scriptLine) {
	for i := range lines {
		lines[i].segs = spaceOperators(lines[i].segs)
	}
	for i := range lines {
		if needsTerminator(lines, i) {
			lines[i].segs = appendTerminator(lines[i].segs)
		}
	}
}

// spaceOperators puts exactly one space around `=>` and around a bare `=`.
// Only code segments are rewritten.
func spaceOperators(segs []segment) []segment {
	out := make([]segment, len(segs))
	var prev byte // last non-space byte seen on the line
	for i, sg := range segs {
		if sg.kind != segCode {
			out[i] = sg
			if t := strings.TrimRight(sg.text, " "); t != "" {
				prev = t[len(t)-1]
			}
			continue
		}
		src := sg.text
		var sb strings.Builder
		sb.Grow(len(src) + 4)
		for j := 0; j < len(src); j++ {
			b := src[j]
			if b != '=' {
				sb.WriteByte(b)
				if b != ' ' {
					prev = b
				}
				continue
			}
			next := byteAfter(segs, i, j)
			switch {
			case next == '>':
				writeSpaced(&sb, "=>")
				j = skipSpaces(src, j+2) - 1
				prev = '>'
			case next != '=' && prev != 0 && strings.IndexByte(assignGuard, prev) < 0:
				writeSpaced(&sb, "=")
				j = skipSpaces(src, j+1) - 1
				prev = '='
			default:
				sb.WriteByte(b)
				prev = b
			}
		}
		out[i] = segment{kind: segCode, text: sb.String()}
	}
	if last := len(out) - 1; last >= 0 && out[last].kind == segCode {
		out[last].text = strings.TrimRight(out[last].text, " ")
	}
	return out
}

func writeSpaced(sb *strings.Builder, op string) {
	trimmed := strings.TrimRight(sb.String(), " ")
	sb.Reset()
	sb.WriteString(trimmed)
	if trimmed != "" {
		sb.WriteByte(' ')
	}
	sb.WriteString(op)
	sb.WriteByte(' ')
}

// byteAfter returns the byte following position j of segment i, looking into
// the next segment when needed.
func byteAfter(segs []segment, i, j int) byte {
	if j+1 < len(segs[i].text) {
		return segs[i].text[j+1]
	}
	for k := i + 1; k < len(segs); k++ {
		if segs[k].text != "" {
			return segs[k].text[0]
		}
	}
	return 0
}

func skipSpaces(s string, from int) int {
	for from < len(s) && s[from] == ' ' {
		from++
	}
	return from
}

// splitTrailingComment separates a trailing line comment from the code part.
func splitTrailingComment(segs []segment) (code []segment, comment *segment) {
	if n := len(segs); n > 0 && segs[n-1].kind == segLineComment {
		c := segs[n-1]
		return segs[:n-1], &c
	}
	return segs, nil
}

func joinSegments(segs []segment, skipComments bool) string {
	var sb strings.Builder
	for _, sg := range segs {
		if skipComments && (sg.kind == segBlockComment || sg.kind == segLineComment) {
			continue
		}
		sb.WriteString(sg.text)
	}
	return strings.TrimSpace(sb.String())
}

func needsTerminator(lines []scriptLine, i int) bool {
	ln := lines[i]
	if ln.object {
		return false
	}
	codeSegs, _ := splitTrailingComment(ln.segs)
	code := joinSegments(codeSegs, true)
	if code == "" {
		return false
	}
	full := joinSegments(codeSegs, false)
	switch full[len(full)-1] {
	case ';', '{', '}', ':', ',':
		return false
	}
	if startsWithKeyword(code, headerKeywords) || bareKeywords[code] {
		return false
	}
	next := nextNonEmpty(lines, i)
	if strings.HasSuffix(full, ")") && strings.HasPrefix(next, "{") {
		return false
	}
	// a leading dot continues a method chain on the next line
	if strings.HasPrefix(next, ".") {
		return false
	}
	return true
}

func appendTerminator(segs []segment) []segment {
	code, comment := splitTrailingComment(segs)
	out := make([]segment, 0, len(segs)+2)
	out = append(out, code...)
	if n := len(out); n > 0 && out[n-1].kind == segCode {
		out[n-1].text = strings.TrimRight(out[n-1].text, " ")
	}
	out = append(out, segment{kind: segCode, text: ";"})
	if comment != nil {
		out = append(out, segment{kind: segCode, text: " "}, *comment)
	}
	return out
}

func nextNonEmpty(lines []scriptLine, i int) string {
	for j := i + 1; j < len(lines); j++ {
		if t := lines[j].text(); t != "" {
			return t
		}
	}
	return ""
}

func startsWithKeyword(code string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.HasPrefix(code, kw) {
			continue
		}
		if len(code) == len(kw) || !isIdentByte(code[len(kw)]) {
			return true
		}
	}
	return false
}
