package detect

import (
	"strings"

	"nestfix/internal/scan"
)

// rule is one named predicate of the detection table.
type rule struct {
	name  string
	kind  Kind
	match func(text string) (ok bool, reason string)
}

// rules are evaluated in order; the first match wins. Markup goes before the
// stylesheet probe because braces inside attribute values or text must not be
// read as declaration blocks.
var rules = []rule{
	{name: "blank", kind: Unknown, match: matchBlank},
	{name: "tag-open", kind: Markup, match: matchTagOpen},
	{name: "declaration-block", kind: Stylesheet, match: matchDeclarationBlock},
	{name: "script-signal", kind: Script, match: matchScriptSignal},
}

// declarationKeywords disqualify a declaration block. The follow set keeps
// `var(--x)` and `letter-spacing` from matching.
var declarationKeywords = []struct {
	word   string
	follow string
}{
	{"function", " \t\r\n("},
	{"const", " \t\r\n"},
	{"let", " \t\r\n"},
	{"var", " \t\r\n"},
	{"class", " \t\r\n"},
	{"return", " \t\r\n"},
	{"import", " \t\r\n{"},
	{"export", " \t\r\n"},
}

var scriptKeywords = []string{
	"const", "let", "var", "function", "class", "import", "export",
	"return", "if", "for", "while", "switch", "try",
}

func matchBlank(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return true, "input is empty or whitespace only"
	}
	return false, "input has content"
}

func matchTagOpen(text string) (bool, string) {
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '<' {
			continue
		}
		next := text[i+1]
		if isASCIILetter(next) || next == '!' || next == '/' {
			end := min(i+12, len(text))
			return true, "tag opening " + quoteSnippet(text[i:end])
		}
	}
	return false, "no tag opening found"
}

// matchDeclarationBlock looks for a `{...}` body holding a colon. Keywords
// and arrows disqualify the text only where they occur as code, so quoted
// selector values and content strings do not count.
func matchDeclarationBlock(text string) (bool, string) {
	stripped := unquoted(StripComments(text))
	if strings.Contains(stripped, "=>") {
		return false, "arrow operator present"
	}
	for _, kw := range declarationKeywords {
		if containsWord(stripped, kw.word, kw.follow) {
			return false, "declaration keyword `" + kw.word + "` present"
		}
	}
	rest := stripped
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return false, "no block with property: value pairs"
		}
		end := strings.IndexByte(rest[open+1:], '}')
		if end < 0 {
			return false, "unterminated block"
		}
		body := rest[open+1 : open+1+end]
		if strings.Contains(body, ":") {
			return true, "block body holds " + quoteSnippet(strings.TrimSpace(body))
		}
		rest = rest[open+1+end+1:]
	}
}

// unquoted blanks out string literals, keeping the structural text around
// them.
func unquoted(text string) string {
	sc := scan.New(text, scan.Options{})
	var sb strings.Builder
	sb.Grow(len(text))
	for {
		p := sc.Next()
		switch p.Kind {
		case scan.PieceEOF:
			return sb.String()
		case scan.PieceString:
			sb.WriteString(`""`)
		default:
			sb.WriteString(p.Text)
		}
	}
}

func matchScriptSignal(text string) (bool, string) {
	for _, kw := range scriptKeywords {
		if containsWord(text, kw, "") {
			return true, "script keyword `" + kw + "`"
		}
	}
	if strings.Contains(text, "=>") {
		return true, "arrow operator"
	}
	if i := strings.IndexAny(text, "{}();"); i >= 0 {
		return true, "punctuation `" + text[i:i+1] + "`"
	}
	return false, "no script signal"
}

// StripComments removes block comments and line comments. A `//` only starts
// a line comment at the start of a line or after whitespace, so `url(http://x)`
// survives.
func StripComments(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '/' && i+1 < len(text) {
			switch text[i+1] {
			case '*':
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return sb.String()
				}
				i += 2 + end + 1
				sb.WriteByte(' ')
				continue
			case '/':
				if i == 0 || isSpace(text[i-1]) {
					nl := strings.IndexByte(text[i:], '\n')
					if nl < 0 {
						return sb.String()
					}
					i += nl - 1
					continue
				}
			}
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}

// containsWord reports whether word occurs with identifier boundaries. When
// follow is non-empty the byte after the word must be one of follow (or EOF).
// Occurrences right after `.`, `-`, `#`, `@` or `$` are ignored.
func containsWord(text, word, follow string) bool {
	from := 0
	for {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(word)
		from = start + 1

		if start > 0 {
			prev := text[start-1]
			if isIdentByte(prev) || strings.IndexByte(".-#@$", prev) >= 0 {
				continue
			}
		}
		if end < len(text) {
			next := text[end]
			if isIdentByte(next) {
				continue
			}
			if follow != "" && strings.IndexByte(follow, next) < 0 {
				continue
			}
		}
		return true
	}
}

func quoteSnippet(s string) string {
	if len(s) > 24 {
		s = s[:24] + "..."
	}
	return "`" + strings.ReplaceAll(s, "\n", " ") + "`"
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isASCIILetter(b) || (b >= '0' && b <= '9') || b == '_'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
