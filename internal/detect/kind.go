package detect

import (
	"fmt"
	"strings"
)

// Kind is the classified language of a text blob.
type Kind uint8

const (
	Unknown Kind = iota
	Markup
	Stylesheet
	Script
)

func (k Kind) String() string {
	switch k {
	case Markup:
		return "markup"
	case Stylesheet:
		return "stylesheet"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("Kind(%s)", k.String())
}

// Ext returns the file extension used when exporting text of this kind.
func (k Kind) Ext() string {
	switch k {
	case Markup:
		return "html"
	case Stylesheet:
		return "css"
	case Script:
		return "js"
	default:
		return "txt"
	}
}

// ParseKind accepts a kind name ("markup") or its extension ("html").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markup", "html", "htm":
		return Markup, nil
	case "stylesheet", "css":
		return Stylesheet, nil
	case "script", "js", "mjs", "cjs":
		return Script, nil
	case "unknown", "txt", "text":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown kind %q (expected markup|stylesheet|script|unknown)", s)
	}
}

// KindForExt maps a file extension (with or without the dot) to a kind.
// The second result is false when the extension is not recognized.
func KindForExt(ext string) (Kind, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "html", "htm", "xhtml", "vue", "svelte":
		return Markup, true
	case "css":
		return Stylesheet, true
	case "js", "mjs", "cjs", "jsx", "ts":
		return Script, true
	}
	return Unknown, false
}
