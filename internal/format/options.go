package format

import "strings"

// Options controls indentation of formatted output.
type Options struct {
	IndentWidth int
	UseTabs     bool
}

// DefaultIndentWidth is the number of spaces per level when none is configured.
const DefaultIndentWidth = 2

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = DefaultIndentWidth
	}
	return o
}

// indent returns the leading whitespace for the given level.
func (o Options) indent(level int) string {
	if level <= 0 {
		return ""
	}
	if o.UseTabs {
		return strings.Repeat("\t", level)
	}
	return strings.Repeat(" ", level*o.IndentWidth)
}
