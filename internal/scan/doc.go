// Package scan provides the single-pass lexical primitive shared by the text
// formatters: a byte cursor and a scanner that separates structural bytes from
// strings, comments and template literals.
//
// The scanner never interprets the contents of a string, comment or template.
// It copies those spans verbatim so callers can decide structure (braces,
// semicolons, newlines) without being fooled by quoted text.
package scan
