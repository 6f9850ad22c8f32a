// Package format reflows markup, stylesheet and script text with a single
// character pass per engine, without building a grammar-correct parse tree.
//
// Format is the entry point: it classifies the text with internal/detect and
// dispatches to FormatMarkup, FormatStylesheet or FormatScript. Any engine
// failure is absorbed and the raw text is returned unchanged.
//
// Не делает: проверку синтаксиса, IO, кэширование.
// Зависимости: internal/detect, internal/scan, golang.org/x/net/html.
package format
