// Package detect guesses what kind of source text a blob holds (markup,
// stylesheet or script) from structural signals.
//
// Detection is an ordered table of named rules. The first rule that matches
// decides the kind; every evaluated rule leaves a Hint in the Evidence so the
// decision can be inspected and tested in isolation.
package detect
