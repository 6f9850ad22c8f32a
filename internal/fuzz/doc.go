// Package fuzztests houses Go fuzz harnesses for the formatting pipeline
// (scanner, detector, engines). They guard against panics and check the
// structural invariants from internal/testkit on arbitrary input.
package fuzztests
