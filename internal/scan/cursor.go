package scan

import (
	"fmt"

	"fortio.org/safecast"
)

// Cursor is a position in a text.
type Cursor struct {
	Text string
	Off  uint32
	// Limit is the exclusive upper bound for Off; defaults to len(Text).
	Limit uint32
}

// NewCursor creates a new cursor for the provided text.
func NewCursor(text string) Cursor {
	limit, err := safecast.Conv[uint32](len(text))
	if err != nil {
		panic(fmt.Errorf("len text overflow: %w", err))
	}
	return Cursor{
		Text:  text,
		Off:   0,
		Limit: limit,
	}
}

// EOF reports whether the cursor reached the limit.
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// Peek returns the current byte, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.Text[c.Off]
}

// Peek2 returns the current and the next byte; ok is false when fewer than two remain.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.Limit {
		return 0, 0, false
	}
	return c.Text[c.Off], c.Text[c.Off+1], true
}

// Bump advances one byte and returns it.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.Text[c.Off]
	c.Off++
	return b
}

// Eat consumes the next byte if it matches b.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.Text[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// Mark is a saved cursor position.
type Mark uint32

// Mark saves the current position.
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SliceFrom returns the text consumed since m.
func (c *Cursor) SliceFrom(m Mark) string {
	return c.Text[uint32(m):c.Off]
}

// Rest returns the unconsumed text.
func (c *Cursor) Rest() string {
	return c.Text[c.Off:c.Limit]
}
