package scan

// Mode is the lexical state of the scanner. At most one mode is active.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeString
	ModeLineComment
	ModeBlockComment
	ModeTemplate
)

func (m Mode) String() string {
	switch m {
	case ModeString:
		return "string"
	case ModeLineComment:
		return "line comment"
	case ModeBlockComment:
		return "block comment"
	case ModeTemplate:
		return "template"
	default:
		return "normal"
	}
}

// PieceKind classifies a scanned piece.
type PieceKind uint8

const (
	PieceEOF PieceKind = iota
	PieceChar
	PieceString
	PieceLineComment
	PieceBlockComment
	PieceTemplate
)

// Piece is either one structural byte (PieceChar) or a verbatim lexical span.
type Piece struct {
	Kind PieceKind
	Text string
	// Unterminated is set when the span ran into EOF (or, for strings, into a
	// raw newline) before its closing delimiter.
	Unterminated bool
}

// Byte returns the structural byte of a PieceChar, or 0.
func (p Piece) Byte() byte {
	if p.Kind != PieceChar || p.Text == "" {
		return 0
	}
	return p.Text[0]
}

// Verbatim reports whether the piece must be copied without interpretation.
func (p Piece) Verbatim() bool {
	return p.Kind != PieceChar && p.Kind != PieceEOF
}

// Options selects which lexical forms the scanner recognizes.
type Options struct {
	BlockComments bool // /* ... */
	LineComments  bool // // ...
	Templates     bool // `...${expr}...`
}

type frameKind uint8

const (
	frameTemplate frameKind = iota
	frameExpr
)

// frame is one level of template nesting: either template text or a ${}
// expression with its own brace count and string state.
type frame struct {
	kind   frameKind
	braces int
	quote  byte
}

// Scanner splits text into pieces in a single pass.
type Scanner struct {
	cur          Cursor
	opts         Options
	mode         Mode
	quote        byte
	frames       []frame
	unterminated Mode
}

// New creates a scanner over text.
func New(text string, opts Options) *Scanner {
	return &Scanner{
		cur:  NewCursor(text),
		opts: opts,
	}
}

// Mode returns the current lexical mode. Between calls to Next it is always
// ModeNormal unless the input ended inside a span.
func (s *Scanner) Mode() Mode { return s.mode }

// Unterminated returns the mode of the first span that hit EOF before its
// closing delimiter, or ModeNormal.
func (s *Scanner) Unterminated() Mode { return s.unterminated }

// InterpolationDepth returns the number of open ${} expressions.
func (s *Scanner) InterpolationDepth() int {
	depth := 0
	for _, f := range s.frames {
		if f.kind == frameExpr {
			depth++
		}
	}
	return depth
}

// PeekByte returns the next unconsumed byte, or 0 at EOF.
func (s *Scanner) PeekByte() byte { return s.cur.Peek() }

// Rest returns the unconsumed text.
func (s *Scanner) Rest() string { return s.cur.Rest() }

// Next returns the next piece.
func (s *Scanner) Next() Piece {
	if s.cur.EOF() {
		return Piece{Kind: PieceEOF}
	}
	m := s.cur.Mark()
	mode := s.enter()
	if mode == ModeNormal {
		return Piece{Kind: PieceChar, Text: s.cur.SliceFrom(m)}
	}

	s.mode = mode
	unterminated := false
	for s.mode != ModeNormal {
		if s.cur.EOF() {
			if s.mode != ModeLineComment {
				unterminated = true
				if s.unterminated == ModeNormal {
					s.unterminated = s.mode
				}
			}
			if s.mode == ModeLineComment {
				s.mode = ModeNormal
			}
			break
		}
		if s.endsAtNewline() {
			if s.mode == ModeString {
				unterminated = true
			}
			s.mode = ModeNormal
			break
		}
		s.step(s.cur.Bump())
	}
	return Piece{Kind: pieceFor(mode), Text: s.cur.SliceFrom(m), Unterminated: unterminated}
}

// enter is the transition out of ModeNormal. It consumes the opening
// delimiter of a span, or a single structural byte.
func (s *Scanner) enter() Mode {
	if b0, b1, ok := s.cur.Peek2(); ok && b0 == '/' {
		switch {
		case b1 == '*' && s.opts.BlockComments:
			s.cur.Bump()
			s.cur.Bump()
			return ModeBlockComment
		case b1 == '/' && s.opts.LineComments:
			s.cur.Bump()
			s.cur.Bump()
			return ModeLineComment
		}
	}
	switch b := s.cur.Bump(); b {
	case '"', '\'':
		s.quote = b
		return ModeString
	case '`':
		if s.opts.Templates {
			s.frames = append(s.frames[:0], frame{kind: frameTemplate})
			return ModeTemplate
		}
	}
	return ModeNormal
}

func (s *Scanner) endsAtNewline() bool {
	next := s.cur.Peek()
	if next != '\n' && next != '\r' {
		return false
	}
	return s.mode == ModeLineComment || s.mode == ModeString
}

// step is the transition function inside a verbatim span for the byte b just
// consumed. A backslash in a string or template always takes the next byte.
func (s *Scanner) step(b byte) {
	switch s.mode {
	case ModeString:
		switch b {
		case '\\':
			s.cur.Bump()
		case s.quote:
			s.quote = 0
			s.mode = ModeNormal
		}
	case ModeBlockComment:
		if b == '*' && s.cur.Eat('/') {
			s.mode = ModeNormal
		}
	case ModeTemplate:
		s.stepTemplate(b)
	}
}

func (s *Scanner) stepTemplate(b byte) {
	top := &s.frames[len(s.frames)-1]
	if top.kind == frameTemplate {
		switch b {
		case '\\':
			s.cur.Bump()
		case '`':
			s.frames = s.frames[:len(s.frames)-1]
			if len(s.frames) == 0 {
				s.mode = ModeNormal
			}
		case '$':
			if s.cur.Eat('{') {
				s.frames = append(s.frames, frame{kind: frameExpr})
			}
		}
		return
	}

	if top.quote != 0 {
		switch b {
		case '\\':
			s.cur.Bump()
		case top.quote, '\n':
			top.quote = 0
		}
		return
	}
	switch b {
	case '"', '\'':
		top.quote = b
	case '`':
		s.frames = append(s.frames, frame{kind: frameTemplate})
	case '{':
		top.braces++
	case '}':
		if top.braces == 0 {
			s.frames = s.frames[:len(s.frames)-1]
		} else {
			top.braces--
		}
	}
}

func pieceFor(m Mode) PieceKind {
	switch m {
	case ModeString:
		return PieceString
	case ModeLineComment:
		return PieceLineComment
	case ModeBlockComment:
		return PieceBlockComment
	case ModeTemplate:
		return PieceTemplate
	default:
		return PieceChar
	}
}
