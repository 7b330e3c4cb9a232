package xpath

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"
)

type Position struct {
	Line   int
	Column int
}

func (p Position) Zero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

const (
	kwLet       = "let"
	kwIf        = "if"
	kwThen      = "then"
	kwElse      = "else"
	kwFor       = "for"
	kwIterate   = "iterate"
	kwBreak     = "break"
	kwIn        = "in"
	kwTo        = "to"
	kwReturn    = "return"
	kwSome      = "some"
	kwEvery     = "every"
	kwSatisfies = "satisfies"
	kwUnion     = "union"
	kwIntersect = "intersect"
	kwExcept    = "except"
	kwAnd       = "and"
	kwOr        = "or"
	kwDiv       = "div"
	kwIdiv      = "idiv"
	kwMod       = "mod"
	kwIs        = "is"
	kwCast      = "cast"
	kwCastable  = "castable"
	kwEq        = "eq"
	kwNe        = "ne"
	kwLt        = "lt"
	kwLe        = "le"
	kwGt        = "gt"
	kwGe        = "ge"
)

func isReserved(str string) bool {
	switch str {
	case kwLet:
	case kwIf:
	case kwThen:
	case kwElse:
	case kwFor:
	case kwIterate:
	case kwBreak:
	case kwIn:
	case kwReturn:
	case kwSome:
	case kwEvery:
	case kwSatisfies:
	default:
		return false
	}
	return true
}

const (
	EOF rune = -(1 + iota)
	Name
	Literal
	Digit
	Invalid
)

const (
	reserved = -(iota + 1000)
	variable
	currNode
	begGrp
	endGrp
	opSeq
	opAssign
	opRange
	opAdd
	opSub
	opMul
	opDiv
	opIdiv
	opMod
	opValEq
	opValNe
	opValGt
	opValGe
	opValLt
	opValLe
	opEq
	opNe
	opGt
	opGe
	opLt
	opLe
	opUnion
	opExcept
	opIntersect
	opIs
	opAnd
	opOr
	opCastAs
	opCastableAs
)

type Token struct {
	Literal string
	Type    rune
	Position
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "<eof>"
	case begGrp:
		return "<begin-group>"
	case endGrp:
		return "<end-group>"
	case currNode:
		return "<context-item>"
	case opSeq:
		return "<sequence>"
	case opAssign:
		return "<assignment>"
	case opRange:
		return "<range>"
	case opAdd:
		return "<add>"
	case opSub:
		return "<subtract>"
	case opMul:
		return "<multiply>"
	case opDiv:
		return "<divide>"
	case opIdiv:
		return "<divide-integer>"
	case opMod:
		return "<modulo>"
	case opValEq:
		return "<value-eq>"
	case opValNe:
		return "<value-ne>"
	case opValGt:
		return "<value-gt>"
	case opValGe:
		return "<value-ge>"
	case opValLt:
		return "<value-lt>"
	case opValLe:
		return "<value-le>"
	case opEq:
		return "<equal>"
	case opNe:
		return "<not-equal>"
	case opGt:
		return "<greater-than>"
	case opGe:
		return "<greater-eq>"
	case opLt:
		return "<lesser-than>"
	case opLe:
		return "<lesser-eq>"
	case opUnion:
		return "<union>"
	case opExcept:
		return "<except>"
	case opIntersect:
		return "<intersect>"
	case opIs:
		return "<identity>"
	case opAnd:
		return "<and>"
	case opOr:
		return "<or>"
	case opCastAs:
		return "<cast-as>"
	case opCastableAs:
		return "<castable-as>"
	case Digit:
		return fmt.Sprintf("number(%s)", t.Literal)
	case Name:
		return fmt.Sprintf("name(%s)", t.Literal)
	case Literal:
		return fmt.Sprintf("literal(%s)", t.Literal)
	case variable:
		return fmt.Sprintf("variable(%s)", t.Literal)
	case reserved:
		return fmt.Sprintf("reserved(%s)", t.Literal)
	case Invalid:
		return "<invalid>"
	default:
		return "<unknown>"
	}
}

type Scanner struct {
	input *bufio.Reader
	char  rune
	str   bytes.Buffer

	Position
}

func Scan(r io.Reader) *Scanner {
	scan := &Scanner{
		input: bufio.NewReader(r),
	}
	scan.Line = 1
	scan.read()
	return scan
}

func (s *Scanner) Scan() Token {
	var tok Token
	s.skipBlank()
	if s.done() {
		tok.Position = s.Position
		tok.Type = EOF
		return tok
	}
	s.str.Reset()

	tok.Position = s.Position
	switch {
	case isOperator(s.char):
		s.scanOperator(&tok)
	case isDelimiter(s.char):
		s.scanDelimiter(&tok)
	case s.char == apos || s.char == quote:
		s.scanLiteral(&tok)
	case isVariable(s.char):
		s.scanVariable(&tok)
	case unicode.IsLetter(s.char):
		s.scanIdent(&tok)
	case unicode.IsDigit(s.char):
		s.scanNumber(&tok)
	default:
		tok.Type = Invalid
	}
	return tok
}

func (s *Scanner) scanOperator(tok *Token) {
	switch k := s.peek(); s.char {
	case plus:
		tok.Type = opAdd
	case dash:
		tok.Type = opSub
	case star:
		tok.Type = opMul
	case equal:
		tok.Type = opEq
	case bang:
		tok.Type = Invalid
		if k == equal {
			s.read()
			tok.Type = opNe
		}
	case langle:
		tok.Type = opLt
		if k == equal {
			s.read()
			tok.Type = opLe
		}
	case rangle:
		tok.Type = opGt
		if k == equal {
			s.read()
			tok.Type = opGe
		}
	case lparen:
		tok.Type = begGrp
	case rparen:
		tok.Type = endGrp
	default:
		tok.Type = Invalid
	}
	if tok.Type != Invalid {
		s.read()
	}
}

func (s *Scanner) scanDelimiter(tok *Token) {
	switch k := s.peek(); s.char {
	case dot:
		tok.Type = currNode
	case comma:
		tok.Type = opSeq
	case pipe:
		tok.Type = opUnion
	case colon:
		tok.Type = Invalid
		if k == equal {
			s.read()
			tok.Type = opAssign
		}
	default:
		tok.Type = Invalid
	}
	if tok.Type != Invalid {
		s.read()
	}
}

func (s *Scanner) scanLiteral(tok *Token) {
	quote := s.char
	s.read()
	for !s.done() && s.char != quote {
		s.write()
		s.read()
	}
	tok.Type = Literal
	tok.Literal = s.str.String()
	if s.char != quote {
		tok.Type = Invalid
	}
	s.read()
}

func (s *Scanner) scanNumber(tok *Token) {
	for !s.done() && unicode.IsDigit(s.char) {
		s.write()
		s.read()
	}
	if s.char == dot {
		s.write()
		s.read()
		for !s.done() && unicode.IsDigit(s.char) {
			s.write()
			s.read()
		}
	}
	if s.char == 'e' || s.char == 'E' {
		s.write()
		s.read()
		if s.char == dash || s.char == plus {
			s.write()
			s.read()
		}
		for !s.done() && unicode.IsDigit(s.char) {
			s.write()
			s.read()
		}
	}
	tok.Type = Digit
	tok.Literal = s.str.String()
}

func (s *Scanner) scanVariable(tok *Token) {
	s.read()
	for !s.done() && isIdent(s.char) {
		s.write()
		s.read()
	}
	tok.Type = variable
	tok.Literal = s.str.String()
}

func (s *Scanner) scanIdent(tok *Token) {
	for !s.done() && (isIdent(s.char) || s.char == colon) {
		s.write()
		s.read()
	}
	tok.Literal = s.str.String()
	switch tok.Literal {
	case kwIs:
		tok.Type = opIs
	case kwUnion:
		tok.Type = opUnion
	case kwIntersect:
		tok.Type = opIntersect
	case kwExcept:
		tok.Type = opExcept
	case kwAnd:
		tok.Type = opAnd
	case kwOr:
		tok.Type = opOr
	case kwTo:
		tok.Type = opRange
	case kwDiv:
		tok.Type = opDiv
	case kwIdiv:
		tok.Type = opIdiv
	case kwMod:
		tok.Type = opMod
	case kwEq:
		tok.Type = opValEq
	case kwNe:
		tok.Type = opValNe
	case kwLt:
		tok.Type = opValLt
	case kwLe:
		tok.Type = opValLe
	case kwGt:
		tok.Type = opValGt
	case kwGe:
		tok.Type = opValGe
	case kwCast:
		tok.Type = Name
		if s.lookForward(kwAs) {
			tok.Type = opCastAs
		}
	case kwCastable:
		tok.Type = Name
		if s.lookForward(kwAs) {
			tok.Type = opCastableAs
		}
	default:
		if isReserved(tok.Literal) {
			tok.Type = reserved
		} else {
			tok.Type = Name
		}
	}
}

const kwAs = "as"

func (s *Scanner) lookForward(want string) bool {
	peek, _ := s.input.Peek(64)
	tmp := bytes.TrimSpace(peek)

	ok := bytes.HasPrefix(tmp, []byte(want))
	if ok {
		skip := len(want) + bytes.Index(peek, []byte(want))
		s.input.Discard(skip)
		s.Position.Column += skip
	}
	return ok
}

func (s *Scanner) skipBlank() {
	for unicode.IsSpace(s.char) {
		s.read()
	}
}

func (s *Scanner) write() {
	s.str.WriteRune(s.char)
}

func (s *Scanner) read() {
	if s.char == '\n' {
		s.Column = 0
		s.Line++
	}
	s.Column++
	c, _, err := s.input.ReadRune()
	if err != nil {
		s.char = utf8.RuneError
	} else {
		s.char = c
	}
}

func (s *Scanner) peek() rune {
	defer s.input.UnreadRune()
	c, _, _ := s.input.ReadRune()
	return c
}

func (s *Scanner) done() bool {
	return s.char == utf8.RuneError
}

const (
	langle     = '<'
	rangle     = '>'
	lparen     = '('
	rparen     = ')'
	colon      = ':'
	quote      = '"'
	apos       = '\''
	bang       = '!'
	equal      = '='
	dash       = '-'
	underscore = '_'
	dot        = '.'
	comma      = ','
	plus       = '+'
	star       = '*'
	pipe       = '|'
	dollar     = '$'
)

func isIdent(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == dash || c == underscore
}

func isVariable(c rune) bool {
	return c == dollar
}

func isDelimiter(c rune) bool {
	return c == comma || c == dot || c == pipe || c == colon
}

func isOperator(c rune) bool {
	return c == plus || c == dash || c == star || c == equal ||
		c == bang || c == langle || c == rangle ||
		c == lparen || c == rparen
}
