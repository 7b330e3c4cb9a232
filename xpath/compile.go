package xpath

import (
	"io"
	"strconv"
	"strings"

	"github.com/midbel/xee/xml"
)

// CompileString parses an expression and returns the raw tree, before
// any of the static phases have run.
func CompileString(expr string) (Expression, error) {
	return Compile(strings.NewReader(expr))
}

func Compile(r io.Reader) (Expression, error) {
	cp := createCompiler(r)
	return cp.Compile()
}

const (
	powLowest = iota
	powOr
	powAnd
	powCmp
	powRange
	powAdd
	powMul
	powUnion
	powIntersect
	powCastable
	powCast
	powUnary
)

var powers = map[rune]int{
	opOr:         powOr,
	opAnd:        powAnd,
	opEq:         powCmp,
	opNe:         powCmp,
	opLt:         powCmp,
	opLe:         powCmp,
	opGt:         powCmp,
	opGe:         powCmp,
	opValEq:      powCmp,
	opValNe:      powCmp,
	opValLt:      powCmp,
	opValLe:      powCmp,
	opValGt:      powCmp,
	opValGe:      powCmp,
	opIs:         powCmp,
	opRange:      powRange,
	opAdd:        powAdd,
	opSub:        powAdd,
	opMul:        powMul,
	opDiv:        powMul,
	opIdiv:       powMul,
	opMod:        powMul,
	opUnion:      powUnion,
	opExcept:     powIntersect,
	opIntersect:  powIntersect,
	opCastAs:     powCast,
	opCastableAs: powCastable,
}

type (
	prefixFunc func() (Expression, error)
	infixFunc  func(Expression) (Expression, error)
)

type compiler struct {
	scan *Scanner
	curr Token
	peek Token

	prefix map[rune]prefixFunc
	infix  map[rune]infixFunc

	// innermost loop last; break binds to the top entry
	exits []*ExitSignal
}

func createCompiler(r io.Reader) *compiler {
	cp := compiler{
		scan: Scan(r),
	}
	cp.prefix = map[rune]prefixFunc{
		Digit:    cp.compileNumber,
		Literal:  cp.compileLiteral,
		variable: cp.compileVariable,
		currNode: cp.compileCurrent,
		begGrp:   cp.compileGroup,
		opSub:    cp.compileNegate,
		opAdd:    cp.compileUnaryPlus,
		reserved: cp.compileReserved,
	}
	cp.infix = map[rune]infixFunc{
		opAdd:        cp.compileArithmetic,
		opSub:        cp.compileArithmetic,
		opMul:        cp.compileArithmetic,
		opDiv:        cp.compileArithmetic,
		opIdiv:       cp.compileArithmetic,
		opMod:        cp.compileArithmetic,
		opEq:         cp.compileComparison,
		opNe:         cp.compileComparison,
		opLt:         cp.compileComparison,
		opLe:         cp.compileComparison,
		opGt:         cp.compileComparison,
		opGe:         cp.compileComparison,
		opValEq:      cp.compileComparison,
		opValNe:      cp.compileComparison,
		opValLt:      cp.compileComparison,
		opValLe:      cp.compileComparison,
		opValGt:      cp.compileComparison,
		opValGe:      cp.compileComparison,
		opIs:         cp.compileIdentity,
		opAnd:        cp.compileLogical,
		opOr:         cp.compileLogical,
		opRange:      cp.compileRange,
		opUnion:      cp.compileSet,
		opExcept:     cp.compileSet,
		opIntersect:  cp.compileSet,
		opCastAs:     cp.compileCast,
		opCastableAs: cp.compileCast,
	}
	cp.next()
	cp.next()
	return &cp
}

func (c *compiler) Compile() (Expression, error) {
	expr, err := c.compileSequence()
	if err != nil {
		return nil, err
	}
	if !c.is(EOF) {
		return nil, c.syntaxError("unexpected token after expression")
	}
	return expr, nil
}

func (c *compiler) compileSequence() (Expression, error) {
	expr, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	if !c.is(opSeq) {
		return expr, nil
	}
	all := []Expression{expr}
	for c.is(opSeq) {
		c.next()
		expr, err := c.compile(powLowest)
		if err != nil {
			return nil, err
		}
		all = append(all, expr)
	}
	return NewSequenceExpr(all...), nil
}

func (c *compiler) compile(pow int) (Expression, error) {
	fn, ok := c.prefix[c.curr.Type]
	if !ok {
		return nil, c.syntaxError("expression expected")
	}
	left, err := fn()
	if err != nil {
		return nil, err
	}
	for !c.is(EOF) && pow < c.power() {
		fn, ok := c.infix[c.curr.Type]
		if !ok {
			return left, nil
		}
		left, err = fn(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (c *compiler) compileNumber() (Expression, error) {
	defer c.next()
	str := c.curr.Literal
	if !strings.ContainsAny(str, ".eE") {
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, c.syntaxError("invalid number")
		}
		return c.located(NewLiteral(n)), nil
	}
	n, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return nil, c.syntaxError("invalid number")
	}
	return c.located(NewLiteral(n)), nil
}

func (c *compiler) compileLiteral() (Expression, error) {
	defer c.next()
	return c.located(NewLiteral(c.curr.Literal)), nil
}

func (c *compiler) compileVariable() (Expression, error) {
	defer c.next()
	name, err := xml.ParseName(c.curr.Literal)
	if err != nil {
		return nil, c.syntaxError("invalid variable name")
	}
	return c.located(NewVariableReference(name)), nil
}

func (c *compiler) compileCurrent() (Expression, error) {
	defer c.next()
	return c.located(NewContextItem()), nil
}

func (c *compiler) compileGroup() (Expression, error) {
	c.next()
	if c.is(endGrp) {
		c.next()
		return createLiteral(nil), nil
	}
	expr, err := c.compileSequence()
	if err != nil {
		return nil, err
	}
	if !c.is(endGrp) {
		return nil, c.syntaxError("closing parenthesis expected")
	}
	c.next()
	return expr, nil
}

func (c *compiler) compileNegate() (Expression, error) {
	pos := c.curr.Position
	c.next()
	expr, err := c.compile(powUnary)
	if err != nil {
		return nil, err
	}
	return c.at(NewNegate(expr), pos), nil
}

func (c *compiler) compileUnaryPlus() (Expression, error) {
	c.next()
	return c.compile(powUnary)
}

func (c *compiler) compileReserved() (Expression, error) {
	switch c.curr.Literal {
	case kwLet:
		return c.compileLet()
	case kwFor:
		return c.compileLoop(kwFor)
	case kwIterate:
		return c.compileLoop(kwIterate)
	case kwIf:
		return c.compileIf()
	case kwSome, kwEvery:
		return c.compileQuantified()
	case kwBreak:
		return c.compileBreak()
	default:
		return nil, c.syntaxError("keyword not allowed here")
	}
}

func (c *compiler) compileBinding() (xml.QName, error) {
	var zero xml.QName
	if !c.is(variable) {
		return zero, c.syntaxError("variable expected")
	}
	name, err := xml.ParseName(c.curr.Literal)
	if err != nil {
		return zero, c.syntaxError("invalid variable name")
	}
	c.next()
	return name, nil
}

func (c *compiler) compileLet() (Expression, error) {
	pos := c.curr.Position
	c.next()
	name, err := c.compileBinding()
	if err != nil {
		return nil, err
	}
	if !c.is(opAssign) {
		return nil, c.syntaxError("assignment expected")
	}
	c.next()
	declare, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwReturn); err != nil {
		return nil, err
	}
	action, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	return c.at(NewLet(name, declare, action), pos), nil
}

func (c *compiler) compileLoop(kind string) (Expression, error) {
	pos := c.curr.Position
	c.next()
	name, err := c.compileBinding()
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwIn); err != nil {
		return nil, err
	}
	declare, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwReturn); err != nil {
		return nil, err
	}
	if kind == kwFor {
		action, err := c.compile(powLowest)
		if err != nil {
			return nil, err
		}
		return c.at(NewFor(name, declare, action), pos), nil
	}
	signal := NewExitSignal()
	c.exits = append(c.exits, signal)
	action, err := c.compile(powLowest)
	c.exits = c.exits[:len(c.exits)-1]
	if err != nil {
		return nil, err
	}
	return c.at(NewIterate(name, declare, action, signal), pos), nil
}

func (c *compiler) compileQuantified() (Expression, error) {
	pos := c.curr.Position
	every := c.curr.Literal == kwEvery
	c.next()
	name, err := c.compileBinding()
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwIn); err != nil {
		return nil, err
	}
	declare, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwSatisfies); err != nil {
		return nil, err
	}
	action, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	return c.at(NewQuantified(name, every, declare, action), pos), nil
}

func (c *compiler) compileIf() (Expression, error) {
	pos := c.curr.Position
	c.next()
	if !c.is(begGrp) {
		return nil, c.syntaxError("opening parenthesis expected")
	}
	test, err := c.compileGroup()
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwThen); err != nil {
		return nil, err
	}
	csq, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	if err := c.expectKeyword(kwElse); err != nil {
		return nil, err
	}
	alt, err := c.compile(powLowest)
	if err != nil {
		return nil, err
	}
	return c.at(NewConditional(test, csq, alt), pos), nil
}

// compileBreak binds the break to the innermost iterate being
// compiled. Outside of any iterate the signal is nil and the break
// evaluates to an empty sequence.
func (c *compiler) compileBreak() (Expression, error) {
	pos := c.curr.Position
	c.next()
	if c.is(begGrp) {
		c.next()
		if !c.is(endGrp) {
			return nil, c.syntaxError("closing parenthesis expected")
		}
		c.next()
	}
	var signal *ExitSignal
	if n := len(c.exits); n > 0 {
		signal = c.exits[n-1]
	}
	return c.at(NewBreak(signal), pos), nil
}

func (c *compiler) compileArithmetic(left Expression) (Expression, error) {
	var (
		op  = c.curr.Type
		pos = c.curr.Position
	)
	c.next()
	right, err := c.compile(powers[op])
	if err != nil {
		return nil, err
	}
	return c.at(NewArithmetic(op, left, right), pos), nil
}

func (c *compiler) compileComparison(left Expression) (Expression, error) {
	var (
		op  = c.curr.Type
		pos = c.curr.Position
	)
	c.next()
	right, err := c.compile(powers[op])
	if err != nil {
		return nil, err
	}
	return c.at(NewComparison(op, left, right), pos), nil
}

func (c *compiler) compileLogical(left Expression) (Expression, error) {
	var (
		op  = c.curr.Type
		pos = c.curr.Position
	)
	c.next()
	right, err := c.compile(powers[op])
	if err != nil {
		return nil, err
	}
	return c.at(NewLogical(op, left, right), pos), nil
}

func (c *compiler) compileIdentity(left Expression) (Expression, error) {
	pos := c.curr.Position
	c.next()
	right, err := c.compile(powCmp)
	if err != nil {
		return nil, err
	}
	return c.at(NewIdentity(left, right), pos), nil
}

func (c *compiler) compileRange(left Expression) (Expression, error) {
	pos := c.curr.Position
	c.next()
	right, err := c.compile(powRange)
	if err != nil {
		return nil, err
	}
	return c.at(NewRange(left, right), pos), nil
}

func (c *compiler) compileSet(left Expression) (Expression, error) {
	var (
		op  = c.curr.Type
		pos = c.curr.Position
	)
	c.next()
	right, err := c.compile(powers[op])
	if err != nil {
		return nil, err
	}
	return c.at(NewSet(op, left, right), pos), nil
}

func (c *compiler) compileCast(left Expression) (Expression, error) {
	var (
		op  = c.curr.Type
		pos = c.curr.Position
	)
	c.next()
	if !c.is(Name) {
		return nil, c.syntaxError("type name expected")
	}
	name, err := xml.ParseName(c.curr.Literal)
	if err != nil {
		return nil, c.syntaxError("invalid type name")
	}
	target, err := TypeByName(name)
	if err != nil {
		return nil, attach(staticErrorf(CodeStaticType, "%s: unknown type", c.curr.Literal), c.curr.Position)
	}
	c.next()
	if op == opCastableAs {
		return c.at(NewCastable(left, target, false), pos), nil
	}
	return c.at(NewCast(left, target, false), pos), nil
}

func (c *compiler) expectKeyword(kw string) error {
	if !c.is(reserved) || c.curr.Literal != kw {
		return c.syntaxError(kw + " expected")
	}
	c.next()
	return nil
}

func (c *compiler) located(expr Expression) Expression {
	return c.at(expr, c.curr.Position)
}

type positioned interface {
	At(pos Position)
}

func (c *compiler) at(expr Expression, pos Position) Expression {
	if p, ok := expr.(positioned); ok {
		p.At(pos)
	}
	return expr
}

func (c *compiler) power() int {
	pow, ok := powers[c.curr.Type]
	if !ok {
		return powLowest
	}
	return pow
}

func (c *compiler) is(kind rune) bool {
	return c.curr.Type == kind
}

func (c *compiler) next() {
	c.curr = c.peek
	c.peek = c.scan.Scan()
}

func (c *compiler) syntaxError(cause string) error {
	return attach(staticErrorf(CodeSyntax, "%s (got %s)", cause, c.curr), c.curr.Position)
}
