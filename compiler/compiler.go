// Package compiler implements the single-pass Pratt parser that drives
// the scanner and emits directly into a chunk.Chunk — there is no
// intermediate AST. Expression parsing is table-driven: each token
// type maps to an optional prefix rule, an optional infix rule, and a
// binding precedence.
package compiler

import (
	"fmt"
	"io"
	"strconv"

	"nilan/chunk"
	"nilan/intern"
	"nilan/lexer"
	"nilan/token"
	"nilan/value"
)

// Precedence orders the binding power of operators, lowest to highest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment       // =
	PrecOr               // or
	PrecAnd              // and
	PrecEquality         // == !=
	PrecComparison       // < > <= >=
	PrecTerm             // + -
	PrecFactor           // * /
	PrecUnary            // ! -
	PrecCall             // . (
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[token.Type]rule

func init() {
	rules = map[token.Type]rule{
		token.LeftParen:    {(*Compiler).grouping, nil, PrecNone},
		token.Minus:        {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.Plus:         {nil, (*Compiler).binary, PrecTerm},
		token.Slash:        {nil, (*Compiler).binary, PrecFactor},
		token.Star:         {nil, (*Compiler).binary, PrecFactor},
		token.Bang:         {(*Compiler).unary, nil, PrecNone},
		token.BangEqual:    {nil, (*Compiler).binary, PrecEquality},
		token.EqualEqual:   {nil, (*Compiler).binary, PrecEquality},
		token.Greater:      {nil, (*Compiler).binary, PrecComparison},
		token.GreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		token.Less:         {nil, (*Compiler).binary, PrecComparison},
		token.LessEqual:    {nil, (*Compiler).binary, PrecComparison},
		token.Identifier:   {(*Compiler).variable, nil, PrecNone},
		token.String:       {(*Compiler).stringLiteral, nil, PrecNone},
		token.Number:       {(*Compiler).number, nil, PrecNone},
		token.True:         {(*Compiler).literal, nil, PrecNone},
		token.False:        {(*Compiler).literal, nil, PrecNone},
		token.Nil:          {(*Compiler).literal, nil, PrecNone},
	}
}

func getRule(t token.Type) rule {
	if r, ok := rules[t]; ok {
		return r
	}
	return rule{precedence: PrecNone}
}

// maxLocals bounds the compiler's local-variable stack: local slots
// are addressed by a one-byte operand.
const maxLocals = 256

type local struct {
	name  string
	depth int
}

// Compiler drives the scanner and writes into a single chunk.Chunk. It
// is single-use: construct one per call to Compile.
type Compiler struct {
	scanner  *lexer.Lexer
	chunk    *chunk.Chunk
	interner *intern.Interner
	stderr   io.Writer

	current  token.Token
	previous token.Token

	hadError   bool
	panicMode  bool
	firstError string

	locals     [maxLocals]local
	localCount int
	scopeDepth int
}

// Compile parses source and emits bytecode into a fresh chunk. It
// returns the chunk and a CompileError naming the first diagnostic
// encountered, or a nil error on success; on failure the chunk's
// contents are incomplete and must be discarded. All diagnostics,
// including ones after the first, are written to stderr as they are
// discovered.
func Compile(source string, interner *intern.Interner, stderr io.Writer) (*chunk.Chunk, error) {
	c := &Compiler{
		scanner:  lexer.New(source),
		chunk:    chunk.New(),
		interner: interner,
		stderr:   stderr,
	}

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.endCompiler()

	if c.hadError {
		return c.chunk, CompileError{Message: c.firstError}
	}
	return c.chunk, nil
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.NextToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Message)
	}
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAt(t token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	formatted := fmt.Sprintf("[line %d] Error: %s", t.Line, message)
	if !c.hadError {
		c.firstError = formatted
	}
	c.hadError = true
	fmt.Fprintf(c.stderr, "%s\n", formatted)
}

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op chunk.Op) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitBytes(b1, b2 byte) {
	c.emitByte(b1)
	c.emitByte(b2)
}

func (c *Compiler) emitOpByte(op chunk.Op, operand byte) {
	c.emitBytes(byte(op), operand)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	index, ok := c.chunk.AddConstant(v)
	if !ok {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(index)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(chunk.OpConstant, c.makeConstant(v))
}

func (c *Compiler) endCompiler() {
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].depth > c.scopeDepth {
		c.emitOp(chunk.OpPop)
		c.localCount--
	}
}

// parsePrecedence consumes one token, applies its prefix rule, then
// keeps consuming and applying infix rules as long as the following
// token binds at least as tightly as precedence.
func (c *Compiler) parsePrecedence(precedence Precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Type).prefix
	if prefixRule == nil {
		c.error("Expected expression.")
		return
	}

	canAssign := precedence <= PrecAssignment
	prefixRule(c, canAssign)

	for precedence <= getRule(c.current.Type).precedence {
		c.advance()
		infixRule := getRule(c.previous.Type).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.NumberValue(n))
}

func (c *Compiler) stringLiteral(_ bool) {
	lexeme := c.previous.Lexeme
	chars := lexeme[1 : len(lexeme)-1]
	obj := c.interner.Intern(chars)
	c.emitConstant(value.ObjValue(obj))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(chunk.OpFalse)
	case token.True:
		c.emitOp(chunk.OpTrue)
	case token.Nil:
		c.emitOp(chunk.OpNil)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RightParen, "Expected ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	operatorType := c.previous.Type
	c.parsePrecedence(PrecUnary)

	switch operatorType {
	case token.Minus:
		c.emitOp(chunk.OpNegate)
	case token.Bang:
		c.emitOp(chunk.OpNot)
	}
}

func (c *Compiler) binary(_ bool) {
	operatorType := c.previous.Type
	r := getRule(operatorType)
	c.parsePrecedence(r.precedence + 1)

	switch operatorType {
	case token.Plus:
		c.emitOp(chunk.OpAdd)
	case token.Minus:
		c.emitOp(chunk.OpSubtract)
	case token.Star:
		c.emitOp(chunk.OpMultiply)
	case token.Slash:
		c.emitOp(chunk.OpDivide)
	case token.EqualEqual:
		c.emitOp(chunk.OpEqual)
	case token.BangEqual:
		c.emitOp(chunk.OpEqual)
		c.emitOp(chunk.OpNot)
	case token.Less:
		c.emitOp(chunk.OpLess)
	case token.LessEqual:
		c.emitOp(chunk.OpGreater)
		c.emitOp(chunk.OpNot)
	case token.Greater:
		c.emitOp(chunk.OpGreater)
	case token.GreaterEqual:
		c.emitOp(chunk.OpLess)
		c.emitOp(chunk.OpNot)
	}
}

func (c *Compiler) identifierConstant(name string) byte {
	obj := c.interner.Intern(name)
	return c.makeConstant(value.ObjValue(obj))
}

func identifiersEqual(a, b string) bool {
	return a == b
}

func (c *Compiler) resolveLocal(name string) int {
	for i := c.localCount - 1; i >= 0; i-- {
		if identifiersEqual(name, c.locals[i].name) {
			return i
		}
	}
	return -1
}

func (c *Compiler) addLocal(name string) {
	if c.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals[c.localCount] = local{name: name, depth: c.scopeDepth}
	c.localCount++
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous.Lexeme
	for i := c.localCount - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth < c.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			c.error("Already a variable with this name in the scope.")
		}
	}
	c.addLocal(name)
}

// parseVariable consumes an identifier and declares it. In local scope
// it returns 0 (unused — the initializer's value simply occupies the
// new local's stack slot); at global scope it returns the name's
// constant-pool index.
func (c *Compiler) parseVariable(errorMessage string) byte {
	c.consume(token.Identifier, errorMessage)

	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		return
	}
	c.emitOpByte(chunk.OpDefineGlobal, global)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.Op
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one error does not cascade into a flood of follow-on
// errors over the rest of the program.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}
