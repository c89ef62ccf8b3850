// Package parser implements a Pratt parser that turns a token stream from
// the scanner into an *ast.Program.
package parser

import (
	"context"
	"fmt"
	"go/scanner"
	"os"
	"strconv"

	"github.com/mna/monkey/lang/ast"
	monkeyscanner "github.com/mna/monkey/lang/scanner"
	"github.com/mna/monkey/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// Operator precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	EQUALS      // ==, !=
	LESSGREATER // >, <
	SUM         // +, -
	PRODUCT     // *, /
	PREFIX      // -x, !x
	CALL        // fn(x)
	INDEX       // arr[x]
)

var precedences = map[token.Kind]int{
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
	token.LBRACKET: INDEX,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// ParseFiles tokenizes and parses the given source files, returning one
// *ast.Program per file. A non-nil error is always a scanner.ErrorList (a
// value, not a pointer); files that could not be read have a nil entry in the
// returned slice, while files with syntax errors still get a (partial)
// program.
func ParseFiles(ctx context.Context, files ...string) (*token.FileSet, []*ast.Program, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var el ErrorList
	fs := token.NewFileSet()
	progs := make([]*ast.Program, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}
		fsf := fs.AddFile(file, -1, len(b))

		var s monkeyscanner.Scanner
		var fileErrs ErrorList
		s.Init(fsf, b, fileErrs.Add)

		p := New(fs, &s, fileErrs.Add)
		progs[i] = p.ParseProgram()
		for _, e := range fileErrs {
			el.Add(e.Pos, e.Msg)
		}
	}
	el.Sort()
	return fs, progs, el.Err()
}

// Parser consumes tokens from a Scanner and builds an *ast.Program.
type Parser struct {
	fs  *token.FileSet
	s   *monkeyscanner.Scanner
	err func(token.Position, string)

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Kind]prefixParseFn
	infixParseFns  map[token.Kind]infixParseFn
}

// New builds a Parser reading tokens from s. errHandler is called for every
// parse error encountered; it may be nil.
func New(fs *token.FileSet, s *monkeyscanner.Scanner, errHandler func(token.Position, string)) *Parser {
	p := &Parser{fs: fs, s: s, err: errHandler}

	p.prefixParseFns = map[token.Kind]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.STRING:   p.parseStringLiteral,
		token.BANG:     p.parsePrefixExpr,
		token.MINUS:    p.parsePrefixExpr,
		token.TRUE:     p.parseBoolean,
		token.FALSE:    p.parseBoolean,
		token.LPAREN:   p.parseGroupedExpr,
		token.IF:       p.parseIfExpr,
		token.FUNCTION: p.parseFunctionLiteral,
		token.LBRACKET: p.parseArrayLiteral,
		token.LBRACE:   p.parseHashLiteral,
	}
	p.infixParseFns = map[token.Kind]infixParseFn{
		token.PLUS:     p.parseInfixExpr,
		token.MINUS:    p.parseInfixExpr,
		token.SLASH:    p.parseInfixExpr,
		token.ASTERISK: p.parseInfixExpr,
		token.EQ:       p.parseInfixExpr,
		token.NOT_EQ:   p.parseInfixExpr,
		token.LT:       p.parseInfixExpr,
		token.GT:       p.parseInfixExpr,
		token.LPAREN:   p.parseCallExpr,
		token.LBRACKET: p.parseIndexExpr,
	}

	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.curToken = p.peekToken
	p.peekToken = p.s.Scan()
}

func (p *Parser) position(pos token.Pos) token.Position {
	if p.fs == nil {
		return token.Position{}
	}
	return p.fs.Position(pos)
}

func (p *Parser) errorf(pos token.Pos, format string, args ...any) {
	if p.err != nil {
		p.err(p.position(pos), fmt.Sprintf(format, args...))
	}
}

func (p *Parser) expectPeek(k token.Kind) bool {
	if p.peekToken.Kind == k {
		p.next()
		return true
	}
	p.errorf(p.peekToken.Pos, "expected next token to be %s, got %s instead", k, p.peekToken.Kind)
	return false
}

// ParseProgram parses a whole source file into an *ast.Program. It never
// returns nil, even when errors were reported via the error handler.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.curToken.Kind != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.next()
	}
	return prog
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Kind {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Stmt {
	letPos := p.curToken.Pos
	if !p.expectPeek(token.IDENT) {
		return p.skipStatement()
	}
	name := &ast.Identifier{NamePos: p.curToken.Pos, Name: p.curToken.Literal}

	if !p.expectPeek(token.ASSIGN) {
		return p.skipStatement()
	}
	p.next()

	value := p.parseExpression(LOWEST)
	if fl, ok := value.(*ast.FunctionLiteral); ok {
		fl.Name = name.Name
	}

	end := p.curToken.Pos
	if p.peekToken.Kind == token.SEMICOLON {
		p.next()
		end = p.curToken.Pos + 1
	}
	return &ast.LetStmt{Let: letPos, Name: name, Value: value, End: end}
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	retPos := p.curToken.Pos
	p.next()

	var value ast.Expr
	if p.curToken.Kind != token.SEMICOLON {
		value = p.parseExpression(LOWEST)
	}

	end := p.curToken.Pos
	if p.peekToken.Kind == token.SEMICOLON {
		p.next()
		end = p.curToken.Pos + 1
	}
	return &ast.ReturnStmt{Return: retPos, ReturnValue: value, End: end}
}

func (p *Parser) parseExprStatement() ast.Stmt {
	expr := p.parseExpression(LOWEST)
	end := p.curToken.Pos
	if p.peekToken.Kind == token.SEMICOLON {
		p.next()
		end = p.curToken.Pos + 1
	}
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{X: expr, End: end}
}

// skipStatement consumes tokens up to and including the next semicolon (or
// EOF), used to resynchronize after a parse error so the parser can report
// more than one error per file.
func (p *Parser) skipStatement() ast.Stmt {
	for p.curToken.Kind != token.SEMICOLON && p.curToken.Kind != token.EOF {
		p.next()
	}
	return nil
}

func (p *Parser) parseBlockStatement() *ast.BlockStmt {
	block := &ast.BlockStmt{Lbrace: p.curToken.Pos}
	p.next()
	for p.curToken.Kind != token.RBRACE && p.curToken.Kind != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	block.Rbrace = p.curToken.Pos
	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Kind]
	if prefix == nil {
		p.errorf(p.curToken.Pos, "no prefix parse function for %s found", p.curToken.Kind)
		return nil
	}
	left := prefix()

	for p.peekToken.Kind != token.SEMICOLON && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Kind]
		if infix == nil {
			return left
		}
		p.next()
		left = infix(left)
	}
	return left
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Identifier{NamePos: p.curToken.Pos, Name: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken.Pos, "could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{ValuePos: p.curToken.Pos, Value: v, Raw: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return &ast.StringLiteral{
		ValuePos: p.curToken.Pos,
		Value:    p.curToken.Literal,
		End:      p.curToken.Pos + token.Pos(len(p.curToken.Literal)+2),
	}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.BooleanLiteral{ValuePos: p.curToken.Pos, Value: p.curToken.Kind == token.TRUE}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	opPos, op := p.curToken.Pos, p.curToken.Literal
	p.next()
	right := p.parseExpression(PREFIX)
	return &ast.PrefixExpr{OpPos: opPos, Op: op, Right: right}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	opPos, op, precedence := p.curToken.Pos, p.curToken.Literal, p.curPrecedence()
	p.next()
	right := p.parseExpression(precedence)
	return &ast.InfixExpr{Left: left, OpPos: opPos, Op: op, Right: right}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.next()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseIfExpr() ast.Expr {
	ifPos := p.curToken.Pos
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	consequence := p.parseBlockStatement()

	expr := &ast.IfExpr{If: ifPos, Condition: cond, Consequence: consequence}
	if p.peekToken.Kind == token.ELSE {
		p.next()
		if !p.expectPeek(token.LBRACE) {
			return expr
		}
		expr.Alternative = p.parseBlockStatement()
	}
	return expr
}

func (p *Parser) parseFunctionLiteral() ast.Expr {
	fnPos := p.curToken.Pos
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseFunctionParameters()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.FunctionLiteral{Fn: fnPos, Parameters: params, Body: body}
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	var params []*ast.Identifier
	if p.peekToken.Kind == token.RPAREN {
		p.next()
		return params
	}
	p.next()
	params = append(params, &ast.Identifier{NamePos: p.curToken.Pos, Name: p.curToken.Literal})
	for p.peekToken.Kind == token.COMMA {
		p.next()
		p.next()
		params = append(params, &ast.Identifier{NamePos: p.curToken.Pos, Name: p.curToken.Literal})
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseCallExpr(fn ast.Expr) ast.Expr {
	args := p.parseExprList(token.RPAREN)
	return &ast.CallExpr{Function: fn, Arguments: args, Rparen: p.curToken.Pos}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	lbracket := p.curToken.Pos
	elems := p.parseExprList(token.RBRACKET)
	return &ast.ArrayLiteral{Lbracket: lbracket, Elements: elems, Rbracket: p.curToken.Pos}
}

func (p *Parser) parseExprList(end token.Kind) []ast.Expr {
	var list []ast.Expr
	if p.peekToken.Kind == end {
		p.next()
		return list
	}
	p.next()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekToken.Kind == token.COMMA {
		p.next()
		p.next()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexExpr(left ast.Expr) ast.Expr {
	p.next()
	index := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.IndexExpr{Left: left, Index: index, Rbracket: p.curToken.Pos}
}

func (p *Parser) parseHashLiteral() ast.Expr {
	lbrace := p.curToken.Pos
	h := &ast.HashLiteral{Lbrace: lbrace}

	for p.peekToken.Kind != token.RBRACE {
		p.next()
		key := p.parseExpression(LOWEST)
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.next()
		value := p.parseExpression(LOWEST)
		h.Keys = append(h.Keys, key)
		h.Values = append(h.Values, value)

		if p.peekToken.Kind != token.RBRACE && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	h.Rbrace = p.curToken.Pos
	return h
}
