package ast

import (
	"bytes"
	"fmt"

	"github.com/mna/monkey/lang/token"
)

type (
	// LetStmt represents `let <name> = <value>;`.
	LetStmt struct {
		Let   token.Pos
		Name  *Identifier
		Value Expr
		End   token.Pos
	}

	// ReturnStmt represents `return <value>;`.
	ReturnStmt struct {
		Return      token.Pos
		ReturnValue Expr
		End         token.Pos
	}

	// ExprStmt represents an expression used as a statement.
	ExprStmt struct {
		X   Expr
		End token.Pos
	}

	// BlockStmt represents a `{ ... }` sequence of statements.
	BlockStmt struct {
		Lbrace     token.Pos
		Statements []Stmt
		Rbrace     token.Pos
	}
)

func (*LetStmt) stmt()    {}
func (*ReturnStmt) stmt() {}
func (*ExprStmt) stmt()   {}
func (*BlockStmt) stmt()  {}

func (n *LetStmt) Span() (token.Pos, token.Pos) { return n.Let, n.End }
func (n *LetStmt) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *LetStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "let", nil) }
func (n *LetStmt) String() string {
	var buf bytes.Buffer
	buf.WriteString("let ")
	buf.WriteString(n.Name.String())
	buf.WriteString(" = ")
	if n.Value != nil {
		buf.WriteString(n.Value.String())
	}
	buf.WriteString(";")
	return buf.String()
}

func (n *ReturnStmt) Span() (token.Pos, token.Pos) { return n.Return, n.End }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.ReturnValue != nil {
		Walk(v, n.ReturnValue)
	}
}
func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) String() string {
	var buf bytes.Buffer
	buf.WriteString("return ")
	if n.ReturnValue != nil {
		buf.WriteString(n.ReturnValue.String())
	}
	buf.WriteString(";")
	return buf.String()
}

func (n *ExprStmt) Span() (token.Pos, token.Pos) {
	start, _ := n.X.Span()
	return start, n.End
}
func (n *ExprStmt) Walk(v Visitor)            { Walk(v, n.X) }
func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "exprstmt", nil) }
func (n *ExprStmt) String() string {
	if n.X == nil {
		return ""
	}
	return n.X.String()
}

func (n *BlockStmt) Span() (token.Pos, token.Pos) { return n.Lbrace, n.Rbrace }
func (n *BlockStmt) Walk(v Visitor) {
	for _, s := range n.Statements {
		Walk(v, s)
	}
}
func (n *BlockStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Statements)})
}
func (n *BlockStmt) String() string {
	var buf bytes.Buffer
	for _, s := range n.Statements {
		buf.WriteString(s.String())
	}
	return buf.String()
}
