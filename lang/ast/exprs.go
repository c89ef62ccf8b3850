package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mna/monkey/lang/token"
)

type (
	// Identifier represents a bare name.
	Identifier struct {
		NamePos token.Pos
		Name    string
	}

	// IntegerLiteral represents an integer literal.
	IntegerLiteral struct {
		ValuePos token.Pos
		Value    int64
		Raw      string
	}

	// BooleanLiteral represents `true` or `false`.
	BooleanLiteral struct {
		ValuePos token.Pos
		Value    bool
	}

	// StringLiteral represents a double-quoted string literal.
	StringLiteral struct {
		ValuePos token.Pos
		Value    string
		End      token.Pos
	}

	// PrefixExpr represents `<op><right>`.
	PrefixExpr struct {
		OpPos token.Pos
		Op    string
		Right Expr
	}

	// InfixExpr represents `<left> <op> <right>`.
	InfixExpr struct {
		Left  Expr
		OpPos token.Pos
		Op    string
		Right Expr
	}

	// IfExpr represents `if (<cond>) <consequence> else <alternative>`.
	IfExpr struct {
		If          token.Pos
		Condition   Expr
		Consequence *BlockStmt
		Alternative *BlockStmt // nil if there is no else branch
	}

	// FunctionLiteral represents `fn (<params>) <body>`.
	FunctionLiteral struct {
		Fn         token.Pos
		Name       string // non-empty only for `let name = fn ...` bindings, set by the parser; the compiler binds it so the function can call itself
		Parameters []*Identifier
		Body       *BlockStmt
	}

	// CallExpr represents `<function>(<arguments>)`.
	CallExpr struct {
		Function  Expr
		Arguments []Expr
		Rparen    token.Pos
	}

	// ArrayLiteral represents `[<elements>]`.
	ArrayLiteral struct {
		Lbracket token.Pos
		Elements []Expr
		Rbracket token.Pos
	}

	// IndexExpr represents `<left>[<index>]`.
	IndexExpr struct {
		Left   Expr
		Index  Expr
		Rbracket token.Pos
	}

	// HashLiteral represents `{<key>: <value>, ...}`.
	HashLiteral struct {
		Lbrace token.Pos
		Keys   []Expr
		Values []Expr
		Rbrace token.Pos
	}
)

func (*Identifier) expr()      {}
func (*IntegerLiteral) expr()  {}
func (*BooleanLiteral) expr()  {}
func (*StringLiteral) expr()   {}
func (*PrefixExpr) expr()      {}
func (*InfixExpr) expr()       {}
func (*IfExpr) expr()          {}
func (*FunctionLiteral) expr() {}
func (*CallExpr) expr()        {}
func (*ArrayLiteral) expr()    {}
func (*IndexExpr) expr()       {}
func (*HashLiteral) expr()     {}

func (n *Identifier) Span() (token.Pos, token.Pos) {
	return n.NamePos, n.NamePos + token.Pos(len(n.Name))
}
func (n *Identifier) Walk(Visitor)                {}
func (n *Identifier) Format(f fmt.State, verb rune) { format(f, verb, n, "ident:"+n.Name, nil) }
func (n *Identifier) String() string                { return n.Name }

func (n *IntegerLiteral) Span() (token.Pos, token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *IntegerLiteral) Walk(Visitor) {}
func (n *IntegerLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "int:"+n.Raw, nil)
}
func (n *IntegerLiteral) String() string { return n.Raw }

func (n *BooleanLiteral) Span() (token.Pos, token.Pos) {
	end := n.ValuePos + token.Pos(4)
	if !n.Value {
		end = n.ValuePos + token.Pos(5)
	}
	return n.ValuePos, end
}
func (n *BooleanLiteral) Walk(Visitor) {}
func (n *BooleanLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "bool", nil)
}
func (n *BooleanLiteral) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

func (n *StringLiteral) Span() (token.Pos, token.Pos) { return n.ValuePos, n.End }
func (n *StringLiteral) Walk(Visitor)                 {}
func (n *StringLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "string", nil)
}
func (n *StringLiteral) String() string { return n.Value }

func (n *PrefixExpr) Span() (token.Pos, token.Pos) {
	_, end := n.Right.Span()
	return n.OpPos, end
}
func (n *PrefixExpr) Walk(v Visitor) { Walk(v, n.Right) }
func (n *PrefixExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "prefix:"+n.Op, nil)
}
func (n *PrefixExpr) String() string {
	var buf bytes.Buffer
	buf.WriteString("(")
	buf.WriteString(n.Op)
	buf.WriteString(n.Right.String())
	buf.WriteString(")")
	return buf.String()
}

func (n *InfixExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Left.Span()
	_, end := n.Right.Span()
	return start, end
}
func (n *InfixExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *InfixExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "infix:"+n.Op, nil)
}
func (n *InfixExpr) String() string {
	var buf bytes.Buffer
	buf.WriteString("(")
	buf.WriteString(n.Left.String())
	buf.WriteString(" " + n.Op + " ")
	buf.WriteString(n.Right.String())
	buf.WriteString(")")
	return buf.String()
}

func (n *IfExpr) Span() (token.Pos, token.Pos) {
	if n.Alternative != nil {
		_, end := n.Alternative.Span()
		return n.If, end
	}
	_, end := n.Consequence.Span()
	return n.If, end
}
func (n *IfExpr) Walk(v Visitor) {
	Walk(v, n.Condition)
	Walk(v, n.Consequence)
	if n.Alternative != nil {
		Walk(v, n.Alternative)
	}
}
func (n *IfExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfExpr) String() string {
	var buf bytes.Buffer
	buf.WriteString("if (")
	buf.WriteString(n.Condition.String())
	buf.WriteString(") {")
	buf.WriteString(n.Consequence.String())
	buf.WriteString("}")
	if n.Alternative != nil {
		buf.WriteString(" else {")
		buf.WriteString(n.Alternative.String())
		buf.WriteString("}")
	}
	return buf.String()
}

func (n *FunctionLiteral) Span() (token.Pos, token.Pos) {
	_, end := n.Body.Span()
	return n.Fn, end
}
func (n *FunctionLiteral) Walk(v Visitor) {
	for _, p := range n.Parameters {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *FunctionLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn", map[string]int{"params": len(n.Parameters)})
}
func (n *FunctionLiteral) String() string {
	var buf bytes.Buffer
	params := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		params[i] = p.String()
	}
	buf.WriteString("fn")
	buf.WriteString("(")
	buf.WriteString(strings.Join(params, ", "))
	buf.WriteString(") {")
	buf.WriteString(n.Body.String())
	buf.WriteString("}")
	return buf.String()
}

func (n *CallExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Function.Span()
	return start, n.Rparen
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Function)
	for _, a := range n.Arguments {
		Walk(v, a)
	}
}
func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Arguments)})
}
func (n *CallExpr) String() string {
	var buf bytes.Buffer
	args := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = a.String()
	}
	buf.WriteString(n.Function.String())
	buf.WriteString("(")
	buf.WriteString(strings.Join(args, ", "))
	buf.WriteString(")")
	return buf.String()
}

func (n *ArrayLiteral) Span() (token.Pos, token.Pos) { return n.Lbracket, n.Rbracket }
func (n *ArrayLiteral) Walk(v Visitor) {
	for _, e := range n.Elements {
		Walk(v, e)
	}
}
func (n *ArrayLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"elems": len(n.Elements)})
}
func (n *ArrayLiteral) String() string {
	elems := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

func (n *IndexExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Left.Span()
	return start, n.Rbracket
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Index)
}
func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "index", nil) }
func (n *IndexExpr) String() string {
	var buf bytes.Buffer
	buf.WriteString("(")
	buf.WriteString(n.Left.String())
	buf.WriteString("[")
	buf.WriteString(n.Index.String())
	buf.WriteString("])")
	return buf.String()
}

func (n *HashLiteral) Span() (token.Pos, token.Pos) { return n.Lbrace, n.Rbrace }
func (n *HashLiteral) Walk(v Visitor) {
	for i, k := range n.Keys {
		Walk(v, k)
		Walk(v, n.Values[i])
	}
}
func (n *HashLiteral) Format(f fmt.State, verb rune) {
	format(f, verb, n, "hash", map[string]int{"pairs": len(n.Keys)})
}
func (n *HashLiteral) String() string {
	pairs := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		pairs[i] = k.String() + ":" + n.Values[i].String()
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
