// Package ast defines the types that represent the abstract syntax tree of
// a Monkey program.
package ast

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mna/monkey/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements the fmt.Formatter interface so they can print a
	// short debug description of themselves. The only supported verbs are
	// 'v' and 's'.
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each node inside itself to implement the Visitor pattern.
	Walk(v Visitor)

	// String renders the node in a canonical debug form close to Monkey
	// source: expressions are fully parenthesized and literals are printed
	// bare (string literals without quotes). Parser tests compare it to check
	// precedence and grouping.
	String() string
}

// Expr represents an expression node.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmt()
}

// Program is the root node of every parsed file: a sequence of statements.
type Program struct {
	Statements []Stmt
}

func (p *Program) String() string {
	var buf bytes.Buffer
	for _, s := range p.Statements {
		buf.WriteString(s.String())
	}
	return buf.String()
}
func (p *Program) Span() (start, end token.Pos) {
	if len(p.Statements) == 0 {
		return token.NoPos, token.NoPos
	}
	start, _ = p.Statements[0].Span()
	_, end = p.Statements[len(p.Statements)-1].Span()
	return start, end
}
func (p *Program) Walk(v Visitor) {
	for _, s := range p.Statements {
		Walk(v, s)
	}
}
func (p *Program) Format(f fmt.State, verb rune) {
	format(f, verb, p, "program", map[string]int{"stmts": len(p.Statements)})
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
