package parser

import (
	"testing"

	"github.com/mna/monkey/lang/ast"
	monkeyscanner "github.com/mna/monkey/lang/scanner"
	"github.com/mna/monkey/lang/token"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	fs := token.NewFileSet()
	f := fs.AddFile("test.monkey", -1, len(src))
	var s monkeyscanner.Scanner
	var el ErrorList
	s.Init(f, []byte(src), el.Add)
	p := New(fs, &s, el.Add)
	prog := p.ParseProgram()
	require.NoError(t, el.Err())
	return prog
}

func TestLetStatements(t *testing.T) {
	prog := parse(t, `let x = 5;
let y = true;
let foobar = y;`)
	require.Len(t, prog.Statements, 3)

	names := []string{"x", "y", "foobar"}
	for i, want := range names {
		let, ok := prog.Statements[i].(*ast.LetStmt)
		require.True(t, ok)
		require.Equal(t, want, let.Name.Name)
	}
}

func TestReturnStatements(t *testing.T) {
	prog := parse(t, `return 5;
return 10;
return 993322;`)
	require.Len(t, prog.Statements, 3)
	for _, s := range prog.Statements {
		_, ok := s.(*ast.ReturnStmt)
		require.True(t, ok)
	}
}

func TestOperatorPrecedenceString(t *testing.T) {
	tests := []struct{ src, want string }{
		{"-a * b", "((-a) * b)"},
		{"!-a", "(!(-a))"},
		{"a + b + c", "((a + b) + c)"},
		{"a + b - c", "((a + b) - c)"},
		{"a * b * c", "((a * b) * c)"},
		{"a * b / c", "((a * b) / c)"},
		{"a + b / c", "(a + (b / c))"},
		{"a + b * c + d / e - f", "(((a + (b * c)) + (d / e)) - f)"},
		{"3 + 4; -5 * 5", "(3 + 4)((-5) * 5)"},
		{"5 > 4 == 3 < 4", "((5 > 4) == (3 < 4))"},
		{"5 < 4 != 3 > 4", "((5 < 4) != (3 > 4))"},
		{"3 + 4 * 5 == 3 * 1 + 4 * 5", "((3 + (4 * 5)) == ((3 * 1) + (4 * 5)))"},
		{"a + add(b * c) + d", "((a + add((b * c))) + d)"},
		{"add(a, b, 1, 2 * 3, 4 + 5, add(6, 7 * 8))", "add(a, b, 1, (2 * 3), (4 + 5), add(6, (7 * 8)))"},
		{"a * [1, 2, 3, 4][b * c] * d", "((a * ([1, 2, 3, 4][(b * c)])) * d)"},
		{"add(a * b[2], b[1], 2 * [1, 2][1])", "add((a * (b[2])), (b[1]), (2 * ([1, 2][1])))"},
	}
	for _, tt := range tests {
		prog := parse(t, tt.src)
		require.Equal(t, tt.want, prog.String(), tt.src)
	}
}

func TestIfExpression(t *testing.T) {
	prog := parse(t, `if (x < y) { x } else { y }`)
	require.Len(t, prog.Statements, 1)
	stmt := prog.Statements[0].(*ast.ExprStmt)
	ifExpr, ok := stmt.X.(*ast.IfExpr)
	require.True(t, ok)
	require.NotNil(t, ifExpr.Alternative)
}

func TestFunctionLiteralParsing(t *testing.T) {
	prog := parse(t, `fn(x, y) { x + y; }`)
	stmt := prog.Statements[0].(*ast.ExprStmt)
	fn, ok := stmt.X.(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Len(t, fn.Parameters, 2)
	require.Equal(t, "x", fn.Parameters[0].Name)
	require.Equal(t, "y", fn.Parameters[1].Name)
}

func TestHashLiteralStringKeys(t *testing.T) {
	prog := parse(t, `{"one": 1, "two": 2, "three": 3}`)
	stmt := prog.Statements[0].(*ast.ExprStmt)
	hash, ok := stmt.X.(*ast.HashLiteral)
	require.True(t, ok)
	require.Len(t, hash.Keys, 3)
}
