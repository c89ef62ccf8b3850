package eval

import (
	"bytes"
	"testing"

	"github.com/mna/monkey/lang/ast"
	monkeyscanner "github.com/mna/monkey/lang/scanner"
	"github.com/mna/monkey/lang/object"
	"github.com/mna/monkey/lang/parser"
	"github.com/mna/monkey/lang/token"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	fs := token.NewFileSet()
	f := fs.AddFile("test.monkey", -1, len(src))
	var s monkeyscanner.Scanner
	var el parser.ErrorList
	s.Init(f, []byte(src), el.Add)
	p := parser.New(fs, &s, el.Add)
	prog := p.ParseProgram()
	require.NoError(t, el.Err())
	return prog
}

func testEval(t *testing.T, src string) object.Object {
	t.Helper()
	prog := parseProgram(t, src)
	return New().Evaluate(prog)
}

func TestEvalIntegerExpression(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"5", 5},
		{"10", 10},
		{"-5", -5},
		{"-10", -10},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"3 * 3 * 3 + 10", 37},
		{"3 * (3 * 3) + 10", 37},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true == true", true},
		{"true != false", true},
		{"(1 < 2) == true", true},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Boolean).Value, tt.src)
	}
}

func TestBangOperator(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"!true", false},
		{"!false", true},
		{"!5", false},
		{"!!true", true},
		{"!!5", true},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Boolean).Value, tt.src)
	}
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"if (true) { 10 }", int64(10)},
		{"if (false) { 10 }", nil},
		{"if (1) { 10 }", int64(10)},
		{"if (1 < 2) { 10 }", int64(10)},
		{"if (1 > 2) { 10 }", nil},
		{"if (1 > 2) { 10 } else { 20 }", int64(20)},
		{"if (1 < 2) { 10 } else { 20 }", int64(10)},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		if tt.want == nil {
			require.Equal(t, nullObj, got, tt.src)
		} else {
			require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
		}
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"return 10;", 10},
		{"return 10; 9;", 10},
		{"return 2 * 5; 9;", 10},
		{"9; return 2 * 5; 9;", 10},
		{`
if (10 > 1) {
	if (10 > 1) {
		return 10;
	}
	return 1;
}
`, 10},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"5 + true;", "type mismatch: INTEGER + BOOLEAN"},
		{"5 + true; 5;", "type mismatch: INTEGER + BOOLEAN"},
		{"-true", "unknown operator: -BOOLEAN"},
		{"true + false;", "unknown operator: BOOLEAN + BOOLEAN"},
		{"5; true + false; 5", "unknown operator: BOOLEAN + BOOLEAN"},
		{"if (10 > 1) { true + false; }", "unknown operator: BOOLEAN + BOOLEAN"},
		{"foobar", "identifier not found: foobar"},
		{`"Hello" - "World"`, "unknown operator: STRING - STRING"},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		errObj, ok := got.(*object.Error)
		require.True(t, ok, tt.src)
		require.Equal(t, tt.want, errObj.Message)
	}
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"let a = 5; a;", 5},
		{"let a = 5 * 5; a;", 25},
		{"let a = 5; let b = a; b;", 5},
		{"let a = 5; let b = a; let c = a + b + 5; c;", 15},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestFunctionApplication(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x; }(5)", 5},
	}
	for _, tt := range tests {
		got := testEval(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestClosures(t *testing.T) {
	src := `
let newAdder = fn(x) {
	fn(y) { x + y };
};
let addTwo = newAdder(2);
addTwo(2);
`
	got := testEval(t, src)
	require.Equal(t, int64(4), got.(*object.Integer).Value)
}

func TestRecursiveClosureCycle(t *testing.T) {
	// A function that stores itself in its own defining environment builds a
	// cycle in the environment graph that the arena's mark-and-sweep must
	// still keep alive via the active global environment.
	src := `
let f = fn(n) { if (n == 0) { 0 } else { f(n - 1) } };
f(5);
`
	got := testEval(t, src)
	require.Equal(t, int64(0), got.(*object.Integer).Value)
}

func TestFibonacci(t *testing.T) {
	src := `let fibonacci = fn(x) { if (x < 2) { 1 } else { fibonacci(x-1) + fibonacci(x-2) } }; fibonacci(10)`
	got := testEval(t, src)
	require.Equal(t, int64(89), got.(*object.Integer).Value)
}

func TestStringConcatenation(t *testing.T) {
	got := testEval(t, `"Hello" + " " + "World!"`)
	require.Equal(t, "Hello World!", got.(*object.String).Value)
}

func TestArrayMap(t *testing.T) {
	got := testEval(t, `let m = fn(arr, f) { let iter = fn(arr, acc) { if (len(arr) == 0) { acc } else { iter(rest(arr), push(acc, f(first(arr)))) } }; iter(arr, []) }; m([1, 2, 3], fn(x) { x * 2 })`)
	arr, ok := got.(*object.Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
	require.Equal(t, int64(2), arr.Elements[0].(*object.Integer).Value)
	require.Equal(t, int64(6), arr.Elements[2].(*object.Integer).Value)
}

func TestPutsWritesToProvidedWriter(t *testing.T) {
	var buf bytes.Buffer
	e := NewWithStdout(&buf)
	prog := parseProgram(t, `puts("hello")`)
	e.Evaluate(prog)
	require.Equal(t, "hello\n", buf.String())
}
