package vm

import (
	"testing"

	"github.com/mna/monkey/lang/ast"
	"github.com/mna/monkey/lang/compiler"
	"github.com/mna/monkey/lang/object"
	"github.com/mna/monkey/lang/parser"
	monkeyscanner "github.com/mna/monkey/lang/scanner"
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

func runVM(t *testing.T, src string) object.Object {
	t.Helper()
	prog := parseProgram(t, src)
	c := compiler.New()
	require.NoError(t, c.Compile(prog))

	machine := New(c.Bytecode())
	require.NoError(t, machine.Run())
	return machine.LastPoppedStackElem()
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"1", 1},
		{"2", 2},
		{"1 + 2", 3},
		{"1 - 2", -1},
		{"1 * 2", 2},
		{"4 / 2", 2},
		{"50 / 2 * 2 + 10 - 5", 55},
		{"5 * (2 + 10)", 60},
		{"-5", -5},
		{"-10 + 5", -5},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestBooleanExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 < 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true == true", true},
		{"true != false", true},
		{"(1 < 2) == true", true},
		{"!true", false},
		{"!5", false},
		{"!!true", true},
		{"!(if (false) { 5; })", true},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Boolean).Value, tt.src)
	}
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"if (true) { 10 }", int64(10)},
		{"if (true) { 10 } else { 20 }", int64(10)},
		{"if (false) { 10 } else { 20 }", int64(20)},
		{"if (1) { 10 }", int64(10)},
		{"if (1 < 2) { 10 }", int64(10)},
		{"if (1 > 2) { 10 }", nil},
		{"if (false) { 10 }", nil},
		{"if ((if (false) { 10 })) { 10 } else { 20 }", int64(20)},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		if tt.want == nil {
			require.IsType(t, &object.Null{}, got, tt.src)
		} else {
			require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
		}
	}
}

func TestGlobalLetStatements(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"let one = 1; one", 1},
		{"let one = 1; let two = 2; one + two", 3},
		{"let one = 1; let two = one + one; one + two", 3},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestStringExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"monkey"`, "monkey"},
		{`"mon" + "key"`, "monkey"},
		{`"mon" + "key" + "banana"`, "monkeybanana"},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		require.Equal(t, tt.want, got.(*object.String).Value, tt.src)
	}
}

func TestArrayLiterals(t *testing.T) {
	got := runVM(t, "[1, 2, 3]")
	arr := got.(*object.Array)
	require.Len(t, arr.Elements, 3)
	require.Equal(t, int64(1), arr.Elements[0].(*object.Integer).Value)
}

func TestHashLiterals(t *testing.T) {
	got := runVM(t, `{1: 2, 2: 3}`)
	hash := got.(*object.Hash)
	require.Equal(t, 2, hash.Len())
}

func TestIndexExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{"[1, 2, 3][1]", int64(2)},
		{"[1, 2, 3][0 + 2]", int64(3)},
		{"[][0]", nil},
		{"[1, 2, 3][99]", nil},
		{"{1: 1, 2: 2}[1]", int64(1)},
		{"{1: 1}[0]", nil},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		if tt.want == nil {
			require.IsType(t, &object.Null{}, got, tt.src)
		} else {
			require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
		}
	}
}

func TestCallingFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{`let fivePlusTen = fn() { 5 + 10; }; fivePlusTen();`, 15},
		{`let one = fn() { 1; }; let two = fn() { 2; }; one() + two()`, 3},
		{`let earlyExit = fn() { return 99; 100; }; earlyExit();`, 99},
	}
	for _, tt := range tests {
		got := runVM(t, tt.src)
		require.Equal(t, tt.want, got.(*object.Integer).Value, tt.src)
	}
}

func TestCallingFunctionsWithoutReturnValue(t *testing.T) {
	got := runVM(t, `let noReturn = fn() { }; let noReturnTwo = fn() { noReturn(); }; noReturnTwo(); noReturnTwo()`)
	require.IsType(t, &object.Null{}, got)
}

func TestFibonacci(t *testing.T) {
	src := `
let fibonacci = fn(x) {
	if (x < 2) {
		1
	} else {
		fibonacci(x - 1) + fibonacci(x - 2)
	}
};
fibonacci(10);
`
	got := runVM(t, src)
	require.Equal(t, int64(89), got.(*object.Integer).Value)
}

func TestClosures(t *testing.T) {
	src := `
let newAdder = fn(a, b) {
	fn(c) { a + b + c };
};
let adder = newAdder(1, 2);
adder(8);
`
	got := runVM(t, src)
	require.Equal(t, int64(11), got.(*object.Integer).Value)
}

func TestRecursiveClosures(t *testing.T) {
	src := `
let wrapper = fn() {
	let countDown = fn(x) {
		if (x == 0) {
			return 0;
		} else {
			countDown(x - 1);
		}
	};
	countDown(1);
};
wrapper();
`
	got := runVM(t, src)
	require.Equal(t, int64(0), got.(*object.Integer).Value)
}

func TestBuiltinFunctions(t *testing.T) {
	got := runVM(t, `len("four")`)
	require.Equal(t, int64(4), got.(*object.Integer).Value)

	got = runVM(t, `len([1, 2, 3])`)
	require.Equal(t, int64(3), got.(*object.Integer).Value)

	got = runVM(t, `first([1, 2, 3])`)
	require.Equal(t, int64(1), got.(*object.Integer).Value)

	got = runVM(t, `last([1, 2, 3])`)
	require.Equal(t, int64(3), got.(*object.Integer).Value)

	got = runVM(t, `len(push([1], 2))`)
	require.Equal(t, int64(2), got.(*object.Integer).Value)
}
