// Package eval implements a tree-walking evaluator for Monkey programs.
package eval

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/monkey/lang/ast"
	"github.com/mna/monkey/lang/object"
)

var (
	trueObj  = &object.Boolean{Value: true}
	falseObj = &object.Boolean{Value: false}
	nullObj  = &object.Null{}
)

// Evaluator walks an *ast.Program and produces object.Object values. It owns
// the arena backing every environment created while evaluating.
type Evaluator struct {
	arena    *Arena
	global   Handle
	stdout   io.Writer
	builtins map[string]*object.Builtin
}

// New returns an Evaluator with a fresh global environment, writing `puts`
// output to os.Stdout.
func New() *Evaluator { return NewWithStdout(os.Stdout) }

// NewWithStdout returns an Evaluator with a fresh global environment, writing
// `puts` output to w.
func NewWithStdout(w io.Writer) *Evaluator {
	a := NewArena()
	e := &Evaluator{arena: a, global: a.New(noOuter), stdout: w}
	e.builtins = newBuiltins(w)
	return e
}

// Evaluate evaluates prog in the evaluator's global environment. After the
// call returns, every environment unreachable from the (possibly updated)
// global environment is released.
func (e *Evaluator) Evaluate(prog *ast.Program) object.Object {
	result := e.evalProgram(prog, e.global)
	e.arena.MarkSweep(e.global)
	return result
}

func (e *Evaluator) evalProgram(prog *ast.Program, env Handle) object.Object {
	var result object.Object = nullObj
	for _, stmt := range prog.Statements {
		result = e.eval(stmt, env)
		switch r := result.(type) {
		case *object.ReturnValue:
			return r.Value
		case *object.Error:
			return r
		}
	}
	return result
}

func (e *Evaluator) eval(node ast.Node, env Handle) object.Object {
	switch n := node.(type) {
	case *ast.ExprStmt:
		return e.eval(n.X, env)
	case *ast.LetStmt:
		val := e.eval(n.Value, env)
		if isError(val) {
			return val
		}
		e.arena.Set(env, n.Name.Name, val)
		return nullObj
	case *ast.ReturnStmt:
		var val object.Object = nullObj
		if n.ReturnValue != nil {
			val = e.eval(n.ReturnValue, env)
			if isError(val) {
				return val
			}
		}
		return &object.ReturnValue{Value: val}
	case *ast.BlockStmt:
		return e.evalBlock(n, env)

	case *ast.IntegerLiteral:
		return &object.Integer{Value: n.Value}
	case *ast.BooleanLiteral:
		return nativeBool(n.Value)
	case *ast.StringLiteral:
		return &object.String{Value: n.Value}
	case *ast.Identifier:
		return e.evalIdentifier(n, env)
	case *ast.PrefixExpr:
		right := e.eval(n.Right, env)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpr(n.Op, right)
	case *ast.InfixExpr:
		left := e.eval(n.Left, env)
		if isError(left) {
			return left
		}
		right := e.eval(n.Right, env)
		if isError(right) {
			return right
		}
		return e.evalInfixExpr(n.Op, left, right)
	case *ast.IfExpr:
		return e.evalIfExpr(n, env)
	case *ast.FunctionLiteral:
		return &object.Function{Parameters: n.Parameters, Body: n.Body, Env: e.arena.Bind(env)}
	case *ast.CallExpr:
		fn := e.eval(n.Function, env)
		if isError(fn) {
			return fn
		}
		args := e.evalExprs(n.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return e.applyFunction(fn, args)
	case *ast.ArrayLiteral:
		elems := e.evalExprs(n.Elements, env)
		if len(elems) == 1 && isError(elems[0]) {
			return elems[0]
		}
		return &object.Array{Elements: elems}
	case *ast.IndexExpr:
		left := e.eval(n.Left, env)
		if isError(left) {
			return left
		}
		index := e.eval(n.Index, env)
		if isError(index) {
			return index
		}
		return e.evalIndexExpr(left, index)
	case *ast.HashLiteral:
		return e.evalHashLiteral(n, env)
	}
	return newError("unknown node type: %T", node)
}

func (e *Evaluator) evalBlock(block *ast.BlockStmt, env Handle) object.Object {
	var result object.Object = nullObj
	for _, stmt := range block.Statements {
		result = e.eval(stmt, env)
		if result != nil {
			switch result.Type() {
			case object.ReturnValueType, object.ErrorType:
				return result
			}
		}
	}
	return result
}

func (e *Evaluator) evalExprs(exprs []ast.Expr, env Handle) []object.Object {
	result := make([]object.Object, 0, len(exprs))
	for _, ex := range exprs {
		val := e.eval(ex, env)
		if isError(val) {
			return []object.Object{val}
		}
		result = append(result, val)
	}
	return result
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier, env Handle) object.Object {
	if val, ok := e.arena.Get(env, n.Name); ok {
		return val
	}
	if builtin, ok := e.builtins[n.Name]; ok {
		return builtin
	}
	return newError("identifier not found: " + n.Name)
}

func (e *Evaluator) evalPrefixExpr(op string, right object.Object) object.Object {
	switch op {
	case "!":
		return nativeBool(!isTruthy(right))
	case "-":
		i, ok := right.(*object.Integer)
		if !ok {
			return newError("unknown operator: -%s", right.Type())
		}
		return &object.Integer{Value: -i.Value}
	default:
		return newError("unknown operator: %s%s", op, right.Type())
	}
}

func (e *Evaluator) evalInfixExpr(op string, left, right object.Object) object.Object {
	switch {
	case left.Type() == object.IntegerType && right.Type() == object.IntegerType:
		return e.evalIntegerInfixExpr(op, left.(*object.Integer), right.(*object.Integer))
	case left.Type() == object.StringType && right.Type() == object.StringType:
		return e.evalStringInfixExpr(op, left.(*object.String), right.(*object.String))
	case op == "==":
		return nativeBool(left == right)
	case op == "!=":
		return nativeBool(left != right)
	case left.Type() != right.Type():
		return newError("type mismatch: %s %s %s", left.Type(), op, right.Type())
	default:
		return newError("unknown operator: %s %s %s", left.Type(), op, right.Type())
	}
}

func (e *Evaluator) evalIntegerInfixExpr(op string, left, right *object.Integer) object.Object {
	switch op {
	case "+":
		return &object.Integer{Value: left.Value + right.Value}
	case "-":
		return &object.Integer{Value: left.Value - right.Value}
	case "*":
		return &object.Integer{Value: left.Value * right.Value}
	case "/":
		return &object.Integer{Value: left.Value / right.Value}
	case "<":
		return nativeBool(left.Value < right.Value)
	case ">":
		return nativeBool(left.Value > right.Value)
	case "==":
		return nativeBool(left.Value == right.Value)
	case "!=":
		return nativeBool(left.Value != right.Value)
	default:
		return newError("unknown operator: %s %s %s", left.Type(), op, right.Type())
	}
}

func (e *Evaluator) evalStringInfixExpr(op string, left, right *object.String) object.Object {
	if op != "+" {
		return newError("unknown operator: %s %s %s", left.Type(), op, right.Type())
	}
	return &object.String{Value: left.Value + right.Value}
}

func (e *Evaluator) evalIfExpr(n *ast.IfExpr, env Handle) object.Object {
	cond := e.eval(n.Condition, env)
	if isError(cond) {
		return cond
	}
	if isTruthy(cond) {
		return e.eval(n.Consequence, env)
	} else if n.Alternative != nil {
		return e.eval(n.Alternative, env)
	}
	return nullObj
}

func (e *Evaluator) applyFunction(fn object.Object, args []object.Object) object.Object {
	switch f := fn.(type) {
	case *object.Function:
		be, ok := f.Env.(boundEnv)
		if !ok {
			return newError("not a function environment: %T", f.Env)
		}
		if len(args) != len(f.Parameters) {
			return newError("wrong number of arguments: want=%d, got=%d", len(f.Parameters), len(args))
		}
		callEnv := e.arena.New(be.h)
		for i, p := range f.Parameters {
			e.arena.Set(callEnv, p.Name, args[i])
		}
		result := e.eval(f.Body, callEnv)
		if rv, ok := result.(*object.ReturnValue); ok {
			return rv.Value
		}
		return result
	case *object.Builtin:
		return f.Fn(args...)
	default:
		return newError("not a function: %s", fn.Type())
	}
}

func (e *Evaluator) evalIndexExpr(left, index object.Object) object.Object {
	switch {
	case left.Type() == object.ArrayType && index.Type() == object.IntegerType:
		arr := left.(*object.Array)
		idx := index.(*object.Integer).Value
		max := int64(len(arr.Elements) - 1)
		if idx < 0 || idx > max {
			return nullObj
		}
		return arr.Elements[idx]
	case left.Type() == object.HashType:
		return e.evalHashIndexExpr(left.(*object.Hash), index)
	default:
		return newError("index operator not supported: %s", left.Type())
	}
}

func (e *Evaluator) evalHashIndexExpr(hash *object.Hash, index object.Object) object.Object {
	key, ok := index.(object.Hashable)
	if !ok {
		return newError("unusable as hash key: %s", index.Type())
	}
	pair, ok := hash.Get(key.HashKey())
	if !ok {
		return nullObj
	}
	return pair.Value
}

func (e *Evaluator) evalHashLiteral(n *ast.HashLiteral, env Handle) object.Object {
	hash := object.NewHash(len(n.Keys))
	for i, keyNode := range n.Keys {
		key := e.eval(keyNode, env)
		if isError(key) {
			return key
		}
		hashable, ok := key.(object.Hashable)
		if !ok {
			return newError("unusable as hash key: %s", key.Type())
		}
		value := e.eval(n.Values[i], env)
		if isError(value) {
			return value
		}
		hash.Set(hashable.HashKey(), object.HashPair{Key: key, Value: value})
	}
	return hash
}

func nativeBool(b bool) *object.Boolean {
	if b {
		return trueObj
	}
	return falseObj
}

func isTruthy(obj object.Object) bool {
	switch obj {
	case nullObj, falseObj:
		return false
	case trueObj:
		return true
	default:
		return true
	}
}

func isError(obj object.Object) bool {
	if obj == nil {
		return false
	}
	return obj.Type() == object.ErrorType
}

func newError(format string, args ...any) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, args...)}
}
