// Package object defines the runtime value representation shared by the
// tree-walking evaluator and the bytecode virtual machine.
package object

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
	"github.com/mna/monkey/lang/ast"
)

// Type identifies the runtime type of an Object.
type Type string

const (
	IntegerType     Type = "INTEGER"
	BooleanType     Type = "BOOLEAN"
	NullType        Type = "NULL"
	ReturnValueType Type = "RETURN_VALUE"
	ErrorType       Type = "ERROR"
	FunctionType    Type = "FUNCTION"
	StringType      Type = "STRING"
	BuiltinType     Type = "BUILTIN"
	ArrayType       Type = "ARRAY"
	HashType        Type = "HASH"
	CompiledFnType  Type = "COMPILED_FUNCTION_OBJ"
	ClosureType     Type = "CLOSURE"
)

// Object is the interface implemented by every Monkey runtime value.
type Object interface {
	Type() Type
	Inspect() string
}

// Integer is a 64-bit signed integer value. Arithmetic on Integer relies on
// Go's native int64 wraparound on overflow.
type Integer struct{ Value int64 }

func (i *Integer) Type() Type      { return IntegerType }
func (i *Integer) Inspect() string { return fmt.Sprintf("%d", i.Value) }

// Boolean is a true/false value. The evaluator and VM both intern the two
// possible instances rather than allocating fresh ones.
type Boolean struct{ Value bool }

func (b *Boolean) Type() Type      { return BooleanType }
func (b *Boolean) Inspect() string { return fmt.Sprintf("%t", b.Value) }

// Null is the absence of a value.
type Null struct{}

func (n *Null) Type() Type      { return NullType }
func (n *Null) Inspect() string { return "null" }

// ReturnValue wraps a value being unwound out of nested blocks by a return
// statement. It is never visible to user code; the evaluator unwraps it at
// a function call boundary.
type ReturnValue struct{ Value Object }

func (rv *ReturnValue) Type() Type      { return ReturnValueType }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

// Error represents a runtime error produced while evaluating a program. Like
// ReturnValue, it unwinds nested blocks; unlike ReturnValue, it also passes
// through function calls and ends evaluation of the whole program.
type Error struct{ Message string }

func (e *Error) Type() Type      { return ErrorType }
func (e *Error) Inspect() string { return "ERROR: " + e.Message }

// String is an immutable sequence of bytes.
type String struct{ Value string }

func (s *String) Type() Type      { return StringType }
func (s *String) Inspect() string { return s.Value }

// BuiltinFunction is the Go function backing a Builtin object.
type BuiltinFunction func(args ...Object) Object

// Builtin wraps a built-in function such as len or puts.
type Builtin struct{ Fn BuiltinFunction }

func (b *Builtin) Type() Type      { return BuiltinType }
func (b *Builtin) Inspect() string { return "builtin function" }

// Array is an ordered, heterogeneous, mutable sequence of values.
type Array struct{ Elements []Object }

func (a *Array) Type() Type { return ArrayType }
func (a *Array) Inspect() string {
	var buf bytes.Buffer
	elems := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = e.Inspect()
	}
	buf.WriteString("[")
	buf.WriteString(strings.Join(elems, ", "))
	buf.WriteString("]")
	return buf.String()
}

// HashKey is the comparable key used to index into a Hash; only Integer,
// Boolean and String values are hashable.
type HashKey struct {
	Type  Type
	Value uint64
}

// Hashable is implemented by object types that can be used as a Hash key.
type Hashable interface {
	HashKey() HashKey
}

// HashPair holds both the original key object (for Inspect) and its value.
type HashPair struct {
	Key   Object
	Value Object
}

// Hash is an unordered key/value map keyed by Hashable objects, backed by a
// SwissTable for O(1) average lookup.
type Hash struct {
	pairs *swiss.Map[HashKey, HashPair]
}

// NewHash returns an empty Hash with initial capacity for at least size
// entries.
func NewHash(size int) *Hash {
	return &Hash{pairs: swiss.NewMap[HashKey, HashPair](uint32(size))}
}

func (h *Hash) Type() Type { return HashType }

// Set records key => value under k's HashKey, replacing any prior pair
// sharing that key.
func (h *Hash) Set(k HashKey, pair HashPair) { h.pairs.Put(k, pair) }

// Get looks up the pair stored under k.
func (h *Hash) Get(k HashKey) (HashPair, bool) { return h.pairs.Get(k) }

// Len returns the number of entries in the hash.
func (h *Hash) Len() int { return h.pairs.Count() }

// Each calls fn once per stored pair, in unspecified order.
func (h *Hash) Each(fn func(HashPair)) {
	h.pairs.Iter(func(_ HashKey, v HashPair) bool {
		fn(v)
		return false
	})
}

func (h *Hash) Inspect() string {
	var buf bytes.Buffer
	var pairs []string
	h.Each(func(p HashPair) {
		pairs = append(pairs, fmt.Sprintf("%s: %s", p.Key.Inspect(), p.Value.Inspect()))
	})
	buf.WriteString("{")
	buf.WriteString(strings.Join(pairs, ", "))
	buf.WriteString("}")
	return buf.String()
}

// Function is a closure as represented by the tree-walking evaluator: the
// function's parameters and body, plus the environment in which it was
// defined.
type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStmt
	Env        Environment
}

func (f *Function) Type() Type { return FunctionType }
func (f *Function) Inspect() string {
	var buf bytes.Buffer
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}
	buf.WriteString("fn(")
	buf.WriteString(strings.Join(params, ", "))
	buf.WriteString(") {\n")
	buf.WriteString(f.Body.String())
	buf.WriteString("\n}")
	return buf.String()
}

// Environment is the interface the object package needs from an evaluation
// environment, kept minimal to avoid an import cycle with package eval.
type Environment interface {
	Get(name string) (Object, bool)
	Set(name string, val Object) Object
}
