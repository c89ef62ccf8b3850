package eval

import (
	"fmt"
	"io"

	"github.com/mna/monkey/lang/object"
)

// newBuiltins returns the table of built-in functions available to every
// Monkey program, with `puts` writing to w.
func newBuiltins(w io.Writer) map[string]*object.Builtin {
	return map[string]*object.Builtin{
		"len":   {Fn: builtinLen},
		"first": {Fn: builtinFirst},
		"last":  {Fn: builtinLast},
		"rest":  {Fn: builtinRest},
		"push":  {Fn: builtinPush},
		"puts":  {Fn: builtinPuts(w)},
	}
}

func builtinLen(args ...object.Object) object.Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	switch arg := args[0].(type) {
	case *object.String:
		return &object.Integer{Value: int64(len(arg.Value))}
	case *object.Array:
		return &object.Integer{Value: int64(len(arg.Elements))}
	default:
		return newError("argument to `len` not supported, got %s", arg.Type())
	}
}

func builtinFirst(args ...object.Object) object.Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return newError("argument to `first` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return nullObj
	}
	return arr.Elements[0]
}

func builtinLast(args ...object.Object) object.Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return newError("argument to `last` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return nullObj
	}
	return arr.Elements[len(arr.Elements)-1]
}

func builtinRest(args ...object.Object) object.Object {
	if len(args) != 1 {
		return newError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return newError("argument to `rest` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return nullObj
	}
	newElems := make([]object.Object, len(arr.Elements)-1)
	copy(newElems, arr.Elements[1:])
	return &object.Array{Elements: newElems}
}

func builtinPush(args ...object.Object) object.Object {
	if len(args) != 2 {
		return newError("wrong number of arguments. got=%d, want=2", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return newError("argument to `push` must be ARRAY, got %s", args[0].Type())
	}
	newElems := make([]object.Object, len(arr.Elements)+1)
	copy(newElems, arr.Elements)
	newElems[len(arr.Elements)] = args[1]
	return &object.Array{Elements: newElems}
}

func builtinPuts(w io.Writer) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		for _, arg := range args {
			fmt.Fprintln(w, arg.Inspect())
		}
		return nullObj
	}
}
