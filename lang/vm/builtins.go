package vm

import (
	"fmt"
	"io"

	"github.com/mna/monkey/lang/object"
)

var vmTrue = &object.Boolean{Value: true}
var vmFalse = &object.Boolean{Value: false}
var vmNull = &object.Null{}

// builtins returns the built-in function table in object.BuiltinNames
// order, so OpGetBuiltin's operand indexes directly into it. `puts` writes
// to w.
func builtins(w io.Writer) []*object.Builtin {
	return []*object.Builtin{
		{Fn: builtinLen},
		{Fn: builtinPuts(w)},
		{Fn: builtinFirst},
		{Fn: builtinLast},
		{Fn: builtinRest},
		{Fn: builtinPush},
	}
}

func vmError(format string, args ...any) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, args...)}
}

func builtinLen(args ...object.Object) object.Object {
	if len(args) != 1 {
		return vmError("wrong number of arguments. got=%d, want=1", len(args))
	}
	switch arg := args[0].(type) {
	case *object.String:
		return &object.Integer{Value: int64(len(arg.Value))}
	case *object.Array:
		return &object.Integer{Value: int64(len(arg.Elements))}
	default:
		return vmError("argument to `len` not supported, got %s", arg.Type())
	}
}

func builtinFirst(args ...object.Object) object.Object {
	if len(args) != 1 {
		return vmError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return vmError("argument to `first` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return vmNull
	}
	return arr.Elements[0]
}

func builtinLast(args ...object.Object) object.Object {
	if len(args) != 1 {
		return vmError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return vmError("argument to `last` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return vmNull
	}
	return arr.Elements[len(arr.Elements)-1]
}

func builtinRest(args ...object.Object) object.Object {
	if len(args) != 1 {
		return vmError("wrong number of arguments. got=%d, want=1", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return vmError("argument to `rest` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return vmNull
	}
	newElems := make([]object.Object, len(arr.Elements)-1)
	copy(newElems, arr.Elements[1:])
	return &object.Array{Elements: newElems}
}

func builtinPush(args ...object.Object) object.Object {
	if len(args) != 2 {
		return vmError("wrong number of arguments. got=%d, want=2", len(args))
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return vmError("argument to `push` must be ARRAY, got %s", args[0].Type())
	}
	newElems := make([]object.Object, len(arr.Elements)+1)
	copy(newElems, arr.Elements)
	newElems[len(arr.Elements)] = args[1]
	return &object.Array{Elements: newElems}
}

func builtinPuts(w io.Writer) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		for _, a := range args {
			fmt.Fprintln(w, a.Inspect())
		}
		return vmNull
	}
}
