package object

import (
	"fmt"

	"github.com/mna/monkey/lang/code"
)

// CompiledFunction is the bytecode form of a function literal, produced by
// the compiler and stored as a VM constant.
type CompiledFunction struct {
	Instructions  code.Instructions
	NumLocals     int
	NumParameters int
}

func (cf *CompiledFunction) Type() Type      { return CompiledFnType }
func (cf *CompiledFunction) Inspect() string { return fmt.Sprintf("CompiledFunction[%p]", cf) }

// Closure pairs a CompiledFunction with the free variables captured from its
// defining scope.
type Closure struct {
	Fn   *CompiledFunction
	Free []Object
}

func (c *Closure) Type() Type      { return ClosureType }
func (c *Closure) Inspect() string { return fmt.Sprintf("Closure[%p]", c) }
