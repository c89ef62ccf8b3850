package vm

import (
	"github.com/mna/monkey/lang/code"
	"github.com/mna/monkey/lang/object"
)

// Frame is one activation record on the VM's call stack: the closure being
// executed, the instruction pointer into it, and the base of its locals
// within the value stack.
type Frame struct {
	cl          *object.Closure
	ip          int
	basePointer int
}

// NewFrame returns a Frame for cl, with its locals starting at basePointer
// on the value stack.
func NewFrame(cl *object.Closure, basePointer int) *Frame {
	return &Frame{cl: cl, ip: -1, basePointer: basePointer}
}

// Instructions returns the bytecode this frame is executing.
func (f *Frame) Instructions() code.Instructions { return f.cl.Fn.Instructions }
