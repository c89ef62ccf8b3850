// Package vm implements the stack-based virtual machine that executes
// bytecode produced by package compiler.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/monkey/lang/code"
	"github.com/mna/monkey/lang/compiler"
	"github.com/mna/monkey/lang/object"
)

const (
	// StackSize is the maximum number of values the operand stack can hold.
	StackSize = 2048
	// GlobalsSize is the number of slots in the globals table.
	GlobalsSize = 65536
	// MaxFrames is the maximum depth of the call stack.
	MaxFrames = 1024
)

// VM executes compiled bytecode against a constant pool and a globals
// table, using a value stack and a stack of call frames.
type VM struct {
	constants []object.Object
	globals   []object.Object

	stack []object.Object
	sp    int // points to the next free slot; top of stack is stack[sp-1]

	frames      []*Frame
	framesIndex int

	builtins []*object.Builtin
	stdout   io.Writer
}

// New returns a VM ready to execute bc, with a fresh globals table.
func New(bc *compiler.Bytecode) *VM {
	return NewWithGlobalsStore(bc, make([]object.Object, GlobalsSize))
}

// NewWithGlobalsStore returns a VM sharing globals with a previous run, so a
// REPL can retain `let` bindings across successive inputs.
func NewWithGlobalsStore(bc *compiler.Bytecode, globals []object.Object) *VM {
	mainFn := &object.CompiledFunction{Instructions: bc.Instructions}
	mainClosure := &object.Closure{Fn: mainFn}
	mainFrame := NewFrame(mainClosure, 0)

	frames := make([]*Frame, MaxFrames)
	frames[0] = mainFrame

	return &VM{
		constants:   bc.Constants,
		globals:     globals,
		stack:       make([]object.Object, StackSize),
		sp:          0,
		frames:      frames,
		framesIndex: 1,
		builtins:    builtins(os.Stdout),
		stdout:      os.Stdout,
	}
}

// SetStdout redirects the `puts` built-in's output to w.
func (vm *VM) SetStdout(w io.Writer) {
	vm.stdout = w
	vm.builtins = builtins(w)
}

func (vm *VM) currentFrame() *Frame { return vm.frames[vm.framesIndex-1] }

func (vm *VM) pushFrame(f *Frame) {
	vm.frames[vm.framesIndex] = f
	vm.framesIndex++
}

func (vm *VM) popFrame() *Frame {
	vm.framesIndex--
	return vm.frames[vm.framesIndex]
}

// LastPoppedStackElem returns the value most recently popped off the stack,
// useful after Run to inspect the result of a top-level expression.
func (vm *VM) LastPoppedStackElem() object.Object { return vm.stack[vm.sp] }

func (vm *VM) push(obj object.Object) error {
	if vm.sp >= StackSize {
		return fmt.Errorf("stack overflow")
	}
	vm.stack[vm.sp] = obj
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Object {
	obj := vm.stack[vm.sp-1]
	vm.sp--
	return obj
}

// Run executes the bytecode loaded into the VM to completion or until a
// runtime error occurs.
func (vm *VM) Run() error {
	var ip int
	var ins code.Instructions
	var op code.Opcode

	for vm.currentFrame().ip < len(vm.currentFrame().Instructions())-1 {
		vm.currentFrame().ip++
		ip = vm.currentFrame().ip
		ins = vm.currentFrame().Instructions()
		op = code.Opcode(ins[ip])

		switch op {
		case code.OpConstant:
			constIndex := code.ReadUint16(ins[ip+1:])
			vm.currentFrame().ip += 2
			if err := vm.push(vm.constants[constIndex]); err != nil {
				return err
			}

		case code.OpPop:
			vm.pop()

		case code.OpAdd, code.OpSub, code.OpMul, code.OpDiv:
			if err := vm.executeBinaryOperation(op); err != nil {
				return err
			}

		case code.OpTrue:
			if err := vm.push(vmTrue); err != nil {
				return err
			}
		case code.OpFalse:
			if err := vm.push(vmFalse); err != nil {
				return err
			}
		case code.OpNull:
			if err := vm.push(vmNull); err != nil {
				return err
			}

		case code.OpEqual, code.OpNotEqual, code.OpGreaterThan:
			if err := vm.executeComparison(op); err != nil {
				return err
			}

		case code.OpBang:
			if err := vm.executeBangOperator(); err != nil {
				return err
			}
		case code.OpMinus:
			if err := vm.executeMinusOperator(); err != nil {
				return err
			}

		case code.OpJump:
			pos := int(code.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip = pos - 1

		case code.OpJumpNotTruthy:
			pos := int(code.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip += 2
			condition := vm.pop()
			if !isTruthy(condition) {
				vm.currentFrame().ip = pos - 1
			}

		case code.OpSetGlobal:
			idx := code.ReadUint16(ins[ip+1:])
			vm.currentFrame().ip += 2
			vm.globals[idx] = vm.pop()
		case code.OpGetGlobal:
			idx := code.ReadUint16(ins[ip+1:])
			vm.currentFrame().ip += 2
			if err := vm.push(vm.globals[idx]); err != nil {
				return err
			}

		case code.OpSetLocal:
			idx := code.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			frame := vm.currentFrame()
			vm.stack[frame.basePointer+int(idx)] = vm.pop()
		case code.OpGetLocal:
			idx := code.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			frame := vm.currentFrame()
			if err := vm.push(vm.stack[frame.basePointer+int(idx)]); err != nil {
				return err
			}

		case code.OpGetBuiltin:
			idx := code.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			if int(idx) >= len(vm.builtins) {
				return fmt.Errorf("undefined builtin %d", idx)
			}
			if err := vm.push(vm.builtins[idx]); err != nil {
				return err
			}

		case code.OpGetFree:
			idx := code.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			cl := vm.currentFrame().cl
			if err := vm.push(cl.Free[idx]); err != nil {
				return err
			}

		case code.OpCurrentClosure:
			cl := vm.currentFrame().cl
			if err := vm.push(cl); err != nil {
				return err
			}

		case code.OpArray:
			n := int(code.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip += 2
			arr := vm.buildArray(vm.sp-n, vm.sp)
			vm.sp -= n
			if err := vm.push(arr); err != nil {
				return err
			}

		case code.OpHash:
			n := int(code.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip += 2
			hash, err := vm.buildHash(vm.sp-n, vm.sp)
			if err != nil {
				return err
			}
			vm.sp -= n
			if err := vm.push(hash); err != nil {
				return err
			}

		case code.OpIndex:
			index := vm.pop()
			left := vm.pop()
			if err := vm.executeIndexExpression(left, index); err != nil {
				return err
			}

		case code.OpClosure:
			constIndex := code.ReadUint16(ins[ip+1:])
			numFree := int(code.ReadUint8(ins[ip+3:]))
			vm.currentFrame().ip += 3
			if err := vm.pushClosure(int(constIndex), numFree); err != nil {
				return err
			}

		case code.OpCall:
			numArgs := int(code.ReadUint8(ins[ip+1:]))
			vm.currentFrame().ip += 1
			if err := vm.executeCall(numArgs); err != nil {
				return err
			}

		case code.OpReturnValue:
			returnValue := vm.pop()
			frame := vm.popFrame()
			vm.sp = frame.basePointer - 1
			if err := vm.push(returnValue); err != nil {
				return err
			}

		case code.OpReturn:
			frame := vm.popFrame()
			vm.sp = frame.basePointer - 1
			if err := vm.push(vmNull); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unknown opcode %d", op)
		}
	}
	return nil
}

func (vm *VM) executeBinaryOperation(op code.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	lInt, lok := left.(*object.Integer)
	rInt, rok := right.(*object.Integer)
	switch {
	case lok && rok:
		return vm.executeBinaryIntegerOperation(op, lInt, rInt)
	case left.Type() == object.StringType && right.Type() == object.StringType:
		return vm.executeBinaryStringOperation(op, left.(*object.String), right.(*object.String))
	default:
		return fmt.Errorf("unsupported types for binary operation: %s %s", left.Type(), right.Type())
	}
}

func (vm *VM) executeBinaryIntegerOperation(op code.Opcode, left, right *object.Integer) error {
	var result int64
	switch op {
	case code.OpAdd:
		result = left.Value + right.Value
	case code.OpSub:
		result = left.Value - right.Value
	case code.OpMul:
		result = left.Value * right.Value
	case code.OpDiv:
		result = left.Value / right.Value
	default:
		return fmt.Errorf("unknown integer operator: %d", op)
	}
	return vm.push(&object.Integer{Value: result})
}

func (vm *VM) executeBinaryStringOperation(op code.Opcode, left, right *object.String) error {
	if op != code.OpAdd {
		return fmt.Errorf("unknown string operator: %d", op)
	}
	return vm.push(&object.String{Value: left.Value + right.Value})
}

func (vm *VM) executeComparison(op code.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	if lInt, ok := left.(*object.Integer); ok {
		if rInt, ok := right.(*object.Integer); ok {
			return vm.executeIntegerComparison(op, lInt, rInt)
		}
	}

	switch op {
	case code.OpEqual:
		return vm.push(nativeBoolToBooleanObject(left == right))
	case code.OpNotEqual:
		return vm.push(nativeBoolToBooleanObject(left != right))
	default:
		return fmt.Errorf("unknown operator: %d (%s %s)", op, left.Type(), right.Type())
	}
}

func (vm *VM) executeIntegerComparison(op code.Opcode, left, right *object.Integer) error {
	switch op {
	case code.OpEqual:
		return vm.push(nativeBoolToBooleanObject(left.Value == right.Value))
	case code.OpNotEqual:
		return vm.push(nativeBoolToBooleanObject(left.Value != right.Value))
	case code.OpGreaterThan:
		return vm.push(nativeBoolToBooleanObject(left.Value > right.Value))
	default:
		return fmt.Errorf("unknown operator: %d", op)
	}
}

func (vm *VM) executeBangOperator() error {
	operand := vm.pop()
	switch operand {
	case vmTrue:
		return vm.push(vmFalse)
	case vmFalse:
		return vm.push(vmTrue)
	case vmNull:
		return vm.push(vmTrue)
	default:
		return vm.push(vmFalse)
	}
}

func (vm *VM) executeMinusOperator() error {
	operand := vm.pop()
	i, ok := operand.(*object.Integer)
	if !ok {
		return fmt.Errorf("unsupported type for negation: %s", operand.Type())
	}
	return vm.push(&object.Integer{Value: -i.Value})
}

func (vm *VM) buildArray(startIndex, endIndex int) object.Object {
	elements := make([]object.Object, endIndex-startIndex)
	copy(elements, vm.stack[startIndex:endIndex])
	return &object.Array{Elements: elements}
}

func (vm *VM) buildHash(startIndex, endIndex int) (object.Object, error) {
	hash := object.NewHash((endIndex - startIndex) / 2)
	for i := startIndex; i < endIndex; i += 2 {
		key := vm.stack[i]
		value := vm.stack[i+1]

		hashable, ok := key.(object.Hashable)
		if !ok {
			return nil, fmt.Errorf("unusable as hash key: %s", key.Type())
		}
		hash.Set(hashable.HashKey(), object.HashPair{Key: key, Value: value})
	}
	return hash, nil
}

func (vm *VM) executeIndexExpression(left, index object.Object) error {
	switch {
	case left.Type() == object.ArrayType && index.Type() == object.IntegerType:
		return vm.executeArrayIndex(left.(*object.Array), index.(*object.Integer))
	case left.Type() == object.HashType:
		return vm.executeHashIndex(left.(*object.Hash), index)
	default:
		return fmt.Errorf("index operator not supported: %s", left.Type())
	}
}

func (vm *VM) executeArrayIndex(arr *object.Array, index *object.Integer) error {
	max := int64(len(arr.Elements) - 1)
	if index.Value < 0 || index.Value > max {
		return vm.push(vmNull)
	}
	return vm.push(arr.Elements[index.Value])
}

func (vm *VM) executeHashIndex(hash *object.Hash, index object.Object) error {
	key, ok := index.(object.Hashable)
	if !ok {
		return fmt.Errorf("unusable as hash key: %s", index.Type())
	}
	pair, ok := hash.Get(key.HashKey())
	if !ok {
		return vm.push(vmNull)
	}
	return vm.push(pair.Value)
}

func (vm *VM) pushClosure(constIndex, numFree int) error {
	constant := vm.constants[constIndex]
	fn, ok := constant.(*object.CompiledFunction)
	if !ok {
		return fmt.Errorf("not a function: %+v", constant)
	}

	free := make([]object.Object, numFree)
	for i := 0; i < numFree; i++ {
		free[i] = vm.stack[vm.sp-numFree+i]
	}
	vm.sp -= numFree

	return vm.push(&object.Closure{Fn: fn, Free: free})
}

func (vm *VM) executeCall(numArgs int) error {
	callee := vm.stack[vm.sp-1-numArgs]
	switch callee := callee.(type) {
	case *object.Closure:
		return vm.callClosure(callee, numArgs)
	case *object.Builtin:
		return vm.callBuiltin(callee, numArgs)
	default:
		return fmt.Errorf("calling non-function and non-built-in")
	}
}

func (vm *VM) callClosure(cl *object.Closure, numArgs int) error {
	if numArgs != cl.Fn.NumParameters {
		return fmt.Errorf("wrong number of arguments: want=%d, got=%d", cl.Fn.NumParameters, numArgs)
	}
	if vm.framesIndex >= MaxFrames {
		return fmt.Errorf("call stack overflow")
	}

	frame := NewFrame(cl, vm.sp-numArgs)
	vm.pushFrame(frame)
	vm.sp = frame.basePointer + cl.Fn.NumLocals
	return nil
}

func (vm *VM) callBuiltin(builtin *object.Builtin, numArgs int) error {
	args := vm.stack[vm.sp-numArgs : vm.sp]
	result := builtin.Fn(args...)
	vm.sp = vm.sp - numArgs - 1

	if result == nil {
		return vm.push(vmNull)
	}
	return vm.push(result)
}

func nativeBoolToBooleanObject(b bool) *object.Boolean {
	if b {
		return vmTrue
	}
	return vmFalse
}

func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Boolean:
		return obj.Value
	case *object.Null:
		return false
	default:
		return true
	}
}
