// Package compiler takes a parsed *ast.Program and compiles it into
// bytecode for the virtual machine, using a single linear emit pass with
// integer-offset back-patching for forward jumps -- no control-flow graph,
// no separate linearization step.
package compiler

import (
	"fmt"

	"github.com/mna/monkey/lang/ast"
	"github.com/mna/monkey/lang/code"
	"github.com/mna/monkey/lang/object"
)

// EmittedInstruction records an opcode's position in the current scope's
// instruction stream, used to detect and rewrite a trailing OpPop.
type EmittedInstruction struct {
	Opcode   code.Opcode
	Position int
}

// CompilationScope holds the instructions being emitted for one function
// body (or the top level program, which is compiled as if it were the body
// of an implicit top-level function).
type CompilationScope struct {
	instructions        code.Instructions
	lastInstruction     EmittedInstruction
	previousInstruction EmittedInstruction
}

// Compiler walks an AST and emits bytecode plus the constant pool it
// references.
type Compiler struct {
	constants []object.Object

	symbolTable *SymbolTable

	scopes     []CompilationScope
	scopeIndex int
}

// New returns a Compiler with an empty global symbol table and the
// built-ins predefined, ready to compile a top-level program.
func New() *Compiler {
	symbolTable := NewSymbolTable()
	for i, name := range object.BuiltinNames {
		symbolTable.DefineBuiltin(i, name)
	}

	mainScope := CompilationScope{instructions: code.Instructions{}}
	return &Compiler{
		constants:   nil,
		symbolTable: symbolTable,
		scopes:      []CompilationScope{mainScope},
		scopeIndex:  0,
	}
}

// NewWithState returns a Compiler reusing an existing constant pool and
// symbol table, so a REPL can compile successive inputs incrementally. The
// built-ins are defined in symbolTable if it does not already hold them.
func NewWithState(symbolTable *SymbolTable, constants []object.Object) *Compiler {
	c := New()
	for i, name := range object.BuiltinNames {
		if _, ok := symbolTable.store[name]; !ok {
			symbolTable.DefineBuiltin(i, name)
		}
	}
	c.symbolTable = symbolTable
	c.constants = constants
	return c
}

// Bytecode is the result of a successful compilation: the instruction
// stream and the constant pool it indexes into.
type Bytecode struct {
	Instructions code.Instructions
	Constants    []object.Object
}

// Compile compiles node, emitting into the current scope.
func (c *Compiler) Compile(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Program:
		for _, s := range n.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.ExprStmt:
		if err := c.Compile(n.X); err != nil {
			return err
		}
		c.emit(code.OpPop)

	case *ast.BlockStmt:
		for _, s := range n.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.LetStmt:
		sym := c.symbolTable.Define(n.Name.Name)
		if err := c.Compile(n.Value); err != nil {
			return err
		}
		if sym.Scope == GlobalScope {
			c.emit(code.OpSetGlobal, sym.Index)
		} else {
			c.emit(code.OpSetLocal, sym.Index)
		}

	case *ast.ReturnStmt:
		if n.ReturnValue == nil {
			c.emit(code.OpNull)
		} else if err := c.Compile(n.ReturnValue); err != nil {
			return err
		}
		c.emit(code.OpReturnValue)

	case *ast.IntegerLiteral:
		c.emit(code.OpConstant, c.addConstant(&object.Integer{Value: n.Value}))

	case *ast.StringLiteral:
		c.emit(code.OpConstant, c.addConstant(&object.String{Value: n.Value}))

	case *ast.BooleanLiteral:
		if n.Value {
			c.emit(code.OpTrue)
		} else {
			c.emit(code.OpFalse)
		}

	case *ast.Identifier:
		sym, ok := c.symbolTable.Resolve(n.Name)
		if !ok {
			return fmt.Errorf("undefined variable %s", n.Name)
		}
		c.loadSymbol(sym)

	case *ast.PrefixExpr:
		if err := c.Compile(n.Right); err != nil {
			return err
		}
		switch n.Op {
		case "!":
			c.emit(code.OpBang)
		case "-":
			c.emit(code.OpMinus)
		default:
			return fmt.Errorf("unknown operator %s", n.Op)
		}

	case *ast.InfixExpr:
		// `a < b` compiles as `b > a`, reusing OpGreaterThan and saving an
		// opcode: there is no dedicated OpLessThan.
		if n.Op == "<" {
			if err := c.Compile(n.Right); err != nil {
				return err
			}
			if err := c.Compile(n.Left); err != nil {
				return err
			}
			c.emit(code.OpGreaterThan)
			return nil
		}

		if err := c.Compile(n.Left); err != nil {
			return err
		}
		if err := c.Compile(n.Right); err != nil {
			return err
		}
		switch n.Op {
		case "+":
			c.emit(code.OpAdd)
		case "-":
			c.emit(code.OpSub)
		case "*":
			c.emit(code.OpMul)
		case "/":
			c.emit(code.OpDiv)
		case ">":
			c.emit(code.OpGreaterThan)
		case "==":
			c.emit(code.OpEqual)
		case "!=":
			c.emit(code.OpNotEqual)
		default:
			return fmt.Errorf("unknown operator %s", n.Op)
		}

	case *ast.IfExpr:
		if err := c.Compile(n.Condition); err != nil {
			return err
		}
		jumpNotTruthyPos := c.emit(code.OpJumpNotTruthy, 9999)

		if err := c.Compile(n.Consequence); err != nil {
			return err
		}
		if c.lastInstructionIs(code.OpPop) {
			c.removeLastPop()
		}

		jumpPos := c.emit(code.OpJump, 9999)
		c.changeOperand(jumpNotTruthyPos, len(c.currentInstructions()))

		if n.Alternative == nil {
			c.emit(code.OpNull)
		} else {
			if err := c.Compile(n.Alternative); err != nil {
				return err
			}
			if c.lastInstructionIs(code.OpPop) {
				c.removeLastPop()
			}
		}
		c.changeOperand(jumpPos, len(c.currentInstructions()))

	case *ast.FunctionLiteral:
		c.enterScope()

		if n.Name != "" {
			c.symbolTable.DefineFunctionName(n.Name)
		}
		for _, p := range n.Parameters {
			c.symbolTable.Define(p.Name)
		}

		if err := c.Compile(n.Body); err != nil {
			return err
		}
		if c.lastInstructionIs(code.OpPop) {
			c.replaceLastPopWithReturn()
		}
		if !c.lastInstructionIs(code.OpReturnValue) {
			c.emit(code.OpReturn)
		}

		freeSymbols := c.symbolTable.FreeSymbols
		numLocals := c.symbolTable.numDefinitions
		instructions := c.leaveScope()

		for _, s := range freeSymbols {
			c.loadSymbol(s)
		}

		compiledFn := &object.CompiledFunction{
			Instructions:  instructions,
			NumLocals:     numLocals,
			NumParameters: len(n.Parameters),
		}
		fnIndex := c.addConstant(compiledFn)
		c.emit(code.OpClosure, fnIndex, len(freeSymbols))

	case *ast.CallExpr:
		if err := c.Compile(n.Function); err != nil {
			return err
		}
		for _, a := range n.Arguments {
			if err := c.Compile(a); err != nil {
				return err
			}
		}
		c.emit(code.OpCall, len(n.Arguments))

	case *ast.ArrayLiteral:
		for _, e := range n.Elements {
			if err := c.Compile(e); err != nil {
				return err
			}
		}
		c.emit(code.OpArray, len(n.Elements))

	case *ast.HashLiteral:
		for i, k := range n.Keys {
			if err := c.Compile(k); err != nil {
				return err
			}
			if err := c.Compile(n.Values[i]); err != nil {
				return err
			}
		}
		c.emit(code.OpHash, len(n.Keys)*2)

	case *ast.IndexExpr:
		if err := c.Compile(n.Left); err != nil {
			return err
		}
		if err := c.Compile(n.Index); err != nil {
			return err
		}
		c.emit(code.OpIndex)

	default:
		return fmt.Errorf("compiler: unsupported node type %T", node)
	}
	return nil
}

func (c *Compiler) loadSymbol(s Symbol) {
	switch s.Scope {
	case GlobalScope:
		c.emit(code.OpGetGlobal, s.Index)
	case LocalScope:
		c.emit(code.OpGetLocal, s.Index)
	case BuiltinScope:
		c.emit(code.OpGetBuiltin, s.Index)
	case FreeScope:
		c.emit(code.OpGetFree, s.Index)
	case FunctionScope:
		c.emit(code.OpCurrentClosure)
	}
}

// Bytecode returns the compiled top-level instructions and constant pool.
func (c *Compiler) Bytecode() *Bytecode {
	return &Bytecode{Instructions: c.currentInstructions(), Constants: c.constants}
}

func (c *Compiler) addConstant(obj object.Object) int {
	c.constants = append(c.constants, obj)
	return len(c.constants) - 1
}

func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	ins := code.Make(op, operands...)
	pos := c.addInstruction(ins)
	c.setLastInstruction(op, pos)
	return pos
}

func (c *Compiler) currentInstructions() code.Instructions {
	return c.scopes[c.scopeIndex].instructions
}

func (c *Compiler) addInstruction(ins []byte) int {
	pos := len(c.currentInstructions())
	c.scopes[c.scopeIndex].instructions = append(c.currentInstructions(), ins...)
	return pos
}

func (c *Compiler) setLastInstruction(op code.Opcode, pos int) {
	c.scopes[c.scopeIndex].previousInstruction = c.scopes[c.scopeIndex].lastInstruction
	c.scopes[c.scopeIndex].lastInstruction = EmittedInstruction{Opcode: op, Position: pos}
}

func (c *Compiler) lastInstructionIs(op code.Opcode) bool {
	if len(c.currentInstructions()) == 0 {
		return false
	}
	return c.scopes[c.scopeIndex].lastInstruction.Opcode == op
}

func (c *Compiler) removeLastPop() {
	last := c.scopes[c.scopeIndex].lastInstruction
	prev := c.scopes[c.scopeIndex].previousInstruction
	old := c.currentInstructions()
	c.scopes[c.scopeIndex].instructions = old[:last.Position]
	c.scopes[c.scopeIndex].lastInstruction = prev
}

func (c *Compiler) replaceInstruction(pos int, newInstruction []byte) {
	ins := c.currentInstructions()
	for i := 0; i < len(newInstruction); i++ {
		ins[pos+i] = newInstruction[i]
	}
}

func (c *Compiler) changeOperand(opPos int, operand int) {
	op := code.Opcode(c.currentInstructions()[opPos])
	newInstruction := code.Make(op, operand)
	c.replaceInstruction(opPos, newInstruction)
}

func (c *Compiler) replaceLastPopWithReturn() {
	lastPos := c.scopes[c.scopeIndex].lastInstruction.Position
	newInstruction := code.Make(code.OpReturnValue)
	c.replaceInstruction(lastPos, newInstruction)
	c.scopes[c.scopeIndex].lastInstruction.Opcode = code.OpReturnValue
}

func (c *Compiler) enterScope() {
	c.scopes = append(c.scopes, CompilationScope{instructions: code.Instructions{}})
	c.scopeIndex++
	c.symbolTable = NewEnclosedSymbolTable(c.symbolTable)
}

func (c *Compiler) leaveScope() code.Instructions {
	instructions := c.currentInstructions()
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.scopeIndex--
	c.symbolTable = c.symbolTable.Outer
	return instructions
}
