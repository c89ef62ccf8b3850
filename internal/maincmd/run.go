package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/monkey/lang/compiler"
	"github.com/mna/monkey/lang/eval"
	"github.com/mna/monkey/lang/object"
	"github.com/mna/monkey/lang/parser"
	"github.com/mna/monkey/lang/scanner"
	"github.com/mna/monkey/lang/vm"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, c.Runtime, args...)
}

// RunFiles parses and executes each file in turn, on the given runtime
// ("eval" for the tree-walking evaluator, "vm" for the bytecode compiler
// and virtual machine). Execution stops at the first file whose evaluation
// produces an error.
func RunFiles(ctx context.Context, stdio mainer.Stdio, runtime string, files ...string) error {
	_, progs, perr := parser.ParseFiles(ctx, files...)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	switch runtime {
	case "eval":
		e := eval.NewWithStdout(stdio.Stdout)
		for _, prog := range progs {
			result := e.Evaluate(prog)
			if errObj, ok := result.(*object.Error); ok {
				fmt.Fprintln(stdio.Stderr, errObj.Inspect())
				return fmt.Errorf("%s", errObj.Message)
			}
		}

	default:
		symbolTable := compiler.NewSymbolTable()
		var constants []object.Object
		globals := make([]object.Object, vm.GlobalsSize)
		for _, prog := range progs {
			comp := compiler.NewWithState(symbolTable, constants)
			if err := comp.Compile(prog); err != nil {
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
			bc := comp.Bytecode()
			constants = bc.Constants

			machine := vm.NewWithGlobalsStore(bc, globals)
			machine.SetStdout(stdio.Stdout)
			if err := machine.Run(); err != nil {
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
		}
	}
	return nil
}
