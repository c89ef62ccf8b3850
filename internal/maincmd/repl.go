package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/mna/mainer"
	"github.com/mna/monkey/lang/compiler"
	"github.com/mna/monkey/lang/eval"
	"github.com/mna/monkey/lang/object"
	"github.com/mna/monkey/lang/parser"
	monkeyscanner "github.com/mna/monkey/lang/scanner"
	"github.com/mna/monkey/lang/token"
	"github.com/mna/monkey/lang/vm"
)

const prompt = ">> "

// monkeyFace is printed above a batch of parse errors, adapted from the
// original implementation's repl banner.
const monkeyFace = `
            __,__
   .--.  .-"     "-.  .--.
  / .. \/  .-. .-.  \/ .. \
 | |  '|  /   Y   \  |'  | |
 | \   \  \ 0 | 0 /  /   / |
  \ '- ,\.-"""""""-./, -' /
   ''-' /_   ^ ^   _\ '-''
       |  \._   _./  |
       \   \ '~' /   /
        '._ '-=-' _.'
           '-----'
`

func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return Repl(ctx, stdio, c.Runtime)
}

// Repl runs an interactive read-eval-print loop over stdio, on the given
// runtime ("eval" or "vm"). Each line is parsed and executed independently,
// but global let-bindings and the vm's constants/globals pools persist
// across lines within the session.
func Repl(ctx context.Context, stdio mainer.Stdio, runtime string) error {
	scanner := bufio.NewScanner(stdio.Stdin)

	e := eval.NewWithStdout(stdio.Stdout)
	symbolTable := compiler.NewSymbolTable()
	var constants []object.Object
	globals := make([]object.Object, vm.GlobalsSize)

	for {
		fmt.Fprint(stdio.Stdout, prompt)
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()

		fs := token.NewFileSet()
		f := fs.AddFile("<repl>", -1, len(line))
		var s monkeyscanner.Scanner
		var el parser.ErrorList
		s.Init(f, []byte(line), el.Add)
		p := parser.New(fs, &s, el.Add)
		prog := p.ParseProgram()
		if el.Err() != nil {
			printParseErrors(stdio.Stdout, el)
			continue
		}

		switch runtime {
		case "eval":
			result := e.Evaluate(prog)
			if result == nil {
				continue
			}
			if _, isNull := result.(*object.Null); isNull {
				continue
			}
			fmt.Fprintln(stdio.Stdout, result.Inspect())

		default:
			comp := compiler.NewWithState(symbolTable, constants)
			if err := comp.Compile(prog); err != nil {
				fmt.Fprintf(stdio.Stdout, "compilation failed: %s\n", err)
				continue
			}
			bc := comp.Bytecode()
			constants = bc.Constants

			machine := vm.NewWithGlobalsStore(bc, globals)
			machine.SetStdout(stdio.Stdout)
			if err := machine.Run(); err != nil {
				fmt.Fprintf(stdio.Stdout, "executing bytecode failed: %s\n", err)
				continue
			}
			if top := machine.LastPoppedStackElem(); top != nil {
				if _, isNull := top.(*object.Null); !isNull {
					fmt.Fprintln(stdio.Stdout, top.Inspect())
				}
			}
		}
	}
}

func printParseErrors(w io.Writer, el parser.ErrorList) {
	fmt.Fprint(w, monkeyFace)
	fmt.Fprintln(w, "Woops! We ran into some monkey business here!")
	fmt.Fprintln(w, " parser errors:")
	for _, e := range el {
		fmt.Fprintf(w, "\t%s\n", e)
	}
}
