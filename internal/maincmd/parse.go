package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/monkey/lang/parser"
	"github.com/mna/monkey/lang/scanner"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	_, progs, err := parser.ParseFiles(ctx, files...)
	for _, prog := range progs {
		if prog == nil {
			continue
		}
		fmt.Fprintf(stdio.Stdout, "%#v\n", prog)
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
