// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package targs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Run parses argv (without the program name), validates the selected
// terminal's arguments, and invokes the bound handler. Help requests print to
// the parser's output writer and return nil. The command tree is compiled
// afresh for each call, so concurrent Runs on one App never share parse
// state.
func (a *App) Run(ctx context.Context, argv []string) error {
	bindings, err := a.resolveBindings()
	if err != nil {
		return err
	}
	c, err := a.parser.compile()
	if err != nil {
		return err
	}
	inv, err := c.resolve(argv)
	if err != nil {
		return err
	}
	if inv.help != "" {
		fmt.Fprint(a.parser.out, inv.help)
		return nil
	}
	v, err := decodeDef(inv.def, inv.raw, true)
	if err != nil {
		return err
	}
	return bindings[inv.leaf].invoke(ctx, v.Interface())
}

// Main runs os.Args through the App and exits the process: 0 on success, 2
// when the command line was rejected, 1 when the handler failed.
func (a *App) Main() {
	os.Exit(a.main(context.Background(), os.Args[1:]))
}

var errLine = color.New(color.FgRed, color.Bold)

func (a *App) main(ctx context.Context, argv []string) int {
	err := a.Run(ctx, argv)
	if err == nil {
		return 0
	}
	errLine.Fprintf(a.parser.errOut, "error: %v\n", err)

	var pe *ParseError
	var ve *ValidationError
	var se *SpecError
	switch {
	case errors.As(err, &pe):
		fmt.Fprint(a.parser.errOut, "\n"+pe.Usage)
		return 2
	case errors.As(err, &ve), errors.As(err, &se):
		return 2
	}
	return 1
}
