package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage(os.Stderr)
		return flag.ErrHelp
	case "eval":
		return NewEvalCommand(os.Stdout, os.Stderr).Run(ctx, args)
	default:
		return fmt.Errorf(`glee %s: unknown command`, cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `
Glee evaluates the constant initializers of Go packages into symbolic
expressions over a target data layout.

Usage:

	glee <command> [arguments]

The commands are:

	eval        evaluate package initializers
	help        this screen

Eval loads a package, translates each store of its initializer into a
constant expression and prints the stored address and value. The target
is chosen with -arch or a YAML layout given with -target. Package
variables named with -sym become symbolic inputs; -bind NAME=HEX gives
an input concrete bytes. Run "glee eval -h" for the full flag list.
`[1:])
}
