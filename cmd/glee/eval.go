package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"go/types"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/tools/go/ssa"

	"github.com/gleevm/glee"
	"github.com/gleevm/glee/ir"
	"github.com/gleevm/glee/ssaconst"
)

// EvalCommand represents a command for evaluating package initializers.
type EvalCommand struct {
	Stdout io.Writer
	Stderr io.Writer

	inputs     map[string]bool
	assignment *glee.Assignment
}

// NewEvalCommand returns a new instance of EvalCommand.
func NewEvalCommand(stdout, stderr io.Writer) *EvalCommand {
	return &EvalCommand{Stdout: stdout, Stderr: stderr}
}

// Run executes the "eval" subcommand.
func (cmd *EvalCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("glee-eval", flag.ContinueOnError)
	arch := fs.String("arch", runtime.GOARCH, "target architecture")
	target := fs.String("target", "", "data layout file")
	pool := fs.Bool("pool", false, "intern evaluated values")
	var syms, binds stringSlice
	fs.Var(&syms, "sym", "treat a package variable as a symbolic input")
	fs.Var(&binds, "bind", "bind a symbolic input to hex bytes")
	verbose := fs.Bool("v", false, "verbose")
	fs.SetOutput(cmd.Stderr)
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("package required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many packages specified")
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	sizes := types.SizesFor("gc", *arch)
	if sizes == nil {
		return errors.Wrap(ssaconst.ErrUnknownArch, *arch)
	}
	layout, err := cmd.dataLayout(*arch, *target)
	if err != nil {
		return err
	} else if ptr := uint(sizes.Sizeof(types.Typ[types.UnsafePointer]) * 8); layout.PointerWidth != ptr {
		return errors.Errorf("data layout pointer width %d does not match %s (%d)", layout.PointerWidth, *arch, ptr)
	}

	gctx := glee.NewContext(layout)
	if *pool {
		gctx.Pool = glee.NewPool()
	}
	if cmd.assignment, err = bindInputs(gctx, binds); err != nil {
		return err
	}
	cmd.inputs = make(map[string]bool)
	for _, name := range syms {
		cmd.inputs[name] = true
	}
	for name := range gctx.Symbols {
		cmd.inputs[name] = true
	}

	prog, pkgs, err := ssaconst.Load("", *arch, fs.Arg(0))
	if err != nil {
		return err
	}

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cmd.evalPackage(prog, pkg, sizes, gctx, logger); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *EvalCommand) dataLayout(arch, target string) (*glee.DataLayout, error) {
	if target != "" {
		return glee.LoadDataLayout(target)
	}
	return ssaconst.DataLayoutFor(arch)
}

func (cmd *EvalCommand) evalPackage(prog *ssa.Program, pkg *ssa.Package, sizes types.Sizes, ctx *glee.Context, logger zerolog.Logger) error {
	tr := ssaconst.NewTranslator(sizes, ctx)
	tr.Inputs = cmd.inputs
	if err := tr.DeclarePackage(pkg); err != nil {
		return err
	}

	e := glee.NewEvaluator(ctx)
	e.Logger = logger.With().Str("pkg", pkg.Pkg.Path()).Logger()

	for _, st := range ssaconst.Initializers(pkg) {
		pos := prog.Fset.Position(st.Pos)

		addr, err := tr.Value(st.Addr)
		if err != nil {
			logger.Debug().Str("pos", pos.String()).Err(err).Msg("skip address")
			continue
		}
		val, err := tr.Value(st.Val)
		if errors.Cause(err) == ssaconst.ErrNotConstant || errors.Cause(err) == ssaconst.ErrNotScalar {
			logger.Debug().Str("pos", pos.String()).Err(err).Msg("skip value")
			continue
		} else if err != nil {
			return errors.Wrap(err, pos.String())
		}

		a, err := evaluate(e, addr)
		if err != nil {
			return errors.Wrap(err, pos.String())
		}
		v, err := evaluate(e, val)
		if err != nil {
			return errors.Wrap(err, pos.String())
		} else if v, err = cmd.substitute(v); err != nil {
			return errors.Wrap(err, pos.String())
		}
		fmt.Fprintf(cmd.Stdout, "%s\t%s = %s\n", pos, formatAddress(ctx, a), v)
	}
	return nil
}

// substitute replaces symbolic inputs in v with their bound bytes. Values
// reading an unbound input are returned unchanged.
func (cmd *EvalCommand) substitute(v glee.Value) (glee.Value, error) {
	if cmd.assignment == nil || len(glee.FindArrays(v)) == 0 {
		return v, nil
	}
	c, err := cmd.assignment.Evaluate(v)
	if errors.Cause(err) == glee.ErrUnknownArray {
		return v, nil
	} else if err != nil {
		return nil, err
	}
	return c, nil
}

// bindInputs declares a symbolic input sized to each NAME=HEX binding and
// returns an assignment of the bound bytes.
func bindInputs(ctx *glee.Context, binds []string) (*glee.Assignment, error) {
	if len(binds) == 0 {
		return nil, nil
	}

	arrays := make([]*glee.Array, 0, len(binds))
	values := make([][]byte, 0, len(binds))
	for _, b := range binds {
		name, s, ok := strings.Cut(b, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid binding %q: expected NAME=HEX", b)
		} else if _, ok := ctx.Symbols[name]; ok {
			return nil, errors.Errorf("duplicate binding for %s", name)
		}

		buf, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid binding %q", b)
		} else if len(buf) == 0 {
			return nil, errors.Errorf("invalid binding %q: no bytes", b)
		}
		arrays = append(arrays, ctx.DeclareSymbol(name, uint(len(buf))*8))
		values = append(values, buf)
	}
	return glee.NewAssignment(arrays, values), nil
}

// stringSlice collects the values of a repeated flag.
type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ",") }

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// evaluate runs the evaluator and converts a contract violation into an error.
func evaluate(e *glee.Evaluator, node ir.Constant) (v glee.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			ferr, ok := r.(*glee.FatalError)
			if !ok {
				panic(r)
			}
			err = ferr
		}
	}()
	return e.Evaluate(node), nil
}

// formatAddress renders a constant address relative to the global containing it.
func formatAddress(ctx *glee.Context, v glee.Value) string {
	c, ok := v.(*glee.ConstantExpr)
	if !ok {
		return v.String()
	}
	alloc := ctx.Globals.FindContaining(c.Value)
	if alloc == nil {
		return c.String()
	} else if off := c.Value - alloc.Address; off != 0 {
		return fmt.Sprintf("@%s+%d", alloc.Name, off)
	}
	return "@" + alloc.Name
}

func (cmd *EvalCommand) usage() {
	fmt.Fprintln(cmd.Stderr, `
Evaluates the stores performed by a package initializer and prints the
address and value of each store whose operands are constant.

Usage:

	glee eval [arguments] <package>

Arguments:

	-arch ARCH
	    Target architecture. Defaults to the host architecture.

	-target PATH
	    YAML data layout file. Overrides the layout derived from -arch.

	-pool
	    Intern evaluated values.

	-sym NAME
	    Treat loads of the integer package variable NAME as a symbolic
	    input. May be repeated.

	-bind NAME=HEX
	    Bind the symbolic input NAME to the given bytes, in memory order.
	    Implies -sym NAME. Values reading only bound inputs are printed
	    as constants. May be repeated.

	-v
	    Enable verbose logging.
`[1:])
}
