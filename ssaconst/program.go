package ssaconst

import (
	"go/token"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadMode is the package information needed to build SSA.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes | packages.NeedTypesSizes |
	packages.NeedSyntax | packages.NeedTypesInfo

// Load loads the packages matching patterns for the given architecture and
// builds them in SSA form. The returned packages correspond to the patterns.
func Load(dir, arch string, patterns ...string) (*ssa.Program, []*ssa.Package, error) {
	cfg := &packages.Config{Mode: LoadMode, Dir: dir}
	if arch != "" {
		cfg.Env = append(os.Environ(), "GOARCH="+arch)
	}

	initial, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load packages")
	} else if packages.PrintErrors(initial) > 0 {
		return nil, nil, errors.New("packages contain errors")
	}

	prog, pkgs := ssautil.AllPackages(initial, ssa.BuilderMode(0))
	for i, pkg := range pkgs {
		if pkg == nil {
			return nil, nil, errors.Errorf("cannot build SSA for package %s", initial[i])
		}
	}
	prog.Build()
	return prog, pkgs, nil
}

// Initializer is a store of a package-level variable performed by the
// package initializer.
type Initializer struct {
	Pos  token.Pos
	Addr ssa.Value
	Val  ssa.Value
}

// Initializers returns every store in the package initializer, in program order.
func Initializers(pkg *ssa.Package) []Initializer {
	fn := pkg.Func("init")
	if fn == nil {
		return nil
	}

	var a []Initializer
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if store, ok := instr.(*ssa.Store); ok {
				a = append(a, Initializer{Pos: store.Pos(), Addr: store.Addr, Val: store.Val})
			}
		}
	}
	return a
}
