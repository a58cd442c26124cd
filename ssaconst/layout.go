package ssaconst

import (
	"go/types"

	"github.com/pkg/errors"

	"github.com/gleevm/glee"
)

// ErrUnknownArch is returned when no size information exists for an architecture.
var ErrUnknownArch = errors.New("ssaconst: unknown architecture")

var bigEndianArchs = map[string]bool{
	"mips":   true,
	"mips64": true,
	"ppc64":  true,
	"s390x":  true,
}

// DataLayoutFor returns the data layout the gc compiler uses for arch.
func DataLayoutFor(arch string) (*glee.DataLayout, error) {
	sizes := types.SizesFor("gc", arch)
	if sizes == nil {
		return nil, errors.Wrap(ErrUnknownArch, arch)
	}
	return dataLayout(sizes, !bigEndianArchs[arch]), nil
}

func dataLayout(sizes types.Sizes, littleEndian bool) *glee.DataLayout {
	ptr := types.Typ[types.UnsafePointer]
	l := glee.DefaultDataLayout(uint(sizes.Sizeof(ptr) * 8))
	l.LittleEndian = littleEndian

	align := func(kind types.BasicKind) uint64 {
		return uint64(sizes.Alignof(types.Typ[kind]))
	}
	l.Align["i1"] = align(types.Bool)
	l.Align["i8"] = align(types.Int8)
	l.Align["i16"] = align(types.Int16)
	l.Align["i32"] = align(types.Int32)
	l.Align["i64"] = align(types.Int64)
	l.Align["float"] = align(types.Float32)
	l.Align["double"] = align(types.Float64)
	l.Align["ptr"] = uint64(sizes.Alignof(ptr))
	return l
}
