package glee

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/gleevm/glee/ir"
)

// Layout answers target layout queries for element-pointer arithmetic.
type Layout interface {
	// FieldOffset returns the byte offset of field i within t.
	FieldOffset(t *ir.StructType, i int) uint64

	// ElementSize returns the allocation size in bytes of one element of t.
	ElementSize(t *ir.SequentialType) uint64
}

// DataLayout describes the sizes and alignments of a target.
//
// Scalars are stored in the smallest number of whole bytes and aligned
// according to Align. Align is keyed by IR type name: "i1".."i64", "float",
// "double" and "ptr". An integer width missing from the table takes the
// alignment of the next wider listed width, or of the widest one.
type DataLayout struct {
	PointerWidth uint
	LittleEndian bool
	Align        map[string]uint64
}

// dataLayoutFile is the YAML form of a DataLayout.
type dataLayoutFile struct {
	PointerWidth uint              `yaml:"pointer_width"`
	LittleEndian *bool             `yaml:"little_endian"`
	Align        map[string]uint64 `yaml:"align"`
}

// DefaultDataLayout returns a layout with natural alignment for every scalar
// and pointers of the given width.
func DefaultDataLayout(pointerWidth uint) *DataLayout {
	return &DataLayout{
		PointerWidth: pointerWidth,
		LittleEndian: true,
		Align: map[string]uint64{
			"i1":     1,
			"i8":     1,
			"i16":    2,
			"i32":    4,
			"i64":    8,
			"float":  4,
			"double": 8,
			"ptr":    uint64(minBytes(pointerWidth)),
		},
	}
}

// LoadDataLayout reads a YAML target description from path. Entries missing
// from the file keep their DefaultDataLayout value.
func LoadDataLayout(path string) (*DataLayout, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read data layout")
	}
	return ParseDataLayout(buf)
}

// ParseDataLayout decodes a YAML target description.
func ParseDataLayout(buf []byte) (*DataLayout, error) {
	var raw dataLayoutFile
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return nil, errors.Wrap(err, "parse data layout")
	}
	if raw.PointerWidth == 0 {
		raw.PointerWidth = Width64
	}

	l := DefaultDataLayout(raw.PointerWidth)
	if raw.LittleEndian != nil {
		l.LittleEndian = *raw.LittleEndian
	}
	for k, v := range raw.Align {
		l.Align[k] = v
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate returns an error if the layout is malformed.
func (l *DataLayout) Validate() error {
	switch l.PointerWidth {
	case Width16, Width32, Width64:
	default:
		return errors.Wrapf(ErrInvalidDataLayout, "pointer width %d", l.PointerWidth)
	}
	for k, v := range l.Align {
		if k != "ptr" && k != "float" && k != "double" {
			if _, ok := parseIntKey(k); !ok {
				return errors.Wrapf(ErrInvalidDataLayout, "unknown alignment key %q", k)
			}
		}
		if v == 0 || v&(v-1) != 0 {
			return errors.Wrapf(ErrInvalidDataLayout, "alignment of %s must be a power of two: %d", k, v)
		}
	}
	return nil
}

// parseIntKey parses an integer type name such as "i32".
func parseIntKey(k string) (uint, bool) {
	if !strings.HasPrefix(k, "i") {
		return 0, false
	}
	n, err := strconv.ParseUint(k[1:], 10, 32)
	if err != nil || n == 0 || n > MaxWidth {
		return 0, false
	}
	return uint(n), true
}

// Width returns the bit width of a scalar type. Aggregates report their
// size in bits.
func (l *DataLayout) Width(t ir.Type) uint {
	switch t := t.(type) {
	case *ir.IntType:
		return t.Width
	case *ir.PointerType:
		return l.PointerWidth
	case *ir.FloatType:
		return t.Format.Bits()
	default:
		return uint(l.SizeOf(t) * 8)
	}
}

// SizeOf returns the number of bytes needed to store a value of type t,
// including any padding inside it.
func (l *DataLayout) SizeOf(t ir.Type) uint64 {
	switch t := t.(type) {
	case *ir.IntType:
		return uint64(minBytes(t.Width))
	case *ir.PointerType:
		return uint64(minBytes(l.PointerWidth))
	case *ir.FloatType:
		return uint64(minBytes(t.Format.Bits()))
	case *ir.StructType:
		return roundUp(l.structLayout(t, len(t.Fields)), l.AlignOf(t))
	case *ir.SequentialType:
		if t.Len == ir.Unbounded {
			return 0
		}
		return uint64(t.Len) * l.AllocSize(t.Elem)
	default:
		panic(fmt.Sprintf("glee.DataLayout.SizeOf: unexpected type: %T", t))
	}
}

// AlignOf returns the ABI alignment of t in bytes.
func (l *DataLayout) AlignOf(t ir.Type) uint64 {
	switch t := t.(type) {
	case *ir.IntType:
		return l.intAlign(t.Width)
	case *ir.PointerType:
		return l.lookupAlign("ptr", uint64(minBytes(l.PointerWidth)))
	case *ir.FloatType:
		return l.lookupAlign(t.Format.String(), uint64(minBytes(t.Format.Bits())))
	case *ir.StructType:
		if t.Packed {
			return 1
		}
		r := uint64(1)
		for _, f := range t.Fields {
			if a := l.AlignOf(f); a > r {
				r = a
			}
		}
		return r
	case *ir.SequentialType:
		return l.AlignOf(t.Elem)
	default:
		panic(fmt.Sprintf("glee.DataLayout.AlignOf: unexpected type: %T", t))
	}
}

// AllocSize returns the distance in bytes between consecutive values of
// type t in memory: its size rounded up to its alignment.
func (l *DataLayout) AllocSize(t ir.Type) uint64 {
	return roundUp(l.SizeOf(t), l.AlignOf(t))
}

// FieldOffset returns the byte offset of field i within t. Fields of a
// non-packed struct are placed at the next multiple of their alignment.
func (l *DataLayout) FieldOffset(t *ir.StructType, i int) uint64 {
	assert(i >= 0 && i < len(t.Fields), "field index out of range: %d of %s", i, t)
	return l.structLayout(t, i)
}

// ElementSize returns the allocation size of one element of t.
func (l *DataLayout) ElementSize(t *ir.SequentialType) uint64 {
	return l.AllocSize(t.Elem)
}

// structLayout returns the offset of field n of t. For n == len(t.Fields)
// it returns the end of the last field, before tail padding.
func (l *DataLayout) structLayout(t *ir.StructType, n int) uint64 {
	var off uint64
	for i, f := range t.Fields {
		if !t.Packed {
			off = roundUp(off, l.AlignOf(f))
		}
		if i == n {
			return off
		}
		off += l.AllocSize(f)
	}
	return off
}

func (l *DataLayout) lookupAlign(key string, def uint64) uint64 {
	if v, ok := l.Align[key]; ok {
		return v
	}
	return def
}

// intAlign returns the alignment of an integer of the given width.
func (l *DataLayout) intAlign(width uint) uint64 {
	if v, ok := l.Align[fmt.Sprintf("i%d", width)]; ok {
		return v
	}

	var widths []uint
	for k := range l.Align {
		if w, ok := parseIntKey(k); ok {
			widths = append(widths, w)
		}
	}
	if len(widths) == 0 {
		return 1
	}
	sort.Slice(widths, func(i, j int) bool { return widths[i] < widths[j] })
	for _, w := range widths {
		if w > width {
			return l.Align[fmt.Sprintf("i%d", w)]
		}
	}
	return l.Align[fmt.Sprintf("i%d", widths[len(widths)-1])]
}
