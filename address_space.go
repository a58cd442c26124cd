package glee

import (
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/cespare/xxhash/v2"
)

// Allocation represents the storage of a named global.
type Allocation struct {
	Name    string
	Address uint64
	Size    uint64
}

// String returns a string representation of the allocation.
func (a *Allocation) String() string {
	return fmt.Sprintf("@%s[%#x+%d]", a.Name, a.Address, a.Size)
}

// Contains returns true if addr falls within the allocation.
func (a *Allocation) Contains(addr uint64) bool {
	return addr >= a.Address && addr-a.Address < a.Size
}

// AddressSpace assigns deterministic addresses to named globals.
//
// Addresses are handed out in allocation order, are never zero, and are
// aligned as requested. The zero value is not usable; use NewAddressSpace.
type AddressSpace struct {
	pointerWidth uint
	allocs       *immutable.SortedMap // address -> *Allocation
	names        *immutable.Map       // name -> *Allocation
}

// NewAddressSpace returns an empty address space for pointers of the given width.
func NewAddressSpace(pointerWidth uint) *AddressSpace {
	assert(pointerWidth > 0 && pointerWidth <= Width64, "address space: invalid pointer width: %d", pointerWidth)
	return &AddressSpace{
		pointerWidth: pointerWidth,
		allocs:       immutable.NewSortedMap(&uint64Comparer{}),
		names:        immutable.NewMap(&stringHasher{}),
	}
}

// PointerWidth returns the width of addresses in the space.
func (s *AddressSpace) PointerWidth() uint { return s.pointerWidth }

// Len returns the number of allocations.
func (s *AddressSpace) Len() int { return s.allocs.Len() }

// Alloc reserves size bytes for name and returns the allocation. Allocating
// a name twice returns the original allocation.
func (s *AddressSpace) Alloc(name string, size, align uint64) *Allocation {
	if a := s.Lookup(name); a != nil {
		return a
	}
	if align == 0 {
		align = 1
	}
	assert(align&(align-1) == 0, "alloc: alignment must be a power of two: %d", align)

	addr := roundUp(s.nextAddr(), align)
	assert(size == 0 || addr+size-1 <= bitmask(s.pointerWidth), "alloc: address space exhausted: %s", name)

	a := &Allocation{Name: name, Address: addr, Size: size}
	s.allocs = s.allocs.Set(addr, a)
	s.names = s.names.Set(name, a)
	return a
}

// nextAddr returns the next available address.
// Ensures the address is always non-zero.
func (s *AddressSpace) nextAddr() uint64 {
	itr := s.allocs.Iterator()
	itr.Last()
	if k, v := itr.Prev(); k != nil {
		// Zero-sized globals still get a distinct address.
		size := v.(*Allocation).Size
		if size == 0 {
			size = 1
		}
		return k.(uint64) + size
	}
	return uint64(minBytes(s.pointerWidth))
}

// Lookup returns the allocation for name, or nil if name is not allocated.
func (s *AddressSpace) Lookup(name string) *Allocation {
	if v, ok := s.names.Get(name); ok {
		return v.(*Allocation)
	}
	return nil
}

// FindContaining returns the allocation whose range contains addr, or nil.
func (s *AddressSpace) FindContaining(addr uint64) *Allocation {
	// Seek to the given address or the next available address.
	itr := s.allocs.Iterator()
	if itr.Seek(addr); itr.Done() {
		itr.Last()
	}

	// Move backwards until the address range is too low.
	for !itr.Done() {
		k, v := itr.Prev()
		key, a := k.(uint64), v.(*Allocation)

		if a.Contains(addr) {
			return a
		} else if key < addr {
			break
		}
	}
	return nil
}

// Allocations returns all allocations ordered by address.
func (s *AddressSpace) Allocations() []*Allocation {
	a := make([]*Allocation, 0, s.allocs.Len())
	for itr := s.allocs.Iterator(); !itr.Done(); {
		_, v := itr.Next()
		a = append(a, v.(*Allocation))
	}
	return a
}

// roundUp rounds n up to a multiple of align, which must be a power of two.
func roundUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// uint64Comparer compares two 64-bit unsigned integers. Implements immutable.Comparer.
type uint64Comparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not an uint64.
func (c *uint64Comparer) Compare(a, b interface{}) int {
	return compareUint(a.(uint64), b.(uint64))
}

// stringHasher hashes strings with xxhash. Implements immutable.Hasher.
type stringHasher struct{}

func (h *stringHasher) Hash(key interface{}) uint32 {
	return foldHash(xxhash.Sum64String(key.(string)))
}

func (h *stringHasher) Equal(a, b interface{}) bool {
	return a.(string) == b.(string)
}

// foldHash reduces a 64-bit hash to the 32 bits immutable.Hasher returns.
func foldHash(h uint64) uint32 {
	return uint32(h ^ (h >> 32))
}
