package glee

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
	"github.com/cespare/xxhash/v2"
)

// Pool canonicalizes structurally equal values so that they share a single
// instance. It is safe for concurrent use.
//
// Readers look up a published snapshot of the table without locking. Writers
// are serialized and publish a new snapshot after each insert.
type Pool struct {
	mu    sync.Mutex
	table atomic.Pointer[immutable.Map] // hash -> []Value
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	p := &Pool{}
	p.table.Store(immutable.NewMap(&uint64Hasher{}))
	return p
}

// Len returns the number of distinct values in the pool.
func (p *Pool) Len() int {
	n := 0
	for itr := p.table.Load().Iterator(); !itr.Done(); {
		_, v := itr.Next()
		n += len(v.([]Value))
	}
	return n
}

// Intern returns the canonical instance of v. The first value interned for
// a given structure becomes its canonical instance.
func (p *Pool) Intern(v Value) Value {
	if v == nil {
		return nil
	}

	h := HashValue(v)
	if other := lookup(p.table.Load(), h, v); other != nil {
		return other
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another writer may have inserted it since the snapshot was read.
	table := p.table.Load()
	if other := lookup(table, h, v); other != nil {
		return other
	}

	var bucket []Value
	if b, ok := table.Get(h); ok {
		bucket = b.([]Value)
	}
	bucket = append(bucket[:len(bucket):len(bucket)], v)
	p.table.Store(table.Set(h, bucket))
	return v
}

func lookup(table *immutable.Map, h uint64, v Value) Value {
	b, ok := table.Get(h)
	if !ok {
		return nil
	}
	for _, other := range b.([]Value) {
		if CompareValue(v, other) == 0 {
			return other
		}
	}
	return nil
}

// HashValue returns a structural hash of v. Values for which CompareValue
// returns zero hash equally.
func HashValue(v Value) uint64 {
	d := xxhash.New()
	hashValue(d, v)
	return d.Sum64()
}

func hashValue(d *xxhash.Digest, v Value) {
	var buf [8]byte
	writeUint := func(n uint64) {
		binary.LittleEndian.PutUint64(buf[:], n)
		d.Write(buf[:])
	}

	writeUint(uint64(valueKind(v)))
	switch v := v.(type) {
	case *ConstantExpr:
		writeUint(uint64(v.Width))
		writeUint(v.Value)
		for _, w := range v.Hi {
			writeUint(w)
		}
	case *FConstantExpr:
		writeUint(uint64(v.Format))
		writeUint(v.Bits)
	case *ReadExpr:
		writeUint(v.Array.ID)
		writeUint(uint64(v.Array.Size))
		d.WriteString(v.Array.Name)
	case *ExtractExpr:
		writeUint(uint64(v.Offset))
		writeUint(uint64(v.Width))
	case *CastExpr:
		writeUint(uint64(v.Width))
		writeUint(boolBit(v.Signed))
	case *BinaryExpr:
		writeUint(uint64(v.Op))
	case *FCmpExpr:
		writeUint(uint64(v.Pred))
	case *FToIExpr:
		writeUint(uint64(v.Width))
		writeUint(boolBit(v.Signed))
	case *FBinaryExpr:
		writeUint(uint64(v.Op))
	case *FConvertExpr:
		writeUint(uint64(v.Format))
	case *IToFExpr:
		writeUint(uint64(v.Format))
		writeUint(boolBit(v.Signed))
	case *FFromBitsExpr:
		writeUint(uint64(v.Format))
	case *ConcatExpr, *NotExpr, *IteExpr, *FBitsExpr, *FIteExpr:
		// structure only
	default:
		panic(fmt.Sprintf("glee.HashValue: unexpected value: %T", v))
	}

	for _, child := range Children(v) {
		hashValue(d, child)
	}
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// uint64Hasher hashes 64-bit unsigned integers. Implements immutable.Hasher.
type uint64Hasher struct{}

func (h *uint64Hasher) Hash(key interface{}) uint32 {
	return foldHash(key.(uint64))
}

func (h *uint64Hasher) Equal(a, b interface{}) bool {
	return a.(uint64) == b.(uint64)
}
