package basic

type pair struct {
	a int32
	b int64
}

var table [4]pair

var (
	u8   uint8  = 200
	umax uint64 = 1<<64 - 1
	nilp *pair  = nil
)

var (
	n       = 40
	neg     = -7
	shifted = uint32(1) << 31
	third   = float32(1) / 3
	yes     = 3 > 2
	s       = "hello"
	m       = n + 2
	p       = &table[2]
	q       = &table[1].b
	fn      = helper
)

func helper() {}
