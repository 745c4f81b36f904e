package arena

// An Arena is a bump allocator backing every AST node payload, type
// descriptor, symbol, and duplicated string of one compilation.  Allocation
// only ever appends; the whole arena is released in one step when the
// compilation ends.
type Arena struct {
	chunks [][]byte

	// current is the chunk being bumped into; used is the offset of the next
	// free byte within it
	current []byte
	used    int

	// total bytes handed out, for the stats line at verbose log level
	allocated int
}

// ChunkSize is the size of each regular arena chunk.  Requests larger than
// this receive a private chunk of exactly the requested size.
const ChunkSize = 16 * 1024 * 1024

const alignment = 8

// New creates an empty arena.  No chunk is reserved until the first
// allocation.
func New() *Arena {
	return &Arena{}
}

// Alloc returns n zeroed bytes aligned to at least 8 bytes.  The returned
// slice stays valid until Release is called.
func (a *Arena) Alloc(n int) []byte {
	if n < 0 {
		panic("arena: negative allocation")
	}

	a.allocated += n

	// round the request up so the next allocation stays aligned
	rounded := (n + alignment - 1) &^ (alignment - 1)

	if rounded >= ChunkSize {
		// oversized requests get their own chunk and leave the current chunk
		// untouched so its tail is not wasted
		chunk := make([]byte, n)
		a.chunks = append(a.chunks, chunk)
		return chunk
	}

	if a.current == nil || a.used+rounded > len(a.current) {
		a.current = make([]byte, ChunkSize)
		a.chunks = append(a.chunks, a.current)
		a.used = 0
	}

	mem := a.current[a.used : a.used+n : a.used+n]
	a.used += rounded
	return mem
}

// Bytes copies b into the arena and returns the arena-owned copy
func (a *Arena) Bytes(b []byte) []byte {
	mem := a.Alloc(len(b))
	copy(mem, b)
	return mem
}

// Strdup duplicates a string into the arena.  This is the only owning string
// operation in the compiler; every other string is a view over source or
// arena bytes.
func (a *Arena) Strdup(s string) string {
	return string(a.Bytes([]byte(s)))
}

// Allocated reports the total number of bytes handed out so far
func (a *Arena) Allocated() int {
	return a.allocated
}

// Release drops every chunk at once.  Individual objects are never freed.
func (a *Arena) Release() {
	a.chunks = nil
	a.current = nil
	a.used = 0
	a.allocated = 0
}
