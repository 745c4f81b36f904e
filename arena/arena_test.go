package arena

import "testing"

func TestAllocZeroedAndAligned(t *testing.T) {
	a := New()

	for _, n := range []int{1, 7, 8, 9, 1024} {
		mem := a.Alloc(n)
		if len(mem) != n {
			t.Fatalf("Alloc(%d) returned %d bytes", n, len(mem))
		}
		for i, b := range mem {
			if b != 0 {
				t.Fatalf("Alloc(%d): byte %d not zeroed", n, i)
			}
		}
	}

	// two small allocations must not overlap
	x := a.Alloc(3)
	y := a.Alloc(3)
	x[0] = 1
	if y[0] != 0 {
		t.Fatal("allocations overlap")
	}
}

func TestOversizedAllocation(t *testing.T) {
	a := New()
	small := a.Alloc(16)
	big := a.Alloc(ChunkSize + 1)
	if len(big) != ChunkSize+1 {
		t.Fatalf("oversized alloc returned %d bytes", len(big))
	}

	// the oversized chunk must not disturb the running chunk
	next := a.Alloc(16)
	small[0] = 0xff
	if next[0] != 0 {
		t.Fatal("oversized allocation corrupted chunk state")
	}
}

func TestStrdup(t *testing.T) {
	a := New()
	src := []byte("Hello")
	dup := a.Strdup(string(src))
	src[0] = 'J'
	if dup != "Hello" {
		t.Fatalf("Strdup returned %q", dup)
	}
}

func TestRelease(t *testing.T) {
	a := New()
	a.Alloc(100)
	if a.Allocated() != 100 {
		t.Fatalf("Allocated = %d", a.Allocated())
	}
	a.Release()
	if a.Allocated() != 0 {
		t.Fatal("Release did not reset stats")
	}
}
