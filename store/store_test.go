package store

import "testing"

func newTestStore(t *testing.T, p Params) *Store {
	t.Helper()
	s, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func defaultParams() Params {
	return Params{BlockSize: 4096, SuperBlockSize: 4096, SuperBlockCount: 256}
}

func TestNewValidatesParams(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"zero block size", Params{BlockSize: 0, SuperBlockSize: 8, SuperBlockCount: 1}},
		{"block size not multiple of pointer width", Params{BlockSize: 10, SuperBlockSize: 8, SuperBlockCount: 1}},
		{"super block size not multiple of 8", Params{BlockSize: 64, SuperBlockSize: 7, SuperBlockCount: 1}},
		{"zero super block count", Params{BlockSize: 64, SuperBlockSize: 8, SuperBlockCount: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.p); err == nil {
				t.Fatalf("expected validation error, got nil")
			}
		})
	}
}

func TestNewDefaultDescriptorCount(t *testing.T) {
	s := newTestStore(t, Params{BlockSize: 64, SuperBlockSize: 8, SuperBlockCount: 4})
	want := uint64(8 * 4 / 4)
	if got := s.Header().DescriptorCount(); got != want {
		t.Fatalf("DescriptorCount = %d, want %d", got, want)
	}
}

func TestReservedRootAllocated(t *testing.T) {
	s := newTestStore(t, defaultParams())
	if !s.superBlock(0).IsTaken(0) {
		t.Fatalf("block 0 should be permanently allocated")
	}
	if got, want := s.Payload(), uint64(1); got != want {
		t.Fatalf("Payload() = %d, want %d", got, want)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	s := newTestStore(t, defaultParams())
	h := s.Header()
	if h.BlockSize() != 4096 || h.SuperBlockSize() != 4096 || h.SuperBlockCount() != 256 {
		t.Fatalf("unexpected header values: %+v", h)
	}
	var zero [16]byte
	id := h.VolumeID()
	allZero := true
	for i, b := range id {
		if b != zero[i] {
			allZero = false
		}
	}
	if allZero {
		t.Fatalf("volume id should not be all-zero")
	}
}

// TestTinyFile is spec.md §8 scenario 1.
func TestTinyFile(t *testing.T) {
	s := newTestStore(t, defaultParams())
	f0, err := s.FileAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Create(f0); err != nil {
		t.Fatal(err)
	}
	if err := s.Resize(f0, 3675); err != nil {
		t.Fatal(err)
	}
	n, err := s.AllocatedBlockCount(f0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("AllocatedBlockCount = %d, want 1", n)
	}
	if got := s.Payload(); got != 2 {
		t.Fatalf("Payload = %d, want 2", got)
	}
}

// TestTwoTinyFiles is spec.md §8 scenario 2.
func TestTwoTinyFiles(t *testing.T) {
	s := newTestStore(t, defaultParams())
	for i := uint64(0); i < 2; i++ {
		f, err := s.FileAt(i)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Create(f); err != nil {
			t.Fatal(err)
		}
		if err := s.Resize(f, 3675); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Payload(); got != 3 {
		t.Fatalf("Payload = %d, want 3", got)
	}
}

// TestLargeGrowAndShrink is spec.md §8 scenarios 3 and 4.
func TestLargeGrowAndShrink(t *testing.T) {
	s := newTestStore(t, defaultParams())
	f0, _ := s.FileAt(0)
	if err := s.Create(f0); err != nil {
		t.Fatal(err)
	}

	const big = 3 * 1 << 30
	if err := s.Resize(f0, big); err != nil {
		t.Fatal(err)
	}
	n, _ := s.AllocatedBlockCount(f0)
	if n != 786432 {
		t.Fatalf("AllocatedBlockCount = %d, want 786432", n)
	}
	f := s.fanOut()
	wantPayload := expectedPayloadForSingleFile(n, f)
	if got := s.Payload(); got != wantPayload {
		t.Fatalf("Payload after grow = %d, want %d", got, wantPayload)
	}

	if err := s.Resize(f0, 3675); err != nil {
		t.Fatal(err)
	}
	n, _ = s.AllocatedBlockCount(f0)
	if n != 1 {
		t.Fatalf("AllocatedBlockCount after shrink = %d, want 1", n)
	}
	if got := s.Payload(); got != 2 {
		t.Fatalf("Payload after shrink = %d, want 2", got)
	}
	desc, _ := s.descriptor(0)
	if desc.Ptr(1) != 0 || desc.Ptr(2) != 0 || desc.Ptr(3) != 0 {
		t.Fatalf("expected ptr[1..3] to be freed and zeroed, got %v %v %v", desc.Ptr(1), desc.Ptr(2), desc.Ptr(3))
	}
}

// TestManySmallFiles is spec.md §8 scenario 5.
func TestManySmallFiles(t *testing.T) {
	s := newTestStore(t, defaultParams())
	const count = 512
	handles := make([]Handle, count)
	for i := 0; i < count; i++ {
		h, err := s.FileAt(uint64(i + 2))
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Create(h); err != nil {
			t.Fatal(err)
		}
		if err := s.Resize(h, 1<<20); err != nil {
			t.Fatal(err)
		}
		handles[i] = h
	}
	for i := count - 1; i >= 0; i-- {
		if err := s.Delete(handles[i]); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Payload(); got != 1 {
		t.Fatalf("Payload after deleting all = %d, want 1", got)
	}
}

// TestSaturation is spec.md §8 scenario 6, at a scale small enough to run
// as a unit test: the descriptor count is raised above the block count so
// that the allocator (not the descriptor table) is what saturates first.
func TestSaturation(t *testing.T) {
	s := newTestStore(t, Params{BlockSize: 64, SuperBlockSize: 8, SuperBlockCount: 2, DescriptorCount: 1000})
	var created []Handle
	var i uint64
	for {
		h, err := s.FileAt(i)
		if err != nil {
			t.Fatalf("ran out of descriptors before running out of space: %v", err)
		}
		if err := s.Create(h); err != nil {
			t.Fatal(err)
		}
		err = s.Resize(h, s.params.BlockSize)
		created = append(created, h)
		if err != nil {
			var oos *OutOfSpaceError
			if !isOutOfSpace(err, &oos) {
				t.Fatalf("expected OutOfSpaceError, got %v", err)
			}
			break
		}
		i++
	}

	if got := s.Payload(); got != s.BlockCount() {
		t.Fatalf("Payload = %d, want fully saturated %d", got, s.BlockCount())
	}

	// The store must remain operational for deletes after saturation.
	for _, h := range created {
		if err := s.Delete(h); err != nil {
			t.Fatalf("delete after saturation: %v", err)
		}
	}
	if got := s.Payload(); got != 1 {
		t.Fatalf("Payload after deleting everything = %d, want 1", got)
	}
}

func isOutOfSpace(err error, target **OutOfSpaceError) bool {
	oos, ok := err.(*OutOfSpaceError)
	if ok {
		*target = oos
	}
	return ok
}

// TestCreateDeleteRoundTrip is spec.md §8 "Create/delete round trip".
func TestCreateDeleteRoundTrip(t *testing.T) {
	s := newTestStore(t, defaultParams())
	before := s.Payload()
	h, _ := s.FileAt(5)
	if err := s.Create(h); err != nil {
		t.Fatal(err)
	}
	if err := s.Resize(h, 10*1024*1024); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(h); err != nil {
		t.Fatal(err)
	}
	if got := s.Payload(); got != before {
		t.Fatalf("Payload after round trip = %d, want %d", got, before)
	}
	exists, _ := s.Exists(h)
	if exists {
		t.Fatalf("file should not exist after delete")
	}
}

// TestResizeIdempotence is spec.md §8 "Resize idempotence".
func TestResizeIdempotence(t *testing.T) {
	s := newTestStore(t, defaultParams())
	h, _ := s.FileAt(0)
	_ = s.Create(h)
	if err := s.Resize(h, 50000); err != nil {
		t.Fatal(err)
	}
	payloadOnce := s.Payload()
	sizeOnce, _ := s.Size(h)
	if err := s.Resize(h, 50000); err != nil {
		t.Fatal(err)
	}
	if got := s.Payload(); got != payloadOnce {
		t.Fatalf("Payload changed on idempotent resize: %d vs %d", got, payloadOnce)
	}
	sizeTwice, _ := s.Size(h)
	if sizeOnce != sizeTwice {
		t.Fatalf("Size changed on idempotent resize: %d vs %d", sizeOnce, sizeTwice)
	}
}

// TestResizeComposition is spec.md §8 "Resize composition".
func TestResizeComposition(t *testing.T) {
	s := newTestStore(t, defaultParams())
	h, _ := s.FileAt(0)
	_ = s.Create(h)
	_ = s.Resize(h, 9000)
	_ = s.Resize(h, 50000)
	composedPayload := s.Payload()
	composedBlocks, _ := s.AllocatedBlockCount(h)

	s2 := newTestStore(t, defaultParams())
	h2, _ := s2.FileAt(0)
	_ = s2.Create(h2)
	_ = s2.Resize(h2, 50000)
	directPayload := s2.Payload()
	directBlocks, _ := s2.AllocatedBlockCount(h2)

	if composedPayload != directPayload {
		t.Fatalf("composed payload = %d, direct = %d", composedPayload, directPayload)
	}
	if composedBlocks != directBlocks {
		t.Fatalf("composed blocks = %d, direct = %d", composedBlocks, directBlocks)
	}
}

// TestGrowShrinkRoundTrip is spec.md §8 "Grow/shrink round trip".
func TestGrowShrinkRoundTrip(t *testing.T) {
	s := newTestStore(t, defaultParams())
	h, _ := s.FileAt(0)
	_ = s.Create(h)
	const a = 9000
	const b = 50 * 1024 * 1024

	if err := s.Resize(h, a); err != nil {
		t.Fatal(err)
	}
	payloadA := s.Payload()

	if err := s.Resize(h, b); err != nil {
		t.Fatal(err)
	}
	if err := s.Resize(h, a); err != nil {
		t.Fatal(err)
	}
	if got := s.Payload(); got != payloadA {
		t.Fatalf("Payload after grow/shrink round trip = %d, want %d", got, payloadA)
	}
}
