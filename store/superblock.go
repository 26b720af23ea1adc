package store

import "encoding/binary"

// SuperBlockView is a mutable view into one super-block's accounting and
// bit-vector free map. Grounded on the bit-scan shape of the teacher's
// util/bitmap.Bitmap (byte-at-a-time scan, 0xFF short-circuit), adapted to
// operate directly on a slice of the store's shared backing buffer instead
// of an owned copy, since the store is one contiguous allocation (spec.md
// §5: no further allocations during operation).
type SuperBlockView struct {
	s   *Store
	off uint64 // offset of this super-block's taken_amount word
}

func (s *Store) superBlockOffset(j uint64) (uint64, error) {
	if j >= s.params.SuperBlockCount {
		return 0, NewOutOfRangeError("super-block", j, s.params.SuperBlockCount)
	}
	return s.superBlocksOffset + j*s.superBlockStride, nil
}

// superBlock returns a view over super-block j, panicking with an
// OutOfRangeError if j >= SuperBlockCount.
func (s *Store) superBlock(j uint64) SuperBlockView {
	off, err := s.superBlockOffset(j)
	if err != nil {
		// Callers of superBlock are internal and always pre-validate j
		// against SuperBlockCount (derived from a global index already
		// checked against BlockCount); a panic here indicates a bug in
		// this package, not bad external input.
		panic(err)
	}
	return SuperBlockView{s: s, off: off}
}

func (sb SuperBlockView) takenAmount() uint64 {
	return binary.LittleEndian.Uint64(sb.s.buf[sb.off : sb.off+8])
}

func (sb SuperBlockView) setTakenAmount(v uint64) {
	binary.LittleEndian.PutUint64(sb.s.buf[sb.off:sb.off+8], v)
}

// TakenAmount returns the count of allocated blocks in this super-block.
func (sb SuperBlockView) TakenAmount() uint64 {
	return sb.takenAmount()
}

func (sb SuperBlockView) flagsBytes() []byte {
	start := sb.off + 8
	end := start + sb.s.params.SuperBlockSize/8
	return sb.s.buf[start:end]
}

// globalIndex converts intra-super-block index i to its global block index.
func (sb SuperBlockView) globalIndex(i uint64) uint64 {
	j := (sb.off - sb.s.superBlocksOffset) / sb.s.superBlockStride
	return j*sb.s.params.SuperBlockSize + i
}

// IsTaken reports whether intra-super-block index i is allocated.
func (sb SuperBlockView) IsTaken(i uint64) bool {
	byteNumber, bitNumber := i/8, i%8
	b := sb.flagsBytes()
	return b[byteNumber]&(1<<bitNumber) != 0
}

// alloc marks intra-super-block index i as taken.
func (sb SuperBlockView) alloc(i uint64) error {
	if i >= sb.s.params.SuperBlockSize {
		return NewOutOfRangeError("super-block bit", i, sb.s.params.SuperBlockSize)
	}
	if sb.IsTaken(i) {
		return &DoubleAllocError{GlobalIndex: sb.globalIndex(i)}
	}
	byteNumber, bitNumber := i/8, i%8
	b := sb.flagsBytes()
	b[byteNumber] |= 1 << bitNumber
	sb.setTakenAmount(sb.takenAmount() + 1)
	return nil
}

// free marks intra-super-block index i as free.
func (sb SuperBlockView) free(i uint64) error {
	if i >= sb.s.params.SuperBlockSize {
		return NewOutOfRangeError("super-block bit", i, sb.s.params.SuperBlockSize)
	}
	if !sb.IsTaken(i) {
		return &DoubleFreeError{GlobalIndex: sb.globalIndex(i)}
	}
	byteNumber, bitNumber := i/8, i%8
	b := sb.flagsBytes()
	b[byteNumber] &^= 1 << bitNumber
	sb.setTakenAmount(sb.takenAmount() - 1)
	return nil
}

// firstFree returns the smallest i with bit i clear, or SuperBlockSize if
// saturated. Scans byte-at-a-time, skipping bytes equal to 0xFF.
func (sb SuperBlockView) firstFree() uint64 {
	b := sb.flagsBytes()
	size := sb.s.params.SuperBlockSize
	for byteIdx, v := range b {
		if v == 0xff {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			if v&(1<<bit) == 0 {
				return uint64(byteIdx)*8 + bit
			}
		}
	}
	return size
}
