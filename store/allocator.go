package store

import "encoding/binary"

// BlockCount is the total number of allocatable blocks across every
// super-block.
func (s *Store) BlockCount() uint64 {
	return s.params.SuperBlockSize * s.params.SuperBlockCount
}

func (s *Store) blockOffset(global uint64) (uint64, error) {
	if global >= s.BlockCount() {
		return 0, NewOutOfRangeError("block", global, s.BlockCount())
	}
	j := global / s.params.SuperBlockSize
	i := global % s.params.SuperBlockSize
	sbOff, err := s.superBlockOffset(j)
	if err != nil {
		return 0, err
	}
	return sbOff + s.superBlockHeaderLen + i*s.params.BlockSize, nil
}

// Block returns a mutable reference to the raw bytes of global block g.
func (s *Store) Block(g uint64) ([]byte, error) {
	off, err := s.blockOffset(g)
	if err != nil {
		return nil, err
	}
	return s.buf[off : off+s.params.BlockSize], nil
}

// PointerBlockView is the same block, viewed as F global block index slots.
type PointerBlockView struct {
	s     *Store
	bytes []byte
}

// PointerBlockView reinterprets global block g as an array of F pointer
// slots.
func (s *Store) PointerBlockView(g uint64) (PointerBlockView, error) {
	b, err := s.Block(g)
	if err != nil {
		return PointerBlockView{}, err
	}
	return PointerBlockView{s: s, bytes: b}, nil
}

// Slot reads pointer slot i (0 means "unallocated").
func (pb PointerBlockView) Slot(i uint64) uint64 {
	off := i * pointerWidth
	return binary.LittleEndian.Uint64(pb.bytes[off : off+pointerWidth])
}

// SetSlot writes pointer slot i.
func (pb PointerBlockView) SetSlot(i uint64, v uint64) {
	off := i * pointerWidth
	binary.LittleEndian.PutUint64(pb.bytes[off:off+pointerWidth], v)
}

// findFreeBlock returns the smallest global index g such that its
// super-block is not saturated and its bit is clear. First-fit,
// low-address-first, deterministic — load-bearing for the allocation-order
// tests in spec.md §8.
func (s *Store) findFreeBlock() (uint64, error) {
	for j := uint64(0); j < s.params.SuperBlockCount; j++ {
		sb := s.superBlock(j)
		if sb.TakenAmount() >= s.params.SuperBlockSize {
			continue
		}
		i := sb.firstFree()
		return j*s.params.SuperBlockSize + i, nil
	}
	s.log.Warn("allocation failed: store is saturated")
	return 0, &OutOfSpaceError{}
}

// allocateSingleBlock finds a free block, marks it taken, and zeroes the
// first zeroPrefix bytes of it (callers pass the pointer-block width when
// allocating interior nodes so unused slots read as 0).
func (s *Store) allocateSingleBlock(zeroPrefix uint64) (uint64, error) {
	g, err := s.findFreeBlock()
	if err != nil {
		return 0, err
	}
	j := g / s.params.SuperBlockSize
	i := g % s.params.SuperBlockSize
	if err := s.superBlock(j).alloc(i); err != nil {
		return 0, err
	}
	if zeroPrefix > 0 {
		b, err := s.Block(g)
		if err != nil {
			return 0, err
		}
		if zeroPrefix > uint64(len(b)) {
			zeroPrefix = uint64(len(b))
		}
		clear(b[:zeroPrefix])
	}
	s.log.WithField("block", g).Debug("allocated block")
	return g, nil
}

// freeSingleBlock delegates to the owning super-block's free.
func (s *Store) freeSingleBlock(g uint64) error {
	if g >= s.BlockCount() {
		return NewOutOfRangeError("block", g, s.BlockCount())
	}
	j := g / s.params.SuperBlockSize
	i := g % s.params.SuperBlockSize
	if err := s.superBlock(j).free(i); err != nil {
		return err
	}
	s.log.WithField("block", g).Debug("freed block")
	return nil
}

// AllocateBlock hands out one free global block, zeroed, for use by
// external collaborators (namefile's name-block chain) that need raw
// storage outside the descriptor's own indirection tree.
func (s *Store) AllocateBlock() (uint64, error) {
	return s.allocateSingleBlock(s.params.BlockSize)
}

// FreeBlock releases a block obtained from AllocateBlock.
func (s *Store) FreeBlock(g uint64) error {
	return s.freeSingleBlock(g)
}

// Payload is the total allocated blocks across all super-blocks, including
// pointer blocks and the reserved root.
func (s *Store) Payload() uint64 {
	var total uint64
	for j := uint64(0); j < s.params.SuperBlockCount; j++ {
		total += s.superBlock(j).TakenAmount()
	}
	return total
}
