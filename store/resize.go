package store

import "github.com/sirupsen/logrus"

// ceilDivBlocks returns ceil(bytes/BlockSize), the number of data blocks a
// file of the given byte size requires (spec.md §3 invariant 5).
func (s *Store) ceilDivBlocks(bytes uint64) uint64 {
	if bytes == 0 {
		return 0
	}
	bs := s.params.BlockSize
	return (bytes + bs - 1) / bs
}

// ensureChild returns the child block at slot i of pointer block pb,
// allocating one lazily if the slot is currently zero. Interior children
// are allocated as zeroed pointer blocks (spec.md §4.E note: zeroing the
// whole block on allocation is an admissible strategy alongside
// frontier-only zeroing, and is what this implementation uses).
func (s *Store) ensureChild(pb PointerBlockView, i uint64, leaf bool) (uint64, error) {
	child := pb.Slot(i)
	if child != 0 {
		return child, nil
	}
	var zeroPrefix uint64
	if !leaf {
		zeroPrefix = s.params.BlockSize
	}
	g, err := s.allocateSingleBlock(zeroPrefix)
	if err != nil {
		return 0, err
	}
	pb.SetSlot(i, g)
	return g, nil
}

// appendAt appends one data block at logical index k, per spec.md §4.E
// "Append one block at logical index k". k must equal the file's current
// block count (appends are strictly increasing).
func (s *Store) appendAt(desc DescriptorView, k uint64) error {
	depth, localK, err := s.treeDepth(k)
	if err != nil {
		return err
	}

	if depth == 0 {
		g, err := s.allocateSingleBlock(0)
		if err != nil {
			return err
		}
		desc.setPtr(0, g)
		return nil
	}

	root := desc.Ptr(depth)
	if root == 0 {
		root, err = s.allocateSingleBlock(s.params.BlockSize)
		if err != nil {
			return err
		}
		desc.setPtr(depth, root)
	}

	f := s.fanOut()
	idx := digits(localK, f, depth)
	cur := root
	for lvl := 0; lvl < depth; lvl++ {
		pb, err := s.PointerBlockView(cur)
		if err != nil {
			return err
		}
		cur, err = s.ensureChild(pb, idx[lvl], lvl == depth-1)
		if err != nil {
			return err
		}
	}
	return nil
}

// freeAt frees the data block at logical index k and eagerly frees any
// interior pointer block left empty by the free, per spec.md §4.E
// "Free one block at logical index k". k must be the file's current
// highest logical index (N_cur - 1).
func (s *Store) freeAt(desc DescriptorView, k uint64) error {
	depth, localK, err := s.treeDepth(k)
	if err != nil {
		return err
	}

	if depth == 0 {
		if g := desc.Ptr(0); g != 0 {
			if err := s.freeSingleBlock(g); err != nil {
				return err
			}
		}
		desc.setPtr(0, 0)
		return nil
	}

	root := desc.Ptr(depth)
	if root == 0 {
		return nil
	}

	f := s.fanOut()
	idx := digits(localK, f, depth)

	// Walk root-to-leaf, recording the pointer block visited at each
	// interior level so the unwind below can clear and free them.
	ptrBlocks := make([]uint64, depth)
	cur := root
	for lvl := 0; lvl < depth; lvl++ {
		ptrBlocks[lvl] = cur
		pb, err := s.PointerBlockView(cur)
		if err != nil {
			return err
		}
		cur = pb.Slot(idx[lvl])
	}

	leaf := cur
	if leaf != 0 {
		if err := s.freeSingleBlock(leaf); err != nil {
			return err
		}
	}

	// Unwind: clear this level's slot; if it was slot 0 (the frontier
	// guarantee: appends fill left-to-right, so slot 0 clearing last
	// means every higher slot was already zero) the block is now empty,
	// free it, and keep unwinding to clear the parent's reference.
	for lvl := depth - 1; lvl >= 0; lvl-- {
		pb, err := s.PointerBlockView(ptrBlocks[lvl])
		if err != nil {
			return err
		}
		pb.SetSlot(idx[lvl], 0)
		if idx[lvl] != 0 {
			break
		}
		if err := s.freeSingleBlock(ptrBlocks[lvl]); err != nil {
			return err
		}
		if lvl == 0 {
			desc.setPtr(depth, 0)
		}
	}
	return nil
}

// Resize matches a descriptor's reachable block set to ceil(targetBytes /
// BlockSize), growing or shrinking block-by-block (spec.md §4.E). On
// OutOfSpace during a grow, the descriptor is left with exactly the blocks
// successfully appended before the failure; Size reflects only what was
// committed, preserving invariant 5.
func (s *Store) Resize(h Handle, targetBytes uint64) error {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return err
	}

	curBytes := desc.Size()
	curN := s.ceilDivBlocks(curBytes)
	newN := s.ceilDivBlocks(targetBytes)

	switch {
	case newN > curN:
		for k := curN; k < newN; k++ {
			if err := s.appendAt(desc, k); err != nil {
				return err
			}
			if k == newN-1 {
				desc.setSize(targetBytes)
			} else {
				desc.setSize((k + 1) * s.params.BlockSize)
			}
		}
	case newN < curN:
		for k := curN; k > newN; k-- {
			idx := k - 1
			if err := s.freeAt(desc, idx); err != nil {
				return err
			}
			if idx == newN {
				desc.setSize(targetBytes)
			} else {
				desc.setSize(idx * s.params.BlockSize)
			}
		}
	default:
		desc.setSize(targetBytes)
	}

	s.log.WithFields(logrus.Fields{
		"descriptor": h.index,
		"from_bytes": curBytes,
		"to_bytes":   targetBytes,
	}).Debug("resized file")
	return nil
}
