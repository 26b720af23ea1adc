package store

// treeDepth partitions a logical block index k into the indirection depth
// (0..3) that addresses it and k's offset within that depth's tree, per
// spec.md §3 invariant 7 / §4.D.
func (s *Store) treeDepth(k uint64) (depth int, localK uint64, err error) {
	f := s.fanOut()
	s0 := uint64(1)
	s1 := f
	s2 := f * f
	s3 := f * f * f

	switch {
	case k < s0:
		return 0, k, nil
	case k < s0+s1:
		return 1, k - s0, nil
	case k < s0+s1+s2:
		return 2, k - s0 - s1, nil
	case k < s0+s1+s2+s3:
		return 3, k - s0 - s1 - s2, nil
	default:
		return 0, 0, NewOutOfRangeError("logical block", k, s0+s1+s2+s3)
	}
}

// maxLogicalBlocks is the largest addressable logical block count, S0+S1+S2+S3.
func (s *Store) maxLogicalBlocks() uint64 {
	f := s.fanOut()
	return 1 + f + f*f + f*f*f
}

// digits returns the depth base-F digits of k, most significant first —
// the chain of pointer-block slot indices from root to leaf.
func digits(k, f uint64, depth int) []uint64 {
	idx := make([]uint64, depth)
	div := uint64(1)
	for i := 1; i < depth; i++ {
		div *= f
	}
	for lvl := 0; lvl < depth; lvl++ {
		idx[lvl] = k / div
		k %= div
		if div > 1 {
			div /= f
		}
	}
	return idx
}

// derefSlot reads slot idx of pointer block g, treating g==0 (unallocated
// root) as an all-zero block without dereferencing the reserved block 0.
func (s *Store) derefSlot(g, idx uint64) (uint64, error) {
	if g == 0 {
		return 0, nil
	}
	pb, err := s.PointerBlockView(g)
	if err != nil {
		return 0, err
	}
	return pb.Slot(idx), nil
}

// resolve maps (descriptor, logical block index) to a global block index by
// walking the 0/1/2/3-level pointer tree, without mutation. Returns 0 if the
// path crosses an unallocated slot.
func (s *Store) resolve(desc DescriptorView, k uint64) (uint64, error) {
	depth, localK, err := s.treeDepth(k)
	if err != nil {
		return 0, err
	}
	if depth == 0 {
		return desc.Ptr(0), nil
	}

	f := s.fanOut()
	idx := digits(localK, f, depth)
	cur := desc.Ptr(depth)
	for lvl := 0; lvl < depth; lvl++ {
		cur, err = s.derefSlot(cur, idx[lvl])
		if err != nil {
			return 0, err
		}
	}
	return cur, nil
}
