package store

// Handle is a file reference: a descriptor index bound to a Store through
// the receiver of the methods below, rather than a (store, index) pair
// carried by value (spec.md §6 describes the pair; Go idiom puts the store
// first as the method receiver instead).
type Handle struct {
	index uint64
}

// FileAt returns a handle to descriptor i. There is no allocation policy
// for descriptor indices at this level (spec.md §4.G) — callers pick an
// index and Create checks EX to decide whether it is legal.
func (s *Store) FileAt(i uint64) (Handle, error) {
	if i >= s.params.DescriptorCount {
		return Handle{}, NewOutOfRangeError("descriptor", i, s.params.DescriptorCount)
	}
	return Handle{index: i}, nil
}

// Index returns the descriptor index this handle refers to.
func (h Handle) Index() uint64 { return h.index }

// Exists reports whether the handle's EX bit is set.
func (s *Store) Exists(h Handle) (bool, error) {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return false, err
	}
	return desc.Exists(), nil
}

// Create marks a descriptor as live and zeroes its header and data fields.
// Fails AlreadyExists if EX is already set. Security attributes (flags
// bits other than EX, group id, user id) are left untouched — callers set
// them before or after Create as needed.
func (s *Store) Create(h Handle) error {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return err
	}
	if desc.Exists() {
		return &AlreadyExistsError{DescriptorIndex: h.index}
	}
	desc.zeroHeaderAndData()
	desc.setCreationTime(uint64(now().UnixNano()))
	desc.SetFlags(desc.Flags() | FlagEX)
	s.log.WithField("descriptor", h.index).Debug("created file")
	return nil
}

// Delete frees every reachable block, zeroes the data fields, and clears
// EX. A no-op if the descriptor is not live. Only the EX bit is cleared
// (a bitwise &^=, resolving spec.md §9's open question against the
// source's logical-NOT bug).
func (s *Store) Delete(h Handle) error {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return err
	}
	if !desc.Exists() {
		return nil
	}
	if err := s.Resize(h, 0); err != nil {
		return err
	}
	desc.SetFlags(desc.Flags() &^ FlagEX)
	s.log.WithField("descriptor", h.index).Debug("deleted file")
	return nil
}

// AllocatedBlockCount returns ceil(size/BlockSize) for the handle's
// descriptor.
func (s *Store) AllocatedBlockCount(h Handle) (uint64, error) {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return 0, err
	}
	return s.ceilDivBlocks(desc.Size()), nil
}

// Size returns the descriptor's recorded byte size.
func (s *Store) Size(h Handle) (uint64, error) {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return 0, err
	}
	return desc.Size(), nil
}

// BlockAt returns a reference to the k-th logical data block of the handle's
// file. Fails OutOfRange if k is not currently a reachable logical index.
func (s *Store) BlockAt(h Handle, k uint64) ([]byte, error) {
	desc, err := s.descriptor(h.index)
	if err != nil {
		return nil, err
	}
	n := s.ceilDivBlocks(desc.Size())
	if k >= n {
		return nil, NewOutOfRangeError("logical block", k, n)
	}
	g, err := s.resolve(desc, k)
	if err != nil {
		return nil, err
	}
	return s.Block(g)
}

// Descriptor exposes the handle's underlying descriptor view for callers
// (namefile, dirfs) that need attribute/name-pointer access beyond the
// core's own handle API.
func (s *Store) Descriptor(h Handle) (DescriptorView, error) {
	return s.descriptor(h.index)
}

// ListLive returns a handle for every descriptor with EX set, in
// ascending index order.
func (s *Store) ListLive() []Handle {
	var live []Handle
	for i := uint64(0); i < s.params.DescriptorCount; i++ {
		desc, err := s.descriptor(i)
		if err != nil {
			break
		}
		if desc.Exists() {
			live = append(live, Handle{index: i})
		}
	}
	return live
}
