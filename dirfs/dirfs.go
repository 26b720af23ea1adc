// Package dirfs implements the directory convention referenced by
// spec.md §6 but left for an external collaborator to build: a directory
// is an ordinary descriptor with the DR flag set, whose data blocks hold
// an array of child descriptor indices instead of file bytes.
package dirfs

import (
	"encoding/binary"
	"fmt"

	"github.com/blockfs-go/blockfs/namefile"
	"github.com/blockfs-go/blockfs/store"
)

const slotWidth = 8

// notADirectoryError is returned by operations that require DR set.
type notADirectoryError struct {
	Index uint64
}

func (e *notADirectoryError) Error() string {
	return fmt.Sprintf("descriptor %d is not a directory", e.Index)
}

func requireDirectory(s *store.Store, h store.Handle) (store.DescriptorView, error) {
	desc, err := s.Descriptor(h)
	if err != nil {
		return store.DescriptorView{}, err
	}
	if desc.Flags()&store.FlagDR == 0 {
		return store.DescriptorView{}, &notADirectoryError{Index: h.Index()}
	}
	return desc, nil
}

func slotsPerBlock(s *store.Store) uint64 {
	return s.Params().BlockSize / slotWidth
}

// List returns a handle for every non-zero child slot in h's data blocks,
// stopping at the first zero slot encountered (matching the literal
// "stops at the first zero slot" directory convention). This relies on a
// directory's data blocks reading as zero until a child is linked into
// them; store only zeroes interior pointer blocks, not leaf data blocks,
// so a directory must never reuse a block that held unrelated file data
// without going through Mkdir/appendChild first.
func List(s *store.Store, h store.Handle) ([]store.Handle, error) {
	if _, err := requireDirectory(s, h); err != nil {
		return nil, err
	}
	n, err := s.AllocatedBlockCount(h)
	if err != nil {
		return nil, err
	}
	fanOut := slotsPerBlock(s)

	var children []store.Handle
outer:
	for k := uint64(0); k < n; k++ {
		b, err := s.BlockAt(h, k)
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < fanOut; i++ {
			off := i * slotWidth
			idx := binary.LittleEndian.Uint64(b[off : off+slotWidth])
			if idx == 0 {
				break outer
			}
			child, err := s.FileAt(idx)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	}
	return children, nil
}

// appendChild writes childIndex into the first zero slot of h's data
// blocks, growing h by one block if every existing slot is occupied.
func appendChild(s *store.Store, h store.Handle, childIndex uint64) error {
	fanOut := slotsPerBlock(s)
	n, err := s.AllocatedBlockCount(h)
	if err != nil {
		return err
	}
	for k := uint64(0); k < n; k++ {
		b, err := s.BlockAt(h, k)
		if err != nil {
			return err
		}
		for i := uint64(0); i < fanOut; i++ {
			off := i * slotWidth
			if binary.LittleEndian.Uint64(b[off:off+slotWidth]) == 0 {
				binary.LittleEndian.PutUint64(b[off:off+slotWidth], childIndex)
				return nil
			}
		}
	}
	// every existing block is full (or there were none yet): grow by one
	// block and write into its first slot.
	size, err := s.Size(h)
	if err != nil {
		return err
	}
	blockSize := s.Params().BlockSize
	if err := s.Resize(h, size+blockSize); err != nil {
		return err
	}
	b, err := s.BlockAt(h, n)
	if err != nil {
		return err
	}
	clear(b)
	binary.LittleEndian.PutUint64(b[0:slotWidth], childIndex)
	return nil
}

// Mkdir turns descriptor h into an empty, named directory: Create, set
// DR, name it, and size it to hold at least one block of child slots.
func Mkdir(s *store.Store, h store.Handle, name string) error {
	if err := s.Create(h); err != nil {
		return err
	}
	desc, err := s.Descriptor(h)
	if err != nil {
		return err
	}
	desc.SetFlags(desc.Flags() | store.FlagDR)
	if err := s.Resize(h, s.Params().BlockSize); err != nil {
		return err
	}
	b, err := s.BlockAt(h, 0)
	if err != nil {
		return err
	}
	clear(b)
	if name != "" {
		if err := namefile.SetName(s, h, name); err != nil {
			return err
		}
	}
	return nil
}

// Link adds child as an entry of the directory parent. parent must
// already have DR set (via Mkdir).
func Link(s *store.Store, parent, child store.Handle) error {
	if _, err := requireDirectory(s, parent); err != nil {
		return err
	}
	return appendChild(s, parent, child.Index())
}
