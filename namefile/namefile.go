// Package namefile implements the name-block chain referenced by
// Descriptor.NamePtr but left out of the core store package: spec.md
// scopes naming out of the core, but original_source/TTFileSystem's
// NameBlock (next num_t; data [Size]byte) is still part of the design
// this package was distilled from, so it lives here instead of being
// dropped.
package namefile

import (
	"encoding/binary"

	"github.com/blockfs-go/blockfs/store"
)

// nextFieldSize is the width of the "next" pointer stored at the front of
// every name block; the remainder of the block holds name bytes,
// mirroring the original NameBlock layout (next num_t; data
// [BlockSize-pointer_width]byte).
const nextFieldSize = 8

func payloadSize(s *store.Store) int {
	return int(s.Params().BlockSize) - nextFieldSize
}

func readBlock(s *store.Store, g uint64) (next uint64, data []byte, err error) {
	b, err := s.Block(g)
	if err != nil {
		return 0, nil, err
	}
	return binary.LittleEndian.Uint64(b[:nextFieldSize]), b[nextFieldSize:], nil
}

func writeNext(s *store.Store, g, next uint64) error {
	b, err := s.Block(g)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[:nextFieldSize], next)
	return nil
}

// SetName allocates a chain of name blocks long enough to hold name and
// writes the chain head into the descriptor's NamePtr. Any existing chain
// must be freed first with ClearName; SetName does not do this itself.
func SetName(s *store.Store, h store.Handle, name string) error {
	desc, err := s.Descriptor(h)
	if err != nil {
		return err
	}
	remaining := []byte(name)
	chunk := payloadSize(s)

	var head, prevG uint64
	for {
		g, err := s.AllocateBlock()
		if err != nil {
			return err
		}
		if head == 0 {
			head = g
		} else if err := writeNext(s, prevG, g); err != nil {
			return err
		}

		n := len(remaining)
		if n > chunk {
			n = chunk
		}
		b, err := s.Block(g)
		if err != nil {
			return err
		}
		copy(b[nextFieldSize:], remaining[:n])
		remaining = remaining[n:]
		prevG = g

		if len(remaining) == 0 {
			if err := writeNext(s, g, 0); err != nil {
				return err
			}
			break
		}
	}

	desc.SetNamePtr(head)
	return nil
}

// Name walks the chain rooted at the descriptor's NamePtr and reassembles
// the stored name. Returns "" if NamePtr is 0 (unnamed).
func Name(s *store.Store, h store.Handle) (string, error) {
	desc, err := s.Descriptor(h)
	if err != nil {
		return "", err
	}
	g := desc.NamePtr()
	if g == 0 {
		return "", nil
	}
	var out []byte
	for g != 0 {
		next, data, err := readBlock(s, g)
		if err != nil {
			return "", err
		}
		end := len(data)
		if z := indexZero(data); z >= 0 && next == 0 {
			end = z
		}
		out = append(out, data[:end]...)
		g = next
	}
	return string(out), nil
}

// indexZero finds the first zero byte in a block's final payload chunk so
// the trailing unused bytes of the last block in a chain aren't included
// in the reconstructed name. Returns -1 if there is no zero byte (the name
// fills the block exactly).
func indexZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// ClearName frees every block in the chain rooted at the descriptor's
// NamePtr and resets NamePtr to 0. Callers that set a name must call this
// before store.Delete, which is not responsible for the name chain.
func ClearName(s *store.Store, h store.Handle) error {
	desc, err := s.Descriptor(h)
	if err != nil {
		return err
	}
	g := desc.NamePtr()
	for g != 0 {
		next, _, err := readBlock(s, g)
		if err != nil {
			return err
		}
		if err := s.FreeBlock(g); err != nil {
			return err
		}
		g = next
	}
	desc.SetNamePtr(0)
	return nil
}
