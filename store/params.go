package store

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// pointerWidth is the byte width of a global block index as stored inside a
// pointer block. The core only ever speaks uint64 global indices.
const pointerWidth = 8

// Params collects the construction-time parameters of a Store, mirroring
// the teacher's ext4.Params: a plain exported options struct consumed by a
// constructor, not a flag-parsing framework pulled into the core.
type Params struct {
	// BlockSize is the number of bytes per block. Must be a positive
	// multiple of pointerWidth (8).
	BlockSize uint64
	// SuperBlockSize is the number of blocks per super-block. Must be a
	// multiple of 8 (it is packed into a byte-aligned bit-vector).
	SuperBlockSize uint64
	// SuperBlockCount is the number of super-blocks in the store.
	SuperBlockCount uint64
	// DescriptorCount is the size of the descriptor table. Zero selects
	// the default of SuperBlockSize*SuperBlockCount/4.
	DescriptorCount uint64
	// Logger receives Debug/Warn events from allocation and resize. When
	// Logger is nil, New substitutes a fresh logrus.Logger, scoped with a
	// component field, at construction.
	Logger *logrus.Logger
}

func (p Params) validate() error {
	if p.BlockSize == 0 || p.BlockSize%pointerWidth != 0 {
		return fmt.Errorf("BlockSize must be a positive multiple of %d, got %d", pointerWidth, p.BlockSize)
	}
	if p.SuperBlockSize == 0 || p.SuperBlockSize%8 != 0 {
		return fmt.Errorf("SuperBlockSize must be a positive multiple of 8, got %d", p.SuperBlockSize)
	}
	if p.SuperBlockCount == 0 {
		return fmt.Errorf("SuperBlockCount must be at least 1, got %d", p.SuperBlockCount)
	}
	return nil
}

func (p Params) withDefaults() Params {
	if p.DescriptorCount == 0 {
		p.DescriptorCount = p.SuperBlockSize * p.SuperBlockCount / 4
	}
	return p
}

// fanOut is F, the number of pointer slots per pointer block.
func (p Params) fanOut() uint64 {
	return p.BlockSize / pointerWidth
}
