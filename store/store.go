package store

import (
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	headerSize     = 64 // 4 uint64 parameter words + 4 uint64 user-data words
	descriptorSize = 64 // 8-byte attributes + 24-byte header + 32-byte data (4 ptrs)

	headerUserDataOffset = 32
	headerUserDataWords  = 4

	descAttributesOffset = 0
	descHeaderOffset     = 8
	descDataOffset       = 32

	descSizeOffset         = descHeaderOffset + 0
	descCreationTimeOffset = descHeaderOffset + 8
	descNamePtrOffset      = descHeaderOffset + 16
)

// Store owns a single contiguous byte region partitioned into a header, a
// fixed descriptor table, and a fixed array of super-blocks. It is the
// concrete implementation of spec component A (layout/accessors) plus the
// construction-time wiring for B-G.
type Store struct {
	params Params
	buf    []byte
	log    *logrus.Entry

	descriptorsOffset   uint64
	superBlocksOffset   uint64
	superBlockStride    uint64
	superBlockHeaderLen uint64
}

// New constructs a Store: the header is populated, all super-blocks are
// zeroed, all descriptors are zeroed, then global block 0 is marked
// permanently allocated (spec invariant 1 - the reserved null sentinel).
func New(p Params) (*Store, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	superBlockHeaderLen := uint64(8) + p.SuperBlockSize/8
	superBlockStride := superBlockHeaderLen + p.SuperBlockSize*p.BlockSize
	descriptorsOffset := uint64(headerSize)
	superBlocksOffset := descriptorsOffset + p.DescriptorCount*descriptorSize
	totalSize := superBlocksOffset + p.SuperBlockCount*superBlockStride

	logger := p.Logger
	if logger == nil {
		logger = logrus.New()
	}

	s := &Store{
		params:              p,
		buf:                 make([]byte, totalSize),
		log:                 logger.WithField("component", "store"),
		descriptorsOffset:   descriptorsOffset,
		superBlocksOffset:   superBlocksOffset,
		superBlockStride:    superBlockStride,
		superBlockHeaderLen: superBlockHeaderLen,
	}

	binary.LittleEndian.PutUint64(s.buf[0:8], p.BlockSize)
	binary.LittleEndian.PutUint64(s.buf[8:16], p.SuperBlockSize)
	binary.LittleEndian.PutUint64(s.buf[16:24], p.DescriptorCount)
	binary.LittleEndian.PutUint64(s.buf[24:32], p.SuperBlockCount)

	volumeID := uuid.New()
	idBytes, _ := volumeID.MarshalBinary()
	copy(s.buf[headerUserDataOffset+2*8:headerUserDataOffset+4*8], idBytes)

	s.warnIfMisaligned()

	// Reserved root: global block 0 lives in super-block 0 and is
	// permanently allocated so pointer blocks can use 0 as null.
	if err := s.superBlock(0).alloc(0); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"block_size":        p.BlockSize,
		"super_block_size":  p.SuperBlockSize,
		"super_block_count": p.SuperBlockCount,
		"descriptor_count":  p.DescriptorCount,
		"total_bytes":       totalSize,
		"volume_id":         volumeID.String(),
	}).Debug("store constructed")

	return s, nil
}

// TotalSize is the number of bytes in the backing byte region.
func (s *Store) TotalSize() uint64 {
	return uint64(len(s.buf))
}

// Raw exposes the store's entire backing byte region for external
// collaborators (persist) that snapshot or restore it wholesale. There is
// no partial/streaming accessor: the core's layout is only meaningful as
// one contiguous region.
func (s *Store) Raw() []byte {
	return s.buf
}

// Params returns a copy of the parameters the store was constructed with
// (DescriptorCount already resolved to its effective value).
func (s *Store) Params() Params {
	return s.params
}

func (s *Store) fanOut() uint64 {
	return s.params.fanOut()
}

// HeaderView reads the fixed, construction-time parameters and opaque user
// words recorded in the store's header.
type HeaderView struct {
	s *Store
}

// Header returns a view over the store's singleton header.
func (s *Store) Header() HeaderView {
	return HeaderView{s: s}
}

func (h HeaderView) BlockSize() uint64       { return binary.LittleEndian.Uint64(h.s.buf[0:8]) }
func (h HeaderView) SuperBlockSize() uint64  { return binary.LittleEndian.Uint64(h.s.buf[8:16]) }
func (h HeaderView) DescriptorCount() uint64 { return binary.LittleEndian.Uint64(h.s.buf[16:24]) }
func (h HeaderView) SuperBlockCount() uint64 { return binary.LittleEndian.Uint64(h.s.buf[24:32]) }

// UserData returns opaque user word i (0..3).
func (h HeaderView) UserData(i int) uint64 {
	off := headerUserDataOffset + uint64(i)*8
	return binary.LittleEndian.Uint64(h.s.buf[off : off+8])
}

// VolumeID returns the UUID generated at construction and packed into user
// words 2 and 3 of the header.
func (h HeaderView) VolumeID() uuid.UUID {
	b := h.s.buf[headerUserDataOffset+2*8 : headerUserDataOffset+4*8]
	id, _ := uuid.FromBytes(b)
	return id
}
