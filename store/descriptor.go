package store

import "encoding/binary"

// Descriptor attribute flag bits (spec.md §6). Only EX is consulted by the
// core; the rest are stored opaquely for higher layers.
const (
	FlagRG byte = 1 << 0 // group read
	FlagWG byte = 1 << 1 // group write
	FlagVG byte = 1 << 2 // group visible
	FlagRE byte = 1 << 3 // everyone read
	FlagWE byte = 1 << 4 // everyone write
	FlagVE byte = 1 << 5 // everyone visible
	FlagDR byte = 1 << 6 // is directory
	FlagEX byte = 1 << 7 // exists / live
)

// DescriptorView is a mutable view into one fixed-size descriptor record
// inside the store's backing byte region.
type DescriptorView struct {
	s   *Store
	off uint64
}

func (s *Store) descriptorOffset(i uint64) (uint64, error) {
	if i >= s.params.DescriptorCount {
		return 0, NewOutOfRangeError("descriptor", i, s.params.DescriptorCount)
	}
	return s.descriptorsOffset + i*descriptorSize, nil
}

// descriptor returns a view over descriptor i, failing OutOfRange if
// i >= DescriptorCount.
func (s *Store) descriptor(i uint64) (DescriptorView, error) {
	off, err := s.descriptorOffset(i)
	if err != nil {
		return DescriptorView{}, err
	}
	return DescriptorView{s: s, off: off}, nil
}

func (d DescriptorView) bytes() []byte { return d.s.buf }

// Flags returns the raw attribute flag byte.
func (d DescriptorView) Flags() byte {
	return d.bytes()[d.off+descAttributesOffset]
}

// SetFlags overwrites the raw attribute flag byte.
func (d DescriptorView) SetFlags(f byte) {
	d.bytes()[d.off+descAttributesOffset] = f
}

// Exists reports whether the descriptor's EX bit is set (spec invariant 4).
func (d DescriptorView) Exists() bool {
	return d.Flags()&FlagEX != 0
}

// GroupID returns the 3-byte group id packed after the flags byte.
func (d DescriptorView) GroupID() [3]byte {
	b := d.bytes()
	off := d.off + descAttributesOffset + 1
	return [3]byte{b[off], b[off+1], b[off+2]}
}

// SetGroupID overwrites the 3-byte group id.
func (d DescriptorView) SetGroupID(g [3]byte) {
	b := d.bytes()
	off := d.off + descAttributesOffset + 1
	b[off], b[off+1], b[off+2] = g[0], g[1], g[2]
}

// UserID returns the 4-byte user id.
func (d DescriptorView) UserID() uint32 {
	off := d.off + descAttributesOffset + 4
	return binary.LittleEndian.Uint32(d.bytes()[off : off+4])
}

// SetUserID overwrites the 4-byte user id.
func (d DescriptorView) SetUserID(id uint32) {
	off := d.off + descAttributesOffset + 4
	binary.LittleEndian.PutUint32(d.bytes()[off:off+4], id)
}

// Size returns the descriptor's recorded byte size. Per SPEC_FULL.md §9
// this is the exact requested size passed to Resize, not rounded up to a
// block multiple.
func (d DescriptorView) Size() uint64 {
	off := d.off + descSizeOffset
	return binary.LittleEndian.Uint64(d.bytes()[off : off+8])
}

func (d DescriptorView) setSize(v uint64) {
	off := d.off + descSizeOffset
	binary.LittleEndian.PutUint64(d.bytes()[off:off+8], v)
}

// CreationTime returns the opaque creation timestamp (Unix nanoseconds).
func (d DescriptorView) CreationTime() uint64 {
	off := d.off + descCreationTimeOffset
	return binary.LittleEndian.Uint64(d.bytes()[off : off+8])
}

func (d DescriptorView) setCreationTime(v uint64) {
	off := d.off + descCreationTimeOffset
	binary.LittleEndian.PutUint64(d.bytes()[off:off+8], v)
}

// NamePtr returns the global block index of the first name block, or 0 if
// the file is unnamed. Maintained entirely by the namefile package.
func (d DescriptorView) NamePtr() uint64 {
	off := d.off + descNamePtrOffset
	return binary.LittleEndian.Uint64(d.bytes()[off : off+8])
}

// SetNamePtr overwrites the name-block chain head.
func (d DescriptorView) SetNamePtr(v uint64) {
	off := d.off + descNamePtrOffset
	binary.LittleEndian.PutUint64(d.bytes()[off:off+8], v)
}

// Ptr returns the global block index rooting the level-deep (0..3)
// indirection tree.
func (d DescriptorView) Ptr(level int) uint64 {
	off := d.off + descDataOffset + uint64(level)*8
	return binary.LittleEndian.Uint64(d.bytes()[off : off+8])
}

func (d DescriptorView) setPtr(level int, v uint64) {
	off := d.off + descDataOffset + uint64(level)*8
	binary.LittleEndian.PutUint64(d.bytes()[off:off+8], v)
}

// zeroHeaderAndData zeroes the header (size, creation_time, name_ptr) and
// data (all four tree roots) fields, per spec.md §4.F create/delete.
func (d DescriptorView) zeroHeaderAndData() {
	b := d.bytes()
	for i := uint64(0); i < 24; i++ {
		b[d.off+descHeaderOffset+i] = 0
	}
	for i := uint64(0); i < 32; i++ {
		b[d.off+descDataOffset+i] = 0
	}
}
