// Package persist is a snapshot/restore wrapper around a store.Store. The
// core itself is explicitly volatile (no journaling, no wire format); this
// package sits outside it the same way the teacher keeps its disk/backend
// layer separate from its filesystem format packages.
package persist

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
	"github.com/pkg/xattr"

	"github.com/blockfs-go/blockfs/store"
)

const volumeXattr = "user.blockfs.volume"

// Save writes an lz4-compressed copy of s's backing region to w, preceded
// by the Params needed to reconstruct it on Load.
func Save(w io.Writer, s *store.Store) error {
	p := s.Params()
	if err := writeParams(w, p); err != nil {
		return err
	}

	zw := lz4.NewWriter(w)
	if _, err := zw.Write(s.Raw()); err != nil {
		return err
	}
	return zw.Close()
}

// Load reverses Save: it reads back the Params header, then decompresses
// the snapshot body directly into a freshly constructed Store's backing
// region. The snapshot is trusted, not re-validated for reachability, the
// same trust boundary a disk.Open call uses for an existing disk image.
func Load(r io.Reader) (*store.Store, error) {
	p, err := readParams(r)
	if err != nil {
		return nil, err
	}
	s, err := store.New(p)
	if err != nil {
		return nil, err
	}

	zr := lz4.NewReader(r)
	if _, err := io.ReadFull(zr, s.Raw()); err != nil {
		return nil, fmt.Errorf("persist: reading snapshot body: %w", err)
	}
	return s, nil
}

// SaveFile writes a snapshot to path and tags the resulting file with an
// extended attribute recording the store's volume id, so a snapshot can be
// identified on disk without opening and decompressing it.
func SaveFile(path string, s *store.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Save(f, s); err != nil {
		return err
	}
	id := s.Header().VolumeID().String()
	if err := xattr.Set(path, volumeXattr, []byte(id)); err != nil {
		return fmt.Errorf("persist: tagging %s: %w", path, err)
	}
	return nil
}

// LoadFile reverses SaveFile.
func LoadFile(path string) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// VolumeIDOf reads back the volume id tag written by SaveFile without
// opening or decompressing the snapshot body.
func VolumeIDOf(path string) (string, error) {
	b, err := xattr.Get(path, volumeXattr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeParams(w io.Writer, p store.Params) error {
	var hdr [32]byte
	binary.LittleEndian.PutUint64(hdr[0:8], p.BlockSize)
	binary.LittleEndian.PutUint64(hdr[8:16], p.SuperBlockSize)
	binary.LittleEndian.PutUint64(hdr[16:24], p.SuperBlockCount)
	binary.LittleEndian.PutUint64(hdr[24:32], p.DescriptorCount)
	_, err := w.Write(hdr[:])
	return err
}

func readParams(r io.Reader) (store.Params, error) {
	var hdr [32]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return store.Params{}, fmt.Errorf("persist: reading snapshot header: %w", err)
	}
	return store.Params{
		BlockSize:       binary.LittleEndian.Uint64(hdr[0:8]),
		SuperBlockSize:  binary.LittleEndian.Uint64(hdr[8:16]),
		SuperBlockCount: binary.LittleEndian.Uint64(hdr[16:24]),
		DescriptorCount: binary.LittleEndian.Uint64(hdr[24:32]),
	}, nil
}
