// Package blockio adapts a store.Store file to the standard io.Reader /
// io.Writer / io.Seeker interfaces, translating byte offsets into logical
// block indices the way filesystem/ext4/file.go translates a File's
// offset into extents before calling ReadAt.
package blockio

import (
	"errors"
	"io"

	"github.com/blockfs-go/blockfs/store"
)

// Reader reads a store file sequentially (or via Seek) through the
// standard io.Reader/io.Seeker interfaces.
type Reader struct {
	s      *store.Store
	h      store.Handle
	offset int64
}

// NewReader returns a Reader positioned at the start of h.
func NewReader(s *store.Store, h store.Handle) *Reader {
	return &Reader{s: s, h: h}
}

func (r *Reader) Read(p []byte) (int, error) {
	size, err := r.s.Size(r.h)
	if err != nil {
		return 0, err
	}
	if r.offset >= int64(size) {
		return 0, io.EOF
	}

	blockSize := int64(r.s.Params().BlockSize)
	total := 0
	for total < len(p) && r.offset < int64(size) {
		k := uint64(r.offset) / uint64(blockSize)
		within := r.offset % blockSize

		b, err := r.s.BlockAt(r.h, k)
		if err != nil {
			return total, err
		}
		avail := int64(len(b)) - within
		remaining := int64(size) - r.offset
		if avail > remaining {
			avail = remaining
		}
		n := copy(p[total:], b[within:within+avail])
		total += n
		r.offset += int64(n)
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// Seek implements io.Seeker. Only io.SeekStart, io.SeekCurrent, and
// io.SeekEnd are supported.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	size, err := r.s.Size(r.h)
	if err != nil {
		return 0, err
	}
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = r.offset + offset
	case io.SeekEnd:
		newOffset = int64(size) + offset
	default:
		return 0, errors.New("blockio: invalid whence")
	}
	if newOffset < 0 {
		return 0, errors.New("blockio: negative position")
	}
	r.offset = newOffset
	return r.offset, nil
}

// Writer writes to a store file sequentially, growing it with
// store.Resize before writing past the current size.
type Writer struct {
	s      *store.Store
	h      store.Handle
	offset int64
}

// NewWriter returns a Writer positioned at the start of h. It does not
// truncate; callers that want to overwrite from scratch should Resize the
// handle to 0 first.
func NewWriter(s *store.Store, h store.Handle) *Writer {
	return &Writer{s: s, h: h}
}

func (w *Writer) Write(p []byte) (int, error) {
	blockSize := int64(w.s.Params().BlockSize)
	total := 0
	for total < len(p) {
		needSize := uint64(w.offset) + uint64(len(p)-total)
		curSize, err := w.s.Size(w.h)
		if err != nil {
			return total, err
		}
		if needSize > curSize {
			if err := w.s.Resize(w.h, needSize); err != nil {
				return total, err
			}
		}

		k := uint64(w.offset) / uint64(blockSize)
		within := w.offset % blockSize

		b, err := w.s.BlockAt(w.h, k)
		if err != nil {
			return total, err
		}
		n := copy(b[within:], p[total:])
		total += n
		w.offset += int64(n)
	}
	return total, nil
}
