package store

import "github.com/sirupsen/logrus"

// warnIfMisaligned logs (Debug) when BlockSize isn't a multiple of the
// host page size. Purely informational: the core has no alignment
// requirement beyond BlockSize being a multiple of pointerWidth.
func (s *Store) warnIfMisaligned() {
	page := hostPageSize()
	if page <= 0 {
		return
	}
	if s.params.BlockSize%uint64(page) != 0 {
		s.log.WithFields(logrus.Fields{
			"block_size": s.params.BlockSize,
			"page_size":  page,
		}).Debug("block size is not a multiple of the host page size")
	}
}
