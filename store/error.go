package store

import "fmt"

// OutOfRangeError indicates an index argument exceeded the static bound of
// its target array or tree.
type OutOfRangeError struct {
	What  string
	Index uint64
	Bound uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d exceeds bound %d", e.What, e.Index, e.Bound)
}

// NewOutOfRangeError builds an OutOfRangeError for the named array or tree.
func NewOutOfRangeError(what string, index, bound uint64) error {
	return &OutOfRangeError{What: what, Index: index, Bound: bound}
}

// OutOfSpaceError indicates every super-block is saturated; no free block
// is available for allocation.
type OutOfSpaceError struct{}

func (e *OutOfSpaceError) Error() string {
	return "no free block available: all super-blocks are saturated"
}

// DoubleAllocError indicates an attempt to allocate a block already marked
// taken. This is an invariant violation, not an expected runtime condition.
type DoubleAllocError struct {
	GlobalIndex uint64
}

func (e *DoubleAllocError) Error() string {
	return fmt.Sprintf("block %d is already allocated", e.GlobalIndex)
}

// DoubleFreeError indicates an attempt to free a block that is not marked
// taken. This is an invariant violation, not an expected runtime condition.
type DoubleFreeError struct {
	GlobalIndex uint64
}

func (e *DoubleFreeError) Error() string {
	return fmt.Sprintf("block %d is not allocated", e.GlobalIndex)
}

// AlreadyExistsError indicates Create was called on a descriptor that
// already has its EX bit set.
type AlreadyExistsError struct {
	DescriptorIndex uint64
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("descriptor %d already exists", e.DescriptorIndex)
}
