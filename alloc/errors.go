package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMemory indicates that the request does not fit between the byte and page frontiers.
	ErrNoMemory = errors.New("alloc: no memory")

	// ErrInvalidParam indicates a bad alignment, a bad layout, or an address range that overflows.
	ErrInvalidParam = errors.New("alloc: invalid parameter")

	// ErrUnsupported indicates an operation the allocator does not provide, such as
	// adding memory after Init. It matches ErrNoMemory under errors.Is.
	ErrUnsupported = fmt.Errorf("%w: operation unsupported", ErrNoMemory)

	// ErrCorrupt indicates that CheckInvariants found the allocator state inconsistent.
	ErrCorrupt = errors.New("alloc: invariant violated")
)
