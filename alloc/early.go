package alloc

import (
	"fmt"

	"github.com/joshuapare/earlyalloc/internal/buf"
	"github.com/joshuapare/earlyalloc/internal/format"
)

// EarlyAllocator is a double-ended bump allocator over one fixed address range.
// Byte allocations grow forward from start, page allocations grow backward
// from end, and the two frontiers may never cross:
//
//	[ bytes-used | available | pages-used ]
//	|            | -->   <-- |            |
//	start       bPos      pPos          end
//
// Key characteristics:
//   - O(1) everything: no free lists, no headers, no scanning
//   - Byte side is refcounted: Dealloc only decrements a counter, and the
//     whole byte region is reclaimed when the counter returns to zero
//   - Page side is permanent: DeallocPages is a no-op
//   - Failed operations leave every field unchanged
//
// It is meant for early boot, before a real byte allocator and page
// allocator exist. Instances are not safe for concurrent use.
type EarlyAllocator struct {
	pageSize uintptr

	start uintptr
	end   uintptr

	// bPos is the forward frontier of the byte region.
	bPos uintptr

	// pPos is the backward frontier of the page region.
	pPos uintptr

	// bytesCount is the number of outstanding byte allocations, not their size.
	bytesCount uintptr

	usedPages  uintptr
	totalPages uintptr
}

// NewEarly returns an empty allocator with the given page granularity.
// It panics if pageSize is not a power of two; that is a build
// configuration error, never a runtime condition.
func NewEarly(pageSize uintptr) *EarlyAllocator {
	if !format.IsPowerOfTwo(pageSize) {
		panic(fmt.Sprintf("alloc: page size %#x is not a power of two", pageSize))
	}
	return &EarlyAllocator{pageSize: pageSize}
}

// Init takes over [start, start+size). The start is rounded up and the end
// rounded down to the page size; a range too small to hold a whole page
// yields a zero-capacity allocator rather than an error. Init fails with
// ErrInvalidParam, leaving the allocator untouched, only when the range
// wraps the address space.
func (ea *EarlyAllocator) Init(start, size uintptr) error {
	rawEnd, ok := buf.AddOverflowSafe(start, size)
	if !ok {
		return fmt.Errorf("%w: range %#x+%#x overflows", ErrInvalidParam, start, size)
	}
	alignedStart, ok := format.AlignUpChecked(start, ea.pageSize)
	if !ok {
		return fmt.Errorf("%w: start %#x cannot be page aligned", ErrInvalidParam, start)
	}
	alignedEnd := format.AlignDown(rawEnd, ea.pageSize)
	if alignedEnd < alignedStart {
		alignedEnd = alignedStart
	}

	ea.start = alignedStart
	ea.end = alignedEnd
	ea.bPos = alignedStart
	ea.pPos = alignedEnd
	ea.bytesCount = 0
	ea.usedPages = 0
	ea.totalPages = (alignedEnd - alignedStart) / ea.pageSize
	return nil
}

// AddMemory always fails: the allocator manages exactly the range given to Init.
func (ea *EarlyAllocator) AddMemory(start, size uintptr) error {
	return ErrUnsupported
}

// Alloc bumps the byte frontier forward. The returned address satisfies
// layout.Align and [addr, addr+layout.Size) does not overlap any live byte
// allocation or any page allocation.
func (ea *EarlyAllocator) Alloc(layout Layout) (uintptr, error) {
	if err := layout.Validate(); err != nil {
		return 0, err
	}

	alignedPos, ok := format.AlignUpChecked(ea.bPos, layout.Align)
	if !ok {
		return 0, ErrNoMemory
	}
	newPos, ok := buf.AddOverflowSafe(alignedPos, layout.Size)
	if !ok || newPos > ea.pPos {
		return 0, ErrNoMemory
	}

	ea.bPos = newPos
	ea.bytesCount++
	return alignedPos, nil
}

// Dealloc drops one outstanding byte allocation. The address and layout are
// not used: space is reclaimed only when the last allocation is released,
// at which point the byte frontier returns to start.
//
// Dealloc panics when there is no outstanding allocation.
func (ea *EarlyAllocator) Dealloc(addr uintptr, layout Layout) {
	if ea.bytesCount == 0 {
		panic(fmt.Sprintf("alloc: dealloc of %#x (%s) without a matching alloc", addr, layout))
	}
	ea.bytesCount--
	if ea.bytesCount == 0 {
		ea.bPos = ea.start
	}
}

// TotalBytes is the size of the managed range.
func (ea *EarlyAllocator) TotalBytes() uintptr {
	return ea.end - ea.start
}

// UsedBytes is the extent of the byte region, including alignment padding
// and allocations that were freed but not yet reclaimed.
func (ea *EarlyAllocator) UsedBytes() uintptr {
	return ea.bPos - ea.start
}

// AvailableBytes is the gap between the two frontiers.
func (ea *EarlyAllocator) AvailableBytes() uintptr {
	return ea.pPos - ea.bPos
}

// PageSize returns the page granularity fixed at construction.
func (ea *EarlyAllocator) PageSize() uintptr {
	return ea.pageSize
}

// AllocPages moves the page frontier backward by count pages and returns the
// new frontier. alignPow2 must be a power of two no larger than the page size.
func (ea *EarlyAllocator) AllocPages(count, alignPow2 uintptr) (uintptr, error) {
	if !format.IsPowerOfTwo(alignPow2) || alignPow2 > ea.pageSize {
		return 0, fmt.Errorf("%w: page alignment %#x", ErrInvalidParam, alignPow2)
	}

	size, ok := buf.MulOverflowSafe(count, ea.pageSize)
	if !ok {
		return 0, ErrNoMemory
	}
	below, ok := buf.SubUnderflowSafe(ea.pPos, size)
	if !ok {
		return 0, ErrNoMemory
	}
	alignedPos := format.AlignDown(below, alignPow2)
	if alignedPos < ea.bPos {
		return 0, ErrNoMemory
	}

	ea.pPos = alignedPos
	ea.usedPages += count
	return alignedPos, nil
}

// DeallocPages is a no-op: pages handed out here are never returned.
func (ea *EarlyAllocator) DeallocPages(addr, count uintptr) {}

// TotalPages is the number of whole pages in the managed range.
func (ea *EarlyAllocator) TotalPages() uintptr {
	return ea.totalPages
}

// UsedPages is the number of pages handed out so far. It never decreases.
func (ea *EarlyAllocator) UsedPages() uintptr {
	return ea.usedPages
}

// AvailablePages is TotalPages minus UsedPages. Pages consumed by the byte
// region are still counted as available.
func (ea *EarlyAllocator) AvailablePages() uintptr {
	return ea.totalPages - ea.usedPages
}

func (ea *EarlyAllocator) String() string {
	return fmt.Sprintf("early[%#x bytes->%#x | %#x<-pages %#x]", ea.start, ea.bPos, ea.pPos, ea.end)
}

// Compile-time interface checks
var (
	_ BaseAllocator = (*EarlyAllocator)(nil)
	_ ByteAllocator = (*EarlyAllocator)(nil)
	_ PageAllocator = (*EarlyAllocator)(nil)
	_ Allocator     = (*EarlyAllocator)(nil)
)
