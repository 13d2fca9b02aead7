package alloc

import (
	"fmt"

	"github.com/joshuapare/earlyalloc/internal/format"
)

// Layout is the size and alignment of a byte allocation.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout returns a Layout after checking that align is a power of two.
func NewLayout(size, align uintptr) (Layout, error) {
	l := Layout{Size: size, Align: align}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LayoutOf returns a Layout whose alignment is the size rounded up to a power
// of two and capped at 16, which is what a naturally aligned scalar or small
// struct of that size needs.
func LayoutOf(size uintptr) Layout {
	align := uintptr(1)
	for align < size && align < 16 {
		align <<= 1
	}
	return Layout{Size: size, Align: align}
}

// Validate reports ErrInvalidParam when the alignment is zero or not a power of two.
func (l Layout) Validate() error {
	if !format.IsPowerOfTwo(l.Align) {
		return fmt.Errorf("%w: alignment %#x is not a power of two", ErrInvalidParam, l.Align)
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("size=%#x align=%#x", l.Size, l.Align)
}

// BaseAllocator is the lifecycle surface shared by every allocator.
type BaseAllocator interface {
	// Init takes ownership of [start, start+size). It must be called exactly
	// once before any allocation.
	Init(start, size uintptr) error

	// AddMemory hands another range to the allocator. Allocators that manage a
	// single fixed range return ErrUnsupported.
	AddMemory(start, size uintptr) error
}

// ByteAllocator hands out variably sized, individually aligned byte ranges.
type ByteAllocator interface {
	BaseAllocator

	// Alloc returns the start address of a range satisfying layout.
	Alloc(layout Layout) (uintptr, error)

	// Dealloc releases a range previously returned by Alloc with the same layout.
	Dealloc(addr uintptr, layout Layout)

	TotalBytes() uintptr
	UsedBytes() uintptr
	AvailableBytes() uintptr
}

// PageAllocator hands out contiguous runs of fixed-size pages.
type PageAllocator interface {
	BaseAllocator

	// PageSize is the page granularity, fixed for the allocator's lifetime.
	PageSize() uintptr

	// AllocPages returns the base address of count contiguous pages aligned
	// to alignPow2, which must be a power of two no larger than PageSize.
	AllocPages(count, alignPow2 uintptr) (uintptr, error)

	// DeallocPages releases pages returned by AllocPages.
	// Allocators with permanent page allocations treat it as a no-op.
	DeallocPages(addr, count uintptr)

	TotalPages() uintptr
	UsedPages() uintptr
	AvailablePages() uintptr
}

// Allocator is the union of the byte and page surfaces. Boot code should
// depend on this (or on one of the narrower surfaces) rather than on
// EarlyAllocator so a full allocator can replace it later.
type Allocator interface {
	ByteAllocator
	PageAllocator
}
